package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	clientmodels "zorvixe/internal/client/models"
	clientstore "zorvixe/internal/client/store"
	linkmodels "zorvixe/internal/link/models"
	linkstore "zorvixe/internal/link/store"
	"zorvixe/pkg/platform/sentinel"
	"zorvixe/pkg/platform/tx"
	"zorvixe/pkg/refcode"
)

// seedDemoPaymentLink creates a demo client with an active payment link
// bearing the configured token. Idempotent: when the token already exists the
// seed is a no-op, so restarts do not mint duplicate demo clients.
func seedDemoPaymentLink(ctx context.Context, log *slog.Logger, runner tx.Runner, clients clientstore.Clients, links linkstore.Store, token string) error {
	if _, err := links.FindByToken(ctx, token); err == nil {
		log.Info("demo payment link already seeded")
		return nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return fmt.Errorf("seed demo link: %w", err)
	}

	clientCode, err := refcode.Client()
	if err != nil {
		return fmt.Errorf("seed demo link: %w", err)
	}
	projectCode, err := refcode.Project()
	if err != nil {
		return fmt.Errorf("seed demo link: %w", err)
	}

	now := time.Now().UTC()
	client, err := clientmodels.NewClient(clientmodels.NewClientInput{
		Name:        "Demo Client",
		Email:       "demo@zorvixe.com",
		Phone:       "+10000000000",
		ProjectName: "Demo Project",
		AmountDue:   1000,
	}, clientCode, projectCode, now)
	if err != nil {
		return fmt.Errorf("seed demo link: %w", err)
	}

	link, err := linkmodels.NewLink(linkmodels.SubjectRef{Kind: linkmodels.SubjectClient, ID: client.ID}, token, now)
	if err != nil {
		return fmt.Errorf("seed demo link: %w", err)
	}

	err = runner.RunInTx(ctx, func(txCtx context.Context) error {
		if err := clients.Create(txCtx, client); err != nil {
			return err
		}
		return links.Issue(txCtx, link)
	})
	if err != nil {
		return fmt.Errorf("seed demo link: %w", err)
	}

	log.Info("demo payment link seeded",
		"client_id", client.ID,
		"expires_at", link.ExpiresAt,
	)
	return nil
}
