// Package refcode generates the human-readable reference codes used across
// the admin surface. Codes are random (crypto/rand) but short; they identify
// records to humans and are never an access-control mechanism.
package refcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	alnum  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	digits = "0123456789"
)

func randomString(alphabet string, n int) (string, error) {
	buf := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("could not generate reference code: %w", err)
		}
		buf[i] = alphabet[idx.Int64()]
	}
	return string(buf), nil
}

// Client returns a client code of the form ZOR-XXXXXX.
func Client() (string, error) {
	s, err := randomString(alnum, 6)
	if err != nil {
		return "", err
	}
	return "ZOR-" + s, nil
}

// Project returns a project code of the form PRJ-NNNNNN-XXXX.
func Project() (string, error) {
	n, err := randomString(digits, 6)
	if err != nil {
		return "", err
	}
	s, err := randomString(alnum, 4)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PRJ-%s-%s", n, s), nil
}

// Candidate returns a candidate code of the form CAN-NNNNNN-XXXX.
func Candidate() (string, error) {
	n, err := randomString(digits, 6)
	if err != nil {
		return "", err
	}
	s, err := randomString(alnum, 4)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CAN-%s-%s", n, s), nil
}

// Payment returns a payment reference of the form PAY-YYYY-XXXXXX, where the
// year comes from the supplied submission time.
func Payment(now time.Time) (string, error) {
	s, err := randomString(alnum, 6)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PAY-%d-%s", now.Year(), s), nil
}
