package domain

import (
	"crypto/rand"
	"fmt"
	"time"
)

const cardSuffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewDigitalCardNumber generates a card number in the form
// SCID-<epoch millis>-<6 random uppercase alphanumerics>.
func NewDigitalCardNumber(now time.Time) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	for i, b := range buf {
		buf[i] = cardSuffixAlphabet[int(b)%len(cardSuffixAlphabet)]
	}
	return fmt.Sprintf("SCID-%d-%s", now.UnixMilli(), string(buf))
}
