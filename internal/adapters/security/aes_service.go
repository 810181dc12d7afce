package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"SahayCare/internal/core/ports"

	"github.com/rs/zerolog"
)

// aesService implements the SecurityPort interface using AES-GCM. It protects
// citizen PII (phone numbers, national IDs) at rest; the repositories call it
// on every read and write of those columns.
type aesService struct {
	gcm cipher.AEAD
	log zerolog.Logger
}

// NewAESService creates a new security service from a raw key.
func NewAESService(encryptionKey []byte, baseLogger *zerolog.Logger) (ports.SecurityPort, error) {
	if len(encryptionKey) != 16 && len(encryptionKey) != 32 {
		return nil, errors.New("encryptionKey must be 16 or 32 bytes")
	}

	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("could not create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("could not create GCM: %w", err)
	}

	log := baseLogger.With().Str("component", "security_service").Logger()
	log.Info().Msg("Security service initialized")

	return &aesService{gcm: gcm, log: log}, nil
}

// Encrypt seals the plaintext with a random nonce prefixed to the result.
func (s *aesService) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		s.log.Error().Err(err).Msg("Failed to generate nonce")
		return nil, fmt.Errorf("could not generate nonce: %w", err)
	}

	ciphertext := s.gcm.Seal(nonce, nonce, plaintext, nil)
	return ciphertext, nil
}

// Decrypt opens a ciphertext produced by Encrypt.
func (s *aesService) Decrypt(ciphertext []byte) ([]byte, error) {
	nonceSize := s.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, errors.New("ciphertext is too short")
	}

	nonce, actualCiphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]

	plaintext, err := s.gcm.Open(nil, nonce, actualCiphertext, nil)
	if err != nil {
		// Authentication failure: the stored value was tampered with or the
		// key rotated without re-encrypting.
		s.log.Warn().Err(err).Msg("Failed to decrypt ciphertext (tampered or corrupt?)")
		return nil, fmt.Errorf("could not decrypt: %w", err)
	}

	return plaintext, nil
}
