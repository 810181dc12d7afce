package ports

// SecurityPort encrypts and decrypts sensitive citizen fields (phone number,
// national ID) before they reach the database. Kept behind an interface so the
// cipher can be swapped without touching repository logic.
type SecurityPort interface {
	// Encrypt takes a plaintext and returns a secure, encrypted ciphertext.
	Encrypt(plaintext []byte) (ciphertext []byte, err error)

	// Decrypt takes a ciphertext and returns the original plaintext.
	Decrypt(ciphertext []byte) (plaintext []byte, err error)
}
