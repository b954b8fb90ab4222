package crypto

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/strun-app/strun-wallet/internal/model"
)

// ErrInvalidPassword is returned when the store cannot be opened with the given password
var ErrInvalidPassword = errors.New("invalid password")

// OpenSealer derives the key recorded in file, decrypts it and returns a Sealer
// that writes later versions under the same key.
// password must be []byte for security (caller should zero it after use and wipe the plaintext)
func OpenSealer(file *model.StoreFile, password []byte) (*Sealer, []byte, error) {
	if len(password) == 0 {
		return nil, nil, ErrEmptyPassword
	}
	if file.Version != envelopeVersion {
		return nil, nil, fmt.Errorf("unsupported store version %d", file.Version)
	}
	if file.KDF != kdfScrypt {
		return nil, nil, fmt.Errorf("unsupported key derivation %q", file.KDF)
	}

	salt, err := base64.StdEncoding.DecodeString(file.Salt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode salt: %w", err)
	}

	nonce, err := base64.StdEncoding.DecodeString(file.Nonce)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode nonce: %w", err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(file.CipherText)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	s, err := newSealer(password, salt, Params{N: file.N, R: file.R, P: file.P})
	if err != nil {
		return nil, nil, err
	}

	if len(nonce) != s.aead.NonceSize() {
		return nil, nil, fmt.Errorf("invalid nonce length %d", len(nonce))
	}

	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, nil, ErrInvalidPassword
	}

	return s, plaintext, nil
}

// Decrypt opens a sealed store file.
// password must be []byte for security (caller should zero it after use and wipe the result)
func Decrypt(file *model.StoreFile, password []byte) ([]byte, error) {
	_, plaintext, err := OpenSealer(file, password)
	return plaintext, err
}
