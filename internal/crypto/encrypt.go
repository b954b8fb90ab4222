package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/strun-app/strun-wallet/internal/model"

	"golang.org/x/crypto/scrypt"
)

const (
	envelopeVersion = 1
	kdfScrypt       = "scrypt"

	scryptKeyLen = 32
	saltLen      = 32
	nonceLen     = 12
)

// Params are the scrypt cost parameters used to derive the store key.
type Params struct {
	N int
	R int
	P int
}

// DefaultParams are used for every store written by the application.
//
// N=2^18 (~256MB RAM, 0.5-2s):
//   - works on phones (4-16GB RAM) and desktops alike
//   - brute-force attacks remain extremely expensive
//
// N=2^20 fails on Android because of per-app memory limits (~256-512MB).
var DefaultParams = Params{N: 1 << 18, R: 8, P: 1}

// ErrEmptyPassword is returned when encrypting or decrypting with an empty password
var ErrEmptyPassword = errors.New("password cannot be empty")

// Sealer encrypts successive versions of one store under a single derived key.
// Every Seal uses a fresh nonce; the salt is fixed for the lifetime of the key.
type Sealer struct {
	aead   cipher.AEAD
	salt   []byte
	params Params
}

// NewSealer derives a key from password with a fresh random salt.
// password must be []byte for security (caller should zero it after use)
func NewSealer(password []byte, params Params) (*Sealer, error) {
	if len(password) == 0 {
		return nil, ErrEmptyPassword
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	return newSealer(password, salt, params)
}

func newSealer(password, salt []byte, params Params) (*Sealer, error) {
	key, err := scrypt.Key(password, salt, params.N, params.R, params.P, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Sealer{aead: aesGCM, salt: salt, params: params}, nil
}

// Seal encrypts plaintext into a store file envelope.
func (s *Sealer) Seal(plaintext []byte) (*model.StoreFile, error) {
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := s.aead.Seal(nil, nonce, plaintext, nil)

	return &model.StoreFile{
		Version:    envelopeVersion,
		KDF:        kdfScrypt,
		N:          s.params.N,
		R:          s.params.R,
		P:          s.params.P,
		Salt:       base64.StdEncoding.EncodeToString(s.salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		CipherText: base64.StdEncoding.EncodeToString(ciphertext),
	}, nil
}

// Encrypt seals plaintext with a key derived from password.
// password must be []byte for security (caller should zero it after use)
func Encrypt(plaintext, password []byte, params Params) (*model.StoreFile, error) {
	s, err := NewSealer(password, params)
	if err != nil {
		return nil, err
	}
	return s.Seal(plaintext)
}
