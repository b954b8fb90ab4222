package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/strun-app/strun-wallet/internal/crypto"
	"github.com/strun-app/strun-wallet/internal/model"
)

// File is a Store kept in a single encrypted file (scrypt + AES-GCM).
// The whole map is re-sealed and atomically replaced on every write.
type File struct {
	path   string
	mu     sync.RWMutex
	sealer *crypto.Sealer
	data   map[string]string
	closed bool
}

// OpenFile opens or creates an encrypted store at path.
// password must be []byte for security (caller should zero it after use)
func OpenFile(path string, password []byte, params crypto.Params) (*File, error) {
	if path == "" {
		return nil, errors.New("store path is empty")
	}

	storeFile, err := readStoreFile(path)
	if err != nil {
		return nil, err
	}

	if storeFile == nil {
		sealer, err := crypto.NewSealer(password, params)
		if err != nil {
			return nil, err
		}
		return &File{path: path, sealer: sealer, data: make(map[string]string)}, nil
	}

	sealer, plaintext, err := crypto.OpenSealer(storeFile, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt store: %w", err)
	}
	defer clear(plaintext) // wipe decrypted bytes from memory

	data := make(map[string]string)
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal store data: %w", err)
	}

	return &File{path: path, sealer: sealer, data: data}, nil
}

// readStoreFile returns nil when the file does not exist or is empty.
func readStoreFile(path string) (*model.StoreFile, error) {
	fileData, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(fileData) == 0 {
		return nil, nil
	}

	var storeFile model.StoreFile
	if err := json.Unmarshal(fileData, &storeFile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal store file: %w", err)
	}
	return &storeFile, nil
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return "", false, ErrClosed
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}

	prev, had := f.data[key]
	f.data[key] = value
	if err := f.flushLocked(); err != nil {
		if had {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

func (f *File) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}

	prev, had := f.data[key]
	if !had {
		return nil
	}
	delete(f.data, key)
	if err := f.flushLocked(); err != nil {
		f.data[key] = prev
		return err
	}
	return nil
}

// Rekey re-encrypts the store under newPassword.
// password must be []byte for security (caller should zero it after use)
func (f *File) Rekey(newPassword []byte, params crypto.Params) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}

	sealer, err := crypto.NewSealer(newPassword, params)
	if err != nil {
		return err
	}

	old := f.sealer
	f.sealer = sealer
	if err := f.flushLocked(); err != nil {
		f.sealer = old
		return err
	}
	return nil
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	clear(f.data)
	return nil
}

// flushLocked writes the current map through a temp file and rename so a crash
// never leaves a half-written store behind.
func (f *File) flushLocked() error {
	plaintext, err := json.Marshal(f.data)
	if err != nil {
		return fmt.Errorf("failed to marshal store data: %w", err)
	}
	defer clear(plaintext) // wipe plaintext bytes from memory

	storeFile, err := f.sealer.Seal(plaintext)
	if err != nil {
		return fmt.Errorf("failed to encrypt store: %w", err)
	}

	fileData, err := json.MarshalIndent(storeFile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store file: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if _, err := tmp.Write(fileData); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}
