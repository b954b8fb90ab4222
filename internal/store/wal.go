package store

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
)

const (
	defaultWALDir   = "./wal/store"
	walSegmentLimit = 1000
	walMaxSegments  = 1000

	walSetPrefix    = "set:"
	walRemovePrefix = "del:"
)

// WALStore persists key-value pairs as an append-only log. The latest record for a
// key wins and removals are tombstones. Values are stored unencrypted.
type WALStore struct {
	wal  *gowal.Wal
	mu   sync.RWMutex
	data map[string]string
}

// NewWALStore opens the log under dir and replays it into memory.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = defaultWALDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "kv_",
		SegmentThreshold: walSegmentLimit,
		MaxSegments:      walMaxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init store WAL")
	}

	s := &WALStore{wal: wal, data: make(map[string]string)}
	if err := replay(wal, s.data); err != nil {
		_ = wal.Close()
		return nil, err
	}

	return s, nil
}

// walReader is the read side of the log used during replay.
type walReader interface {
	CurrentIndex() uint64
	Get(index uint64) (string, []byte, error)
}

// replay folds every record into data. An unreadable record aborts the replay:
// a missing key must never be mistaken for an absent one.
func replay(r walReader, data map[string]string) error {
	current := r.CurrentIndex()
	for idx := uint64(1); idx <= current; idx++ {
		key, payload, err := r.Get(idx)
		if err != nil {
			return errors.Wrapf(err, "replay store WAL record %d", idx)
		}
		switch {
		case strings.HasPrefix(key, walSetPrefix):
			data[strings.TrimPrefix(key, walSetPrefix)] = string(payload)
		case strings.HasPrefix(key, walRemovePrefix):
			delete(data, strings.TrimPrefix(key, walRemovePrefix))
		}
	}
	return nil
}

func (s *WALStore) Get(_ context.Context, key string) (string, bool, error) {
	if s == nil || s.wal == nil {
		return "", false, errors.New("store WAL is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	return v, ok, nil
}

func (s *WALStore) Set(_ context.Context, key, value string) error {
	if s == nil || s.wal == nil {
		return errors.New("store WAL is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	if err := s.wal.Write(nextIndex, walSetPrefix+key, []byte(value)); err != nil {
		return errors.Wrapf(err, "write %s", key)
	}
	s.data[key] = value
	return nil
}

func (s *WALStore) Remove(_ context.Context, key string) error {
	if s == nil || s.wal == nil {
		return errors.New("store WAL is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return nil
	}

	nextIndex := s.wal.CurrentIndex() + 1
	if err := s.wal.Write(nextIndex, walRemovePrefix+key, []byte{}); err != nil {
		return errors.Wrapf(err, "remove %s", key)
	}
	delete(s.data, key)
	return nil
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("store WAL is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
