package submissions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"

	"submission-backend/internal/shared/storage/object"
	"submission-backend/internal/shared/util"
)

const contentTypeJSON = "application/json"

// Store persists one JSON document per submission id.
//
// Save is a read-modify-write. Calls for the same id are serialized within
// this process; writers in other processes still race and the last write wins.
type Store struct {
	objects object.Store
	prefix  string
	locks   keyedMutex
}

// NewStore creates a Store that keeps records under prefix in objects.
func NewStore(objects object.Store, prefix string) *Store {
	return &Store{objects: objects, prefix: prefix}
}

// Key returns the storage key for id after sanitization.
func (s *Store) Key(id string) (string, error) {
	clean := util.SanitizeID(id)
	if clean == "" {
		return "", ErrInvalidID
	}
	return path.Join(s.prefix, clean+".json"), nil
}

// Load returns the record stored for id.
func (s *Store) Load(ctx context.Context, id string) (Record, error) {
	key, err := s.Key(id)
	if err != nil {
		return nil, err
	}
	return s.read(ctx, key)
}

// Save applies mutate to the current record for id and writes the result
// back. The record must already exist.
func (s *Store) Save(ctx context.Context, id string, mutate func(Record) error) error {
	key, err := s.Key(id)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(key)
	defer unlock()

	rec, err := s.read(ctx, key)
	if err != nil {
		return err
	}
	if mutate != nil {
		if err := mutate(rec); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	if err := s.objects.Put(ctx, key, contentTypeJSON, data); err != nil {
		return fmt.Errorf("write submission: %w", err)
	}
	return nil
}

func (s *Store) read(ctx context.Context, key string) (Record, error) {
	data, err := s.objects.Get(ctx, key)
	if err != nil {
		if errors.Is(err, object.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read submission: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after record", ErrCorrupt)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: record is not a JSON object", ErrCorrupt)
	}
	return rec, nil
}
