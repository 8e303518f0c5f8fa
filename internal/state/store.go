package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/autovolt/lakehouse/internal/services/storage"
)

// ErrConflict is returned by Save when the stored document changed after
// it was loaded, meaning another invocation wrote in between. The version
// check and the write are separate calls, so two writers that both read
// the same version can still both write; the run lease closes that window.
var ErrConflict = errors.New("state document changed since it was loaded")

// Store reads and writes the state document in the blob store
type Store struct {
	blobs       storage.BlobStore
	path        string
	initialSeed int64
}

// NewStore creates a store for the document at path. initialSeed seeds a
// deployment that has no document yet.
func NewStore(blobs storage.BlobStore, path string, initialSeed int64) *Store {
	return &Store{blobs: blobs, path: path, initialSeed: initialSeed}
}

// Path returns the document path
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted state, or a fresh one if nothing was saved yet
func (s *Store) Load(ctx context.Context) (*SimulationState, error) {
	exists, err := s.blobs.Exists(ctx, s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to check state document: %w", err)
	}
	if !exists {
		return New(s.initialSeed), nil
	}

	data, err := s.blobs.Read(ctx, s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state document: %w", err)
	}

	var st SimulationState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Save writes st and bumps its version. It refuses to overwrite a document
// whose version differs from the one st was loaded with.
func (s *Store) Save(ctx context.Context, st *SimulationState) error {
	current, err := s.storedVersion(ctx)
	if err != nil {
		return err
	}
	if current >= 0 && current != st.Version {
		return fmt.Errorf("%w: loaded version %d, stored version %d", ErrConflict, st.Version, current)
	}

	st.Version++
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		st.Version--
		return fmt.Errorf("failed to encode state document: %w", err)
	}

	if _, err := s.blobs.Write(ctx, s.path, data, "application/json"); err != nil {
		st.Version--
		return fmt.Errorf("failed to write state document: %w", err)
	}
	return nil
}

// storedVersion returns the version of the stored document, or -1 when
// there is none.
func (s *Store) storedVersion(ctx context.Context) (int64, error) {
	exists, err := s.blobs.Exists(ctx, s.path)
	if err != nil {
		return 0, fmt.Errorf("failed to check state document: %w", err)
	}
	if !exists {
		return -1, nil
	}

	data, err := s.blobs.Read(ctx, s.path)
	if err != nil {
		return 0, fmt.Errorf("failed to read state document: %w", err)
	}

	var head struct {
		Version json.RawMessage `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return 0, fmt.Errorf("failed to decode state document: %w", err)
	}
	if head.Version == nil {
		return 0, nil
	}
	return lenientInt(head.Version), nil
}
