package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/familychurch/eventbot/internal/github"
	"github.com/familychurch/eventbot/types"
)

// ErrConflict is returned when a write was computed from a stale version
// token. The caller reports it to the operator; there is no automatic retry.
var ErrConflict = errors.New("catalog: version conflict")

// ContentsClient is the narrow versioned-document interface the store needs.
type ContentsClient interface {
	GetFile(ctx context.Context, path, ref string) ([]byte, string, error)
	PutFile(ctx context.Context, path string, content []byte, sha, branch, message string) error
}

// Store reads and writes the whole event catalog as a single pretty-printed
// JSON document with an opaque version token (the blob SHA).
type Store struct {
	client ContentsClient
	path   string
	branch string
}

func NewStore(client ContentsClient, path, branch string) *Store {
	return &Store{client: client, path: path, branch: branch}
}

// Read loads the full catalog. A document that does not exist yet is an
// empty catalog with an empty token, not an error.
func (s *Store) Read(ctx context.Context) ([]types.Event, string, error) {
	data, sha, err := s.client.GetFile(ctx, s.path, s.branch)
	if errors.Is(err, github.ErrNotFound) {
		return []types.Event{}, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("read catalog: %w", err)
	}

	var events []types.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, "", fmt.Errorf("parse catalog: %w", err)
	}
	return events, sha, nil
}

// Write commits the full catalog under the given version token. A stale
// token yields ErrConflict and leaves the document untouched.
func (s *Store) Write(ctx context.Context, events []types.Event, token, message string) error {
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	data = append(data, '\n')

	err = s.client.PutFile(ctx, s.path, data, token, s.branch, message)
	if errors.Is(err, github.ErrConflict) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}
