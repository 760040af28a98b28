package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/familychurch/eventbot/internal/github"
	"github.com/familychurch/eventbot/types"
)

// fakeContents is an in-memory versioned document store.
type fakeContents struct {
	data    []byte
	sha     string
	puts    int
	lastMsg string
}

func (f *fakeContents) GetFile(ctx context.Context, path, ref string) ([]byte, string, error) {
	if f.data == nil {
		return nil, "", github.ErrNotFound
	}
	return f.data, f.sha, nil
}

func (f *fakeContents) PutFile(ctx context.Context, path string, content []byte, sha, branch, message string) error {
	if sha != f.sha {
		return github.ErrConflict
	}
	f.data = content
	f.sha = "sha-" + message
	f.puts++
	f.lastMsg = message
	return nil
}

func TestRead_MissingCatalog(t *testing.T) {
	store := NewStore(&fakeContents{}, "data/events.json", "main")

	events, token, err := store.Read(context.Background())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("Expected empty catalog, got %d events", len(events))
	}
	if token != "" {
		t.Errorf("Expected empty token, got '%s'", token)
	}
}

func TestWrite_StaleToken(t *testing.T) {
	fake := &fakeContents{data: []byte("[]\n"), sha: "current"}
	store := NewStore(fake, "data/events.json", "main")

	err := store.Write(context.Background(), []types.Event{}, "stale", "update events")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("Expected ErrConflict, got %v", err)
	}
	if fake.puts != 0 {
		t.Error("Expected no write on conflict")
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	fake := &fakeContents{data: []byte("[]\n"), sha: "v1"}
	store := NewStore(fake, "data/events.json", "main")

	events := []types.Event{{
		ID:      "culto-2026",
		TitlePT: "Culto",
		Date:    "2026-05-01",
		Time:    types.Unknown,
		Status:  types.StatusUpcoming,
	}}
	if err := store.Write(context.Background(), events, "v1", "add culto-2026"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if !strings.HasSuffix(string(fake.data), "\n") {
		t.Error("Expected newline-terminated document")
	}
	if !strings.Contains(string(fake.data), "  \"id\": \"culto-2026\"") {
		t.Error("Expected pretty-printed JSON")
	}

	got, token, err := store.Read(context.Background())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if token == "" {
		t.Error("Expected non-empty token after write")
	}
	if len(got) != 1 || got[0].ID != "culto-2026" {
		t.Errorf("Unexpected catalog after round trip: %+v", got)
	}
}
