// Package media binds inbound photos to catalog events: a photo becomes
// either the event's cover image or the next slot in its gallery, committed
// to the blob store first and then patched into the catalog document.
package media

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/familychurch/eventbot/internal/catalog"
	"github.com/familychurch/eventbot/internal/github"
	"github.com/familychurch/eventbot/types"
)

// ErrEventGone is returned when the target event vanished between photo
// upload and catalog patch.
var ErrEventGone = errors.New("media: target event no longer exists")

// FileDownloader fetches the raw bytes of an uploaded photo.
type FileDownloader interface {
	DownloadFile(ctx context.Context, fileID string) ([]byte, string, error)
}

// CatalogStore is the slice of the event store the pipeline needs.
type CatalogStore interface {
	Read(ctx context.Context) ([]types.Event, string, error)
	Write(ctx context.Context, events []types.Event, token, message string) error
}

type Pipeline struct {
	files    FileDownloader
	contents catalog.ContentsClient
	store    CatalogStore
	branch   string
	prefix   string
}

func NewPipeline(files FileDownloader, contents catalog.ContentsClient, store CatalogStore, branch, prefix string) *Pipeline {
	return &Pipeline{
		files:    files,
		contents: contents,
		store:    store,
		branch:   branch,
		prefix:   strings.TrimSuffix(prefix, "/"),
	}
}

// Caption keywords that mark a photo for the gallery instead of the cover.
var galleryKeywords = []string{"gallery", "galeria", "galería", "fotos", "photos"}

// ParseCaption splits a photo caption into the event-reference query and the
// destination. A caption containing a gallery keyword targets the gallery
// with the keyword stripped; anything else targets the cover slot.
func ParseCaption(caption string) (query, purpose string) {
	purpose = types.PurposeCover
	fields := strings.Fields(caption)
	kept := fields[:0]
	for _, f := range fields {
		isKeyword := false
		for _, kw := range galleryKeywords {
			if strings.EqualFold(f, kw) {
				isKeyword = true
				break
			}
		}
		if isKeyword {
			purpose = types.PurposeGallery
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " "), purpose
}

// IngestCover commits the photo as the event's cover image, overwriting any
// previous cover at the fixed per-event path, then patches the catalog.
func (p *Pipeline) IngestCover(ctx context.Context, eventID, fileID string) (string, error) {
	data, filePath, err := p.files.DownloadFile(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("download photo: %w", err)
	}

	path := fmt.Sprintf("%s/%s/cover.%s", p.prefix, eventID, Extension(filePath))

	// A previous cover may exist at the same path; reuse its SHA so the
	// commit is an update rather than a blind create.
	sha := ""
	if _, existing, err := p.contents.GetFile(ctx, path, p.branch); err == nil {
		sha = existing
	} else if !errors.Is(err, github.ErrNotFound) {
		return "", fmt.Errorf("check existing cover: %w", err)
	}

	msg := fmt.Sprintf("Update cover image for %s", eventID)
	if err := p.contents.PutFile(ctx, path, data, sha, p.branch, msg); err != nil {
		return "", fmt.Errorf("commit cover: %w", err)
	}

	if err := p.patchCatalog(ctx, eventID, msg, func(e *types.Event) {
		e.CoverImage = path
	}); err != nil {
		return "", err
	}

	log.Printf("Media: committed cover %s", path)
	return path, nil
}

// IngestGallery appends the photo to the event's gallery. The catalog is
// re-read immediately before the append so the slot number always derives
// from the freshest gallery length.
func (p *Pipeline) IngestGallery(ctx context.Context, eventID, fileID string) (string, error) {
	data, _, err := p.files.DownloadFile(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("download photo: %w", err)
	}

	jpegData, err := ToJPEG(data)
	if err != nil {
		return "", fmt.Errorf("convert photo: %w", err)
	}

	events, token, err := p.store.Read(ctx)
	if err != nil {
		return "", err
	}
	idx := types.FindEvent(events, eventID)
	if idx < 0 {
		return "", ErrEventGone
	}

	slot := len(events[idx].Photos) + 1
	path := fmt.Sprintf("%s/%s/photo-%d.jpg", p.prefix, eventID, slot)

	msg := fmt.Sprintf("Add photo %d to %s", slot, eventID)
	if err := p.contents.PutFile(ctx, path, jpegData, "", p.branch, msg); err != nil {
		return "", fmt.Errorf("commit photo: %w", err)
	}

	events[idx].Photos = append(events[idx].Photos, path)
	if err := p.store.Write(ctx, events, token, msg); err != nil {
		return "", err
	}

	log.Printf("Media: committed gallery photo %s", path)
	return path, nil
}

// patchCatalog applies a single-field mutation with a fresh read-write pair.
func (p *Pipeline) patchCatalog(ctx context.Context, eventID, message string, patch func(*types.Event)) error {
	events, token, err := p.store.Read(ctx)
	if err != nil {
		return err
	}
	idx := types.FindEvent(events, eventID)
	if idx < 0 {
		return ErrEventGone
	}
	patch(&events[idx])
	return p.store.Write(ctx, events, token, message)
}
