package media

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/familychurch/eventbot/internal/github"
	"github.com/familychurch/eventbot/types"
)

func TestParseCaption_Cover(t *testing.T) {
	query, purpose := ParseCaption("noite de oracao")
	if purpose != types.PurposeCover {
		t.Errorf("Expected cover purpose, got '%s'", purpose)
	}
	if query != "noite de oracao" {
		t.Errorf("Expected caption untouched, got '%s'", query)
	}
}

func TestParseCaption_GalleryKeywordStripped(t *testing.T) {
	query, purpose := ParseCaption("fotos noite de oracao")
	if purpose != types.PurposeGallery {
		t.Errorf("Expected gallery purpose, got '%s'", purpose)
	}
	if query != "noite de oracao" {
		t.Errorf("Expected keyword stripped, got '%s'", query)
	}
}

func TestParseCaption_Empty(t *testing.T) {
	query, purpose := ParseCaption("")
	if query != "" || purpose != types.PurposeCover {
		t.Errorf("Unexpected parse: query='%s' purpose='%s'", query, purpose)
	}
}

func TestExtension(t *testing.T) {
	cases := map[string]string{
		"photos/file_1.jpg":  "jpg",
		"photos/file_2.jpeg": "jpg",
		"photos/file_3.PNG":  "png",
		"photos/file_4":      "jpg",
	}
	for in, want := range cases {
		if got := Extension(in); got != want {
			t.Errorf("Extension(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestToJPEG_RescalesLargeImage(t *testing.T) {
	var buf bytes.Buffer
	src := image.NewRGBA(image.Rect(0, 0, 3200, 1600))
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	out, err := ToJPEG(buf.Bytes())
	if err != nil {
		t.Fatalf("ToJPEG failed: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("Output is not a JPEG: %v", err)
	}
	if img.Bounds().Dx() != maxGalleryDim {
		t.Errorf("Expected width %d, got %d", maxGalleryDim, img.Bounds().Dx())
	}
	if img.Bounds().Dy() != maxGalleryDim/2 {
		t.Errorf("Expected height %d, got %d", maxGalleryDim/2, img.Bounds().Dy())
	}
}

// fakes

type fakeFiles struct {
	data []byte
	path string
}

func (f *fakeFiles) DownloadFile(ctx context.Context, fileID string) ([]byte, string, error) {
	return f.data, f.path, nil
}

type fakeBlobs struct {
	files map[string][]byte
	shas  map[string]string
	puts  []string
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{files: map[string][]byte{}, shas: map[string]string{}}
}

func (f *fakeBlobs) GetFile(ctx context.Context, path, ref string) ([]byte, string, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, "", github.ErrNotFound
	}
	return data, f.shas[path], nil
}

func (f *fakeBlobs) PutFile(ctx context.Context, path string, content []byte, sha, branch, message string) error {
	if existing, ok := f.shas[path]; ok && existing != sha {
		return github.ErrConflict
	}
	f.files[path] = content
	f.shas[path] = "sha-" + path
	f.puts = append(f.puts, path)
	return nil
}

type fakeCatalog struct {
	events []types.Event
	token  string
	writes int
}

func (f *fakeCatalog) Read(ctx context.Context) ([]types.Event, string, error) {
	out := make([]types.Event, len(f.events))
	copy(out, f.events)
	return out, f.token, nil
}

func (f *fakeCatalog) Write(ctx context.Context, events []types.Event, token, message string) error {
	if token != f.token {
		return github.ErrConflict
	}
	f.events = events
	f.token = "v-next"
	f.writes++
	return nil
}

func smallJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestIngestCover_CommitsAndPatches(t *testing.T) {
	blobs := newFakeBlobs()
	cat := &fakeCatalog{events: []types.Event{{ID: "culto-2026", TitlePT: "Culto"}}, token: "v1"}
	p := NewPipeline(&fakeFiles{data: smallJPEG(t), path: "f/p.jpg"}, blobs, cat, "main", "images/events/")

	path, err := p.IngestCover(context.Background(), "culto-2026", "file-1")
	if err != nil {
		t.Fatalf("IngestCover failed: %v", err)
	}
	if path != "images/events/culto-2026/cover.jpg" {
		t.Errorf("Unexpected cover path: %s", path)
	}
	if cat.events[0].CoverImage != path {
		t.Errorf("Expected catalog patched with cover path, got '%s'", cat.events[0].CoverImage)
	}
}

func TestIngestCover_OverwritesExisting(t *testing.T) {
	blobs := newFakeBlobs()
	blobs.files["images/events/culto-2026/cover.jpg"] = []byte("old")
	blobs.shas["images/events/culto-2026/cover.jpg"] = "sha-images/events/culto-2026/cover.jpg"

	cat := &fakeCatalog{events: []types.Event{{ID: "culto-2026"}}, token: "v1"}
	p := NewPipeline(&fakeFiles{data: smallJPEG(t), path: "f/p.jpg"}, blobs, cat, "main", "images/events")

	if _, err := p.IngestCover(context.Background(), "culto-2026", "file-1"); err != nil {
		t.Fatalf("Expected overwrite with existing sha to succeed: %v", err)
	}
}

func TestIngestGallery_SequentialSlots(t *testing.T) {
	blobs := newFakeBlobs()
	cat := &fakeCatalog{
		events: []types.Event{{ID: "culto-2026", Photos: []string{"images/events/culto-2026/photo-1.jpg"}}},
		token:  "v1",
	}
	p := NewPipeline(&fakeFiles{data: smallJPEG(t), path: "f/p.jpg"}, blobs, cat, "main", "images/events")

	path, err := p.IngestGallery(context.Background(), "culto-2026", "file-2")
	if err != nil {
		t.Fatalf("IngestGallery failed: %v", err)
	}
	if !strings.HasSuffix(path, "photo-2.jpg") {
		t.Errorf("Expected slot 2 from gallery length, got %s", path)
	}
	if len(cat.events[0].Photos) != 2 {
		t.Errorf("Expected 2 photos in catalog, got %d", len(cat.events[0].Photos))
	}
}

func TestIngestGallery_EventGone(t *testing.T) {
	p := NewPipeline(&fakeFiles{data: smallJPEG(t), path: "f/p.jpg"}, newFakeBlobs(), &fakeCatalog{token: "v1"}, "main", "images/events")

	if _, err := p.IngestGallery(context.Background(), "missing", "file-1"); err != ErrEventGone {
		t.Fatalf("Expected ErrEventGone, got %v", err)
	}
}
