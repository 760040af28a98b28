package endpoints

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/familychurch/eventbot/internal/dialogue"
)

type fakeDispatcher struct {
	handled []dialogue.Inbound
}

func (f *fakeDispatcher) Handle(ctx context.Context, in dialogue.Inbound) error {
	f.handled = append(f.handled, in)
	return nil
}

type fakeDeduper struct {
	seen map[int64]bool
}

func (f *fakeDeduper) MarkUpdate(ctx context.Context, updateID int64) (bool, error) {
	if f.seen == nil {
		f.seen = map[int64]bool{}
	}
	if f.seen[updateID] {
		return false, nil
	}
	f.seen[updateID] = true
	return true, nil
}

func newRouter(dispatch Dispatcher, dedup Deduper) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/webhook/{secret}", WebhookHandler("s3cret", dedup, dispatch)).Methods("POST")
	return r
}

func post(t *testing.T, router *mux.Router, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const updateBody = `{
	"update_id": 101,
	"message": {
		"message_id": 1,
		"from": {"id": 42},
		"chat": {"id": 42},
		"text": "listevents"
	}
}`

func TestWebhookRejectsWrongSecret(t *testing.T) {
	dispatch := &fakeDispatcher{}
	router := newRouter(dispatch, &fakeDeduper{})

	rec := post(t, router, "/webhook/wrong", updateBody)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for wrong secret, got %d", rec.Code)
	}
	if len(dispatch.handled) != 0 {
		t.Error("Expected no dispatch for wrong secret")
	}
}

func TestWebhookDispatchesMessage(t *testing.T) {
	dispatch := &fakeDispatcher{}
	router := newRouter(dispatch, &fakeDeduper{})

	rec := post(t, router, "/webhook/s3cret", updateBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if len(dispatch.handled) != 1 {
		t.Fatalf("Expected one dispatch, got %d", len(dispatch.handled))
	}
	in := dispatch.handled[0]
	if in.ChatID != 42 || in.SenderID != 42 || in.Text != "listevents" {
		t.Errorf("Unexpected inbound: %+v", in)
	}
}

func TestWebhookSkipsRedelivery(t *testing.T) {
	dispatch := &fakeDispatcher{}
	router := newRouter(dispatch, &fakeDeduper{})

	post(t, router, "/webhook/s3cret", updateBody)
	rec := post(t, router, "/webhook/s3cret", updateBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 on redelivery, got %d", rec.Code)
	}
	if len(dispatch.handled) != 1 {
		t.Errorf("Expected redelivered update to be skipped, got %d dispatches", len(dispatch.handled))
	}
}

func TestWebhookAcksGarbage(t *testing.T) {
	dispatch := &fakeDispatcher{}
	router := newRouter(dispatch, &fakeDeduper{})

	rec := post(t, router, "/webhook/s3cret", "{not json")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for undecodable body, got %d", rec.Code)
	}
	if len(dispatch.handled) != 0 {
		t.Error("Expected no dispatch for undecodable body")
	}
}

func TestWebhookIgnoresNonMessageUpdates(t *testing.T) {
	dispatch := &fakeDispatcher{}
	router := newRouter(dispatch, &fakeDeduper{})

	rec := post(t, router, "/webhook/s3cret", `{"update_id": 5}`)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for non-message update, got %d", rec.Code)
	}
	if len(dispatch.handled) != 0 {
		t.Error("Expected no dispatch for non-message update")
	}
}

func TestWebhookExtractsLargestPhoto(t *testing.T) {
	dispatch := &fakeDispatcher{}
	router := newRouter(dispatch, &fakeDeduper{})

	body := `{
		"update_id": 7,
		"message": {
			"from": {"id": 42},
			"chat": {"id": 42},
			"caption": "fotos culto",
			"photo": [
				{"file_id": "small", "width": 90, "height": 60},
				{"file_id": "big", "width": 1280, "height": 960}
			]
		}
	}`
	post(t, router, "/webhook/s3cret", body)
	if len(dispatch.handled) != 1 {
		t.Fatalf("Expected one dispatch, got %d", len(dispatch.handled))
	}
	in := dispatch.handled[0]
	if in.PhotoFileID != "big" || in.Caption != "fotos culto" {
		t.Errorf("Unexpected inbound: %+v", in)
	}
}
