// Package endpoints holds the HTTP handlers: the Telegram webhook receiver
// and the service status report.
package endpoints

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/familychurch/eventbot/internal/dialogue"
	"github.com/familychurch/eventbot/internal/telegram"
)

// Dispatcher consumes one inbound operator message.
type Dispatcher interface {
	Handle(ctx context.Context, in dialogue.Inbound) error
}

// Deduper remembers processed webhook update ids so transport redeliveries
// are acknowledged without running twice.
type Deduper interface {
	MarkUpdate(ctx context.Context, updateID int64) (bool, error)
}

// Processing is detached from the request context: Telegram only needs the
// ACK, and a slow AI call must not be cancelled by its disconnect.
const handleTimeout = 90 * time.Second

// WebhookHandler receives Telegram updates on /webhook/{secret}. The secret
// path segment is the only authentication on this surface; a mismatch is a
// plain 404 so the route does not confirm its own existence.
func WebhookHandler(secret string, dedup Deduper, dispatch Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["secret"] != secret {
			http.NotFound(w, r)
			return
		}

		var update telegram.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			log.Printf("Webhook: undecodable update: %v", err)
			w.WriteHeader(http.StatusOK)
			return
		}

		// Everything past this point is acknowledged with 200: a non-2xx
		// would make Telegram redeliver the same update in a loop.
		w.WriteHeader(http.StatusOK)

		msg := update.Message
		if msg == nil || msg.From == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
		defer cancel()

		first, err := dedup.MarkUpdate(ctx, update.UpdateID)
		if err != nil {
			log.Printf("Webhook: dedup check failed for update %d: %v", update.UpdateID, err)
			return
		}
		if !first {
			log.Printf("Webhook: skipping redelivered update %d", update.UpdateID)
			return
		}

		in := dialogue.Inbound{
			ChatID:      msg.Chat.ID,
			SenderID:    msg.From.ID,
			Text:        msg.Text,
			Caption:     msg.Caption,
			PhotoFileID: msg.LargestPhoto(),
		}
		if err := dispatch.Handle(ctx, in); err != nil {
			log.Printf("Webhook: handling update %d failed: %v", update.UpdateID, err)
		}
	}
}
