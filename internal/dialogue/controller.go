// Package dialogue is the conversation state machine: it routes every
// inbound operator message, decides whether it is a new intent, a reply to a
// pending question, or a confirmation, and drives the catalog store once a
// mutation is confirmed.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/familychurch/eventbot/internal/catalog"
	"github.com/familychurch/eventbot/internal/intent"
	"github.com/familychurch/eventbot/internal/media"
	"github.com/familychurch/eventbot/internal/resolver"
	"github.com/familychurch/eventbot/types"
	"github.com/familychurch/eventbot/utils"
)

// Inbound is the transport-neutral message envelope the controller consumes.
type Inbound struct {
	ChatID      int64
	SenderID    int64
	Text        string
	Caption     string
	PhotoFileID string
}

// Sender delivers replies to the operator.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// CatalogStore is the versioned event document.
type CatalogStore interface {
	Read(ctx context.Context) ([]types.Event, string, error)
	Write(ctx context.Context, events []types.Event, token, message string) error
}

// PendingStore holds the single staged action per conversation.
type PendingStore interface {
	Stage(ctx context.Context, chatID int64, action types.PendingAction) error
	Get(ctx context.Context, chatID int64) (*types.PendingAction, error)
	Clear(ctx context.Context, chatID int64) error
}

// MediaPipeline commits photos against a resolved target event.
type MediaPipeline interface {
	IngestCover(ctx context.Context, eventID, fileID string) (string, error)
	IngestGallery(ctx context.Context, eventID, fileID string) (string, error)
}

type Controller struct {
	sender     Sender
	ai         intent.Completer
	store      CatalogStore
	pending    PendingStore
	media      MediaPipeline
	operatorID int64
}

func NewController(sender Sender, ai intent.Completer, store CatalogStore, pending PendingStore, media MediaPipeline, operatorID int64) *Controller {
	return &Controller{
		sender:     sender,
		ai:         ai,
		store:      store,
		pending:    pending,
		media:      media,
		operatorID: operatorID,
	}
}

// Handle processes one inbound message end to end. Every failure path ends
// in an operator-visible reply and a stable state; the returned error is for
// logging only and never blocks the webhook acknowledgment.
func (c *Controller) Handle(ctx context.Context, in Inbound) error {
	if in.SenderID != c.operatorID {
		log.Printf("Dialogue: denied sender %d", in.SenderID)
		return c.sender.Send(ctx, in.ChatID, denialText)
	}

	if in.PhotoFileID != "" {
		return c.handlePhoto(ctx, in)
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return c.sender.Send(ctx, in.ChatID, guidanceText)
	}

	staged, err := c.pending.Get(ctx, in.ChatID)
	if err != nil {
		log.Printf("Dialogue: pending lookup failed: %v", err)
		return c.sender.Send(ctx, in.ChatID, genericFailureText)
	}

	if staged != nil {
		if staged.Kind == types.PendingReference {
			return c.handleReference(ctx, in, text, staged)
		}
		switch {
		case intent.IsConfirm(text):
			return c.commit(ctx, in.ChatID, staged)
		case intent.IsCancel(text):
			if err := c.pending.Clear(ctx, in.ChatID); err != nil {
				log.Printf("Dialogue: clear pending failed: %v", err)
			}
			return c.sender.Send(ctx, in.ChatID, "Cancelled. Nothing was changed.")
		}
		// Anything else is evaluated as a fresh intent; staging a new
		// action supersedes the stale one ("last intent wins").
	} else if intent.IsConfirm(text) || intent.IsCancel(text) {
		return c.sender.Send(ctx, in.ChatID, "Nothing is waiting for confirmation.")
	}

	if cmd, ok := intent.ParseCommand(text); ok {
		return c.handleCommand(ctx, in.ChatID, cmd)
	}

	return c.handleFreeText(ctx, in.ChatID, text)
}

// --- structured commands -------------------------------------------------

func (c *Controller) handleCommand(ctx context.Context, chatID int64, cmd intent.Command) error {
	switch cmd.Name {
	case intent.CmdHelp:
		return c.sender.Send(ctx, chatID, helpText)

	case intent.CmdListEvents:
		events, _, err := c.store.Read(ctx)
		if err != nil {
			log.Printf("Dialogue: list read failed: %v", err)
			return c.sender.Send(ctx, chatID, genericFailureText)
		}
		return c.sender.Send(ctx, chatID, formatList(events))

	case intent.CmdNewEvent:
		return c.stageCreate(ctx, chatID, cmd.Fields)

	case intent.CmdEditEvent:
		if cmd.Arg == "" {
			return c.sender.Send(ctx, chatID, "Usage: `editevent <id>` followed by `key: value` lines.")
		}
		if len(cmd.Fields) == 0 {
			return c.sender.Send(ctx, chatID, "Nothing to change — add `key: value` lines below the command.")
		}
		return c.stageEditByID(ctx, chatID, cmd.Arg, cmd.Fields)

	case intent.CmdDeleteEvent:
		if cmd.Arg == "" {
			return c.sender.Send(ctx, chatID, "Usage: `deleteevent <id>`.")
		}
		return c.stageDeleteByID(ctx, chatID, cmd.Arg)

	case intent.CmdAddPhoto:
		return c.handleAddPhoto(ctx, chatID, cmd.Arg)
	}

	return c.sender.Send(ctx, chatID, guidanceText)
}

func (c *Controller) stageCreate(ctx context.Context, chatID int64, fields map[string]string) error {
	if fields["title_pt"] == "" && fields["title_en"] == "" {
		return c.sender.Send(ctx, chatID, "An event needs at least a title, e.g. `Title PT: Culto`.")
	}

	events, _, err := c.store.Read(ctx)
	if err != nil {
		log.Printf("Dialogue: create read failed: %v", err)
		return c.sender.Send(ctx, chatID, genericFailureText)
	}

	title := fields["title_pt"]
	if title == "" {
		title = fields["title_en"]
	}

	draft := types.Event{
		Date:   types.Unknown,
		Time:   types.Unknown,
		Status: types.StatusUpcoming,
	}
	draft.Apply(fields)
	if draft.Date == "" {
		draft.Date = types.Unknown
	}
	if draft.Time == "" {
		draft.Time = types.Unknown
	}
	draft.Status = types.StatusUpcoming
	draft.ID = utils.NewEventID(title, draft.Date, func(id string) bool {
		return types.FindEvent(events, id) >= 0
	})

	action := types.PendingAction{Kind: types.PendingCreate, EventID: draft.ID, Draft: &draft}
	if err := c.pending.Stage(ctx, chatID, action); err != nil {
		log.Printf("Dialogue: stage create failed: %v", err)
		return c.sender.Send(ctx, chatID, genericFailureText)
	}
	return c.sender.Send(ctx, chatID, previewCreate(draft))
}

func (c *Controller) stageEditByID(ctx context.Context, chatID int64, id string, changes map[string]string) error {
	events, _, err := c.store.Read(ctx)
	if err != nil {
		log.Printf("Dialogue: edit read failed: %v", err)
		return c.sender.Send(ctx, chatID, genericFailureText)
	}

	idx := types.FindEvent(events, id)
	if idx < 0 {
		return c.sender.Send(ctx, chatID, notFoundText(id))
	}

	action := types.PendingAction{Kind: types.PendingEdit, EventID: id, Changes: changes}
	if err := c.pending.Stage(ctx, chatID, action); err != nil {
		log.Printf("Dialogue: stage edit failed: %v", err)
		return c.sender.Send(ctx, chatID, genericFailureText)
	}
	return c.sender.Send(ctx, chatID, previewEdit(events[idx], changes))
}

func (c *Controller) stageDeleteByID(ctx context.Context, chatID int64, id string) error {
	events, _, err := c.store.Read(ctx)
	if err != nil {
		log.Printf("Dialogue: delete read failed: %v", err)
		return c.sender.Send(ctx, chatID, genericFailureText)
	}

	idx := types.FindEvent(events, id)
	if idx < 0 {
		return c.sender.Send(ctx, chatID, notFoundText(id))
	}

	action := types.PendingAction{Kind: types.PendingDelete, EventID: id}
	if err := c.pending.Stage(ctx, chatID, action); err != nil {
		log.Printf("Dialogue: stage delete failed: %v", err)
		return c.sender.Send(ctx, chatID, genericFailureText)
	}
	return c.sender.Send(ctx, chatID, previewDelete(events[idx]))
}

func (c *Controller) handleAddPhoto(ctx context.Context, chatID int64, ref string) error {
	events, _, err := c.store.Read(ctx)
	if err != nil {
		log.Printf("Dialogue: addphoto read failed: %v", err)
		return c.sender.Send(ctx, chatID, genericFailureText)
	}

	if ref == "" {
		return c.sender.Send(ctx, chatID, askForReference(events, types.PurposeGallery))
	}

	e, ok := resolver.Resolve(events, resolver.Hint{EventID: ref}, ref)
	if !ok {
		return c.sender.Send(ctx, chatID, notFoundText(ref))
	}

	action := types.PendingAction{
		Kind:    types.PendingReference,
		EventID: e.ID,
		Purpose: types.PurposeGallery,
	}
	if err := c.pending.Stage(ctx, chatID, action); err != nil {
		log.Printf("Dialogue: stage addphoto failed: %v", err)
		return c.sender.Send(ctx, chatID, genericFailureText)
	}
	return c.sender.Send(ctx, chatID, fmt.Sprintf("Send the photo for `%s` now.", e.ID))
}

// --- free text via the AI collaborator -----------------------------------

func (c *Controller) handleFreeText(ctx context.Context, chatID int64, text string) error {
	events, _, err := c.store.Read(ctx)
	if err != nil {
		log.Printf("Dialogue: catalog read failed: %v", err)
		return c.sender.Send(ctx, chatID, genericFailureText)
	}

	in, err := intent.FromText(ctx, c.ai, events, text)
	if err != nil {
		log.Printf("Dialogue: %v", err)
		return c.sender.Send(ctx, chatID, genericFailureText)
	}

	switch in.Action {
	case types.ActionList:
		return c.sender.Send(ctx, chatID, formatList(events))

	case types.ActionCreate:
		return c.stageCreate(ctx, chatID, in.Changes)

	case types.ActionEdit:
		// The id came from the model and may be hallucinated; only the
		// resolver's verdict counts.
		e, ok := resolver.Resolve(events, resolver.Hint{EventID: in.EventID, Titles: in.TitleHints()}, text)
		if !ok {
			if len(in.Changes) == 0 {
				return c.sender.Send(ctx, chatID, notFoundText(text))
			}
			action := types.PendingAction{
				Kind:    types.PendingReference,
				Purpose: types.PurposeEdit,
				Changes: in.Changes,
			}
			if err := c.pending.Stage(ctx, chatID, action); err != nil {
				log.Printf("Dialogue: stage reference failed: %v", err)
				return c.sender.Send(ctx, chatID, genericFailureText)
			}
			return c.sender.Send(ctx, chatID, askForReference(events, types.PurposeEdit))
		}
		return c.stageEditByID(ctx, chatID, e.ID, in.Changes)

	case types.ActionDelete:
		e, ok := resolver.Resolve(events, resolver.Hint{EventID: in.EventID, Titles: in.TitleHints()}, text)
		if !ok {
			return c.sender.Send(ctx, chatID, notFoundText(text))
		}
		return c.stageDeleteByID(ctx, chatID, e.ID)
	}

	return c.sender.Send(ctx, chatID, guidanceText)
}

// --- pending-state replies ------------------------------------------------

// handleReference consumes a reply while the conversation waits for an event
// reference, either to finish a photo upload or to promote a staged edit.
func (c *Controller) handleReference(ctx context.Context, in Inbound, text string, staged *types.PendingAction) error {
	if intent.IsCancel(text) {
		if err := c.pending.Clear(ctx, in.ChatID); err != nil {
			log.Printf("Dialogue: clear pending failed: %v", err)
		}
		return c.sender.Send(ctx, in.ChatID, "Cancelled. Nothing was changed.")
	}

	events, _, err := c.store.Read(ctx)
	if err != nil {
		log.Printf("Dialogue: reference read failed: %v", err)
		return c.sender.Send(ctx, in.ChatID, genericFailureText)
	}

	e, ok := resolver.Resolve(events, resolver.Hint{EventID: text}, text)
	if !ok {
		// Stay in the same state and re-prompt with the candidates.
		return c.sender.Send(ctx, in.ChatID, askForReference(events, staged.Purpose))
	}

	switch staged.Purpose {
	case types.PurposeEdit:
		return c.stageEditByID(ctx, in.ChatID, e.ID, staged.Changes)

	case types.PurposeCover, types.PurposeGallery:
		if staged.PhotoFileID == "" {
			// addphoto flow: remember the target, wait for the photo.
			staged.EventID = e.ID
			if err := c.pending.Stage(ctx, in.ChatID, *staged); err != nil {
				log.Printf("Dialogue: restage reference failed: %v", err)
				return c.sender.Send(ctx, in.ChatID, genericFailureText)
			}
			return c.sender.Send(ctx, in.ChatID, fmt.Sprintf("Send the photo for `%s` now.", e.ID))
		}
		if err := c.pending.Clear(ctx, in.ChatID); err != nil {
			log.Printf("Dialogue: clear pending failed: %v", err)
		}
		return c.ingest(ctx, in.ChatID, e.ID, staged.Purpose, staged.PhotoFileID)
	}

	return c.sender.Send(ctx, in.ChatID, guidanceText)
}

// commit applies a confirmed pending action with a fresh read-modify-write;
// the catalog is never reused from the staging moment because the
// confirmation gap can be arbitrarily long.
func (c *Controller) commit(ctx context.Context, chatID int64, staged *types.PendingAction) error {
	if err := c.pending.Clear(ctx, chatID); err != nil {
		log.Printf("Dialogue: clear pending failed: %v", err)
	}

	events, token, err := c.store.Read(ctx)
	if err != nil {
		log.Printf("Dialogue: commit read failed: %v", err)
		return c.sender.Send(ctx, chatID, genericFailureText)
	}

	var message, reply string
	switch staged.Kind {
	case types.PendingCreate:
		if staged.Draft == nil {
			return c.sender.Send(ctx, chatID, genericFailureText)
		}
		if types.FindEvent(events, staged.Draft.ID) >= 0 {
			return c.sender.Send(ctx, chatID, fmt.Sprintf("An event with id `%s` appeared in the meantime. Please re-issue the action.", staged.Draft.ID))
		}
		events = append(events, *staged.Draft)
		message = "Create event " + staged.Draft.ID
		reply = fmt.Sprintf("Created `%s`.", staged.Draft.ID)

	case types.PendingEdit:
		idx := types.FindEvent(events, staged.EventID)
		if idx < 0 {
			return c.sender.Send(ctx, chatID, notFoundText(staged.EventID))
		}
		events[idx].Apply(staged.Changes)
		message = "Edit event " + staged.EventID
		reply = fmt.Sprintf("Updated `%s`.", staged.EventID)

	case types.PendingDelete:
		idx := types.FindEvent(events, staged.EventID)
		if idx < 0 {
			return c.sender.Send(ctx, chatID, notFoundText(staged.EventID))
		}
		events = append(events[:idx], events[idx+1:]...)
		message = "Delete event " + staged.EventID
		reply = fmt.Sprintf("Deleted `%s`.", staged.EventID)

	default:
		return c.sender.Send(ctx, chatID, guidanceText)
	}

	if err := c.store.Write(ctx, events, token, message); err != nil {
		if errors.Is(err, catalog.ErrConflict) {
			return c.sender.Send(ctx, chatID, conflictText)
		}
		log.Printf("Dialogue: commit write failed: %v", err)
		return c.sender.Send(ctx, chatID, genericFailureText)
	}

	log.Printf("Dialogue: committed %s", message)
	return c.sender.Send(ctx, chatID, reply)
}

// --- photos ---------------------------------------------------------------

func (c *Controller) handlePhoto(ctx context.Context, in Inbound) error {
	staged, err := c.pending.Get(ctx, in.ChatID)
	if err != nil {
		log.Printf("Dialogue: pending lookup failed: %v", err)
		return c.sender.Send(ctx, in.ChatID, genericFailureText)
	}

	// Target pre-selected via addphoto.
	if staged != nil && staged.Kind == types.PendingReference && staged.EventID != "" {
		if err := c.pending.Clear(ctx, in.ChatID); err != nil {
			log.Printf("Dialogue: clear pending failed: %v", err)
		}
		return c.ingest(ctx, in.ChatID, staged.EventID, staged.Purpose, in.PhotoFileID)
	}

	query, purpose := media.ParseCaption(in.Caption)

	events, _, err := c.store.Read(ctx)
	if err != nil {
		log.Printf("Dialogue: photo read failed: %v", err)
		return c.sender.Send(ctx, in.ChatID, genericFailureText)
	}

	if query != "" {
		if e, ok := resolver.Resolve(events, resolver.Hint{EventID: query}, query); ok {
			return c.ingest(ctx, in.ChatID, e.ID, purpose, in.PhotoFileID)
		}
	}

	// No usable caption: hold the photo and ask for the event.
	action := types.PendingAction{
		Kind:        types.PendingReference,
		Purpose:     purpose,
		PhotoFileID: in.PhotoFileID,
	}
	if err := c.pending.Stage(ctx, in.ChatID, action); err != nil {
		log.Printf("Dialogue: stage photo reference failed: %v", err)
		return c.sender.Send(ctx, in.ChatID, genericFailureText)
	}
	return c.sender.Send(ctx, in.ChatID, askForReference(events, purpose))
}

func (c *Controller) ingest(ctx context.Context, chatID int64, eventID, purpose, fileID string) error {
	var path string
	var err error
	if purpose == types.PurposeGallery {
		path, err = c.media.IngestGallery(ctx, eventID, fileID)
	} else {
		path, err = c.media.IngestCover(ctx, eventID, fileID)
	}

	if errors.Is(err, media.ErrEventGone) {
		return c.sender.Send(ctx, chatID, notFoundText(eventID))
	}
	if errors.Is(err, catalog.ErrConflict) {
		return c.sender.Send(ctx, chatID, conflictText)
	}
	if err != nil {
		log.Printf("Dialogue: photo ingest failed: %v", err)
		return c.sender.Send(ctx, chatID, genericFailureText)
	}

	return c.sender.Send(ctx, chatID, fmt.Sprintf("Saved `%s`.", path))
}
