package types

// Pending action kinds.
const (
	PendingCreate    = "create"
	PendingEdit      = "edit"
	PendingDelete    = "delete"
	PendingReference = "await_event_reference"
)

// Reference purposes for PendingReference actions.
const (
	PurposeCover   = "cover"
	PurposeGallery = "gallery"
	PurposeEdit    = "edit"
)

// PendingAction is the single staged, unconfirmed mutation for a
// conversation. Staging a new one supersedes the previous one wholesale and
// the record expires on its own after the configured TTL, so a forgotten
// "yes" days later cannot resurrect a stale mutation.
type PendingAction struct {
	Kind    string            `json:"kind"`
	EventID string            `json:"event_id,omitempty"`
	Draft   *Event            `json:"draft,omitempty"`   // create
	Changes map[string]string `json:"changes,omitempty"` // edit

	// PendingReference only: what the reference is for, and the photo
	// waiting for a target when the purpose is cover/gallery.
	Purpose     string `json:"purpose,omitempty"`
	PhotoFileID string `json:"photo_file_id,omitempty"`
}
