package types

// Intent actions. Anything the parser cannot validate collapses to
// ActionUnknown rather than erroring.
const (
	ActionCreate  = "create"
	ActionEdit    = "edit"
	ActionDelete  = "delete"
	ActionList    = "list"
	ActionUnknown = "unknown"
)

// Intent is the structured result of parsing an operator message, whether it
// came from the mechanical command parser or from the AI collaborator. The
// EventID of an edit/delete intent is only a hint until the resolver has
// verified it against the live catalog.
type Intent struct {
	Action  string            `json:"action"`
	EventID string            `json:"event_id,omitempty"`
	Changes map[string]string `json:"changes,omitempty"`
}

// TitleHints returns any title candidates carried in the intent's changes,
// used by the resolver when the id hint misses.
func (in Intent) TitleHints() []string {
	var titles []string
	if t := in.Changes["title_pt"]; t != "" {
		titles = append(titles, t)
	}
	if t := in.Changes["title_en"]; t != "" {
		titles = append(titles, t)
	}
	return titles
}
