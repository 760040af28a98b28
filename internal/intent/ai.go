package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/familychurch/eventbot/types"
)

// Completer is the AI collaborator: free text in, free text out, no
// structural guarantee on the reply.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

const systemPreamble = `You manage the event catalog of a church website. The operator writes in Portuguese or English. Reply with a single JSON object and nothing else, shaped as:
{"action": "create|edit|delete|list|unknown", "event_id": "...", "title_pt": "...", "title_en": "...", "desc_pt": "...", "desc_en": "...", "location_pt": "...", "location_en": "...", "date": "YYYY-MM-DD", "time": "...", "status": "upcoming|past", "verse": "..."}
Only include fields the operator actually mentioned. For edit and delete, set event_id to the id of the matching existing event. If the request is not about managing events, use action "unknown".

Existing events:
`

// BuildSystemPrompt serializes the current catalog into the system
// instructions so the model can reference real ids.
func BuildSystemPrompt(events []types.Event) string {
	var b strings.Builder
	b.WriteString(systemPreamble)
	if len(events) == 0 {
		b.WriteString("(none)\n")
		return b.String()
	}
	for _, e := range events {
		fmt.Fprintf(&b, "- id: %s | title: %s | date: %s | time: %s\n", e.ID, e.TitlePT, e.Date, e.Time)
	}
	return b.String()
}

// FromText asks the AI collaborator to classify a free-form message. Any
// transport error is returned; any malformed or unrecognized reply collapses
// to an unknown intent, because the model's output is best-effort only.
func FromText(ctx context.Context, ai Completer, events []types.Event, text string) (types.Intent, error) {
	reply, err := ai.Complete(ctx, BuildSystemPrompt(events), text)
	if err != nil {
		return types.Intent{}, fmt.Errorf("ai completion: %w", err)
	}
	return ParseReply(reply), nil
}

// ParseReply extracts the first brace-delimited JSON object from the model's
// reply and validates it into a tagged intent. Nothing here is trusted: a
// hallucinated event_id is only a resolver hint, and a create intent gets
// its date and time normalized to the "unknown" sentinel so the rendering
// side never sees an absent field.
func ParseReply(reply string) types.Intent {
	raw := extractJSON(reply)
	if raw == "" {
		return types.Intent{Action: types.ActionUnknown}
	}

	var fields map[string]string
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		// Models sometimes nest or type fields oddly; one loose pass.
		var loose map[string]any
		if err := json.Unmarshal([]byte(raw), &loose); err != nil {
			log.Printf("Intent: unparseable AI reply: %v", err)
			return types.Intent{Action: types.ActionUnknown}
		}
		fields = map[string]string{}
		for k, v := range loose {
			if s, ok := v.(string); ok {
				fields[k] = s
			}
		}
	}

	in := types.Intent{
		Action:  strings.ToLower(strings.TrimSpace(fields["action"])),
		EventID: strings.TrimSpace(fields["event_id"]),
		Changes: map[string]string{},
	}
	for key, val := range fields {
		if types.IsEventField(key) && strings.TrimSpace(val) != "" {
			in.Changes[key] = strings.TrimSpace(val)
		}
	}

	switch in.Action {
	case types.ActionCreate:
		if in.Changes["title_pt"] == "" && in.Changes["title_en"] == "" {
			return types.Intent{Action: types.ActionUnknown}
		}
		if in.Changes["date"] == "" {
			in.Changes["date"] = types.Unknown
		}
		if in.Changes["time"] == "" {
			in.Changes["time"] = types.Unknown
		}
	case types.ActionEdit:
		if in.EventID == "" && len(in.TitleHints()) == 0 {
			return types.Intent{Action: types.ActionUnknown}
		}
	case types.ActionDelete, types.ActionList:
		// nothing extra to validate
	default:
		return types.Intent{Action: types.ActionUnknown}
	}

	return in
}

// extractJSON returns the first balanced {...} object in s, or "".
func extractJSON(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
