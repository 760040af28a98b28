package intent

import (
	"strings"

	"github.com/familychurch/eventbot/types"
)

// Structured command keywords.
const (
	CmdNewEvent    = "newevent"
	CmdEditEvent   = "editevent"
	CmdDeleteEvent = "deleteevent"
	CmdListEvents  = "listevents"
	CmdAddPhoto    = "addphoto"
	CmdHelp        = "help"
)

// Command is a mechanically parsed structured command: a first-line keyword,
// an optional inline argument, and optional "key: value" body lines.
type Command struct {
	Name   string
	Arg    string
	Fields map[string]string
}

var commandNames = map[string]bool{
	CmdNewEvent:    true,
	CmdEditEvent:   true,
	CmdDeleteEvent: true,
	CmdListEvents:  true,
	CmdAddPhoto:    true,
	CmdHelp:        true,
}

// Key aliases the operator may type in either language. Unknown keys are
// dropped silently; missing required keys are a validation message, never a
// parse error.
var fieldAliases = map[string]string{
	"title":          "title_pt",
	"titulo":         "title_pt",
	"titulo pt":      "title_pt",
	"title pt":       "title_pt",
	"titulo en":      "title_en",
	"title en":       "title_en",
	"desc":           "desc_pt",
	"descricao":      "desc_pt",
	"description":    "desc_pt",
	"desc pt":        "desc_pt",
	"description pt": "desc_pt",
	"descricao pt":   "desc_pt",
	"desc en":        "desc_en",
	"description en": "desc_en",
	"local":          "location_pt",
	"location":       "location_pt",
	"local pt":       "location_pt",
	"location pt":    "location_pt",
	"local en":       "location_en",
	"location en":    "location_en",
	"date":           "date",
	"data":           "date",
	"time":           "time",
	"hora":           "time",
	"horario":        "time",
	"status":         "status",
	"verse":          "verse",
	"versiculo":      "verse",
}

// ParseCommand recognizes a structured command message. Parsing is purely
// mechanical: trim, lowercase the keyword and keys, split body lines at the
// first colon. It never fails; a non-command message returns ok=false.
func ParseCommand(text string) (Command, bool) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	first := strings.Fields(strings.TrimSpace(lines[0]))
	if len(first) == 0 {
		return Command{}, false
	}

	name := strings.ToLower(strings.TrimPrefix(first[0], "/"))
	if !commandNames[name] {
		return Command{}, false
	}

	cmd := Command{
		Name:   name,
		Arg:    strings.Join(first[1:], " "),
		Fields: map[string]string{},
	}

	for _, line := range lines[1:] {
		key, val, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if canonical, ok := fieldAliases[key]; ok {
			key = canonical
		} else {
			key = strings.ReplaceAll(key, " ", "_")
		}
		if !types.IsEventField(key) {
			continue
		}
		cmd.Fields[key] = strings.TrimSpace(val)
	}

	return cmd, true
}

// Confirm and cancel tokens accepted while a pending action awaits the
// operator's decision.
var confirmTokens = map[string]bool{
	"confirm": true, "yes": true, "sim": true, "ok": true, "confirmar": true,
}

var cancelTokens = map[string]bool{
	"cancel": true, "no": true, "nao": true, "não": true, "cancelar": true,
}

func IsConfirm(text string) bool {
	return confirmTokens[normalizeToken(text)]
}

func IsCancel(text string) bool {
	return cancelTokens[normalizeToken(text)]
}

func normalizeToken(text string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(text), "/"))
}
