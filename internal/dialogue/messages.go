package dialogue

import (
	"fmt"
	"sort"
	"strings"

	"github.com/familychurch/eventbot/types"
)

// Fixed operator-facing replies. Markdown is best-effort; the transport
// falls back to plain text if the markup is rejected.

const denialText = "Sorry, this bot only answers to the site administrator."

const guidanceText = "I didn't catch that. Describe what you want to do with the events, " +
	"or send *help* for the command list."

const genericFailureText = "Something went wrong talking to one of the services. " +
	"Nothing was changed — please try again."

const conflictText = "The catalog changed while this action was staged, so nothing " +
	"was written. Please re-issue the action and confirm again."

const helpText = `*Commands*
` + "`newevent`" + ` — create an event; body lines like ` + "`Title PT: Culto`" + `, ` + "`Date: 2026-05-01`" + `
` + "`editevent <id>`" + ` — change fields of an event; body lines as above
` + "`deleteevent <id>`" + ` — remove an event
` + "`listevents`" + ` — show the catalog
` + "`addphoto <event>`" + ` — pick the event the next photo goes to
` + "`help`" + ` — this message

You can also just ask in Portuguese or English ("marca um culto dia 1 de maio").
Mutations are applied after you reply *confirm*; *cancel* discards them.
Send a photo with the event name as caption to set its cover; include "fotos" in the caption to add it to the gallery instead.`

const confirmPrompt = "Reply *confirm* to apply, or *cancel* to discard."

func notFoundText(ref string) string {
	return fmt.Sprintf("I couldn't find an event matching `%s`. Send *listevents* to see the catalog.", ref)
}

func formatList(events []types.Event) string {
	if len(events) == 0 {
		return "The catalog is empty."
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("*%d event(s)*\n", len(events)))
	for _, e := range events {
		marker := ""
		if e.Status == types.StatusPast {
			marker = " (past)"
		}
		fmt.Fprintf(&b, "• `%s` — %s — %s %s%s\n", e.ID, e.TitlePT, e.Date, e.Time, marker)
	}
	return b.String()
}

func previewCreate(draft types.Event) string {
	var b strings.Builder
	b.WriteString("*New event*\n")
	fmt.Fprintf(&b, "id: `%s`\n", draft.ID)
	fmt.Fprintf(&b, "title: %s / %s\n", draft.TitlePT, draft.TitleEN)
	fmt.Fprintf(&b, "date: %s at %s\n", draft.Date, draft.Time)
	if draft.LocationPT != "" {
		fmt.Fprintf(&b, "location: %s\n", draft.LocationPT)
	}
	b.WriteString("\n" + confirmPrompt)
	return b.String()
}

func previewEdit(e types.Event, changes map[string]string) string {
	keys := make([]string, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "*Edit* `%s` (%s)\n", e.ID, e.TitlePT)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s → %s\n", k, changes[k])
	}
	b.WriteString("\n" + confirmPrompt)
	return b.String()
}

func previewDelete(e types.Event) string {
	return fmt.Sprintf("*Delete* `%s` (%s, %s)?\n\n%s", e.ID, e.TitlePT, e.Date, confirmPrompt)
}

func askForReference(events []types.Event, purpose string) string {
	what := "the photo"
	if purpose == types.PurposeEdit {
		what = "that change"
	}
	return fmt.Sprintf("Which event is %s for? Reply with the event id or name.\n\n%s", what, formatList(events))
}
