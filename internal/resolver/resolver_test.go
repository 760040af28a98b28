package resolver

import (
	"testing"

	"github.com/familychurch/eventbot/types"
)

func sampleCatalog() []types.Event {
	return []types.Event{
		{ID: "noite-de-oracao-2026", TitlePT: "Noite de Oração", TitleEN: "Prayer Night"},
		{ID: "culto-de-jovens-2026", TitlePT: "Culto de Jovens", TitleEN: "Youth Service"},
	}
}

func TestResolve_ExactID(t *testing.T) {
	e, ok := Resolve(sampleCatalog(), Hint{EventID: "culto-de-jovens-2026"}, "")
	if !ok || e.ID != "culto-de-jovens-2026" {
		t.Fatalf("Expected exact id match, got %+v ok=%v", e, ok)
	}
}

func TestResolve_TruncatedID(t *testing.T) {
	// The AI often returns a clipped id; containment still identifies it.
	e, ok := Resolve(sampleCatalog(), Hint{EventID: "noite-de-oracao"}, "")
	if !ok || e.ID != "noite-de-oracao-2026" {
		t.Fatalf("Expected substring id match, got %+v ok=%v", e, ok)
	}
}

func TestResolve_TitleSubstring(t *testing.T) {
	e, ok := Resolve(sampleCatalog(), Hint{Titles: []string{"prayer night"}}, "")
	if !ok || e.ID != "noite-de-oracao-2026" {
		t.Fatalf("Expected title match, got %+v ok=%v", e, ok)
	}
}

func TestResolve_TokenOverlapWithoutDiacritics(t *testing.T) {
	e, ok := Resolve(sampleCatalog(), Hint{}, "aquela noite de oracao")
	if !ok || e.ID != "noite-de-oracao-2026" {
		t.Fatalf("Expected token overlap match, got %+v ok=%v", e, ok)
	}
}

func TestResolve_SingleTokenDoesNotMeetBar(t *testing.T) {
	// "culto" matches one token of a three-word title; not enough.
	if e, ok := Resolve(sampleCatalog(), Hint{}, "culto"); ok {
		t.Fatalf("Expected no match for single token, got %+v", e)
	}
}

func TestResolve_ShortTitleSingleToken(t *testing.T) {
	events := []types.Event{{ID: "batismo-2026", TitlePT: "Batismo"}}
	e, ok := Resolve(events, Hint{}, "fotos do batismo por favor")
	if !ok || e.ID != "batismo-2026" {
		t.Fatalf("Expected one-word title to match with one token, got %+v ok=%v", e, ok)
	}
}

func TestResolve_IDFragments(t *testing.T) {
	events := []types.Event{{ID: "conferencia-familia-2026", TitlePT: "Conferência"}}
	e, ok := Resolve(events, Hint{}, "apaga conferencia familia")
	if !ok || e.ID != "conferencia-familia-2026" {
		t.Fatalf("Expected id fragment match, got %+v ok=%v", e, ok)
	}
}

func TestResolve_NoMatch(t *testing.T) {
	if e, ok := Resolve(sampleCatalog(), Hint{EventID: "xyz"}, "something else entirely"); ok {
		t.Fatalf("Expected no match, got %+v", e)
	}
}

func TestResolve_CatalogOrderWins(t *testing.T) {
	events := []types.Event{
		{ID: "culto-especial-2026", TitlePT: "Culto Especial"},
		{ID: "culto-especial-2027", TitlePT: "Culto Especial"},
	}
	e, ok := Resolve(events, Hint{}, "o culto especial")
	if !ok || e.ID != "culto-especial-2026" {
		t.Fatalf("Expected first catalog entry to win, got %+v ok=%v", e, ok)
	}
}
