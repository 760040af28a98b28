package utils

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	if got := Normalize("Noite de Oração"); got != "noite de oracao" {
		t.Errorf("Expected 'noite de oracao', got '%s'", got)
	}

	if got := Normalize("Culto de Jovens"); got != "culto de jovens" {
		t.Errorf("Expected 'culto de jovens', got '%s'", got)
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("a Noite de Oração!", 3)
	want := []string{"noite", "oracao"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Noite de Oração":  "noite-de-oracao",
		"Culto":            "culto",
		"  São João 2026 ": "sao-joao-2026",
		"***":              "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q): expected %q, got %q", in, want, got)
		}
	}
}
