package provider

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestProvider_DisplayName(t *testing.T) {
	title := "MD"
	tests := []struct {
		name     string
		provider Provider
		want     string
	}{
		{"with title", Provider{FirstName: "Ana", LastName: "Reyes", Title: &title}, "Ana Reyes, MD"},
		{"without title", Provider{FirstName: "Ana", LastName: "Reyes"}, "Ana Reyes"},
		{"empty title pointer", Provider{FirstName: "Ana", LastName: "Reyes", Title: new(string)}, "Ana Reyes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.provider.DisplayName(); got != tt.want {
				t.Errorf("DisplayName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeLanguages(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  []string
	}{
		{"nil defaults to English", nil, []string{"English"}},
		{"empty string defaults", "", []string{"English"}},
		{"json array", `["Spanish","English"]`, []string{"Spanish", "English"}},
		{"double-encoded json array", `"[\"Spanish\",\"English\"]"`, []string{"Spanish", "English"}},
		{"empty json array defaults", `[]`, []string{"English"}},
		{"bare string", "Spanish", []string{"Spanish"}},
		{"comma separated", "Spanish, English", []string{"Spanish", "English"}},
		{"string slice", []string{"Mandarin"}, []string{"Mandarin"}},
		{"interface slice", []interface{}{"Spanish", "English"}, []string{"Spanish", "English"}},
		{"interface slice with junk", []interface{}{"Spanish", 7}, []string{"Spanish"}},
		{"whitespace only defaults", "   ", []string{"English"}},
		{"nil string pointer", (*string)(nil), []string{"English"}},
		{"raw message", json.RawMessage(`["Portuguese"]`), []string{"Portuguese"}},
		{"unexpected type defaults", 42, []string{"English"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeLanguages(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeLanguages(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestProvider_Languages(t *testing.T) {
	raw := `["Spanish"]`
	p := Provider{LanguagesSpoken: &raw}
	if got := p.Languages(); len(got) != 1 || got[0] != "Spanish" {
		t.Errorf("Languages = %v, want [Spanish]", got)
	}

	empty := Provider{}
	if got := empty.Languages(); len(got) != 1 || got[0] != "English" {
		t.Errorf("Languages = %v, want [English]", got)
	}
}
