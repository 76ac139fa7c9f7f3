package provider

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Provider maps to the provider table. A provider is a clinician owned by the
// practice; rows are created and deactivated by admin workflows.
type Provider struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	FirstName          string    `db:"first_name" json:"first_name"`
	LastName           string    `db:"last_name" json:"last_name"`
	Title              *string   `db:"title" json:"title,omitempty"`
	NPI                *string   `db:"npi" json:"npi,omitempty"`
	IsActive           bool      `db:"is_active" json:"is_active"`
	IsBookable         bool      `db:"is_bookable" json:"is_bookable"`
	AcceptsNewPatients bool      `db:"accepts_new_patients" json:"accepts_new_patients"`
	IsSupervisor       bool      `db:"is_supervisor" json:"is_supervisor"`
	LanguagesSpoken    *string   `db:"languages_spoken" json:"languages_spoken,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName renders the provider's booking-calendar display name.
func (p *Provider) DisplayName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if p.Title != nil && *p.Title != "" {
		return name + ", " + *p.Title
	}
	return name
}

// Languages returns the provider's spoken languages in canonical form.
func (p *Provider) Languages() []string {
	if p.LanguagesSpoken == nil {
		return NormalizeLanguages(nil)
	}
	return NormalizeLanguages(*p.LanguagesSpoken)
}

// DefaultLanguage is assumed when a provider row carries no language data.
const DefaultLanguage = "English"

// NormalizeLanguages converts the languages_spoken field into a canonical
// string slice. Historical rows stored the value inconsistently: as a JSON
// array, as a JSON-encoded string containing an array, or as a bare
// comma-separated string. Absent or empty input defaults to ["English"].
func NormalizeLanguages(value interface{}) []string {
	switch v := value.(type) {
	case nil:
		return []string{DefaultLanguage}
	case []string:
		if out := cleaned(v); len(out) > 0 {
			return out
		}
		return []string{DefaultLanguage}
	case []interface{}:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		if out = cleaned(out); len(out) > 0 {
			return out
		}
		return []string{DefaultLanguage}
	case *string:
		if v == nil {
			return []string{DefaultLanguage}
		}
		return NormalizeLanguages(*v)
	case string:
		return normalizeLanguageString(v)
	case json.RawMessage:
		return normalizeLanguageString(string(v))
	default:
		return []string{DefaultLanguage}
	}
}

func normalizeLanguageString(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{DefaultLanguage}
	}

	// JSON array, possibly double-encoded ('"[\"Spanish\"]"')
	if strings.HasPrefix(s, "[") {
		var arr []string
		if err := json.Unmarshal([]byte(s), &arr); err == nil {
			if out := cleaned(arr); len(out) > 0 {
				return out
			}
			return []string{DefaultLanguage}
		}
	}
	if strings.HasPrefix(s, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(s), &inner); err == nil && inner != s {
			return normalizeLanguageString(inner)
		}
	}

	// Bare string, possibly comma separated
	if out := cleaned(strings.Split(s, ",")); len(out) > 0 {
		return out
	}
	return []string{DefaultLanguage}
}

func cleaned(in []string) []string {
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
