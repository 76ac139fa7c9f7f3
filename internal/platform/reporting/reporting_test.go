package reporting

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/moonlitpsych/bookability/internal/domain/network"
)

func TestPredefinedMeasures(t *testing.T) {
	if len(PredefinedMeasures) != 5 {
		t.Fatalf("expected 5 predefined measures, got %d", len(PredefinedMeasures))
	}

	expectedIDs := []string{
		"relationship-count-by-status",
		"payer-count-by-type",
		"supervised-load-by-attending",
		"expiring-within-90-days",
		"bookable-provider-count",
	}

	for i, expectedID := range expectedIDs {
		if PredefinedMeasures[i].ID != expectedID {
			t.Errorf("expected measure[%d].ID = %s, got %s", i, expectedID, PredefinedMeasures[i].ID)
		}
	}
}

func TestPredefinedMeasures_HaveSQL(t *testing.T) {
	for _, m := range PredefinedMeasures {
		if m.SQL == "" {
			t.Errorf("measure %s has empty SQL", m.ID)
		}
		if m.Name == "" {
			t.Errorf("measure %s has empty name", m.ID)
		}
		if m.Description == "" {
			t.Errorf("measure %s has empty description", m.ID)
		}
	}
}

func TestFindMeasure_Exists(t *testing.T) {
	m := FindMeasure("payer-count-by-type")
	if m == nil {
		t.Fatal("expected to find payer-count-by-type measure")
	}
	if m.Name != "Payer Count by Type" {
		t.Errorf("expected 'Payer Count by Type', got %s", m.Name)
	}
}

func TestFindMeasure_NotFound(t *testing.T) {
	if m := FindMeasure("nonexistent"); m != nil {
		t.Error("expected nil for nonexistent measure")
	}
}

func TestWriteCoverageCSV(t *testing.T) {
	attending := "Mark Olsen"
	attendingID := uuid.New()
	level := network.LevelCoVisitRequired
	eff := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	res := &network.Resolution{
		ReferenceDate: time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
		Mode:          network.ModeAsOfToday,
		Records: []network.BookableRecord{
			{
				RelationshipID:     uuid.New(),
				ProviderName:       "Ana Reyes, MD",
				PayerName:          "Molina",
				Via:                network.ViaDirect,
				AcceptsNewPatients: true,
				ProviderIsActive:   true,
				ProviderIsBookable: true,
				EffectiveDate:      &eff,
			},
			{
				RelationshipID:      uuid.New(),
				ProviderName:        "Ben Cho",
				PayerName:           "Molina",
				Via:                 network.ViaSupervised,
				AttendingProviderID: &attendingID,
				AttendingName:       &attending,
				SupervisionLevel:    &level,
				RequiresCoVisit:     true,
			},
		},
	}

	var buf bytes.Buffer
	if err := WriteCoverageCSV(&buf, res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "relationship_id" {
		t.Errorf("unexpected header: %v", rows[0])
	}

	direct := rows[1]
	if direct[1] != "Ana Reyes, MD" || direct[3] != "direct" {
		t.Errorf("unexpected direct row: %v", direct)
	}
	if direct[8] != "true" || direct[9] != "true" {
		t.Errorf("unexpected provider flag columns: %v", direct)
	}
	if direct[10] != "2025-01-01" {
		t.Errorf("expected ISO effective date, got %s", direct[10])
	}
	if direct[4] != "" {
		t.Errorf("direct row should have an empty attending column, got %q", direct[4])
	}

	supervised := rows[2]
	if supervised[4] != "Mark Olsen" {
		t.Errorf("expected attending name, got %q", supervised[4])
	}
	if supervised[5] != "co_visit_required" || supervised[6] != "true" {
		t.Errorf("unexpected supervision columns: %v", supervised)
	}
}

func TestWriteCoverageCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCoverageCSV(&buf, &network.Resolution{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected only the header row, got %d", len(rows))
	}
}

func TestNewHandler(t *testing.T) {
	h := NewHandler(nil, nil)
	if h == nil {
		t.Fatal("expected non-nil handler")
	}
}
