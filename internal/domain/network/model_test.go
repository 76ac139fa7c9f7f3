package network

import "testing"

func TestNetworkStatus_Valid(t *testing.T) {
	tests := []struct {
		status NetworkStatus
		want   bool
	}{
		{StatusInNetwork, true},
		{StatusSupervised, true},
		{"out_of_network", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := tt.status.Valid(); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestSupervisionLevel_Valid(t *testing.T) {
	tests := []struct {
		level SupervisionLevel
		want  bool
	}{
		{LevelSignOffOnly, true},
		{LevelFirstVisitInPerson, true},
		{LevelCoVisitRequired, true},
		{"remote_only", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := tt.level.Valid(); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
