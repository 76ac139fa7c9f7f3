package main

import "testing"

func TestCommandTree(t *testing.T) {
	tests := []struct {
		name string
		use  string
	}{
		{"serve", serveCmd().Use},
		{"migrate", migrateCmd().Use},
		{"audit", auditCmd().Use},
		{"export", exportCmd().Use},
	}
	for _, tt := range tests {
		if tt.use != tt.name {
			t.Errorf("expected command use %q, got %q", tt.name, tt.use)
		}
	}
}

func TestMigrateSubcommands(t *testing.T) {
	cmd := migrateCmd()
	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Use)
	}
	want := map[string]bool{"up": false, "status": false}
	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for n, found := range want {
		if !found {
			t.Errorf("missing migrate subcommand %q", n)
		}
	}
}

func TestExportFlags(t *testing.T) {
	cmd := exportCmd()
	if cmd.Flags().Lookup("as-of") == nil {
		t.Error("export should accept --as-of")
	}
	if cmd.Flags().Lookup("out") == nil {
		t.Error("export should accept --out")
	}
}
