package registry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFallsBackToDefaults(t *testing.T) {
	reg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if reg.Len() == 0 {
		t.Fatal("default catalog is empty")
	}

	for _, name := range []string{
		"wellness-support", "medication-guide", "nutrition-guide",
		"exercise-planner", "care-resources",
	} {
		if _, ok := reg.Find(name); !ok {
			t.Errorf("default catalog missing %q", name)
		}
	}
}

func TestDefaultDirectEntriesCarryContent(t *testing.T) {
	for _, e := range Default().Entries() {
		if e.Direct && e.Response == "" {
			t.Errorf("direct entry %q has no response content", e.Name)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	content := `[
		{"name": "hydration-guide", "description": "Fluid intake guidance.", "categories": ["water", "hydration"]},
		{"name": "clinic-hours", "description": "Opening hours.", "categories": ["hours"], "direct": true, "response": "The clinic is open 9-5."}
	]`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("Len = %d, want 2", reg.Len())
	}

	entry, ok := reg.Find("clinic-hours")
	if !ok {
		t.Fatal("clinic-hours not found")
	}
	if !entry.Direct || entry.Response == "" {
		t.Errorf("direct entry not preserved: %+v", entry)
	}
}

func TestLoadRejectsBadCatalogs(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: `{{{`},
		{name: "entry without name", content: `[{"description": "x", "categories": ["y"]}]`},
		{name: "direct without response", content: `[{"name": "t", "categories": ["y"], "direct": true}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "registry.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load accepted a bad catalog")
			}
		})
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Load accepted a missing file")
	}
}

func TestEntriesReturnsACopy(t *testing.T) {
	reg := Default()
	entries := reg.Entries()
	entries[0].Name = "mutated"

	if reg.Entries()[0].Name == "mutated" {
		t.Error("mutating the returned slice changed the registry")
	}
}
