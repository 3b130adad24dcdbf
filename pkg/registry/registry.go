package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

// Entry describes one capability tool: a name, a human description used as
// generation-time context, and the category keywords the selector matches
// queries against. Direct entries answer a query on their own, without
// invoking a generative model; Response holds their fixed content.
type Entry struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	Direct      bool     `json:"direct,omitempty"`
	Response    string   `json:"response,omitempty"`
}

// Registry is the static catalog of capability tools, loaded once at process
// start and read-only afterwards.
type Registry struct {
	entries []Entry
}

// Load reads the catalog from a JSON file, or falls back to the built-in
// defaults when no path is configured. A malformed file is a startup error.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read capability registry: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse capability registry: %w", err)
	}
	for i, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("capability registry entry %d has no name", i)
		}
		if e.Direct && e.Response == "" {
			return nil, fmt.Errorf("direct capability %q has no response content", e.Name)
		}
	}

	return &Registry{entries: entries}, nil
}

// Default returns the built-in catalog.
func Default() *Registry {
	return &Registry{entries: []Entry{
		{
			Name:        "wellness-support",
			Description: "Stress management, relaxation and emotional wellbeing guidance.",
			Categories: []string{
				"stress", "stressed", "anxiety", "anxious", "relax", "relaxation",
				"sleep", "overwhelmed", "worry", "worried", "mindfulness",
				"breathing", "mood", "mental",
			},
		},
		{
			Name:        "medication-guide",
			Description: "General information about medication schedules and adherence.",
			Categories: []string{
				"medication", "medications", "medicine", "pill", "pills", "dose",
				"dosage", "prescription", "refill", "tablet", "tablets",
			},
		},
		{
			Name:        "nutrition-guide",
			Description: "Dietary guidance aligned with the patient's care plan.",
			Categories: []string{
				"diet", "food", "meal", "meals", "nutrition", "eat", "eating",
				"sugar", "carbs", "weight", "snack", "snacks",
			},
		},
		{
			Name:        "exercise-planner",
			Description: "Activity and exercise suggestions within the care plan limits.",
			Categories: []string{
				"exercise", "exercises", "workout", "walk", "walking", "activity",
				"fitness", "steps", "stretching", "gym",
			},
		},
		{
			Name:        "care-resources",
			Description: "Directory of support services and helplines.",
			Categories: []string{
				"resources", "resource", "contact", "contacts", "helpline",
				"hotline", "services", "support",
			},
			Direct: true,
			Response: "Here are support services available to you: your care team can be " +
				"reached through the contact page of this app, and general health advice " +
				"lines are listed under Resources. If anything feels urgent, contact your " +
				"clinician directly.",
		},
	}}
}

// Entries returns the catalog in declaration order. The returned slice is a
// copy; the registry itself is never mutated after load.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Find looks up an entry by name.
func (r *Registry) Find(name string) (Entry, bool) {
	for _, e := range r.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Len reports the catalog size.
func (r *Registry) Len() int {
	return len(r.entries)
}
