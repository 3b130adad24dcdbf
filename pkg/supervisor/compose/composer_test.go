package compose

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestComposeShapeIsStableAcrossPaths(t *testing.T) {
	c := NewComposer()
	started := time.Now()

	paths := []*Response{
		c.Compose("sess-1", "crisis text", ModelNone, StatusNotRequired, nil, started),
		c.Compose("sess-1", "tool text", ModelToolBased, StatusNotRequired, []string{"care-resources"}, started),
		c.Compose("sess-1", "model text", "primary-model", StatusNotRequired, []string{"nutrition-guide"}, started),
		c.Compose("sess-1", "validated text", "dual:a+b", StatusApproved, []string{"wellness-support"}, started),
	}

	for _, resp := range paths {
		data, err := json.Marshal(resp)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		for _, field := range []string{"response", "sessionId", "modelUsed", "validationStatus", "toolsUsed", "processingTimeMs"} {
			if !strings.Contains(string(data), `"`+field+`"`) {
				t.Errorf("serialized response missing %q: %s", field, data)
			}
		}
	}
}

func TestComposeNeverEmitsNullToolsUsed(t *testing.T) {
	resp := NewComposer().Compose("sess-1", "text", ModelNone, StatusNotRequired, nil, time.Now())

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), `"toolsUsed":null`) {
		t.Errorf("toolsUsed serialized as null: %s", data)
	}
	if !strings.Contains(string(data), `"toolsUsed":[]`) {
		t.Errorf("toolsUsed not an empty array: %s", data)
	}
}

func TestComposeMeasuresProcessingTime(t *testing.T) {
	started := time.Now().Add(-25 * time.Millisecond)
	resp := NewComposer().Compose("sess-1", "text", ModelNone, StatusNotRequired, nil, started)

	if resp.ProcessingTimeMs < 25 {
		t.Errorf("ProcessingTimeMs = %d, want at least 25", resp.ProcessingTimeMs)
	}
}
