package compose

import "time"

// ValidationStatus is the per-turn validation outcome.
type ValidationStatus string

const (
	StatusNotRequired ValidationStatus = "not-required"
	StatusApproved    ValidationStatus = "validated-approved"
	StatusConcerns    ValidationStatus = "validated-with-concerns"
	StatusRejected    ValidationStatus = "validated-rejected"
)

// Model labels for the non-generative paths.
const (
	ModelNone      = "none"
	ModelToolBased = "tool-based"
)

// Response is the one stable contract exposed to every caller, identical
// across the crisis, tool, single-model and dual-validation paths. Callers
// never branch on which internal path executed.
type Response struct {
	Response         string           `json:"response"`
	SessionID        string           `json:"sessionId"`
	ModelUsed        string           `json:"modelUsed"`
	ValidationStatus ValidationStatus `json:"validationStatus"`
	ToolsUsed        []string         `json:"toolsUsed"`
	ProcessingTimeMs int64            `json:"processingTimeMs"`
}

// Composer assembles the externally visible result. Processing time is
// measured from intake entry to composition.
type Composer struct{}

func NewComposer() *Composer {
	return &Composer{}
}

func (c *Composer) Compose(sessionID, text, modelUsed string, status ValidationStatus, toolsUsed []string, startedAt time.Time) *Response {
	if toolsUsed == nil {
		toolsUsed = []string{}
	}
	return &Response{
		Response:         text,
		SessionID:        sessionID,
		ModelUsed:        modelUsed,
		ValidationStatus: status,
		ToolsUsed:        toolsUsed,
		ProcessingTimeMs: time.Since(startedAt).Milliseconds(),
	}
}
