package dto

// SupervisorMessage is the raw inbound message before normalization.
type SupervisorMessage struct {
	Text   string `json:"text" validate:"required"`
	SentAt string `json:"sentAt,omitempty"`
}

// SendSupervisorChatRequest is the chat submission body. Field names follow
// the externally specified contract, hence camelCase JSON keys.
type SendSupervisorChatRequest struct {
	Message            SupervisorMessage `json:"message" validate:"required"`
	SessionID          string            `json:"sessionId,omitempty"`
	RequiresValidation bool              `json:"requiresValidation,omitempty"`
}

// SelfScoreEntry is one per-day score tuple, each dimension in [1,10].
type SelfScoreEntry struct {
	Date       string `json:"date,omitempty"`
	Diet       int    `json:"diet" validate:"required,min=1,max=10"`
	Exercise   int    `json:"exercise" validate:"required,min=1,max=10"`
	Medication int    `json:"medication" validate:"required,min=1,max=10"`
}

// SelfScoreRequest is the self-score analysis submission body.
type SelfScoreRequest struct {
	Scores []SelfScoreEntry `json:"scores" validate:"required,min=1,dive"`
}

// HealthResponse reports runtime configuration, never secrets.
type HealthResponse struct {
	Status            string `json:"status"`
	PrimaryProvider   string `json:"primary_provider"`
	SecondaryProvider string `json:"secondary_provider"`
	SessionStore      string `json:"session_store"`
	RegistrySize      int    `json:"registry_size"`
}
