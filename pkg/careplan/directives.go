package careplan

import "context"

// Directives is the clinician-authored, per-patient behavioral guidance used
// as ground truth by the concordance check. Empty fields mean no active
// directive for that category.
type Directives struct {
	Diet       string `json:"diet"`
	Exercise   string `json:"exercise"`
	Medication string `json:"medication"`
}

// Source is the external collaborator interface for directive lookup. The
// supervisor only ever reads from this store.
type Source interface {
	GetActiveDirectives(ctx context.Context, userID string) (*Directives, error)
}

// StaticSource serves a fixed directive set. It backs deployments without a
// care-plan database and keeps tests deterministic.
type StaticSource struct {
	Directives Directives
}

func NewStaticSource() *StaticSource {
	return &StaticSource{}
}

func (s *StaticSource) GetActiveDirectives(_ context.Context, _ string) (*Directives, error) {
	d := s.Directives
	return &d, nil
}
