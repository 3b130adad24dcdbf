package scores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"ai-caresupervisor-be/pkg/llm"
	"ai-caresupervisor-be/pkg/supervisor/pipeline"
)

// ErrMalformedAnalysis marks a model response that failed to parse as the
// expected analysis document. The HTTP layer surfaces it as a generic
// failure; raw provider text is never exposed.
var ErrMalformedAnalysis = errors.New("model returned malformed analysis")

// DayScore is one per-day self-score tuple, each dimension in [1,10].
type DayScore struct {
	Date       string `json:"date,omitempty"`
	Diet       int    `json:"diet"`
	Exercise   int    `json:"exercise"`
	Medication int    `json:"medication"`
}

// Analysis is the structured document the model layer must return.
type Analysis struct {
	Summary               string   `json:"summary"`
	DietObservation       string   `json:"dietObservation"`
	ExerciseObservation   string   `json:"exerciseObservation"`
	MedicationObservation string   `json:"medicationObservation"`
	Recommendations       []string `json:"recommendations"`
	Recognition           *string  `json:"recognition"`
}

// Analyzer maps the most recent score tuple into a single analysis request
// against the model layer.
type Analyzer struct {
	provider llm.Provider
	prompt   string // format template with three %d verbs: diet, exercise, medication
	timeout  time.Duration
	backoff  time.Duration
	logger   *log.Logger
}

func NewAnalyzer(provider llm.Provider, promptTemplate string, timeout, backoff time.Duration, logger *log.Logger) *Analyzer {
	return &Analyzer{
		provider: provider,
		prompt:   promptTemplate,
		timeout:  timeout,
		backoff:  backoff,
		logger:   logger,
	}
}

// Analyze sends the latest tuple for analysis and parses the strict JSON
// reply. Scores themselves are validated upstream at intake.
func (a *Analyzer) Analyze(ctx context.Context, scores []DayScore) (*Analysis, error) {
	if len(scores) == 0 {
		return nil, fmt.Errorf("%w: no scores supplied", ErrMalformedAnalysis)
	}
	latest := scores[len(scores)-1]

	prompt := fmt.Sprintf(a.prompt, latest.Diet, latest.Exercise, latest.Medication)

	// Same discipline as the chat pipeline: one retry with backoff, then the
	// failure surfaces as an upstream error.
	raw, err := a.generate(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		a.logger.Printf("[SCORES] analysis call failed, retrying after %s: %v", a.backoff, err)
		select {
		case <-time.After(a.backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		raw, err = a.generate(ctx, prompt)
		if err != nil {
			a.logger.Printf("[SCORES] retry failed: %v", err)
			return nil, fmt.Errorf("%w: %v", pipeline.ErrUpstreamProvider, err)
		}
	}

	analysis, err := parseAnalysis(raw)
	if err != nil {
		// Log length only; the raw text may echo the prompt.
		a.logger.Printf("[SCORES] unparseable analysis (%d bytes): %v", len(raw), err)
		return nil, err
	}
	return analysis, nil
}

func (a *Analyzer) generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.provider.Generate(callCtx, prompt, llm.WithTemperature(0.2))
}

// parseAnalysis tolerates markdown code fences around the document but
// nothing else: a reply that does not decode to the expected shape is a
// malformed analysis.
func parseAnalysis(raw string) (*Analysis, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var analysis Analysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAnalysis, err)
	}
	if analysis.Summary == "" {
		return nil, fmt.Errorf("%w: missing summary", ErrMalformedAnalysis)
	}
	return &analysis, nil
}
