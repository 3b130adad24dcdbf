package router

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ai-caresupervisor-be/pkg/careplan"
	"ai-caresupervisor-be/pkg/llm"
	"ai-caresupervisor-be/pkg/registry"
	"ai-caresupervisor-be/pkg/sentinel"
	"ai-caresupervisor-be/pkg/supervisor/compose"
	"ai-caresupervisor-be/pkg/supervisor/concordance"
	"ai-caresupervisor-be/pkg/supervisor/pipeline"
	"ai-caresupervisor-be/pkg/toolselect"
)

const (
	testCaveat   = "Please treat this as general guidance."
	testFallback = "I could not verify that answer. Please ask your care team."
)

type fakeProvider struct {
	reply string
	err   error
	calls atomic.Int32
}

func (f *fakeProvider) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func newTestRouter(primary, secondary llm.Provider) *Router {
	logger := log.New(io.Discard, "", 0)
	single := pipeline.NewSinglePipeline(primary, time.Second, time.Millisecond, logger)
	dual := pipeline.NewDualPipeline(primary, secondary, concordance.NewChecker(0.3),
		time.Second, testCaveat, testFallback, logger)
	return NewRouter(single, dual, registry.Default(), careplan.NewStaticSource(),
		"You are a careful assistant.", "primary-model", "secondary-model", logger)
}

func TestExecuteSingleModelByDefault(t *testing.T) {
	primary := &fakeProvider{reply: "Regular meals keep energy steady."}
	secondary := &fakeProvider{reply: "unused"}
	r := newTestRouter(primary, secondary)

	result, err := r.Execute(context.Background(), Input{
		UserID:       "user-1",
		SessionID:    "sess-1",
		RedactedText: "what should I eat for breakfast?",
		Severity:     sentinel.SeverityNone,
		Selections:   []toolselect.Selection{{ToolID: "nutrition-guide", MatchScore: 2}},
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if result.State != StateSingleModel {
		t.Errorf("State = %q, want single_model", result.State)
	}
	if result.ModelUsed != "primary-model" {
		t.Errorf("ModelUsed = %q", result.ModelUsed)
	}
	if result.ValidationStatus != compose.StatusNotRequired {
		t.Errorf("ValidationStatus = %q, want not-required", result.ValidationStatus)
	}
	if len(result.ToolsUsed) != 1 || result.ToolsUsed[0] != "nutrition-guide" {
		t.Errorf("ToolsUsed = %v", result.ToolsUsed)
	}
	if secondary.calls.Load() != 0 {
		t.Errorf("secondary called %d times on the single path, want 0", secondary.calls.Load())
	}
}

func TestExecuteWarningSeverityForcesDualValidation(t *testing.T) {
	text := "Short walks and paced breathing can ease stress."
	primary := &fakeProvider{reply: text}
	secondary := &fakeProvider{reply: text}
	r := newTestRouter(primary, secondary)

	result, err := r.Execute(context.Background(), Input{
		UserID:       "user-1",
		SessionID:    "sess-1",
		RedactedText: "I'm feeling stressed, what can I do?",
		Severity:     sentinel.SeverityWarning,
		Selections:   []toolselect.Selection{{ToolID: "wellness-support", MatchScore: 2}},
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if result.State != StateDualValidation {
		t.Errorf("State = %q, want dual_validation", result.State)
	}
	if result.ModelUsed != "dual:primary-model+secondary-model" {
		t.Errorf("ModelUsed = %q", result.ModelUsed)
	}
	if result.ValidationStatus != compose.StatusApproved {
		t.Errorf("ValidationStatus = %q, want validated-approved", result.ValidationStatus)
	}
	if secondary.calls.Load() != 1 {
		t.Errorf("secondary called %d times, want 1", secondary.calls.Load())
	}
	if len(result.ToolsUsed) != 1 || result.ToolsUsed[0] != "wellness-support" {
		t.Errorf("ToolsUsed = %v", result.ToolsUsed)
	}
}

func TestExecuteExplicitValidationRequestForcesDual(t *testing.T) {
	text := "Take medication with food when the label says so."
	primary := &fakeProvider{reply: text}
	secondary := &fakeProvider{reply: text}
	r := newTestRouter(primary, secondary)

	result, err := r.Execute(context.Background(), Input{
		UserID:             "user-1",
		SessionID:          "sess-1",
		RedactedText:       "should I take my pills with food?",
		Severity:           sentinel.SeverityNone,
		RequiresValidation: true,
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if result.State != StateDualValidation {
		t.Errorf("State = %q, want dual_validation", result.State)
	}
	if result.ValidationStatus == compose.StatusNotRequired {
		t.Error("explicit validation request ended as not-required")
	}
}

func TestExecuteDirectToolAnswersWithoutModels(t *testing.T) {
	primary := &fakeProvider{reply: "unused"}
	secondary := &fakeProvider{reply: "unused"}
	r := newTestRouter(primary, secondary)

	result, err := r.Execute(context.Background(), Input{
		UserID:       "user-1",
		SessionID:    "sess-1",
		RedactedText: "is there a helpline I can contact?",
		Severity:     sentinel.SeverityNone,
		Selections:   []toolselect.Selection{{ToolID: "care-resources", MatchScore: 2}},
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if result.State != StateToolBased {
		t.Errorf("State = %q, want tool_based", result.State)
	}
	if result.ModelUsed != compose.ModelToolBased {
		t.Errorf("ModelUsed = %q, want tool-based", result.ModelUsed)
	}
	if result.Reply == "" {
		t.Error("direct tool returned empty content")
	}
	if primary.calls.Load() != 0 || secondary.calls.Load() != 0 {
		t.Errorf("providers called %d/%d times on the tool path, want 0/0",
			primary.calls.Load(), secondary.calls.Load())
	}
}

func TestExecuteDirectToolNeverSkipsMandatedValidation(t *testing.T) {
	text := "Support services are listed in the app's resources page."
	primary := &fakeProvider{reply: text}
	secondary := &fakeProvider{reply: text}
	r := newTestRouter(primary, secondary)

	result, err := r.Execute(context.Background(), Input{
		UserID:             "user-1",
		SessionID:          "sess-1",
		RedactedText:       "is there a helpline I can contact?",
		Severity:           sentinel.SeverityNone,
		RequiresValidation: true,
		Selections:         []toolselect.Selection{{ToolID: "care-resources", MatchScore: 2}},
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if result.State != StateDualValidation {
		t.Errorf("State = %q, want dual_validation even with a direct tool match", result.State)
	}
	if primary.calls.Load() != 1 || secondary.calls.Load() != 1 {
		t.Errorf("providers called %d/%d times, want 1/1",
			primary.calls.Load(), secondary.calls.Load())
	}
}

func TestExecuteLowConfidenceEscalatesToValidation(t *testing.T) {
	primary := &fakeProvider{reply: "I'm not sure, but more water might help."}
	secondary := &fakeProvider{reply: "Drinking more water through the day helps with hydration."}
	r := newTestRouter(primary, secondary)

	result, err := r.Execute(context.Background(), Input{
		UserID:       "user-1",
		SessionID:    "sess-1",
		RedactedText: "how much water should I drink?",
		Severity:     sentinel.SeverityNone,
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if result.State != StateDualValidation {
		t.Errorf("State = %q, want dual_validation after low-confidence escalation", result.State)
	}
	if secondary.calls.Load() != 1 {
		t.Errorf("secondary called %d times, want 1", secondary.calls.Load())
	}
}

func TestExecuteDualRejectionReturnsFallbackOnly(t *testing.T) {
	primary := &fakeProvider{reply: "You could stop taking your medication for a few days."}
	secondary := &fakeProvider{reply: "Do not stop taking your medication without medical advice."}
	r := newTestRouter(primary, secondary)

	result, err := r.Execute(context.Background(), Input{
		UserID:             "user-1",
		SessionID:          "sess-1",
		RedactedText:       "can I pause my meds?",
		Severity:           sentinel.SeverityNone,
		RequiresValidation: true,
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if result.ValidationStatus != compose.StatusRejected {
		t.Errorf("ValidationStatus = %q, want validated-rejected", result.ValidationStatus)
	}
	if result.Reply != testFallback {
		t.Errorf("Reply = %q, want the canned fallback", result.Reply)
	}
	if strings.Contains(result.Reply, "medication") {
		t.Error("rejected model content leaked into the reply")
	}
}

func TestExecuteSurfacesDualBothFailing(t *testing.T) {
	primary := &fakeProvider{err: errors.New("down")}
	secondary := &fakeProvider{err: errors.New("also down")}
	r := newTestRouter(primary, secondary)

	_, err := r.Execute(context.Background(), Input{
		UserID:       "user-1",
		SessionID:    "sess-1",
		RedactedText: "I'm feeling stressed",
		Severity:     sentinel.SeverityWarning,
	})
	if !errors.Is(err, pipeline.ErrUpstreamProvider) {
		t.Fatalf("error = %v, want ErrUpstreamProvider", err)
	}
}

func TestBuildHistoryCarriesToolContextAndRedactedText(t *testing.T) {
	r := newTestRouter(&fakeProvider{}, &fakeProvider{})

	history := r.buildHistory(Input{
		RedactedText: "my email is [EMAIL_1], when should I take my pills?",
		Selections:   []toolselect.Selection{{ToolID: "medication-guide", MatchScore: 2}},
	})

	if len(history) != 2 {
		t.Fatalf("history has %d messages, want 2", len(history))
	}
	if history[0].Role != "system" || !strings.Contains(history[0].Content, "medication-guide") {
		t.Errorf("system message missing tool context: %q", history[0].Content)
	}
	if history[1].Role != "user" || !strings.Contains(history[1].Content, "[EMAIL_1]") {
		t.Errorf("user message lost the redacted text: %q", history[1].Content)
	}
}
