package service

import (
	"context"
	"io"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ai-caresupervisor-be/internal/constant"
	"ai-caresupervisor-be/internal/dto"
	"ai-caresupervisor-be/internal/pkg/serverutils"
	"ai-caresupervisor-be/internal/repository/memory"
	"ai-caresupervisor-be/pkg/careplan"
	"ai-caresupervisor-be/pkg/llm"
	"ai-caresupervisor-be/pkg/redact"
	"ai-caresupervisor-be/pkg/registry"
	"ai-caresupervisor-be/pkg/scores"
	"ai-caresupervisor-be/pkg/sentinel"
	"ai-caresupervisor-be/pkg/supervisor/compose"
	"ai-caresupervisor-be/pkg/supervisor/concordance"
	"ai-caresupervisor-be/pkg/supervisor/pipeline"
	"ai-caresupervisor-be/pkg/supervisor/router"
	"ai-caresupervisor-be/pkg/supervisor/session"
	"ai-caresupervisor-be/pkg/toolselect"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	reply string
	calls atomic.Int32
}

func (f *fakeProvider) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	f.calls.Add(1)
	return f.reply, nil
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

type recordingAlerter struct {
	mu      sync.Mutex
	userIDs []string
	ruleIDs [][]string
}

func (r *recordingAlerter) RaiseCriticalAlert(userID, _ string, ruleIDs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userIDs = append(r.userIDs, userID)
	r.ruleIDs = append(r.ruleIDs, ruleIDs)
}

func (r *recordingAlerter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.userIDs)
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type supervisorFixture struct {
	service   ISupervisorService
	ledger    *session.Ledger
	primary   *fakeProvider
	secondary *fakeProvider
	alerter   *recordingAlerter
}

func newFixture(primaryReply, secondaryReply string) *supervisorFixture {
	primary := &fakeProvider{reply: primaryReply}
	secondary := &fakeProvider{reply: secondaryReply}
	alerter := &recordingAlerter{}

	plainLogger := log.New(io.Discard, "", 0)
	reg := registry.Default()
	single := pipeline.NewSinglePipeline(primary, time.Second, time.Millisecond, plainLogger)
	dual := pipeline.NewDualPipeline(primary, secondary, concordance.NewChecker(0.3),
		time.Second, constant.ValidationCaveat, constant.SafeFallbackResponse, plainLogger)
	pipelineRouter := router.NewRouter(single, dual, reg, careplan.NewStaticSource(),
		constant.SupervisorSystemPrompt, "primary-model", "secondary-model", plainLogger)

	ledger := session.NewLedger(memory.NewSessionRepository(time.Minute))
	analyzer := scores.NewAnalyzer(primary, constant.SelfScoreAnalysisPrompt, time.Second, time.Millisecond, plainLogger)

	svc := NewSupervisorService(
		redact.New(),
		sentinel.NewClassifier(),
		toolselect.NewSelector(1),
		reg,
		pipelineRouter,
		compose.NewComposer(),
		ledger,
		alerter,
		analyzer,
		nopLogger{},
		4000,
	)

	return &supervisorFixture{
		service:   svc,
		ledger:    ledger,
		primary:   primary,
		secondary: secondary,
		alerter:   alerter,
	}
}

func chatRequest(text string) *dto.SendSupervisorChatRequest {
	return &dto.SendSupervisorChatRequest{
		Message:   dto.SupervisorMessage{Text: text},
		SessionID: "sess-test",
	}
}

func TestProcessChatCrisisShortCircuit(t *testing.T) {
	f := newFixture("model output that must never appear", "ditto")

	resp, err := f.service.ProcessChat(context.Background(), "user-1", chatRequest("I want to kill myself"))
	require.NoError(t, err)

	assert.Equal(t, constant.CrisisResponse, resp.Response)
	assert.Equal(t, compose.ModelNone, resp.ModelUsed)
	assert.Equal(t, compose.StatusNotRequired, resp.ValidationStatus)
	assert.Empty(t, resp.ToolsUsed)

	// No model is ever consulted on a crisis turn.
	assert.Zero(t, f.primary.calls.Load())
	assert.Zero(t, f.secondary.calls.Load())

	assert.Equal(t, 1, f.alerter.count())
	assert.Equal(t, []string{"crit-suicide"}, f.alerter.ruleIDs[0])

	state, found := f.ledger.Peek("sess-test")
	require.True(t, found)
	assert.Equal(t, 1, state.TurnCount)
	assert.True(t, state.EmergencyFlag)
}

func TestProcessChatWarningRunsDualValidation(t *testing.T) {
	reply := "Short walks and paced breathing can ease stress."
	f := newFixture(reply, reply)

	resp, err := f.service.ProcessChat(context.Background(), "user-1",
		chatRequest("I'm feeling stressed, what can I do?"))
	require.NoError(t, err)

	assert.Equal(t, "dual:primary-model+secondary-model", resp.ModelUsed)
	assert.Equal(t, compose.StatusApproved, resp.ValidationStatus)
	assert.Contains(t, resp.ToolsUsed, "wellness-support")
	assert.Equal(t, int32(1), f.primary.calls.Load())
	assert.Equal(t, int32(1), f.secondary.calls.Load())
	assert.Zero(t, f.alerter.count())
}

func TestProcessChatRejectsEmptyMessage(t *testing.T) {
	f := newFixture("unused", "unused")

	_, err := f.service.ProcessChat(context.Background(), "user-1", chatRequest("   "))
	require.Error(t, err)

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
	assert.Equal(t, serverutils.KindValidationError, appErr.Kind)

	// A rejected request leaves no session trace.
	_, found := f.ledger.Peek("sess-test")
	assert.False(t, found)
	assert.Zero(t, f.primary.calls.Load())
}

func TestProcessChatRejectsOversizeMessage(t *testing.T) {
	f := newFixture("unused", "unused")

	long := make([]byte, 4001)
	for i := range long {
		long[i] = 'a'
	}

	_, err := f.service.ProcessChat(context.Background(), "user-1", chatRequest(string(long)))
	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, serverutils.KindValidationError, appErr.Kind)
}

func TestProcessChatLimitCountsCharactersNotBytes(t *testing.T) {
	f := newFixture("General guidance for your question.", "unused")

	// 2500 characters, 5000 bytes: within the character limit.
	_, err := f.service.ProcessChat(context.Background(), "user-1",
		chatRequest(strings.Repeat("é", 2500)))
	require.NoError(t, err)

	// 4001 characters of the same rune: one over the limit.
	_, err = f.service.ProcessChat(context.Background(), "user-1",
		chatRequest(strings.Repeat("é", 4001)))
	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, serverutils.KindValidationError, appErr.Kind)
}

func TestProcessChatSafetyDisagreementReturnsFallback(t *testing.T) {
	f := newFixture(
		"You could stop taking your medication for a few days.",
		"Do not stop taking your medication without medical advice.",
	)

	req := chatRequest("can I pause my blood pressure meds?")
	req.RequiresValidation = true

	resp, err := f.service.ProcessChat(context.Background(), "user-1", req)
	require.NoError(t, err)

	assert.Equal(t, compose.StatusRejected, resp.ValidationStatus)
	assert.Equal(t, constant.SafeFallbackResponse, resp.Response)
	assert.NotContains(t, resp.Response, "stop taking")
}

func TestProcessChatExplicitValidationNeverSkipped(t *testing.T) {
	reply := "Taking medication with food is often recommended on the label."
	f := newFixture(reply, reply)

	req := chatRequest("should I take my pills with food?")
	req.RequiresValidation = true

	resp, err := f.service.ProcessChat(context.Background(), "user-1", req)
	require.NoError(t, err)
	assert.NotEqual(t, compose.StatusNotRequired, resp.ValidationStatus)
	assert.Equal(t, int32(1), f.secondary.calls.Load())
}

func TestProcessChatBenignSingleModel(t *testing.T) {
	f := newFixture("Aim for a consistent bedtime and a dark room.", "unused")

	resp, err := f.service.ProcessChat(context.Background(), "user-1",
		chatRequest("any tips to improve my sleep habits?"))
	require.NoError(t, err)

	assert.Equal(t, "primary-model", resp.ModelUsed)
	assert.Equal(t, compose.StatusNotRequired, resp.ValidationStatus)
	assert.Zero(t, f.secondary.calls.Load())
}

func TestProcessChatRedactsBeforeProviders(t *testing.T) {
	captured := &capturingProvider{reply: "General guidance about appointments."}
	f := newFixture("placeholder", "placeholder")

	// Rebuild the single pipeline around the capturing provider.
	plainLogger := log.New(io.Discard, "", 0)
	single := pipeline.NewSinglePipeline(captured, time.Second, time.Millisecond, plainLogger)
	dual := pipeline.NewDualPipeline(captured, captured, concordance.NewChecker(0.3),
		time.Second, constant.ValidationCaveat, constant.SafeFallbackResponse, plainLogger)
	pipelineRouter := router.NewRouter(single, dual, registry.Default(), careplan.NewStaticSource(),
		constant.SupervisorSystemPrompt, "primary-model", "secondary-model", plainLogger)

	svc := NewSupervisorService(
		redact.New(), sentinel.NewClassifier(), toolselect.NewSelector(1), registry.Default(),
		pipelineRouter, compose.NewComposer(), session.NewLedger(memory.NewSessionRepository(time.Minute)),
		f.alerter, nil, nopLogger{}, 4000,
	)

	_, err := svc.ProcessChat(context.Background(), "user-1",
		chatRequest("my email is jane@example.com, can I book a walk-in visit?"))
	require.NoError(t, err)

	require.NotEmpty(t, captured.seen)
	for _, content := range captured.seen {
		assert.NotContains(t, content, "jane@example.com")
	}
}

type capturingProvider struct {
	mu    sync.Mutex
	reply string
	seen  []string
}

func (c *capturingProvider) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range history {
		c.seen = append(c.seen, m.Content)
	}
	return c.reply, nil
}

func (c *capturingProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return c.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func TestProcessChatTurnCountAdvancesAcrossTurns(t *testing.T) {
	f := newFixture("A short daily walk is a good start.", "unused")

	for turn := 1; turn <= 3; turn++ {
		_, err := f.service.ProcessChat(context.Background(), "user-1",
			chatRequest("any tips for getting more daily movement?"))
		require.NoError(t, err)

		state, found := f.ledger.Peek("sess-test")
		require.True(t, found)
		assert.Equal(t, turn, state.TurnCount)
	}
}

func TestProcessChatGeneratesSessionIDWhenAbsent(t *testing.T) {
	f := newFixture("Plenty of water through the day is a good habit.", "unused")

	resp, err := f.service.ProcessChat(context.Background(), "user-1", &dto.SendSupervisorChatRequest{
		Message: dto.SupervisorMessage{Text: "how much water should a person drink?"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionID)
}

func TestProcessChatRejectsBadSentAt(t *testing.T) {
	f := newFixture("unused", "unused")

	_, err := f.service.ProcessChat(context.Background(), "user-1", &dto.SendSupervisorChatRequest{
		Message: dto.SupervisorMessage{Text: "hello", SentAt: "yesterday at noon"},
	})
	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, serverutils.KindValidationError, appErr.Kind)
}

func TestAnalyzeSelfScores(t *testing.T) {
	doc := `{"summary":"Solid adherence.","dietObservation":"ok","exerciseObservation":"ok","medicationObservation":"ok","recommendations":["keep going"],"recognition":null}`
	f := newFixture(doc, "unused")

	analysis, err := f.service.AnalyzeSelfScores(context.Background(), "user-1", &dto.SelfScoreRequest{
		Scores: []dto.SelfScoreEntry{{Date: "2026-08-27", Diet: 7, Exercise: 6, Medication: 9}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Solid adherence.", analysis.Summary)
	assert.Nil(t, analysis.Recognition)
}
