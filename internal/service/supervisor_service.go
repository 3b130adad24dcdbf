package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"ai-caresupervisor-be/internal/constant"
	"ai-caresupervisor-be/internal/dto"
	"ai-caresupervisor-be/internal/pkg/logger"
	"ai-caresupervisor-be/internal/pkg/serverutils"
	"ai-caresupervisor-be/pkg/redact"
	"ai-caresupervisor-be/pkg/registry"
	"ai-caresupervisor-be/pkg/scores"
	"ai-caresupervisor-be/pkg/sentinel"
	"ai-caresupervisor-be/pkg/supervisor/compose"
	"ai-caresupervisor-be/pkg/supervisor/router"
	"ai-caresupervisor-be/pkg/supervisor/session"
	"ai-caresupervisor-be/pkg/toolselect"

	"github.com/google/uuid"
)

// ISupervisorService is the orchestration entry point: every inbound turn
// passes through ProcessChat's fixed ordering (normalize, redact, classify,
// select tools, route, compose). The session ledger is read at entry and
// written only after composition.
type ISupervisorService interface {
	ProcessChat(ctx context.Context, userID string, request *dto.SendSupervisorChatRequest) (*compose.Response, error)
	AnalyzeSelfScores(ctx context.Context, userID string, request *dto.SelfScoreRequest) (*scores.Analysis, error)
}

type supervisorService struct {
	redactor   *redact.Redactor
	classifier *sentinel.Classifier
	selector   *toolselect.Selector
	registry   *registry.Registry
	router     *router.Router
	composer   *compose.Composer
	ledger     *session.Ledger
	alerter    IAlertDispatcher
	analyzer   *scores.Analyzer
	logger     logger.ILogger

	maxQueryLength int
}

func NewSupervisorService(
	redactor *redact.Redactor,
	classifier *sentinel.Classifier,
	selector *toolselect.Selector,
	reg *registry.Registry,
	pipelineRouter *router.Router,
	composer *compose.Composer,
	ledger *session.Ledger,
	alerter IAlertDispatcher,
	analyzer *scores.Analyzer,
	sysLogger logger.ILogger,
	maxQueryLength int,
) ISupervisorService {
	return &supervisorService{
		redactor:       redactor,
		classifier:     classifier,
		selector:       selector,
		registry:       reg,
		router:         pipelineRouter,
		composer:       composer,
		ledger:         ledger,
		alerter:        alerter,
		analyzer:       analyzer,
		logger:         sysLogger,
		maxQueryLength: maxQueryLength,
	}
}

// query is the normalized, immutable intake result.
type query struct {
	text      string
	sentAt    time.Time
	userID    string
	sessionID string
}

// normalize validates and shapes the raw request. Its only side effect is
// session-id generation; in particular no ledger entry is created, so a
// rejected request leaves no trace.
func (s *supervisorService) normalize(userID string, request *dto.SendSupervisorChatRequest) (*query, error) {
	text := strings.TrimSpace(request.Message.Text)
	if text == "" {
		return nil, serverutils.NewValidationError("message text must not be empty")
	}
	// The limit is in characters, not bytes; multibyte text must not be
	// penalized for its encoding.
	if utf8.RuneCountInString(text) > s.maxQueryLength {
		return nil, serverutils.NewValidationError("message text exceeds maximum length")
	}

	sentAt := time.Now()
	if request.Message.SentAt != "" {
		parsed, err := time.Parse(time.RFC3339, request.Message.SentAt)
		if err != nil {
			return nil, serverutils.NewValidationError("sentAt is not a valid RFC3339 timestamp")
		}
		sentAt = parsed
	}

	sessionID := strings.TrimSpace(request.SessionID)
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	return &query{
		text:      text,
		sentAt:    sentAt,
		userID:    userID,
		sessionID: sessionID,
	}, nil
}

func (s *supervisorService) ProcessChat(ctx context.Context, userID string, request *dto.SendSupervisorChatRequest) (*compose.Response, error) {
	startedAt := time.Now()

	q, err := s.normalize(userID, request)
	if err != nil {
		return nil, err
	}

	state := s.ledger.GetOrCreate(q.userID, q.sessionID)

	// Redaction always precedes classification; everything downstream sees
	// placeholders only.
	redaction := s.redactor.Redact(q.text)
	signal := s.classifier.Classify(redaction.RedactedText)

	if signal.Severity == sentinel.SeverityCritical {
		// Short-circuit: tool selection and model routing never run, and the
		// alert is raised without being awaited.
		s.alerter.RaiseCriticalAlert(q.userID, q.sessionID, signal.MatchedRuleIDs)

		response := s.composer.Compose(
			q.sessionID,
			constant.CrisisResponse,
			compose.ModelNone,
			compose.StatusNotRequired,
			nil,
			startedAt,
		)
		s.ledger.Touch(state, true)
		s.logTurn(q.sessionID, signal, string(router.StateBypassed), response, redaction.MatchCount)
		return response, nil
	}

	selections := s.selector.Select(redaction.RedactedText, s.registry)

	result, err := s.router.Execute(ctx, router.Input{
		UserID:             q.userID,
		SessionID:          q.sessionID,
		RedactedText:       redaction.RedactedText,
		Severity:           signal.Severity,
		RequiresValidation: request.RequiresValidation,
		Selections:         selections,
	})
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		// Caller aborted: discard the turn without touching the ledger.
		return nil, ctx.Err()
	}

	response := s.composer.Compose(
		q.sessionID,
		result.Reply,
		result.ModelUsed,
		result.ValidationStatus,
		result.ToolsUsed,
		startedAt,
	)
	s.ledger.Touch(state, false)
	s.logTurn(q.sessionID, signal, string(result.State), response, redaction.MatchCount)
	return response, nil
}

func (s *supervisorService) AnalyzeSelfScores(ctx context.Context, userID string, request *dto.SelfScoreRequest) (*scores.Analysis, error) {
	dayScores := make([]scores.DayScore, 0, len(request.Scores))
	for _, entry := range request.Scores {
		dayScores = append(dayScores, scores.DayScore{
			Date:       entry.Date,
			Diet:       entry.Diet,
			Exercise:   entry.Exercise,
			Medication: entry.Medication,
		})
	}

	analysis, err := s.analyzer.Analyze(ctx, dayScores)
	if err != nil {
		return nil, err
	}

	s.logger.Info("scores", "Self-score analysis completed", map[string]interface{}{
		"user_id": userID, "days": len(dayScores),
	})
	return analysis, nil
}

// logTurn records per-turn decision metadata for the audit trail: severities,
// states, and counts only. Never message content.
func (s *supervisorService) logTurn(sessionID string, signal sentinel.Signal, state string, response *compose.Response, redactions int) {
	s.logger.Info("supervisor", "Turn completed", map[string]interface{}{
		"session_id":        sessionID,
		"severity":          string(signal.Severity),
		"matched_rules":     signal.MatchedRuleIDs,
		"state":             state,
		"model_used":        response.ModelUsed,
		"validation_status": string(response.ValidationStatus),
		"tools_used":        response.ToolsUsed,
		"redaction_count":   redactions,
		"processing_ms":     response.ProcessingTimeMs,
	})
}
