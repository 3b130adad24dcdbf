package router

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-caresupervisor-be/pkg/careplan"
	"ai-caresupervisor-be/pkg/llm"
	"ai-caresupervisor-be/pkg/registry"
	"ai-caresupervisor-be/pkg/sentinel"
	"ai-caresupervisor-be/pkg/supervisor/compose"
	"ai-caresupervisor-be/pkg/supervisor/pipeline"
	"ai-caresupervisor-be/pkg/toolselect"
)

// State identifies which terminal path handled a turn. The set is closed:
// the router is a dispatcher over these four variants, nothing else.
type State string

const (
	StateBypassed       State = "bypassed"
	StateToolBased      State = "tool_based"
	StateSingleModel    State = "single_model"
	StateDualValidation State = "dual_validation"
)

// Input carries everything the router needs for one turn. RedactedText is
// the only text field: raw input never reaches this layer.
type Input struct {
	UserID             string
	SessionID          string
	RedactedText       string
	Severity           sentinel.Severity
	RequiresValidation bool
	Selections         []toolselect.Selection
}

// Result is the unified result from any routed execution.
type Result struct {
	Reply            string
	ModelUsed        string
	State            State
	ValidationStatus compose.ValidationStatus
	ToolsUsed        []string
}

// Router chooses and runs one of the closed execution states. Critical
// emergencies never reach it; the service short-circuits those turns before
// routing (StateBypassed exists for that path's bookkeeping).
type Router struct {
	single        *pipeline.SinglePipeline
	dual          *pipeline.DualPipeline
	registry      *registry.Registry
	directives    careplan.Source
	systemPrompt  string
	primaryName   string
	secondaryName string
	logger        *log.Logger
}

func NewRouter(
	single *pipeline.SinglePipeline,
	dual *pipeline.DualPipeline,
	reg *registry.Registry,
	directives careplan.Source,
	systemPrompt, primaryName, secondaryName string,
	logger *log.Logger,
) *Router {
	return &Router{
		single:        single,
		dual:          dual,
		registry:      reg,
		directives:    directives,
		systemPrompt:  systemPrompt,
		primaryName:   primaryName,
		secondaryName: secondaryName,
		logger:        logger,
	}
}

// Execute dispatches one turn.
func (r *Router) Execute(ctx context.Context, in Input) (*Result, error) {
	toolsUsed := make([]string, 0, len(in.Selections))
	for _, sel := range in.Selections {
		toolsUsed = append(toolsUsed, sel.ToolID)
	}

	needsValidation := in.Severity == sentinel.SeverityWarning || in.RequiresValidation

	// A direct tool fully answers the query without a generative model, but
	// only when no validation is mandated: validated turns always cross two
	// independent models.
	if !needsValidation && len(in.Selections) > 0 {
		if entry, ok := r.registry.Find(in.Selections[0].ToolID); ok && entry.Direct {
			r.logger.Printf("[ROUTER] state=%s tool=%s", StateToolBased, entry.Name)
			tool := pipeline.NewToolCapability(entry)
			reply, err := tool.Generate(ctx, in.RedactedText)
			if err != nil {
				return nil, err
			}
			return &Result{
				Reply:            reply,
				ModelUsed:        compose.ModelToolBased,
				State:            StateToolBased,
				ValidationStatus: compose.StatusNotRequired,
				ToolsUsed:        []string{entry.Name},
			}, nil
		}
	}

	history := r.buildHistory(in)

	if needsValidation {
		r.logger.Printf("[ROUTER] state=%s severity=%s explicit=%v", StateDualValidation, in.Severity, in.RequiresValidation)
		outcome, err := r.dual.Execute(ctx, history, r.lookupDirectives(ctx, in.UserID))
		if err != nil {
			return nil, err
		}
		return r.dualResult(outcome, toolsUsed), nil
	}

	r.logger.Printf("[ROUTER] state=%s", StateSingleModel)
	reply, err := r.single.Execute(ctx, history)
	if err != nil {
		return nil, err
	}

	// A hedging answer is not returned unchecked; escalate it into
	// cross-validation against the secondary provider.
	if pipeline.LowConfidence(reply) {
		r.logger.Printf("[ROUTER] low-confidence output, escalating to %s", StateDualValidation)
		outcome, err := r.dual.ValidateAgainst(ctx, history, reply, r.lookupDirectives(ctx, in.UserID))
		if err != nil {
			return nil, err
		}
		return r.dualResult(outcome, toolsUsed), nil
	}

	return &Result{
		Reply:            reply,
		ModelUsed:        r.primaryName,
		State:            StateSingleModel,
		ValidationStatus: compose.StatusNotRequired,
		ToolsUsed:        toolsUsed,
	}, nil
}

func (r *Router) dualResult(outcome *pipeline.Outcome, toolsUsed []string) *Result {
	return &Result{
		Reply:            outcome.Reply,
		ModelUsed:        fmt.Sprintf("dual:%s+%s", r.primaryName, r.secondaryName),
		State:            StateDualValidation,
		ValidationStatus: outcome.Status,
		ToolsUsed:        toolsUsed,
	}
}

// lookupDirectives fetches the patient's Care Plan Directives for the
// concordance check. Lookup failure degrades to no directives rather than
// failing the turn.
func (r *Router) lookupDirectives(ctx context.Context, userID string) *careplan.Directives {
	directives, err := r.directives.GetActiveDirectives(ctx, userID)
	if err != nil {
		r.logger.Printf("[ROUTER] care plan lookup failed, validating without directives: %v", err)
		return nil
	}
	return directives
}

// buildHistory assembles the provider messages: the system prompt, the
// selected tools as generation-time context, and the redacted query.
func (r *Router) buildHistory(in Input) []llm.Message {
	system := r.systemPrompt
	if len(in.Selections) > 0 {
		var ctxLines []string
		for _, sel := range in.Selections {
			if entry, ok := r.registry.Find(sel.ToolID); ok {
				ctxLines = append(ctxLines, fmt.Sprintf("- %s: %s", entry.Name, entry.Description))
			}
		}
		if len(ctxLines) > 0 {
			system += "\n\nRelevant capabilities for this request:\n" + strings.Join(ctxLines, "\n")
		}
	}

	return []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: in.RedactedText},
	}
}
