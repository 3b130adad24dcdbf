package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"ai-caresupervisor-be/pkg/careplan"
	"ai-caresupervisor-be/pkg/llm"
	"ai-caresupervisor-be/pkg/supervisor/compose"
	"ai-caresupervisor-be/pkg/supervisor/concordance"
)

// Outcome is the result of mandatory cross-validation.
type Outcome struct {
	Reply    string
	Status   compose.ValidationStatus
	Degraded bool // one provider timed out; the surviving output was used
}

// DualPipeline fans out the primary and secondary providers concurrently,
// joins on both-or-timeout, and reconciles the outputs through the
// concordance check. This is the only parallel-execution point in the whole
// turn pipeline.
type DualPipeline struct {
	primary   llm.Provider
	secondary llm.Provider
	checker   *concordance.Checker
	timeout   time.Duration

	// caveat is appended to the shown output on partial disagreement;
	// fallback replaces everything when validation rejects.
	caveat   string
	fallback string

	logger *log.Logger
}

func NewDualPipeline(primary, secondary llm.Provider, checker *concordance.Checker, timeout time.Duration, caveat, fallback string, logger *log.Logger) *DualPipeline {
	return &DualPipeline{
		primary:   primary,
		secondary: secondary,
		checker:   checker,
		timeout:   timeout,
		caveat:    caveat,
		fallback:  fallback,
		logger:    logger,
	}
}

type providerOutcome struct {
	text string
	err  error
}

// Execute runs both providers concurrently and reconciles their outputs.
// A single provider failure degrades to validated-with-concerns on the
// surviving output rather than failing the turn; both failing is an
// upstream error.
func (p *DualPipeline) Execute(ctx context.Context, history []llm.Message, directives *careplan.Directives) (*Outcome, error) {
	primCh := p.callAsync(ctx, p.primary, history)
	secCh := p.callAsync(ctx, p.secondary, history)

	prim := <-primCh
	sec := <-secCh

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	switch {
	case prim.err != nil && sec.err != nil:
		p.logger.Printf("[DUAL] both providers failed: primary=%v secondary=%v", prim.err, sec.err)
		return nil, fmt.Errorf("%w: both validation providers failed", ErrUpstreamProvider)

	case prim.err != nil:
		p.logger.Printf("[DUAL] primary failed, degrading to secondary output: %v", prim.err)
		return &Outcome{Reply: sec.text, Status: compose.StatusConcerns, Degraded: true}, nil

	case sec.err != nil:
		p.logger.Printf("[DUAL] secondary failed, degrading to primary output: %v", sec.err)
		return &Outcome{Reply: prim.text, Status: compose.StatusConcerns, Degraded: true}, nil
	}

	return p.reconcile(prim.text, sec.text, directives), nil
}

// ValidateAgainst cross-checks an already obtained primary output by calling
// only the secondary provider. Used when a single-model answer flags low
// confidence after the fact.
func (p *DualPipeline) ValidateAgainst(ctx context.Context, history []llm.Message, primaryReply string, directives *careplan.Directives) (*Outcome, error) {
	sec := <-p.callAsync(ctx, p.secondary, history)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if sec.err != nil {
		p.logger.Printf("[DUAL] secondary failed during escalation, degrading: %v", sec.err)
		return &Outcome{Reply: primaryReply, Status: compose.StatusConcerns, Degraded: true}, nil
	}
	return p.reconcile(primaryReply, sec.text, directives), nil
}

func (p *DualPipeline) reconcile(primaryReply, secondaryReply string, directives *careplan.Directives) *Outcome {
	report := p.checker.Compare(primaryReply, secondaryReply, directives)
	p.logger.Printf("[DUAL] concordance verdict=%s similarity=%.2f safety_conflicts=%v directive_conflicts=%v",
		report.Verdict, report.Similarity, report.SafetyConflicts, report.DirectiveConflicts)

	switch report.Verdict {
	case concordance.VerdictApproved:
		return &Outcome{Reply: primaryReply, Status: compose.StatusApproved}
	case concordance.VerdictRejected:
		// Content that failed validation is never shown.
		return &Outcome{Reply: p.fallback, Status: compose.StatusRejected}
	default:
		return &Outcome{Reply: primaryReply + "\n\n" + p.caveat, Status: compose.StatusConcerns}
	}
}

func (p *DualPipeline) callAsync(ctx context.Context, provider llm.Provider, history []llm.Message) <-chan providerOutcome {
	ch := make(chan providerOutcome, 1)
	go func() {
		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		text, err := provider.Chat(callCtx, history)
		ch <- providerOutcome{text: text, err: err}
	}()
	return ch
}
