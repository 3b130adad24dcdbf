package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ai-caresupervisor-be/pkg/llm"
)

// ErrUpstreamProvider marks a model call that failed or timed out after the
// retry budget was spent. The HTTP layer maps it to a generic apology; raw
// provider errors are logged, never returned to the caller.
var ErrUpstreamProvider = errors.New("upstream provider failure")

// SinglePipeline queries the primary provider once, retrying a single time
// with backoff before escalating. This is the default path when no
// validation is mandated.
type SinglePipeline struct {
	provider llm.Provider
	timeout  time.Duration
	backoff  time.Duration
	logger   *log.Logger
}

func NewSinglePipeline(provider llm.Provider, timeout, backoff time.Duration, logger *log.Logger) *SinglePipeline {
	return &SinglePipeline{
		provider: provider,
		timeout:  timeout,
		backoff:  backoff,
		logger:   logger,
	}
}

// Execute calls the provider with a bounded timeout. One retry with backoff,
// then the error surfaces as ErrUpstreamProvider.
func (p *SinglePipeline) Execute(ctx context.Context, history []llm.Message) (string, error) {
	reply, err := p.call(ctx, history)
	if err == nil {
		return reply, nil
	}
	if ctx.Err() != nil {
		// Caller aborted; do not retry a cancelled turn.
		return "", ctx.Err()
	}

	p.logger.Printf("[SINGLE] primary call failed, retrying after %s: %v", p.backoff, err)
	select {
	case <-time.After(p.backoff):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	reply, err = p.call(ctx, history)
	if err != nil {
		p.logger.Printf("[SINGLE] retry failed: %v", err)
		return "", fmt.Errorf("%w: %v", ErrUpstreamProvider, err)
	}
	return reply, nil
}

func (p *SinglePipeline) call(ctx context.Context, history []llm.Message) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.provider.Chat(callCtx, history)
}
