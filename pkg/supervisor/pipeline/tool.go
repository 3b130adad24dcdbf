package pipeline

import (
	"context"

	"ai-caresupervisor-be/pkg/llm"
	"ai-caresupervisor-be/pkg/registry"
)

// ToolCapability adapts a direct registry entry to the llm.Provider contract,
// so the router dispatches tools and models through the same interface.
type ToolCapability struct {
	entry registry.Entry
}

var _ llm.Provider = &ToolCapability{}

func NewToolCapability(entry registry.Entry) *ToolCapability {
	return &ToolCapability{entry: entry}
}

// Chat returns the entry's fixed content. Direct tools answer without a
// generative model, so the incoming history is intentionally ignored.
func (t *ToolCapability) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	return t.entry.Response, nil
}

func (t *ToolCapability) Generate(_ context.Context, _ string, _ ...llm.Option) (string, error) {
	return t.entry.Response, nil
}
