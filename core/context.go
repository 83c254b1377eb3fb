package core

import "context"

// Context keys for assessment options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	corpusDFKey       contextKey = "corpusDF"
)

// WithSuppressHeader marks the context so analysis skips the run header.
// Callers that embed analysis output elsewhere (MCP tools) use this.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show headers
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// withCorpusDF forces the DF analyzer to run corpus-scope even when the
// run itself is conversation-scoped. The longitudinal DF indicators
// (interaction frequency, session duration trends) only exist across
// conversations, so report generation always wants them.
func withCorpusDF(ctx context.Context) context.Context {
	return context.WithValue(ctx, corpusDFKey, true)
}

// shouldCorpusDF returns whether DF should use corpus scope from context
func shouldCorpusDF(ctx context.Context) bool {
	val := ctx.Value(corpusDFKey)
	if val == nil {
		return false // default: DF follows the configured scope
	}
	force, ok := val.(bool)
	return ok && force
}
