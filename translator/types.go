package translator

import (
	"context"
	"errors"

	"github.com/timberlens-org/timberlens/engine"
)

// ============================================================================
// TRANSLATOR — AI boundary for natural language → QuerySpec
// ============================================================================
// The translator is the only component that talks to the reasoning engine
// during query synthesis. It sends the question plus the fixed domain
// primer, and extracts exactly one fenced code block from the response,
// which must contain a QuerySpec. It never computes values itself.
// ============================================================================

// LLMClient is the injected reasoning-engine capability: one prompt in, one
// free-text response out. The Gemini client implements it; tests use a stub
// with canned responses.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrNoQuery reports that the reasoning engine's response contained no
// fenced code block — no structured query exists and the caller should fall
// back to a direct, table-agnostic answer.
var ErrNoQuery = errors.New("translator: no query block in engine response")

// Translation is the outcome of a query-synthesis call.
type Translation struct {
	// Spec is the parsed query, valid only when Translate returned nil.
	Spec engine.QuerySpec

	// Raw is the verbatim text of the fenced block the spec was parsed
	// from, kept for display alongside the result.
	Raw string

	// Direct is the engine's full response text, used as the fallback
	// answer when no query block was produced.
	Direct string
}

// Config holds translator configuration.
type Config struct {
	APIKey string // reasoning engine API key
	Model  string // model name, e.g. "gemini-2.5-pro"
}
