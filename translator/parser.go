package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/timberlens-org/timberlens/engine"
)

// ============================================================================
// RESPONSE PARSER — Extracts the QuerySpec from the engine's response
// ============================================================================
// Convention: the response carries at most one fenced code block. No block
// means no structured query exists (ErrNoQuery — callers fall back to the
// response text as a direct answer). A block that is not valid QuerySpec
// JSON is a query execution failure, captured as data downstream.
// ============================================================================

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*\n?(.*?)```")

// ExtractQueryBlock returns the content of the first fenced code block, or
// ErrNoQuery when the response contains none.
func ExtractQueryBlock(response string) (string, error) {
	m := fencedBlock.FindStringSubmatch(response)
	if m == nil {
		return "", ErrNoQuery
	}
	block := strings.TrimSpace(m[1])
	if block == "" {
		return "", ErrNoQuery
	}
	return block, nil
}

// ParseSpec unmarshals a fenced block into a QuerySpec. A block that is not
// valid JSON for the grammar fails with *engine.QueryExecutionError.
func ParseSpec(block string) (engine.QuerySpec, error) {
	var spec engine.QuerySpec
	dec := json.NewDecoder(strings.NewReader(block))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&spec); err != nil {
		return engine.QuerySpec{}, &engine.QueryExecutionError{
			Reason: fmt.Sprintf("query block is not a valid query spec: %v", err),
		}
	}
	return spec, nil
}

// Translate sends the question to the reasoning engine and parses its
// response. The returned Translation always carries the full response text;
// Spec and Raw are set only when a query block was found and parsed. A
// found-but-invalid block returns the Translation (with Raw set) together
// with the *engine.QueryExecutionError.
func Translate(ctx context.Context, client LLMClient, question string) (Translation, error) {
	response, err := client.Complete(ctx, BuildQueryPrompt(question))
	if err != nil {
		return Translation{}, fmt.Errorf("translator: %w", err)
	}

	tr := Translation{Direct: response}

	block, err := ExtractQueryBlock(response)
	if err != nil {
		return tr, err // ErrNoQuery — direct answer fallback
	}
	tr.Raw = block

	spec, err := ParseSpec(block)
	if err != nil {
		return tr, err
	}
	tr.Spec = spec
	return tr, nil
}
