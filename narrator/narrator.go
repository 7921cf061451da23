// Package narrator phrases a literal query result as natural language.
// It is a pure presentation step: it sees only the question and the literal
// result, never the canonical table, and its prompt forbids introducing any
// number absent from the result.
package narrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/timberlens-org/timberlens/translator"
)

// AnswerGenerationError reports a failed narration call. The caller decides
// fallback behavior; the literal result is still available for direct
// display.
type AnswerGenerationError struct {
	Err error
}

func (e *AnswerGenerationError) Error() string {
	return fmt.Sprintf("answer generation: %v", e.Err)
}

func (e *AnswerGenerationError) Unwrap() error { return e.Err }

// Narrate asks the reasoning engine to phrase the literal result as a
// natural-language answer to the question. When failed is true the literal
// is an execution error message rather than a computed value, and the
// prompt says so instead of presenting it as data.
func Narrate(ctx context.Context, client translator.LLMClient, question, literal string, failed bool) (string, error) {
	text, err := client.Complete(ctx, buildPrompt(question, literal, failed))
	if err != nil {
		return "", &AnswerGenerationError{Err: err}
	}
	return strings.TrimSpace(text), nil
}

func buildPrompt(question, literal string, failed bool) string {
	var b strings.Builder

	if failed {
		fmt.Fprintf(&b, "The data query for the user's question failed with this error:\n%s\n\n", literal)
		fmt.Fprintf(&b, "User's question was: %s\n\n", question)
		b.WriteString(`Explain briefly and clearly that the question could not be answered from the database, and why. Do NOT invent any numbers or results. Keep it concise and professional.`)
		return b.String()
	}

	fmt.Fprintf(&b, "The query executed successfully and returned this result: %s\n\n", literal)
	fmt.Fprintf(&b, "User's question was: %s\n\n", question)
	fmt.Fprintf(&b, `Now provide a clear, natural language answer using this EXACT result. Include:
1. A direct answer to the question
2. The actual number(s) from the result: %s
3. Appropriate units and context
4. Do NOT make up any numbers — use only the result provided

Keep it concise and professional.`, literal)
	return b.String()
}
