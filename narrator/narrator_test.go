package narrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	response string
	err      error
	prompt   string
}

func (s *stubClient) Complete(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.response, s.err
}

func TestNarrate(t *testing.T) {
	stub := &stubClient{response: "  Germany exported 1,234.56 m3 of pine to China.  "}
	text, err := Narrate(context.Background(), stub, "How much pine to China?", "1,234.56", false)
	require.NoError(t, err)
	assert.Equal(t, "Germany exported 1,234.56 m3 of pine to China.", text)

	assert.Contains(t, stub.prompt, "executed successfully")
	assert.Contains(t, stub.prompt, "1,234.56")
	assert.Contains(t, stub.prompt, "How much pine to China?")
	assert.Contains(t, stub.prompt, "Do NOT make up any numbers")
}

func TestNarrateFailedQuery(t *testing.T) {
	stub := &stubClient{response: "The question could not be answered: unknown field."}
	text, err := Narrate(context.Background(), stub, "weird question", "query validation: unknown filter field \"exec\"", true)
	require.NoError(t, err)
	assert.NotEmpty(t, text)

	assert.Contains(t, stub.prompt, "failed with this error")
	assert.Contains(t, stub.prompt, "unknown filter field")
	assert.NotContains(t, stub.prompt, "executed successfully")
}

func TestNarrateClientError(t *testing.T) {
	stub := &stubClient{err: errors.New("model overloaded")}
	_, err := Narrate(context.Background(), stub, "q", "42", false)

	var genErr *AnswerGenerationError
	require.ErrorAs(t, err, &genErr)
	assert.ErrorContains(t, err, "model overloaded")
}
