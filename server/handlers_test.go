package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/timberlens-org/timberlens/analyst"
	"github.com/timberlens-org/timberlens/comext"
)

const handlerCSV = `reporter,partner,product,indicators,time_period,obs_value
DE,CN,440711,QUANTITY_IN_100KG,2024-01,1000
DE,CN,440711,VALUE_IN_EUROS,2024-01,20000
`

type cannedLLM struct {
	response string
}

func (c *cannedLLM) Complete(_ context.Context, prompt string) (string, error) {
	if strings.Contains(prompt, "EXACTLY ONE query specification") {
		return c.response, nil
	}
	return "Narrated answer.", nil
}

func newTestServer(t *testing.T, llm *cannedLLM, sourceUp bool) *Server {
	t.Helper()
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if !sourceUp {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(handlerCSV))
	}))
	t.Cleanup(src.Close)

	fetcher := comext.NewFetcher(nil, comext.WithEndpoint(src.URL))
	svc := analyst.NewService(fetcher, comext.NewNormalizer(nil), llm, 0, nil)
	return New(svc, false, nil)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, &cannedLLM{}, true)
	w := doJSON(t, s.Handler(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
}

func TestAsk(t *testing.T) {
	llm := &cannedLLM{response: "```json\n{\"filters\": {\"indicators\": [\"VALUE_IN_EUROS\"]}, \"aggregation\": \"sum\"}\n```"}
	s := newTestServer(t, llm, true)

	w := doJSON(t, s.Handler(), http.MethodPost, "/api/ask", map[string]string{"question": "total value?"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Answer analyst.Answer `json:"answer"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, analyst.StateDelivered, resp.Answer.State)
	assert.Equal(t, "20,000.00", resp.Answer.ResultText)
	assert.Equal(t, "Narrated answer.", resp.Answer.Narrative)
}

func TestAskMissingQuestion(t *testing.T) {
	s := newTestServer(t, &cannedLLM{}, true)

	w := doJSON(t, s.Handler(), http.MethodPost, "/api/ask", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s.Handler(), http.MethodPost, "/api/ask", map[string]string{"question": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAskSourceDown(t *testing.T) {
	s := newTestServer(t, &cannedLLM{}, false)

	w := doJSON(t, s.Handler(), http.MethodPost, "/api/ask", map[string]string{"question": "anything"})
	require.Equal(t, http.StatusBadGateway, w.Code)

	var resp struct {
		Kind string `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "FetchError", resp.Kind)
}

func TestRefreshAndDiagnostics(t *testing.T) {
	s := newTestServer(t, &cannedLLM{}, true)

	// No table loaded yet.
	w := doJSON(t, s.Handler(), http.MethodGet, "/api/diagnostics", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, s.Handler(), http.MethodPost, "/api/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s.Handler(), http.MethodGet, "/api/diagnostics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Diagnostics analyst.Diagnostics `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// 2 source rows plus derived volume and unit value.
	assert.Equal(t, 4, resp.Diagnostics.Rows)
	assert.NotEmpty(t, resp.Diagnostics.ProcessingLog)
}

func TestExamples(t *testing.T) {
	s := newTestServer(t, &cannedLLM{}, true)

	w := doJSON(t, s.Handler(), http.MethodGet, "/api/examples", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Examples []string `json:"examples"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Examples, 5)
}

func TestExport(t *testing.T) {
	s := newTestServer(t, &cannedLLM{}, true)

	w := doJSON(t, s.Handler(), http.MethodGet, "/api/table/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "timberlens-table.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Canonical Table")
	require.NoError(t, err)
	// Header plus 4 facts.
	assert.Len(t, rows, 5)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, &cannedLLM{}, true)

	w := doJSON(t, s.Handler(), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "timberlens_")
}
