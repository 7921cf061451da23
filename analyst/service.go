package analyst

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/timberlens-org/timberlens/comext"
	"github.com/timberlens-org/timberlens/engine"
	"github.com/timberlens-org/timberlens/narrator"
	"github.com/timberlens-org/timberlens/translator"
)

// ============================================================================
// ANALYST SERVICE — The core → presentation surface
// ============================================================================
// Holds the canonical table as an atomically-swapped snapshot with a TTL.
// Readers take the snapshot current at the start of their turn; refresh
// builds a fresh table and swaps the pointer, so a reader sees either the
// old complete table or the new complete table, never a partial one.
//
// Per question: Received → QuerySynthesized → Executed → Narrated →
// Delivered. Execution failure is non-fatal: the captured error text flows
// into narration, tagged so presentation can branch.
// ============================================================================

// DefaultTTL is the reference cache time-to-live for the canonical table.
const DefaultTTL = 3600 * time.Second

// Turn states.
type State string

const (
	StateReceived             State = "Received"
	StateQuerySynthesized     State = "QuerySynthesized"
	StateExecuted             State = "Executed"
	StateNarrated             State = "Narrated"
	StateDelivered            State = "Delivered"
	StateQuerySynthesisFailed State = "QuerySynthesisFailed"
	StateExecutionFailed      State = "ExecutionFailed"
	StateNarrationFailed      State = "NarrationFailed"
)

// Answer sources.
const (
	SourceQuery  = "query"  // narrated over an executed query result
	SourceDirect = "direct" // engine answered without a structured query
)

// Answer is the outcome of one question.
type Answer struct {
	ID       string `json:"id"`
	Question string `json:"question"`

	// QueryText is the verbatim query block the reasoning engine produced,
	// empty for direct answers.
	QueryText string `json:"queryText,omitempty"`

	// Result is the literal computed value; nil when execution failed or
	// the answer was direct.
	Result *engine.Result `json:"result,omitempty"`

	// ResultText is the rendered literal result, or the captured execution
	// error text when ExecError is set.
	ResultText string `json:"resultText,omitempty"`

	// ExecError carries the captured query execution error, "" on success.
	// The narrative still covers it, but presentation can branch.
	ExecError string `json:"execError,omitempty"`

	Narrative string `json:"narrative"`
	Source    string `json:"source"`
	State     State  `json:"state"`
}

// Diagnostics is the data-quality view over the current canonical table.
type Diagnostics struct {
	LoadedAt      time.Time             `json:"loadedAt"`
	Rows          int                   `json:"rows"`
	ProcessingLog []string              `json:"processingLog"`
	ZeroFilled    []comext.Key          `json:"zeroFilledUnitValues"`
	Quality       comext.QualitySummary `json:"quality"`
}

// ErrNoTable is returned by Diagnostics and Ask when no canonical table has
// been loaded yet and loading fails.
var ErrNoTable = errors.New("analyst: canonical table not loaded")

type snapshot struct {
	table    *comext.Table
	loadedAt time.Time
}

// Service wires fetcher, normalizer, translator and narrator behind the
// three operations the presentation layer uses: Refresh, Ask, Diagnostics.
type Service struct {
	fetcher    *comext.Fetcher
	normalizer *comext.Normalizer
	llm        translator.LLMClient
	ttl        time.Duration
	log        *zap.SugaredLogger

	current   atomic.Pointer[snapshot]
	refreshMu sync.Mutex
}

// NewService creates a Service. A ttl of 0 means DefaultTTL.
func NewService(fetcher *comext.Fetcher, normalizer *comext.Normalizer, llm translator.LLMClient, ttl time.Duration, log *zap.SugaredLogger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{
		fetcher:    fetcher,
		normalizer: normalizer,
		llm:        llm,
		ttl:        ttl,
		log:        log,
	}
}

// Refresh re-runs fetch and normalization and replaces the canonical table.
// On failure the previous table (if any) stays current and the error is
// returned for display.
func (s *Service) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	payload, err := s.fetcher.Fetch(ctx)
	if err != nil {
		metricRefreshes.WithLabelValues("error").Inc()
		return err
	}
	table, err := s.normalizer.Normalize(payload)
	if err != nil {
		metricRefreshes.WithLabelValues("error").Inc()
		return err
	}

	s.current.Store(&snapshot{table: table, loadedAt: time.Now()})
	metricRefreshes.WithLabelValues("ok").Inc()
	metricTableRows.Set(float64(table.Len()))
	s.log.Infow("canonical table refreshed", "rows", table.Len())
	return nil
}

// Table returns the current canonical table, refreshing first when none is
// loaded or the TTL has expired.
func (s *Service) Table(ctx context.Context) (*comext.Table, error) {
	if snap := s.current.Load(); snap != nil && time.Since(snap.loadedAt) < s.ttl {
		return snap.table, nil
	}
	if err := s.Refresh(ctx); err != nil {
		// Expired-but-present table: serve stale rather than fail the turn.
		if snap := s.current.Load(); snap != nil {
			s.log.Warnw("refresh failed, serving previous table", "error", err)
			return snap.table, nil
		}
		return nil, err
	}
	return s.current.Load().table, nil
}

// Diagnostics returns the processing log, the zero-filled UNIT_VALUE keys
// and the quality summary for the current table.
func (s *Service) Diagnostics() (*Diagnostics, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNoTable
	}
	return &Diagnostics{
		LoadedAt:      snap.loadedAt,
		Rows:          snap.table.Len(),
		ProcessingLog: snap.table.ProcessingLog,
		ZeroFilled:    snap.table.ZeroFilled,
		Quality:       snap.table.Quality(),
	}, nil
}

// Ask answers one free-text question. The turn runs strictly in sequence:
// table → synthesize → execute → narrate. Execution failures are captured
// into the answer and still narrated; a narration failure returns the
// partially-filled answer together with the error so the literal result can
// still be shown.
func (s *Service) Ask(ctx context.Context, question string) (*Answer, error) {
	ans := &Answer{
		ID:       uuid.NewString(),
		Question: question,
		State:    StateReceived,
	}

	table, err := s.Table(ctx)
	if err != nil {
		metricTurns.WithLabelValues("table_error").Inc()
		return nil, fmt.Errorf("analyst: %w", err)
	}

	tr, err := translator.Translate(ctx, s.llm, question)
	switch {
	case err == nil:
		ans.State = StateQuerySynthesized
		ans.QueryText = tr.Raw

	case errors.Is(err, translator.ErrNoQuery):
		// No structured query — the engine response is the answer.
		ans.State = StateDelivered
		ans.Source = SourceDirect
		ans.Narrative = tr.Direct
		metricTurns.WithLabelValues("direct").Inc()
		s.log.Infow("direct answer", "id", ans.ID)
		return ans, nil

	default:
		var execErr *engine.QueryExecutionError
		if errors.As(err, &execErr) {
			// A block was produced but is outside the grammar: captured
			// as the literal result, turn continues.
			ans.QueryText = tr.Raw
			ans.ExecError = execErr.Error()
			ans.ResultText = execErr.Error()
			ans.State = StateExecutionFailed
		} else {
			ans.State = StateQuerySynthesisFailed
			metricTurns.WithLabelValues("synthesis_error").Inc()
			return nil, fmt.Errorf("analyst: %w", err)
		}
	}

	// Execute, unless parsing already failed.
	if ans.ExecError == "" {
		result, err := engine.Execute(tr.Spec, engine.NewFactView(table.Facts))
		if err != nil {
			ans.ExecError = err.Error()
			ans.ResultText = err.Error()
			ans.State = StateExecutionFailed
			s.log.Warnw("query execution failed", "id", ans.ID, "error", err)
		} else {
			ans.Result = result
			ans.ResultText = result.Render()
			ans.State = StateExecuted
		}
	}

	narrative, err := narrator.Narrate(ctx, s.llm, question, ans.ResultText, ans.ExecError != "")
	if err != nil {
		ans.State = StateNarrationFailed
		metricTurns.WithLabelValues("narration_error").Inc()
		return ans, err
	}
	ans.Narrative = narrative
	ans.Source = SourceQuery
	ans.State = StateDelivered

	if ans.ExecError != "" {
		metricTurns.WithLabelValues("execution_error").Inc()
	} else {
		metricTurns.WithLabelValues("ok").Inc()
	}
	s.log.Infow("question answered", "id", ans.ID, "state", ans.State, "source", ans.Source)
	return ans, nil
}

// ExampleQuestions are starter questions presentation layers can offer.
func ExampleQuestions() []string {
	return []string{
		"What are Germany's total pine exports to China in 2024?",
		"Which EU country exported the most spruce to Egypt?",
		"Show me average unit prices for Finnish exports to Japan",
		"Compare Swedish and Austrian exports to Saudi Arabia",
		"What's the trend for Poland's exports in 2024?",
	}
}
