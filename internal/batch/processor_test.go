package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/povarna/generative-ai-agents/arc-agent/internal/executor"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRewriter struct {
	mu       sync.Mutex
	inFlight int32
	peak     int32
	release  chan struct{}
}

func (f *fakeRewriter) Rewrite(ctx context.Context, req models.RewriteRequest) (*models.RewriteEnvelope, error) {
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)

	f.mu.Lock()
	if n > f.peak {
		f.peak = n
	}
	f.mu.Unlock()

	if f.release != nil {
		<-f.release
	}

	switch req.GuardrailID {
	case "fail":
		return nil, &executor.PipelineError{RequestID: req.RequestID, State: executor.StateValidating, Kind: executor.KindValidation, Err: errors.New("throttled")}
	case "clean":
		return &models.RewriteEnvelope{RequestID: req.RequestID, DominantFindingType: models.FindingValid}, nil
	default:
		return &models.RewriteEnvelope{RequestID: req.RequestID, Rewritten: true, DominantFindingType: models.FindingInvalid}, nil
	}
}

func records(guardrails ...string) []InputRecord {
	out := make([]InputRecord, len(guardrails))
	for i, g := range guardrails {
		out[i] = InputRecord{
			LineNumber: i + 1,
			Request:    models.RewriteRequest{RequestID: strings.Repeat("r", i+1), GuardrailID: g},
		}
	}
	return out
}

func collect(ch <-chan OutputRecord) []OutputRecord {
	var out []OutputRecord
	for r := range ch {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LineNumber < out[j].LineNumber })
	return out
}

func TestProcessor_Process(t *testing.T) {
	input := records("gr", "clean", "fail")
	input = append(input, InputRecord{LineNumber: 4, Error: errors.New("line 4: bad json")})

	results := collect(NewProcessor(&fakeRewriter{}, 2, newTestLogger()).Process(context.Background(), input))
	require.Len(t, results, 4)

	assert.True(t, results[0].Envelope.Rewritten)
	assert.False(t, results[1].Envelope.Rewritten)
	assert.True(t, results[2].Failed())
	assert.Equal(t, executor.KindValidation, results[2].Kind)
	assert.Equal(t, "rrr", results[2].RequestID)
	assert.True(t, results[3].Failed())
	assert.Equal(t, executor.KindInvalidRequest, results[3].Kind)
}

func TestProcessor_BoundsWorkers(t *testing.T) {
	rewriter := &fakeRewriter{release: make(chan struct{})}
	ch := NewProcessor(rewriter, 3, newTestLogger()).Process(context.Background(), records("a", "b", "c", "d", "e", "f", "g", "h"))

	go func() {
		for i := 0; i < 8; i++ {
			rewriter.release <- struct{}{}
		}
	}()

	assert.Len(t, collect(ch), 8)
	assert.LessOrEqual(t, rewriter.peak, int32(3))
}

func TestProcessor_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := collect(NewProcessor(&fakeRewriter{}, 2, newTestLogger()).Process(ctx, records("a", "b")))
	assert.Empty(t, results)
}

func TestWriter_JSONL(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, FormatJSONL, newTestLogger())
	require.NoError(t, err)

	require.NoError(t, w.Write(OutputRecord{LineNumber: 1, RequestID: "a", Envelope: &models.RewriteEnvelope{RequestID: "a", Rewritten: true, DominantFindingType: models.FindingInvalid}}))
	require.NoError(t, w.Write(OutputRecord{LineNumber: 2, Error: "boom"}))
	require.NoError(t, w.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first OutputRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "a", first.RequestID)
	assert.True(t, first.Envelope.Rewritten)
}

func TestWriter_Summary(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, FormatSummary, newTestLogger())
	require.NoError(t, err)

	for _, r := range []OutputRecord{
		{LineNumber: 1, Envelope: &models.RewriteEnvelope{Rewritten: true, DominantFindingType: models.FindingInvalid}},
		{LineNumber: 2, Envelope: &models.RewriteEnvelope{DominantFindingType: models.FindingValid}},
		{LineNumber: 3, Envelope: &models.RewriteEnvelope{DominantFindingType: models.FindingSatisfiable}},
		{LineNumber: 4, Error: "boom"},
	} {
		require.NoError(t, w.Write(r))
	}
	assert.Empty(t, buf.String())
	require.NoError(t, w.Close())

	var summary Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &summary))
	assert.Equal(t, Summary{
		Total:     4,
		Rewritten: 1,
		Clean:     1,
		Fallback:  1,
		Failed:    1,
		ByFinding: map[string]int{"INVALID": 1, "VALID": 1, "SATISFIABLE": 1},
	}, summary)
}

func TestWriter_UnsupportedFormat(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, "csv", newTestLogger())
	assert.Error(t, err)
}
