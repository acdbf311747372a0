package rewrite

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/povarna/generative-ai-agents/arc-agent/internal/limiter"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/retry"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scriptedGenerator replays one step per call. A nil step blocks until the
// context ends.
type scriptedGenerator struct {
	mu       sync.Mutex
	steps    []func(ctx context.Context) (*llm.GenerateResponse, error)
	calls    int
	requests []llm.GenerateRequest
}

func (g *scriptedGenerator) Generate(ctx context.Context, request llm.GenerateRequest) (*llm.GenerateResponse, error) {
	g.mu.Lock()
	i := g.calls
	g.calls++
	g.requests = append(g.requests, request)
	g.mu.Unlock()

	if i >= len(g.steps) || g.steps[i] == nil {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return g.steps[i](ctx)
}

func reply(text string) func(context.Context) (*llm.GenerateResponse, error) {
	return func(context.Context) (*llm.GenerateResponse, error) {
		return &llm.GenerateResponse{Content: text, StopReason: "end_turn"}, nil
	}
}

func fail(err error) func(context.Context) (*llm.GenerateResponse, error) {
	return func(context.Context) (*llm.GenerateResponse, error) {
		return nil, err
	}
}

func newOrchestrator(gen llm.Generator, attempts int, timeout time.Duration) *Orchestrator {
	logger := zerolog.Nop()
	return NewOrchestrator(gen, Config{
		Timeout:     timeout,
		Policy:      retry.Policy{MaxAttempts: attempts, BaseDelay: time.Millisecond, Multiplier: 2},
		MaxTokens:   256,
		Temperature: 0.2,
	}, limiter.New(2), &logger)
}

func TestGenerate_Success(t *testing.T) {
	gen := &scriptedGenerator{steps: []func(context.Context) (*llm.GenerateResponse, error){
		reply("  Employees need 6 months of tenure.\n"),
	}}

	res := newOrchestrator(gen, 2, time.Second).Generate(context.Background(), "prompt", "model-x")

	require.False(t, res.Fallback, "unexpected fallback: %v", res.Err)
	assert.Equal(t, "  Employees need 6 months of tenure.\n", res.Text, "text must be forwarded unchanged")
	assert.Equal(t, 1, res.Attempts)
	require.Len(t, gen.requests, 1)
	assert.Equal(t, "model-x", gen.requests[0].ModelID)
	assert.Equal(t, 256, gen.requests[0].MaxTokens)
}

func TestGenerate_RejectsEmptyInputs(t *testing.T) {
	gen := &scriptedGenerator{}
	o := newOrchestrator(gen, 2, time.Second)

	for _, tc := range []struct{ prompt, model string }{{"", "m"}, {"p", ""}} {
		res := o.Generate(context.Background(), tc.prompt, tc.model)
		assert.True(t, res.Fallback)
		assert.ErrorIs(t, res.Err, llm.ErrInvalidRequest)
		assert.Equal(t, 0, res.Attempts)
	}
	assert.Equal(t, 0, gen.calls, "provider must not be called")
}

func TestGenerate_RetriesTransient(t *testing.T) {
	gen := &scriptedGenerator{steps: []func(context.Context) (*llm.GenerateResponse, error){
		fail(&llm.ProviderError{Provider: "bedrock", Code: "ThrottlingException", Transient: true, Err: errors.New("slow down")}),
		reply("rewritten"),
	}}

	res := newOrchestrator(gen, 2, time.Second).Generate(context.Background(), "prompt", "m")

	require.False(t, res.Fallback)
	assert.Equal(t, "rewritten", res.Text)
	assert.Equal(t, 2, res.Attempts)
}

func TestGenerate_PermanentNotRetried(t *testing.T) {
	denied := &llm.ProviderError{Provider: "bedrock", Code: "AccessDeniedException", Err: errors.New("denied")}
	gen := &scriptedGenerator{steps: []func(context.Context) (*llm.GenerateResponse, error){
		fail(denied),
		reply("never"),
	}}

	res := newOrchestrator(gen, 3, time.Second).Generate(context.Background(), "prompt", "m")

	assert.True(t, res.Fallback)
	assert.ErrorIs(t, res.Err, denied)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 1, gen.calls)
}

func TestGenerate_EmptyResponseIsPermanent(t *testing.T) {
	gen := &scriptedGenerator{steps: []func(context.Context) (*llm.GenerateResponse, error){
		reply("   "),
		reply("never"),
	}}

	res := newOrchestrator(gen, 3, time.Second).Generate(context.Background(), "prompt", "m")

	assert.True(t, res.Fallback)
	assert.ErrorIs(t, res.Err, ErrEmptyResponse)
	assert.Equal(t, 1, gen.calls)
}

// Two attempts that both exceed the per-attempt timeout end in a fallback.
func TestGenerate_TimeoutsExhaustAttempts(t *testing.T) {
	gen := &scriptedGenerator{}

	res := newOrchestrator(gen, 2, 20*time.Millisecond).Generate(context.Background(), "prompt", "m")

	assert.True(t, res.Fallback)
	assert.ErrorIs(t, res.Err, ErrAttemptTimeout)
	assert.True(t, llm.IsTransient(res.Err))
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, 2, gen.calls)
}

func TestGenerate_ParentCancelled(t *testing.T) {
	gen := &scriptedGenerator{}
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	res := newOrchestrator(gen, 3, time.Second).Generate(ctx, "prompt", "m")

	assert.True(t, res.Fallback)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Equal(t, 1, gen.calls, "cancellation must not be retried")
}

func TestGenerate_RecoversPanic(t *testing.T) {
	gen := &scriptedGenerator{steps: []func(context.Context) (*llm.GenerateResponse, error){
		func(context.Context) (*llm.GenerateResponse, error) { panic("boom") },
	}}

	res := newOrchestrator(gen, 2, time.Second).Generate(context.Background(), "prompt", "m")

	assert.True(t, res.Fallback)
	assert.ErrorIs(t, res.Err, errProviderPanicked)
	assert.Equal(t, 1, res.Attempts)
}
