package ai

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/logger"
)

type stubProvider struct {
	name   string
	deltas []string
	err    error
	calls  int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Step(ctx context.Context, req repository.ChatRequest, onText func(string) error) (*repository.StepResult, error) {
	s.calls++
	for _, d := range s.deltas {
		if err := onText(d); err != nil {
			return nil, err
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &repository.StepResult{Text: s.name}, nil
}

func (s *stubProvider) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.name, nil
}

func init() {
	logger.Silence()
}

func noText(string) error { return nil }

func TestFallback_SwitchesOnQuota(t *testing.T) {
	primary := &stubProvider{name: "gemini", err: errors.New("rpc error: code = ResourceExhausted desc = Quota exceeded")}
	secondary := &stubProvider{name: "openai"}
	f := NewFallback(primary, secondary)

	res, err := f.Step(context.Background(), repository.ChatRequest{}, noText)
	require.NoError(t, err)
	assert.Equal(t, "openai", res.Text)
	assert.Equal(t, 1, secondary.calls)
}

func TestFallback_SwitchesOnServerError(t *testing.T) {
	primary := &stubProvider{name: "gemini", err: &StatusError{StatusCode: http.StatusBadGateway}}
	secondary := &stubProvider{name: "openai"}

	out, err := NewFallback(primary, secondary).GenerateJSON(context.Background(), "s", "p")
	require.NoError(t, err)
	assert.Equal(t, "openai", out)
}

func TestFallback_KeepsOtherErrors(t *testing.T) {
	primary := &stubProvider{name: "gemini", err: &StatusError{StatusCode: http.StatusBadRequest, Body: "bad schema"}}
	secondary := &stubProvider{name: "openai"}

	_, err := NewFallback(primary, secondary).Step(context.Background(), repository.ChatRequest{}, noText)
	require.Error(t, err)
	assert.Equal(t, 0, secondary.calls)
}

func TestFallback_NoSwitchAfterStreaming(t *testing.T) {
	primary := &stubProvider{name: "gemini", deltas: []string{"partial"}, err: errors.New("connection reset by peer")}
	secondary := &stubProvider{name: "openai"}

	_, err := NewFallback(primary, secondary).Step(context.Background(), repository.ChatRequest{}, noText)
	require.Error(t, err)
	assert.Equal(t, 0, secondary.calls)
}

func TestFallback_NoSwitchWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	primary := &stubProvider{name: "gemini", err: errors.New("connection refused")}
	secondary := &stubProvider{name: "openai"}

	_, err := NewFallback(primary, secondary).GenerateJSON(ctx, "s", "p")
	require.Error(t, err)
	assert.Equal(t, 0, secondary.calls)
}
