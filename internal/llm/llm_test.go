// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// --- mock model ---

type mockModel struct {
	name  string
	res   Result
	err   error
	calls []Request
}

func (m *mockModel) Name() string { return m.name }

func (m *mockModel) Invoke(_ context.Context, req Request) (Result, error) {
	m.calls = append(m.calls, req)
	return m.res, m.err
}

func quota(model string) error {
	return &QuotaError{Model: model, StatusCode: 429, Err: errors.New("limit")}
}

func TestTierPolicyPrimarySucceeds(t *testing.T) {
	primary := &mockModel{name: "primary", res: Result{Text: "ok"}}
	fallback := &mockModel{name: "fallback"}
	p := NewTierPolicy(zap.NewNop(), primary, fallback)

	res, err := p.Invoke(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Text)
	assert.Len(t, primary.calls, 1)
	assert.Empty(t, fallback.calls)
	assert.Equal(t, "primary", p.Name())
	assert.Equal(t, 2, p.Tiers())
}

func TestTierPolicyFallsBackOnQuotaWithIdenticalRequest(t *testing.T) {
	primary := &mockModel{name: "primary", err: quota("primary")}
	fallback := &mockModel{name: "fallback", res: Result{Text: "from fallback"}}
	p := NewTierPolicy(nil, primary, fallback)

	req := Request{Prompt: "same prompt", Schema: map[string]any{"type": "object"}}
	res, err := p.Invoke(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "from fallback", res.Text)
	require.Len(t, fallback.calls, 1)
	assert.Equal(t, primary.calls[0], fallback.calls[0])
}

func TestTierPolicyLogsServingTier(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	primary := &mockModel{name: "primary", err: quota("primary")}
	fallback := &mockModel{name: "fallback", res: Result{Text: "ok"}}
	p := NewTierPolicy(zap.New(core), primary, fallback)

	_, err := p.Invoke(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)

	served := logs.FilterMessage("model invoked").All()
	require.Len(t, served, 1)
	assert.Equal(t, "fallback", served[0].ContextMap()["served_by"])
	assert.Equal(t, int64(1), served[0].ContextMap()["tier"])
	assert.Equal(t, "primary", p.Name())
}

func TestTierPolicyDoesNotFallBackOnOtherErrors(t *testing.T) {
	primary := &mockModel{name: "primary", err: errors.New("bad request")}
	fallback := &mockModel{name: "fallback", res: Result{Text: "unused"}}
	p := NewTierPolicy(nil, primary, fallback)

	_, err := p.Invoke(context.Background(), Request{Prompt: "p"})
	require.EqualError(t, err, "bad request")
	assert.Empty(t, fallback.calls)
}

func TestTierPolicyExhausted(t *testing.T) {
	p := NewTierPolicy(nil,
		&mockModel{name: "a", err: quota("a")},
		&mockModel{name: "b", err: quota("b")},
	)
	_, err := p.Invoke(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFallbackExhausted)
	assert.True(t, IsQuota(err))
	assert.Contains(t, err.Error(), "b quota exceeded")
}

func TestTierPolicyNoTiers(t *testing.T) {
	p := NewTierPolicy(nil)
	_, err := p.Invoke(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNoModel)
	assert.Equal(t, "none", p.Name())
}

func TestIsQuotaWrapped(t *testing.T) {
	err := fmt.Errorf("field doi: %w", quota("m"))
	assert.True(t, IsQuota(err))
	assert.False(t, IsQuota(errors.New("plain")))
	assert.False(t, IsQuota(nil))
}

func TestQuotaErrorMessage(t *testing.T) {
	e := &QuotaError{Model: "m", RetryAfter: 3 * time.Second, Err: errors.New("x")}
	assert.Equal(t, "m quota exceeded (retry after 3s): x", e.Error())
	e.RetryAfter = 0
	assert.Equal(t, "m quota exceeded: x", e.Error())
}

func TestParseObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]any
	}{
		{"plain object", `{"a": 1}`, map[string]any{"a": float64(1)}},
		{"fenced", "here:\n```json\n{\"a\": \"b\"}\n```", map[string]any{"a": "b"}},
		{"prose around", `The answer is {"a": null} as requested.`, map[string]any{"a": nil}},
		{"trailing comma", `{"a": ["x", "y",],}`, map[string]any{"a": []any{"x", "y"}}},
		{"array", `["a"]`, nil},
		{"string", `"just text"`, nil},
		{"garbage", `no json here`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseObject(tt.in))
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 5*time.Second, parseRetryAfter("5"))
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
}
