// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	// ErrNoModel is returned when a TierPolicy has no tiers.
	ErrNoModel = errors.New("no model configured")

	// ErrFallbackExhausted wraps the last quota error once every tier refused.
	ErrFallbackExhausted = errors.New("fallback exhausted")
)

// TierPolicy invokes an ordered list of models. It advances to the next
// tier only on a quota error and sends each tier the identical request.
// TierPolicy itself satisfies Model.
type TierPolicy struct {
	tiers  []Model
	logger *zap.Logger
}

// NewTierPolicy returns a policy over tiers, primary first.
func NewTierPolicy(logger *zap.Logger, tiers ...Model) *TierPolicy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TierPolicy{tiers: tiers, logger: logger}
}

// Name returns the primary tier's name. The tier that answered a call is
// logged by Invoke.
func (p *TierPolicy) Name() string {
	if len(p.tiers) == 0 {
		return "none"
	}
	return p.tiers[0].Name()
}

// Tiers returns the number of configured tiers.
func (p *TierPolicy) Tiers() int { return len(p.tiers) }

// Invoke returns the first non-quota outcome across tiers.
func (p *TierPolicy) Invoke(ctx context.Context, req Request) (Result, error) {
	if len(p.tiers) == 0 {
		return Result{}, ErrNoModel
	}

	var lastErr error
	for i, m := range p.tiers {
		res, err := m.Invoke(ctx, req)
		if err == nil {
			p.logger.Debug("model invoked", zap.String("served_by", m.Name()), zap.Int("tier", i))
			return res, nil
		}
		if !IsQuota(err) {
			return res, err
		}
		lastErr = err
		if i+1 < len(p.tiers) {
			p.logger.Warn("model quota exceeded, falling back",
				zap.String("model", m.Name()),
				zap.String("fallback", p.tiers[i+1].Name()),
				zap.Error(err))
		}
	}
	return Result{}, fmt.Errorf("%w: %w", ErrFallbackExhausted, lastErr)
}
