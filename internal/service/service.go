// Package service runs the agent's unattended background mode: a periodic
// policy compliance check that logs violations.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/owl-cli/owl/internal/tools"
)

// DefaultCheckInterval is how often policies are re-checked when no interval
// is configured.
const DefaultCheckInterval = 5 * time.Minute

// Runner executes the background policy check loop. Each Runner instance is
// independent; running several concurrently only duplicates work.
type Runner struct {
	registry *tools.Registry
	logger   *zap.Logger
	interval time.Duration
}

// New creates a Runner over the tool registry.
func New(registry *tools.Registry, logger *zap.Logger, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{registry: registry, logger: logger, interval: interval}
}

// Run checks policies immediately and then on every tick until the context is
// cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("background service started", zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.checkOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("background service stopping")
			return ctx.Err()
		case <-ticker.C:
			r.checkOnce(ctx)
		}
	}
}

func (r *Runner) checkOnce(ctx context.Context) {
	r.logger.Info("running background tasks: checking policies")

	result, err := r.registry.Invoke(ctx, "check_policies", nil)
	if err != nil {
		r.logger.Error("policy check unavailable", zap.Error(err))
		return
	}
	if success, _ := result["success"].(bool); !success {
		msg, _ := result["error"].(string)
		r.logger.Error("failed to check policies", zap.String("error", msg))
		return
	}

	violations, _ := result["violations"].([]map[string]any)
	if len(violations) == 0 {
		r.logger.Info("policy check complete, no violations found")
		return
	}

	r.logger.Warn("policy violations found", zap.Int("count", len(violations)))
	for _, v := range violations {
		policy, _ := v["policy"].(string)
		details, _ := v["details"].(string)
		r.logger.Warn("policy violation", zap.String("policy", policy), zap.String("details", details))
	}
}
