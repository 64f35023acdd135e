// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"agentcore/platform/domain"
	"agentcore/platform/modelrouter"
)

func TestBudgetLedgerRemaining(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO budgets").
		WithArgs("tenant-1", "daily", "light", int64(1_000_000)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT token_limit, consumed FROM budgets").
		WithArgs("tenant-1", "daily", "light").
		WillReturnRows(sqlmock.NewRows([]string{"token_limit", "consumed"}).AddRow(int64(1_000_000), int64(400_000)))

	ledger := NewBudgetLedger(db, 1_000_000, 20_000_000)
	remaining, exceeded, err := ledger.Remaining(context.Background(), "tenant-1", domain.BudgetPeriodDaily, modelrouter.TierLight)
	require.NoError(t, err)
	require.Equal(t, int64(600_000), remaining)
	require.False(t, exceeded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetLedgerRemainingAtExactLimitIsNotExceeded(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO budgets").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT token_limit, consumed FROM budgets").
		WillReturnRows(sqlmock.NewRows([]string{"token_limit", "consumed"}).AddRow(int64(1000), int64(1000)))

	ledger := NewBudgetLedger(db, 1000, 20000)
	remaining, exceeded, err := ledger.Remaining(context.Background(), "tenant-1", domain.BudgetPeriodDaily, modelrouter.TierLight)
	require.NoError(t, err)
	require.Equal(t, int64(0), remaining)
	require.False(t, exceeded)
}

func TestBudgetLedgerRemainingNeverGoesNegative(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO budgets").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT token_limit, consumed FROM budgets").
		WillReturnRows(sqlmock.NewRows([]string{"token_limit", "consumed"}).AddRow(int64(1000), int64(5000)))

	ledger := NewBudgetLedger(db, 1000, 20000)
	remaining, exceeded, err := ledger.Remaining(context.Background(), "tenant-1", domain.BudgetPeriodDaily, modelrouter.TierLight)
	require.NoError(t, err)
	require.Equal(t, int64(0), remaining)
	require.True(t, exceeded)
}

func TestBudgetLedgerConsume(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO budgets").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE budgets SET consumed").
		WithArgs("tenant-1", "daily", "standard", int64(250)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ledger := NewBudgetLedger(db, 1_000_000, 20_000_000)
	err = ledger.Consume(context.Background(), "tenant-1", domain.BudgetPeriodDaily, modelrouter.TierStandard, 250, modelrouter.Attribution{PrincipalID: "p1"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
