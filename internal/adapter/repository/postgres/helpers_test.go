package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/tixeats/walletsettle/internal/usecase"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testTimestamptz() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: testTime, Valid: true}
}

func beginMockTx(t *testing.T, mock pgxmock.PgxPoolIface) usecase.Transaction {
	t.Helper()
	mock.ExpectBeginTx(ledgerTxOptions)
	tx, err := (&TxManager{db: mock}).Begin(context.Background())
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	return tx
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	if err := pool.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

var walletColumns = []string{"id", "owner_kind", "owner_id", "balance", "opening_balance", "version", "active", "created_at", "updated_at"}

var recordColumns = []string{
	"id", "wallet_id", "owner_kind", "owner_id", "type", "status", "intent_kind",
	"source", "correlation_id", "leg_index", "amount", "balance_after", "created_at",
}
