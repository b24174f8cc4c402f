package postgres

import (
	"database/sql"
	"errors"
	"log"

	"github.com/lib/pq"
)

// Postgres error codes the repositories translate into domain errors
const (
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

func pqErrorCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func isForeignKeyViolation(err error) bool {
	return pqErrorCode(err) == pqForeignKeyViolation
}

func isCheckViolation(err error) bool {
	return pqErrorCode(err) == pqCheckViolation
}

// closeRows closes a result set, logging the non-fatal close error
func closeRows(rows interface{ Close() error }) {
	if err := rows.Close(); err != nil {
		log.Printf("Warning: failed to close rows: %v", err)
	}
}

// rollback ends a transaction that was not committed
func rollback(tx interface{ Rollback() error }) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		log.Printf("Warning: failed to rollback transaction: %v", err)
	}
}
