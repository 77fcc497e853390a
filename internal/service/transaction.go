package service

import (
	"context"
	"database/sql"

	"github.com/pvgrid/helioserve/internal/store"
)

// runInTx wraps store.RunInTransaction. A nil db executes the function
// without a transaction, which keeps the services usable against bare
// store implementations (mocks, in particular).
func runInTx(ctx context.Context, db *sql.DB, fn store.TxFn) error {
	if db == nil {
		return fn(ctx, nil)
	}
	return store.RunInTransaction(ctx, db, fn)
}
