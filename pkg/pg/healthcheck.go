package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const healthcheckTimeout = 2 * time.Second

// schemaTables must exist for the billing stores to serve requests.
var schemaTables = []string{"usage_ledgers", "subscription_bundles", "chat_messages", "users"}

// Healthcheck pings the pool and verifies the billing tables are migrated.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, healthcheckTimeout)
		defer cancel()

		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}

		var missing int
		err := pool.QueryRow(ctx,
			`SELECT count(*) FROM unnest($1::text[]) AS t(name) WHERE to_regclass(t.name) IS NULL`,
			schemaTables,
		).Scan(&missing)
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		if missing > 0 {
			return errors.Join(ErrHealthcheckFailed, fmt.Errorf("%w: %d table(s) missing", ErrSchemaNotMigrated, missing))
		}
		return nil
	}
}
