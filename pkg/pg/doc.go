// Package pg is the PostgreSQL storage layer built on pgx/v5.
//
// It provides connection pooling with retries ([Connect]), embedded goose
// migrations ([Migrate]), a health probe ([Healthcheck]) and store
// implementations for the billing core:
//
//   - [LedgerStore] implements usage.Store.
//   - [BundleStore] implements bundle.Store.
//   - [MessageStore] implements chat.MessageStore.
//   - [UserStore] implements account.Store.
//
// Every counter change is a single conditional UPDATE ... RETURNING, so the
// quota checks hold under concurrent requests without explicit transactions.
//
// # Usage
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//		return err
//	}
//
//	ledgers := pg.NewLedgerStore(pool)
//	bundles := pg.NewBundleStore(pool)
//	messages := pg.NewMessageStore(pool)
//	users := pg.NewUserStore(pool)
package pg
