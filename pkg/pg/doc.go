// Package pg bootstraps a PostgreSQL connection pool on the pgx/v5 driver:
// env-driven configuration, connect-with-retry, a health probe, and error
// classification helpers for unique and foreign key violations.
//
// The pool is a natural container singleton:
//
//	container.Provide(func(ctx context.Context) (*pgxpool.Pool, error) {
//		var cfg pg.Config
//		if err := config.Load(&cfg); err != nil {
//			return nil, err
//		}
//		return pg.Connect(ctx, cfg)
//	})
package pg
