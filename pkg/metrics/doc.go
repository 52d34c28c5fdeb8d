// Package metrics exposes billing and HTTP metrics in the Prometheus format.
//
// Metrics implements entitlement.Observer and renewal.Observer, so the same
// value is passed to the resolver, the sweeper and the HTTP middleware:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(reg)
//
//	resolver := entitlement.NewResolver(ledgers, bundles, entitlement.WithObserver(m))
//	sweeper := renewal.NewSweeper(bundles, subs, renewal.WithObserver(m))
//
//	r := chi.NewRouter()
//	r.Use(m.Middleware)
//	r.Handle("/metrics", metrics.Handler(reg))
package metrics
