// Package redis connects to Redis and provides the distributed lock that
// keeps renewal sweeps from running on several replicas at once.
//
// The package wraps the go-redis client and adds:
//
//   - Connect, which retries the connection using the supplied Config.
//   - Lock, a SET NX lock with a per-holder token and a TTL. It satisfies
//     renewal.Locker.
//   - Healthcheck, a time-bounded PING for the /health endpoint.
//
// # Usage
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	lock := redis.NewLock(client, cfg.SweepLockKey, cfg.SweepLockTTL)
//	sweeper := renewal.NewSweeper(bundles, subs, renewal.WithLocker(lock))
//
// # Errors
//
// Sentinel errors (ErrRedisNotReady, ErrLockFailed, ...) wrap the underlying
// go-redis errors using errors.Join, so both can be matched with errors.Is.
package redis
