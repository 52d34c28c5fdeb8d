// Package renewal processes subscription bundles that reached the end of
// their billing window with auto-renew enabled.
//
// A Sweeper lists due bundles, charges each one through a PaymentProvider
// and either purchases a fresh bundle with the same tier and billing cycle
// or deactivates the expired one when the charge is declined. Bundles are
// processed one at a time; a failure on one bundle is counted and the
// sweep moves on.
//
// By default the renewed bundle is left active, so a second sweep on the
// same day renews it again. WithDeactivateOnRenewal closes it instead.
//
//	sweeper := renewal.NewSweeper(bundles, bundleService,
//		renewal.WithPaymentProvider(renewal.NewBernoulliProvider(0.8, nil)),
//		renewal.WithLocker(lock),
//	)
//	res, err := sweeper.Sweep(ctx)
//
// Scheduler runs a Sweeper on a cron expression:
//
//	sched, err := renewal.NewScheduler(sweeper, "@daily")
//	if err != nil {
//		return err
//	}
//	return sched.Run(ctx) // blocks until ctx is cancelled
package renewal
