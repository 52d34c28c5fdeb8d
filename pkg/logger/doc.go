// Package logger builds the *slog.Logger used across the billing services.
//
// New takes functional options. WithEnvironment picks the preset for an
// APP_ENV value (text at debug level in development, JSON at info level in
// staging and production) and tags records with service and env.
// WithContextExtractors pulls request-scoped values such as the request ID
// into every record logged with a context.
//
//	log := logger.New(
//		logger.WithEnvironment(os.Getenv("APP_ENV"), "chatbilling"),
//		logger.WithLevelName(os.Getenv("LOG_LEVEL")),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "subscription renewed",
//		logger.UserID(b.UserID),
//		logger.BundleID(b.ID),
//		logger.Tier(string(b.Tier)),
//	)
//
// Error and Errors return an empty attribute for nil errors, so they can be
// passed without a nil check.
package logger
