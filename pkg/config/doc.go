// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
//
//   - The default .env in the working directory is loaded once, if present.
//   - [LoadEnvFiles] loads extra .env files; later files win.
//   - [Load] parses the environment into any struct using `env` tags and
//     caches the result per type, so each struct is parsed once per process.
//   - [MustLoad] panics on failure, for configuration the process cannot
//     start without.
//   - [Reset] drops every cached configuration.
//
// # Usage
//
//	type appConfig struct {
//		Env             string `env:"APP_ENV" envDefault:"development"`
//		RenewalSchedule string `env:"RENEWAL_SCHEDULE" envDefault:"@daily"`
//	}
//
//	var cfg appConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Subsystem configs such as pg.Config, redis.Config and httpserver.Config
// are loaded the same way.
//
// # Error Handling
//
// Sentinel errors are compared with errors.Is:
//
//   - ErrParsingConfig: the environment could not be parsed into the struct.
//   - ErrLoadingEnvFile: a .env file passed to LoadEnvFiles could not be read.
//   - ErrConfigNotLoaded: the type was not cached after parsing.
//   - ErrNilPointer: a nil pointer was passed to Load or MustLoad.
package config
