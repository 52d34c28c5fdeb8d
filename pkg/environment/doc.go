// Package environment carries the deployment environment (development,
// staging or production) through context.Context.
//
// Parse normalizes an APP_ENV value. Middleware attaches it to every request
// so handlers can branch on IsDevelopment; the API uses that to include
// internal error details in 500 responses only in development.
//
//	env := environment.Parse(os.Getenv("APP_ENV"))
//	r.Use(environment.Middleware(env))
//
//	if environment.IsDevelopment(r.Context()) {
//		body.Error.Details = err.Error()
//	}
package environment
