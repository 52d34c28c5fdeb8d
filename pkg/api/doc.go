// Package api exposes the billing core over HTTP with a chi router.
//
// Routes under /api require an authenticated user, resolved by an
// [Authenticator], except GET /api/pricing and the signup and signin routes
// mounted when [Services].Accounts is set. Successful responses have the shape
//
//	{"message": "...", "data": ...}
//
// and failures
//
//	{"error": {"message": "...", "code": "QUOTA_EXCEEDED"}}
//
// Quota denials answer 403 with code QUOTA_EXCEEDED or SUBSCRIPTION_REQUIRED.
// Unclassified errors answer 500 INTERNAL_ERROR and carry a details field
// only in the development environment.
package api
