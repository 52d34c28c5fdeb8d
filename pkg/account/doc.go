// Package account registers users with email and password and signs them in.
//
// Service.Signup stores a bcrypt hash and Service.Signin verifies it; both
// return a Session carrying a bearer token from the configured TokenIssuer
// (*jwt.Service in production). The token subject is the user ID that the
// billing packages key every ledger, bundle and message on.
//
//	svc := account.NewService(store, tokens)
//	sess, err := svc.Signup(ctx, "ada@example.com", "secret1")
//	if errors.Is(err, account.ErrEmailTaken) {
//		// 400
//	}
package account
