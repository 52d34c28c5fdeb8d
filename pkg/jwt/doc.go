// Package jwt issues and verifies HS256 access tokens with
// github.com/golang-jwt/jwt/v5 and extracts raw tokens from requests.
//
// The user ID is taken from the sub claim; tokens carrying only the legacy
// userId claim are accepted as well.
//
//	svc, err := jwt.New(secret, jwt.WithIssuer("chatbilling"))
//	if err != nil {
//		return err
//	}
//	token, _ := svc.Issue(userID)
//
//	extract := jwt.ChainExtractors(jwt.BearerTokenExtractor, jwt.CookieTokenExtractor("token"))
//	raw, err := extract(r)
//	if err != nil {
//		return err
//	}
//	claims, err := svc.Verify(raw)
package jwt
