// Package auth issues and verifies session tokens.
//
// Sessions are stateless HS256 JWTs carrying the user id. Provider sign-in
// lives in the identity package; this package only covers the token the
// client holds afterwards.
package auth
