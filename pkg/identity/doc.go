// Package identity bridges Apple and Google sign-in to local accounts.
//
// # Overview
//
// Both providers share one state machine: validate the credential, exchange
// it for verified claims, reconcile those claims against the users table by
// email, and answer with a session token. New accounts require a verified
// email; blocked accounts are refused; accounts with an unfinished profile
// are signed in but told to complete it.
//
// # Providers
//
// Apple exchanges an authorization code at the token endpoint using a
// per-request ES256 client secret, then verifies the returned id_token
// against Apple's published keys. Google resolves an access token through
// the userinfo endpoint. An explicit unauthorized answer from either
// provider maps to a 401; every other exchange failure maps to a 400.
package identity
