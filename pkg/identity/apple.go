package identity

import (
	"context"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/baladhub/balad-backend/pkg/apierr"
)

const appleIssuer = "https://appleid.apple.com"

// AppleConfig holds the Sign in with Apple credentials. The private key is
// the PEM-encoded ES256 key downloaded from the developer portal.
type AppleConfig struct {
	TeamID      string
	ClientID    string
	BundleID    string
	KeyID       string
	PrivateKey  string
	RedirectURL string
}

// AppleProvider exchanges an authorization code for verified identity claims.
// The client secret is a short-lived ES256 JWT signed per exchange, and the
// returned id_token is verified against Apple's published keys.
type AppleProvider struct {
	cfg AppleConfig
	key *ecdsa.PrivateKey

	// Issuer is overridable for tests; defaults to Apple's.
	Issuer string

	mu       sync.Mutex
	provider *oidc.Provider
}

// NewAppleProvider parses the signing key and builds the provider.
func NewAppleProvider(cfg AppleConfig) (*AppleProvider, error) {
	block, _ := pem.Decode([]byte(cfg.PrivateKey))
	if block == nil {
		return nil, fmt.Errorf("apple private key is not PEM encoded")
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing apple private key: %w", err)
	}
	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("apple private key is not an ECDSA key")
	}
	return &AppleProvider{cfg: cfg, key: key, Issuer: appleIssuer}, nil
}

// clientSecret signs the per-exchange client secret. The subject is the
// services id for web flows or the bundle id for native app flows.
func (p *AppleProvider) clientSecret(useBundleID bool) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": p.cfg.TeamID,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
		"aud": appleIssuer,
		"sub": p.subject(useBundleID),
	})
	token.Header["kid"] = p.cfg.KeyID
	secret, err := token.SignedString(p.key)
	if err != nil {
		return "", fmt.Errorf("signing apple client secret: %w", err)
	}
	return secret, nil
}

func (p *AppleProvider) subject(useBundleID bool) string {
	if useBundleID {
		return p.cfg.BundleID
	}
	return p.cfg.ClientID
}

// Exchange trades the authorization code for an id_token and verifies it.
func (p *AppleProvider) Exchange(ctx context.Context, code string, useBundleID bool) (*Claims, error) {
	secret, err := p.clientSecret(useBundleID)
	if err != nil {
		return nil, apierr.AuthenticationFailed("Apple authentication failed")
	}

	conf := &oauth2.Config{
		ClientID:     p.subject(useBundleID),
		ClientSecret: secret,
		RedirectURL:  p.cfg.RedirectURL,
		Endpoint: oauth2.Endpoint{
			TokenURL:  p.Issuer + "/auth/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, mapExchangeError(err, "Apple")
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, apierr.AuthenticationFailed("Apple did not return an identity token")
	}

	verifier, err := p.verifier(ctx, useBundleID)
	if err != nil {
		return nil, apierr.AuthenticationFailed("Apple authentication failed")
	}
	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, apierr.InvalidCredential("Invalid Apple credential")
	}

	var payload struct {
		Email         string     `json:"email"`
		EmailVerified boolString `json:"email_verified"`
	}
	if err := idToken.Claims(&payload); err != nil {
		return nil, apierr.AuthenticationFailed("Apple authentication failed")
	}

	return &Claims{
		Email:         payload.Email,
		EmailVerified: bool(payload.EmailVerified),
		ProviderID:    idToken.Subject,
	}, nil
}

func (p *AppleProvider) verifier(ctx context.Context, useBundleID bool) (*oidc.IDTokenVerifier, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.provider == nil {
		provider, err := oidc.NewProvider(ctx, p.Issuer)
		if err != nil {
			return nil, fmt.Errorf("discovering apple issuer: %w", err)
		}
		p.provider = provider
	}
	return p.provider.Verifier(&oidc.Config{ClientID: p.subject(useBundleID)}), nil
}

// mapExchangeError translates a provider exchange failure to the API error
// taxonomy: an explicit unauthorized response means the credential itself is
// bad; anything else is a generic authentication failure.
func mapExchangeError(err error, provider string) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil &&
		retrieveErr.Response.StatusCode == http.StatusUnauthorized {
		return apierr.InvalidCredential("Invalid " + provider + " credential")
	}
	return apierr.AuthenticationFailed(provider + " authentication failed")
}
