package identity

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baladhub/balad-backend/pkg/apierr"
	"golang.org/x/oauth2"
)

func testAppleProvider(t *testing.T) (*AppleProvider, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	p, err := NewAppleProvider(AppleConfig{
		TeamID:     "TEAM123",
		ClientID:   "com.baladhub.web",
		BundleID:   "com.baladhub.app",
		KeyID:      "KEY456",
		PrivateKey: string(pemKey),
	})
	require.NoError(t, err)
	return p, key
}

func TestAppleClientSecretClaims(t *testing.T) {
	p, key := testAppleProvider(t)

	secret, err := p.clientSecret(false)
	require.NoError(t, err)

	parsed, err := jwt.Parse(secret, func(tok *jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "TEAM123", claims["iss"])
	assert.Equal(t, "https://appleid.apple.com", claims["aud"])
	assert.Equal(t, "com.baladhub.web", claims["sub"])
	assert.Equal(t, "KEY456", parsed.Header["kid"])
}

func TestAppleClientSecretUsesBundleIDForNativeFlow(t *testing.T) {
	p, key := testAppleProvider(t)

	secret, err := p.clientSecret(true)
	require.NoError(t, err)

	parsed, err := jwt.Parse(secret, func(tok *jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "com.baladhub.app", parsed.Claims.(jwt.MapClaims)["sub"])
}

func TestNewAppleProviderRejectsBadKey(t *testing.T) {
	_, err := NewAppleProvider(AppleConfig{PrivateKey: "not a key"})
	assert.Error(t, err)
}

func TestMapExchangeError(t *testing.T) {
	unauthorized := &oauth2.RetrieveError{
		Response: &http.Response{StatusCode: http.StatusUnauthorized},
	}
	var apiErr *apierr.Error

	require.True(t, errors.As(mapExchangeError(unauthorized, "Apple"), &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	require.True(t, errors.As(mapExchangeError(errors.New("dial tcp: timeout"), "Apple"), &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}
