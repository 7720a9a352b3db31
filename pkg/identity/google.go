package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/baladhub/balad-backend/pkg/apierr"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v1/userinfo"

// GoogleProvider resolves a Google access token to identity claims through
// the userinfo endpoint.
type GoogleProvider struct {
	// UserinfoURL is overridable for tests; defaults to Google's.
	UserinfoURL string
}

// NewGoogleProvider builds the provider.
func NewGoogleProvider() *GoogleProvider {
	return &GoogleProvider{UserinfoURL: googleUserinfoURL}
}

// Exchange fetches the userinfo profile for the access token.
func (p *GoogleProvider) Exchange(ctx context.Context, accessToken string) (*Claims, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserinfoURL, nil)
	if err != nil {
		return nil, apierr.AuthenticationFailed("Google authentication failed")
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, apierr.AuthenticationFailed("Google authentication failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, apierr.InvalidCredential("Invalid Google credential")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apierr.AuthenticationFailed(
			fmt.Sprintf("Google authentication failed with status %d", resp.StatusCode))
	}

	var profile struct {
		ID            string     `json:"id"`
		Email         string     `json:"email"`
		VerifiedEmail boolString `json:"verified_email"`
		GivenName     string     `json:"given_name"`
		FamilyName    string     `json:"family_name"`
		Picture       string     `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, apierr.AuthenticationFailed("Google authentication failed")
	}

	return &Claims{
		Email:         profile.Email,
		FirstName:     profile.GivenName,
		LastName:      profile.FamilyName,
		PhotoURL:      profile.Picture,
		EmailVerified: bool(profile.VerifiedEmail),
		ProviderID:    profile.ID,
	}, nil
}
