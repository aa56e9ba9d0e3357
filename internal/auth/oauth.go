package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// Identity is the portion of the Auth0 /userinfo response we care about.
// Auth0 returns a larger object; we only unmarshal what the identity
// resolver needs.
type Identity struct {
	Sub      string `json:"sub"`      // stable external ID, e.g. "auth0|5f7c..."
	Email    string `json:"email"`    // claimed email
	Nickname string `json:"nickname"` // preferred username (may be empty)

	// Avatar URL from the provider. Provisioning leaves the local profile
	// picture empty; users set it through the profile update endpoint.
	Picture string `json:"picture"`
}

// Auth0Provider wraps golang.org/x/oauth2 for the Auth0 Authorization Code
// flow. The code-for-token exchange happens server-to-server with the client
// secret, so the access token never reaches the browser.
type Auth0Provider struct {
	config      *oauth2.Config
	userinfoURL string
}

// NewAuth0Provider creates a provider for the given Auth0 tenant domain
// (e.g. "spearo.eu.auth0.com"). callbackURL must exactly match the
// "Allowed Callback URLs" configured on the Auth0 application.
//
// Scopes: "openid profile email" — enough for sub, nickname, picture, and
// email in /userinfo.
func NewAuth0Provider(domain, clientID, clientSecret, callbackURL string) *Auth0Provider {
	return &Auth0Provider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  fmt.Sprintf("https://%s/authorize", domain),
				TokenURL: fmt.Sprintf("https://%s/oauth/token", domain),
			},
		},
		userinfoURL: fmt.Sprintf("https://%s/userinfo", domain),
	}
}

// AuthURL returns the URL to redirect the user to for authorization.
// The state is a random nonce stored in a cookie before redirecting and
// verified on callback, which blocks CSRF-initiated logins.
func (p *Auth0Provider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange completes the flow: trades the authorization code for a verified
// Auth0 identity.
//
// Steps:
//  1. Exchange the code for an access token (server-to-server)
//  2. Call /userinfo with the token
//  3. Unmarshal sub/email/nickname/picture
func (p *Auth0Provider) Exchange(ctx context.Context, code string) (*Identity, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// oauth2.Config.Client returns an *http.Client that adds the
	// Authorization header to every request.
	client := p.config.Client(ctx, oauthToken)

	resp, err := client.Get(p.userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("auth: calling userinfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: userinfo endpoint returned status %d", resp.StatusCode)
	}

	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return nil, fmt.Errorf("auth: decoding userinfo response: %w", err)
	}

	if id.Sub == "" {
		return nil, fmt.Errorf("auth: userinfo returned an identity without a subject")
	}

	return &id, nil
}
