package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/daystack/daystack/internal/apperr"
)

// Profile is the identity returned by a third-party token verification.
type Profile struct {
	Email string
	Name  string
}

// ProfileVerifier exchanges a provider token for a verified profile.
type ProfileVerifier interface {
	Verify(ctx context.Context, token string) (*Profile, error)
}

const verifyTimeout = 10 * time.Second

// GoogleVerifier validates Google ID tokens against the tokeninfo endpoint.
type GoogleVerifier struct {
	client   *http.Client
	endpoint string
	clientID string
}

// NewGoogleVerifier creates a verifier. clientID, when non-empty, must match
// the token's audience.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		client:   &http.Client{Timeout: verifyTimeout},
		endpoint: "https://oauth2.googleapis.com/tokeninfo",
		clientID: clientID,
	}
}

func (v *GoogleVerifier) Verify(ctx context.Context, token string) (*Profile, error) {
	var payload struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Audience string `json:"aud"`
	}
	if err := fetchJSON(ctx, v.client, v.endpoint+"?id_token="+url.QueryEscape(token), &payload); err != nil {
		return nil, err
	}
	if v.clientID != "" && payload.Audience != v.clientID {
		return nil, apperr.ErrUnauthorized
	}
	return &Profile{Email: payload.Email, Name: payload.Name}, nil
}

// FacebookVerifier validates Facebook access tokens against the Graph API.
type FacebookVerifier struct {
	client   *http.Client
	endpoint string
}

// NewFacebookVerifier creates a verifier.
func NewFacebookVerifier() *FacebookVerifier {
	return &FacebookVerifier{
		client:   &http.Client{Timeout: verifyTimeout},
		endpoint: "https://graph.facebook.com/me",
	}
}

func (v *FacebookVerifier) Verify(ctx context.Context, token string) (*Profile, error) {
	var payload struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	u := v.endpoint + "?fields=id,name,email&access_token=" + url.QueryEscape(token)
	if err := fetchJSON(ctx, v.client, u, &payload); err != nil {
		return nil, err
	}
	return &Profile{Email: payload.Email, Name: payload.Name}, nil
}

// fetchJSON performs a GET and decodes the JSON body. A non-200 status is
// treated as a failed verification, not an upstream error, so the caller
// reports it generically.
func fetchJSON(ctx context.Context, client *http.Client, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("auth: build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("auth: verify token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperr.ErrUnauthorized
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s", apperr.ErrBadResponse, err.Error())
	}
	return nil
}
