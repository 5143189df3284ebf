package platforms

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Twitter implements Provider against the v2 API with OAuth2 + PKCE.
type Twitter struct {
	clientID     string
	clientSecret string
	authURL      string
	tokenURL     string
	identityURL  string
	publishURL   string
	http         *http.Client
}

func NewTwitter(clientID, clientSecret string) *Twitter {
	return &Twitter{
		clientID:     clientID,
		clientSecret: clientSecret,
		authURL:      "https://twitter.com/i/oauth2/authorize",
		tokenURL:     "https://api.twitter.com/2/oauth2/token",
		identityURL:  "https://api.twitter.com/2/users/me",
		publishURL:   "https://api.twitter.com/2/tweets",
		http:         newHTTPClient(),
	}
}

func (t *Twitter) ID() string     { return "twitter" }
func (t *Twitter) Scopes() string { return "tweet.read tweet.write users.read offline.access" }

func (t *Twitter) AuthorizationURL(state, challenge, redirectURI string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", t.clientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("scope", t.Scopes())
	q.Set("state", state)
	q.Set("code_challenge", challenge)
	q.Set("code_challenge_method", "S256")
	return t.authURL + "?" + q.Encode()
}

func (t *Twitter) ExchangeToken(ctx context.Context, code, verifier, redirectURI string) (*Tokens, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)
	form.Set("code_verifier", verifier)
	form.Set("client_id", t.clientID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	// Confidential clients authenticate with basic auth on top of PKCE.
	basic := base64.StdEncoding.EncodeToString([]byte(t.clientID + ":" + t.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(t.ID(), resp.StatusCode)
	}

	var body struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("twitter token response: %w", err)
	}
	return &Tokens{AccessToken: body.AccessToken, RefreshToken: body.RefreshToken, ExpiresIn: body.ExpiresIn}, nil
}

func (t *Twitter) FetchIdentity(ctx context.Context, accessToken string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.identityURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(t.ID(), resp.StatusCode)
	}

	var body struct {
		Data struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("twitter identity response: %w", err)
	}
	return &Identity{AccountID: body.Data.ID, AccountName: body.Data.Username}, nil
}

func (t *Twitter) Publish(ctx context.Context, accessToken, content string) error {
	payload, err := json.Marshal(map[string]string{"text": content})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.publishURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return classifyStatus(t.ID(), resp.StatusCode)
	}
	return nil
}
