package platforms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// LinkedIn implements Provider against the REST API (OpenID Connect for
// identity, ugcPosts for publishing).
type LinkedIn struct {
	clientID     string
	clientSecret string
	authURL      string
	tokenURL     string
	identityURL  string
	publishURL   string
	http         *http.Client
}

func NewLinkedIn(clientID, clientSecret string) *LinkedIn {
	return &LinkedIn{
		clientID:     clientID,
		clientSecret: clientSecret,
		authURL:      "https://www.linkedin.com/oauth/v2/authorization",
		tokenURL:     "https://www.linkedin.com/oauth/v2/accessToken",
		identityURL:  "https://api.linkedin.com/v2/userinfo",
		publishURL:   "https://api.linkedin.com/v2/ugcPosts",
		http:         newHTTPClient(),
	}
}

func (l *LinkedIn) ID() string     { return "linkedin" }
func (l *LinkedIn) Scopes() string { return "openid profile w_member_social" }

func (l *LinkedIn) AuthorizationURL(state, challenge, redirectURI string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", l.clientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("scope", l.Scopes())
	q.Set("state", state)
	q.Set("code_challenge", challenge)
	q.Set("code_challenge_method", "S256")
	return l.authURL + "?" + q.Encode()
}

func (l *LinkedIn) ExchangeToken(ctx context.Context, code, verifier, redirectURI string) (*Tokens, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)
	form.Set("code_verifier", verifier)
	form.Set("client_id", l.clientID)
	form.Set("client_secret", l.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(l.ID(), resp.StatusCode)
	}

	var body struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("linkedin token response: %w", err)
	}
	return &Tokens{AccessToken: body.AccessToken, RefreshToken: body.RefreshToken, ExpiresIn: body.ExpiresIn}, nil
}

func (l *LinkedIn) FetchIdentity(ctx context.Context, accessToken string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.identityURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(l.ID(), resp.StatusCode)
	}

	var body struct {
		Sub  string `json:"sub"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("linkedin identity response: %w", err)
	}
	return &Identity{AccountID: body.Sub, AccountName: body.Name}, nil
}

func (l *LinkedIn) Publish(ctx context.Context, accessToken, content string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"author":         "urn:li:person:me",
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": map[string]interface{}{
				"shareCommentary":    map[string]string{"text": content},
				"shareMediaCategory": "NONE",
			},
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.publishURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := l.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return classifyStatus(l.ID(), resp.StatusCode)
	}
	return nil
}
