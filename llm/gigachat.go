package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GigaChatOptions configures the GigaChat client. AuthKey is the base64
// authorization key exchanged for a short-lived bearer token.
type GigaChatOptions struct {
	AuthKey  string
	Scope    string
	OAuthURL string
	APIURL   string
	Model    string
}

// GigaChatClient talks to Sber's GigaChat API over raw HTTP. Bearer tokens
// are short-lived, so each call goes through the token cache and exchanges
// the authorization key only when the cached token is close to expiry.
type GigaChatClient struct {
	opts       GigaChatOptions
	httpClient *http.Client
	tokens     *tokenCache
}

func NewGigaChatClient(opts GigaChatOptions, httpClient *http.Client) *GigaChatClient {
	if opts.Scope == "" {
		opts.Scope = "GIGACHAT_API_PERS"
	}
	if opts.OAuthURL == "" {
		opts.OAuthURL = "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"
	}
	if opts.APIURL == "" {
		opts.APIURL = "https://gigachat.devices.sberbank.ru/api/v1"
	}
	if opts.Model == "" {
		opts.Model = "GigaChat"
	}
	return &GigaChatClient{
		opts:       opts,
		httpClient: httpClient,
		tokens:     newTokenCache(time.Minute),
	}
}

func (c *GigaChatClient) Vendor() string { return VendorGigaChat }

type gigaChatTokenResponse struct {
	AccessToken string `json:"access_token"`
	// ExpiresAt is a unix timestamp in milliseconds.
	ExpiresAt int64 `json:"expires_at"`
}

func (c *GigaChatClient) fetchToken(ctx context.Context) (string, time.Time, error) {
	form := url.Values{"scope": {c.opts.Scope}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.OAuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, &UpstreamError{VendorName: VendorGigaChat, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Basic "+c.opts.AuthKey)
	req.Header.Set("RqUID", uuid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, &UpstreamError{VendorName: VendorGigaChat, Err: fmt.Errorf("token exchange: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return "", time.Time{}, &UpstreamError{
			VendorName: VendorGigaChat,
			StatusCode: resp.StatusCode,
			Body:       "token exchange: " + strings.TrimSpace(string(body)),
		}
	}

	var decoded gigaChatTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", time.Time{}, &UpstreamError{VendorName: VendorGigaChat, Err: fmt.Errorf("token exchange: %w", err)}
	}
	if decoded.AccessToken == "" {
		return "", time.Time{}, &UpstreamError{VendorName: VendorGigaChat, Err: fmt.Errorf("token exchange: empty access_token")}
	}
	return decoded.AccessToken, time.UnixMilli(decoded.ExpiresAt), nil
}

func (c *GigaChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	token, err := c.tokens.get(func() (string, time.Time, error) {
		return c.fetchToken(ctx)
	})
	if err != nil {
		return "", err
	}

	reqBody := chatRequest{
		Model:    c.opts.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &UpstreamError{VendorName: VendorGigaChat, Err: err}
	}

	endpoint := strings.TrimRight(c.opts.APIURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(payload)))
	if err != nil {
		return "", &UpstreamError{VendorName: VendorGigaChat, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &UpstreamError{VendorName: VendorGigaChat, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// A rejected token will not recover on its own; drop it so the
		// next turn performs a fresh exchange.
		if resp.StatusCode == http.StatusUnauthorized {
			c.tokens.invalidate()
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return "", &UpstreamError{
			VendorName: VendorGigaChat,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &UpstreamError{VendorName: VendorGigaChat, Err: err}
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", &UpstreamError{VendorName: VendorGigaChat, Body: decoded.Error.Message}
	}
	if len(decoded.Choices) == 0 {
		return "", &UpstreamError{VendorName: VendorGigaChat, Err: fmt.Errorf("empty choices in response")}
	}
	return decoded.Choices[0].Message.Content, nil
}
