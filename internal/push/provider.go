package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrProvider marks a whole-batch push delivery failure.
var ErrProvider = errors.New("push provider failure")

// Notification is the user-visible payload of one push message.
type Notification struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// TokenResult reports the provider's verdict for a single token.
// Invalid means the token is undeliverable and must be pruned.
type TokenResult struct {
	Token   string
	Invalid bool
	Err     error
}

// Provider delivers a notification to a set of device tokens.
type Provider interface {
	Send(ctx context.Context, tokens []string, note Notification) ([]TokenResult, error)
}

// HTTPProvider talks to an FCM-legacy style push endpoint. One HTTP
// call is issued per token, in order.
type HTTPProvider struct {
	url        string
	serverKey  string
	httpClient *http.Client
}

// NewHTTPProvider constructs an HTTPProvider.
func NewHTTPProvider(url, serverKey string) *HTTPProvider {
	return &HTTPProvider{
		url:       url,
		serverKey: serverKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type providerRequest struct {
	To           string            `json:"to"`
	Notification pushNotification  `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type pushNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type providerResponse struct {
	Failure int `json:"failure"`
	Results []struct {
		Error string `json:"error"`
	} `json:"results"`
}

// Send dispatches the notification token by token. Per-token outcomes
// land in the results; the error return is reserved for a cancelled
// context.
func (p *HTTPProvider) Send(ctx context.Context, tokens []string, note Notification) ([]TokenResult, error) {
	results := make([]TokenResult, 0, len(tokens))
	for _, token := range tokens {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("%w: %v", ErrProvider, err)
		}
		results = append(results, p.sendOne(ctx, token, note))
	}
	return results, nil
}

func (p *HTTPProvider) sendOne(ctx context.Context, token string, note Notification) TokenResult {
	payload, err := json.Marshal(providerRequest{
		To:           token,
		Notification: pushNotification{Title: note.Title, Body: note.Body},
		Data:         note.Data,
	})
	if err != nil {
		return TokenResult{Token: token, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewBuffer(payload))
	if err != nil {
		return TokenResult{Token: token, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+p.serverKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return TokenResult{Token: token, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return TokenResult{Token: token, Err: err}
	}
	if resp.StatusCode >= 400 {
		return TokenResult{Token: token, Err: fmt.Errorf("push endpoint status %d: %s", resp.StatusCode, body)}
	}

	var parsed providerResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return TokenResult{Token: token, Err: err}
	}
	if parsed.Failure > 0 && len(parsed.Results) > 0 {
		switch parsed.Results[0].Error {
		case "NotRegistered", "InvalidRegistration":
			return TokenResult{Token: token, Invalid: true}
		default:
			return TokenResult{Token: token, Err: errors.New(parsed.Results[0].Error)}
		}
	}
	return TokenResult{Token: token}
}
