package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"neuraconnect-be/internal/config"
	"neuraconnect-be/internal/pkg/apperror"
)

// Signaler is the contract for the two HTTP round trips a call setup needs:
// minting an ephemeral credential and exchanging the SDP offer.
type Signaler interface {
	MintToken(ctx context.Context, sc SessionConfig) (string, error)
	ExchangeSDP(ctx context.Context, token, offerSDP string) (string, error)
}

// SessionConfig is the per-persona slice of the realtime session request.
type SessionConfig struct {
	Model        string `json:"model"`
	Voice        string `json:"voice,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(cfg config.RealtimeConfig) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: cfg.APIBaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type mintTokenResponse struct {
	ClientSecret struct {
		Value string `json:"value"`
	} `json:"client_secret"`
}

// MintToken requests a short-lived credential scoped to one session. A 401 or
// 403 means the server-side API key is bad and retrying cannot help.
func (c *Client) MintToken(ctx context.Context, sc SessionConfig) (string, error) {
	if sc.Model == "" {
		sc.Model = c.model
	}

	payload, err := json.Marshal(sc)
	if err != nil {
		return "", apperror.Wrap(apperror.KindInternal, "failed to marshal session config", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sessions", bytes.NewReader(payload))
	if err != nil {
		return "", apperror.Wrap(apperror.KindInternal, "failed to create token request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperror.Wrap(apperror.KindConnection, "token request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperror.Wrap(apperror.KindConnection, "failed to read token response", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", apperror.New(apperror.KindAuth, fmt.Sprintf("token mint rejected with status %d", resp.StatusCode))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperror.New(apperror.KindConnection, fmt.Sprintf("token mint HTTP error %d: %s", resp.StatusCode, string(body)))
	}

	var result mintTokenResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", apperror.Wrap(apperror.KindConnection, "failed to parse token response", err)
	}
	if result.ClientSecret.Value == "" {
		return "", apperror.New(apperror.KindAuth, "token response carried no client secret")
	}

	return result.ClientSecret.Value, nil
}

// ExchangeSDP posts the raw offer and returns the raw answer. Non-2xx is
// fatal for this connection attempt but retriable at the setup level.
func (c *Client) ExchangeSDP(ctx context.Context, token, offerSDP string) (string, error) {
	endpoint := c.baseURL + "?model=" + url.QueryEscape(c.model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(offerSDP))
	if err != nil {
		return "", apperror.Wrap(apperror.KindInternal, "failed to create sdp request", err)
	}
	req.Header.Set("Content-Type", "application/sdp")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperror.Wrap(apperror.KindConnection, "sdp exchange failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperror.Wrap(apperror.KindConnection, "failed to read sdp answer", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperror.New(apperror.KindConnection, fmt.Sprintf("sdp exchange HTTP error %d: %s", resp.StatusCode, string(body)))
	}

	return string(body), nil
}
