package registryhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	domainerrors "mediex/contexts/exchange-core/market-engine/domain/errors"
)

// Client consumes the media-registry collaborator contract over JSON/HTTP.
// The registry owns token identity and ownership; the market only asks
// "who holds token T" and "move token T to R".
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type identityResponse struct {
	Identity string `json:"identity"`
}

type tokenCountResponse struct {
	Count uint64 `json:"count"`
}

type transferRequest struct {
	NewOwner string `json:"new_owner"`
}

func (c *Client) OwnerOf(ctx context.Context, tokenID uint64) (string, error) {
	return c.identity(ctx, fmt.Sprintf("%s/api/registry/v1/tokens/%d/owner", c.baseURL, tokenID))
}

func (c *Client) CreatorOf(ctx context.Context, tokenID uint64) (string, error) {
	return c.identity(ctx, fmt.Sprintf("%s/api/registry/v1/tokens/%d/creator", c.baseURL, tokenID))
}

func (c *Client) TransferOwnership(ctx context.Context, tokenID uint64, newOwner string) error {
	body, err := json.Marshal(transferRequest{NewOwner: newOwner})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/api/registry/v1/tokens/%d/transfer", c.baseURL, tokenID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("registry transfer request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return domainerrors.ErrTokenUnknown
	default:
		return fmt.Errorf("registry transfer returned status %d", resp.StatusCode)
	}
}

func (c *Client) TokenCount(ctx context.Context) (uint64, error) {
	url := c.baseURL + "/api/registry/v1/tokens/count"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("registry token count request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("registry token count returned status %d", resp.StatusCode)
	}
	var out tokenCountResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode registry token count: %w", err)
	}
	return out.Count, nil
}

func (c *Client) identity(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("registry identity request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", domainerrors.ErrTokenUnknown
	default:
		return "", fmt.Errorf("registry identity lookup returned status %d", resp.StatusCode)
	}
	var out identityResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode registry identity: %w", err)
	}
	if strings.TrimSpace(out.Identity) == "" {
		return "", fmt.Errorf("registry returned an empty identity")
	}
	return out.Identity, nil
}
