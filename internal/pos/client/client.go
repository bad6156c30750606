// Package client is the POS agent's HTTP caller for the server sync
// surface. Every request carries the shared device token.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Senanu-web/bskal-enterprise/internal/domain/possync"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/http/v1/dto"
)

const posTokenHeader = "X-POS-Token"

// Client calls the server's /api/pos endpoints.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a Client for baseURL authenticated by the device token.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Sync uploads queued changes and downloads the server snapshot.
func (c *Client) Sync(ctx context.Context, req possync.Request) (*possync.Response, error) {
	var resp possync.Response
	if err := c.do(ctx, http.MethodPost, "/api/pos/sync", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StaffDirectory downloads the offline credential snapshot.
func (c *Client) StaffDirectory(ctx context.Context) ([]dto.StaffCredential, error) {
	var resp struct {
		Items []dto.StaffCredential `json:"items"`
		Count int                   `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/pos/staff-directory", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(posTokenHeader, c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(method, path, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeError(method, path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		return fmt.Errorf("%s %s: %s (%s)", method, path, body.Message, body.Code)
	}
	return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
}
