package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"github.com/lox/dixit/internal/server"
)

// Source is where the watcher reads lobby state from
type Source interface {
	Games(ctx context.Context) ([]server.Summary, error)
	Chat(ctx context.Context, since float64) (server.ChatPage, error)
}

// Client polls a running server over HTTP. It keeps its cookie so the
// watcher shows up as a single user.
type Client struct {
	base string
	http *http.Client
}

// NewClient returns a client for the server at baseURL
func NewClient(baseURL string) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		base: baseURL,
		http: &http.Client{Jar: jar, Timeout: 5 * time.Second},
	}, nil
}

// Games returns the game list, most recently active first
func (c *Client) Games(ctx context.Context) ([]server.Summary, error) {
	var games []server.Summary
	if err := c.get(ctx, "/api/games", &games); err != nil {
		return nil, err
	}
	return games, nil
}

// Chat returns the messages posted after since
func (c *Client) Chat(ctx context.Context, since float64) (server.ChatPage, error) {
	var page server.ChatPage
	err := c.get(ctx, "/api/chat?t="+strconv.FormatFloat(since, 'f', -1, 64), &page)
	return page, err
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("GET %s: failed to decode response: %w", path, err)
	}
	return nil
}
