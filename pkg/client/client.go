// Package client talks to the course API over HTTP. A Client satisfies the
// catalog, profile and cover collaborators of a listing controller, so the
// terminal browser pages through a remote catalog the same way the server
// pages through its store.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/models"
)

const maxErrorBody = 1 << 20

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the API rooted at baseURL, e.g.
// "http://localhost:8081/v1". token may be empty.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken replaces the bearer token used for subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Login exchanges credentials for a token pair and keeps the access token.
func (c *Client) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	body := map[string]string{"email": email, "password": password}
	var pair models.TokenPair
	if err := c.doRequest(ctx, http.MethodPost, "/auth/login", body, &pair); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	c.token = pair.AccessToken
	return &pair, nil
}

type coursesResponse struct {
	Courses []models.Course `json:"courses"`
}

// Courses returns up to limit raw records after the given key.
func (c *Client) Courses(ctx context.Context, after string, limit int) ([]models.Course, error) {
	params := url.Values{}
	if after != "" {
		params.Set("after", after)
	}
	params.Set("limit", strconv.Itoa(limit))

	var resp coursesResponse
	if err := c.get(ctx, "/catalog?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("client.Courses: %w", err)
	}
	return resp.Courses, nil
}

// Recent returns the last k records by createdAt.
func (c *Client) Recent(ctx context.Context, k int) ([]models.Course, error) {
	params := url.Values{}
	params.Set("k", strconv.Itoa(k))

	var resp coursesResponse
	if err := c.get(ctx, "/catalog/recent?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("client.Recent: %w", err)
	}
	return resp.Courses, nil
}

// Profile fetches a user profile. A 404 maps to app_errors.ErrUserNotFound.
func (c *Client) Profile(ctx context.Context, userID string) (models.Profile, error) {
	var p models.Profile
	if err := c.get(ctx, "/users/"+url.PathEscape(userID), &p); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return models.Profile{}, app_errors.ErrUserNotFound
		}
		return models.Profile{}, fmt.Errorf("client.Profile: %w", err)
	}
	return p, nil
}

// CoverURL resolves a course cover. A 404 maps to app_errors.ErrObjectNotFound.
func (c *Client) CoverURL(ctx context.Context, courseID string) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	if err := c.get(ctx, "/courses/"+url.PathEscape(courseID)+"/cover", &resp); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return "", app_errors.ErrObjectNotFound
		}
		return "", fmt.Errorf("client.CoverURL: %w", err)
	}
	return resp.URL, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
