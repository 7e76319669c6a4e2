// Package http is a small client for the activities API.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mergington-activities/internal/activities"
)

// APIError is a non-2xx answer carrying the server's detail message.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("activities api: %d %s", e.StatusCode, e.Detail)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			// the root route answers with a redirect the caller may want to see
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.httpClient.Do(req)
}

// ListActivities fetches the catalog in server order.
func (c *Client) ListActivities(ctx context.Context) (activities.Catalog, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/activities", nil)
	if err != nil {
		return nil, err
	}
	var catalog activities.Catalog
	if err := c.doJSON(ctx, req, &catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

// Signup registers email for the activity and returns the confirmation message.
func (c *Client) Signup(ctx context.Context, activityName, email string) (string, error) {
	target := fmt.Sprintf("%s/activities/%s/signup?email=%s",
		c.baseURL, url.PathEscape(activityName), url.QueryEscape(email))
	req, err := http.NewRequest(http.MethodPost, target, nil)
	if err != nil {
		return "", err
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := c.doJSON(ctx, req, &body); err != nil {
		return "", err
	}
	return body.Message, nil
}

// Ready reports whether the server's store answers.
func (c *Client) Ready(ctx context.Context) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/ready", nil)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, req, nil)
}

func (c *Client) doJSON(ctx context.Context, req *http.Request, out interface{}) error {
	resp, err := c.DoWithContext(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(data, &body) == nil {
			apiErr.Detail = body.Detail
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
