package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/finvix/finvix/internal/results"
)

// Login exchanges credentials for a bearer token. A 401 here means bad
// credentials, not an expired session; the expiry handler does not fire
// because no token was attached.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	resp, err := c.post(ctx, "/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := decodeJSON(resp, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("login response missing access_token")
	}
	return out.AccessToken, nil
}

// Register creates an account. The backend answers 2xx with a message
// body; callers only need success or a classified failure.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	resp, err := c.post(ctx, "/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// GreetingData is the post-login landing payload.
type GreetingData struct {
	Username string   `json:"username"`
	Quotes   []string `json:"quotes"`
}

// Greeting fetches the landing greeting and quotes.
func (c *Client) Greeting(ctx context.Context) (GreetingData, error) {
	resp, err := c.get(ctx, "/greeting")
	if err != nil {
		return GreetingData{}, err
	}
	var out GreetingData
	if err := decodeJSON(resp, &out); err != nil {
		return GreetingData{}, err
	}
	return out, nil
}

// Dashboard fetches the summary rows. The payload's data field is
// normalized so callers always see an ordered []Row.
func (c *Client) Dashboard(ctx context.Context) ([]results.Row, error) {
	resp, err := c.get(ctx, "/dashboard")
	if err != nil {
		return nil, err
	}

	var out struct {
		Data json.RawMessage `json:"data"`
	}
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 {
		return []results.Row{}, nil
	}
	return results.Normalize(out.Data)
}

// Predict submits one positional input array and returns the single
// predicted row.
func (c *Client) Predict(ctx context.Context, input []any, modelType results.ModelType) (results.Row, error) {
	resp, err := c.post(ctx, "/predict", map[string]any{
		"input":      input,
		"model_type": modelType,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	rows, err := results.Normalize(raw)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("prediction response was empty")
	}
	return rows[0], nil
}
