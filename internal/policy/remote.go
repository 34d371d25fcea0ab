package policy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lox/holdem/internal/game"
)

// Remote asks an external service for decisions. The observation is POSTed
// as JSON and the response body must be an action such as
// {"type":"raise","amount":40}.
type Remote struct {
	URL    string
	Client *http.Client
}

// NewRemote creates a remote policy posting to url
func NewRemote(url string) *Remote {
	return &Remote{URL: url, Client: http.DefaultClient}
}

// Decide implements DecisionPolicy. The request is bound to ctx.
func (r *Remote) Decide(ctx context.Context, obs Observation) (game.Action, error) {
	body, err := json.Marshal(obs)
	if err != nil {
		return game.Action{}, fmt.Errorf("encode observation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(body))
	if err != nil {
		return game.Action{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return game.Action{}, fmt.Errorf("policy request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return game.Action{}, fmt.Errorf("policy service returned %s: %s", resp.Status, bytes.TrimSpace(snippet))
	}

	var a game.Action
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&a); err != nil {
		return game.Action{}, fmt.Errorf("decode policy response: %w", err)
	}
	return a, nil
}
