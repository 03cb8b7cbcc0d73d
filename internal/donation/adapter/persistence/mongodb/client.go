package mongodb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// bridgeError is a non-2xx bridge response.
type bridgeError struct {
	status  int
	message string
}

func (e *bridgeError) Error() string {
	if e.message == "" {
		return fmt.Sprintf("bridge returned status %d", e.status)
	}
	return e.message
}

func statusOf(err error) int {
	var be *bridgeError
	if errors.As(err, &be) {
		return be.status
	}
	return 0
}

// errorBody covers both failure shapes the bridge emits.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	admin       bool
}

func jsonRequest(method, path string, payload interface{}, admin bool) (request, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return request{}, err
	}
	return request{
		method:      method,
		path:        path,
		body:        bytes.NewReader(raw),
		contentType: "application/json",
		admin:       admin,
	}, nil
}

// call sends r and decodes a 2xx body into out. Other statuses come back as
// *bridgeError carrying the bridge's message.
func (a *Adapter) call(ctx context.Context, r request, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, r.method, a.baseURL+r.path, r.body)
	if err != nil {
		return fmt.Errorf("failed to build bridge request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.admin && a.tokens != nil {
		token, err := a.tokens.Sign("mongodb-adapter")
		if err != nil {
			return fmt.Errorf("failed to sign bridge token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read bridge response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		msg := eb.Error
		if msg == "" {
			msg = eb.Message
		}
		return &bridgeError{status: resp.StatusCode, message: strings.TrimSpace(msg)}
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode bridge response: %w", err)
	}
	return nil
}
