// Package main provides a TCP record generation server for RecordGen.
package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nickyhof/RecordGen/db"
)

const (
	ActionGenerate = "generate"
	ActionCheck    = "check"
	ActionRecords  = "records"
	ActionHistory  = "history"
)

// Request is the JSON form of a client line. Action defaults to generate and
// Dialect to the server dialect.
type Request struct {
	Query   string `json:"query"`
	Action  string `json:"action,omitempty"`
	Dialect string `json:"dialect,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// AuthResponse is the result payload of a successful AUTH command.
type AuthResponse struct {
	Authenticated bool   `json:"authenticated"`
	Identity      string `json:"identity"`
	ExpiresIn     int    `json:"expires_in,omitempty"`
}

// EncodeResponse serializes a Response to JSON with a newline.
func EncodeResponse(resp db.Response) ([]byte, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// DecodeRequest parses a client line. Lines starting with '{' are JSON
// requests, anything else is a statement to generate.
func DecodeRequest(line []byte) (Request, error) {
	text := strings.TrimSpace(string(line))
	if !strings.HasPrefix(text, "{") {
		return Request{Query: text, Action: ActionGenerate}, nil
	}

	var req Request
	if err := json.Unmarshal([]byte(text), &req); err != nil {
		return Request{}, fmt.Errorf("invalid request: %w", err)
	}
	req.Action = strings.ToLower(strings.TrimSpace(req.Action))
	if req.Action == "" {
		req.Action = ActionGenerate
	}
	switch req.Action {
	case ActionGenerate, ActionCheck, ActionRecords, ActionHistory:
		return req, nil
	default:
		return Request{}, fmt.Errorf("unknown action: %s", req.Action)
	}
}
