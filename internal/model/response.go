package model

import json "github.com/goccy/go-json"

type MutationResponse struct {
	Metadata ResponseMetadata `json:"metadata"`
	Result   MutationResult   `json:"result"`
}

type ResponseMetadata struct {
	RequestID   string `json:"request_id"`
	SessionID   string `json:"session_id"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at"`
	DurationMs  int64  `json:"duration_ms"`
	Outcome     string `json:"outcome"`
}

type MutationResult struct {
	Messages  []Message           `json:"messages"`
	Mutations []ProcessedMutation `json:"mutations"`
	// Changes is an RFC 6902 patch from the stored document before the
	// request to the stored document after it.
	Changes json.RawMessage `json:"changes"`
	// Revert undoes Changes.
	Revert json.RawMessage `json:"revert"`
}

type ProcessedMutation struct {
	Mutation       Mutation `json:"mutation"`
	CreatedID      string   `json:"created_id,omitempty"`
	MessageIndexes []int    `json:"message_indexes,omitempty"`
}

type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

const (
	OutcomeSuccess = "SUCCESS"
	OutcomeFailure = "FAILURE"
)
