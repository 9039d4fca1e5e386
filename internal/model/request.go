package model

import json "github.com/goccy/go-json"

type MutationRequest struct {
	SessionID string     `json:"session_id"`
	Mutations []Mutation `json:"mutations"`
}

type Mutation struct {
	MutationID   string          `json:"mutation_id"`
	MutationName string          `json:"mutation_name"`
	Properties   json.RawMessage `json:"properties"`
}

type EmailRequest struct {
	To string `json:"to"`
}
