// Package engine runs a request's mutations in order against one session.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"planning-bee/internal/jsonpatch"
	"planning-bee/internal/model"
	"planning-bee/internal/mutations"
	"planning-bee/internal/store"
)

// Session is the part of a form-state container the engine needs.
type Session interface {
	ID() string
	Snapshot() store.Sections
	PatchMany(ctx context.Context, values map[string]json.RawMessage) error
}

type Engine struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Process validates and applies each mutation in order on a working copy of
// the session. A CRITICAL message stops processing and nothing is stored;
// otherwise the touched sections are patched in one write. The returned
// error is set only when persisting fails.
func (e *Engine) Process(ctx context.Context, session Session, req *model.MutationRequest) (*model.MutationResponse, error) {
	start := time.Now()

	before := session.Snapshot()
	state := mutations.NewState(before)

	allMessages := []model.Message{}
	processed := []model.ProcessedMutation{}
	hasCritical := false

	record := func(msgs []model.Message, indexes []int) []int {
		for _, m := range msgs {
			m.ID = len(allMessages)
			allMessages = append(allMessages, m)
			indexes = append(indexes, m.ID)
			if m.Level == model.LevelCritical {
				hasCritical = true
			}
		}
		return indexes
	}

	for _, mut := range req.Mutations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		handler, ok := mutations.Get(mut.MutationName)
		if !ok {
			indexes := record([]model.Message{model.Critical("UNKNOWN_MUTATION",
				fmt.Sprintf("Unknown mutation: %s", mut.MutationName))}, nil)
			processed = append(processed, model.ProcessedMutation{Mutation: mut, MessageIndexes: indexes})
			break
		}

		indexes := record(handler.Validate(state, &mut), nil)
		if hasCritical {
			processed = append(processed, model.ProcessedMutation{Mutation: mut, MessageIndexes: indexes})
			break
		}

		createdID, applyMsgs := handler.Apply(state, &mut)
		indexes = record(applyMsgs, indexes)
		pm := model.ProcessedMutation{Mutation: mut, MessageIndexes: indexes}
		if !hasCritical {
			pm.CreatedID = createdID
		}
		processed = append(processed, pm)
		if hasCritical {
			break
		}
	}

	outcome := model.OutcomeSuccess
	changes, revert := json.RawMessage("[]"), json.RawMessage("[]")

	if hasCritical {
		outcome = model.OutcomeFailure
		e.logger.Info("mutations rejected",
			zap.String("session", session.ID()),
			zap.Int("processed", len(processed)),
			zap.Int("messages", len(allMessages)))
	} else if state.Touched() {
		changed, err := state.Changed()
		if err != nil {
			return nil, err
		}
		changes, revert, err = diff(before, changed)
		if err != nil {
			return nil, err
		}
		if err := session.PatchMany(ctx, changed); err != nil {
			return nil, err
		}
		e.logger.Debug("mutations applied",
			zap.String("session", session.ID()),
			zap.Int("sections", len(changed)))
	}

	elapsed := time.Since(start)
	now := time.Now().UTC()

	return &model.MutationResponse{
		Metadata: model.ResponseMetadata{
			RequestID:   uuid.New().String(),
			SessionID:   session.ID(),
			StartedAt:   now.Add(-elapsed).Format(time.RFC3339),
			CompletedAt: now.Format(time.RFC3339),
			DurationMs:  elapsed.Milliseconds(),
			Outcome:     outcome,
		},
		Result: model.MutationResult{
			Messages:  allMessages,
			Mutations: processed,
			Changes:   changes,
			Revert:    revert,
		},
	}, nil
}

// diff returns the forward and backward patches between the stored
// document before the request and after it.
func diff(before store.Sections, changed map[string]json.RawMessage) (json.RawMessage, json.RawMessage, error) {
	a := make(map[string]any, len(before))
	b := make(map[string]any, len(before))
	for name, raw := range before {
		doc, err := decode(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		a[name] = doc
		b[name] = doc
	}
	for name, raw := range changed {
		doc, err := decode(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		b[name] = doc
	}

	fwd, bwd := jsonpatch.Diff(a, b, "")
	changes, err := jsonpatch.Marshal(fwd)
	if err != nil {
		return nil, nil, err
	}
	revert, err := jsonpatch.Marshal(bwd)
	if err != nil {
		return nil, nil, err
	}
	return changes, revert, nil
}

func decode(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
