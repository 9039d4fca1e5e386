package mutations

import "planning-bee/internal/model"

// MutationHandler defines the contract for all section editors.
// Validate checks the request against the working copy without changing it;
// Apply changes the working copy and may report warnings and the id of a
// record it created.
type MutationHandler interface {
	Validate(state *State, mutation *model.Mutation) []model.Message
	Apply(state *State, mutation *model.Mutation) (createdID string, msgs []model.Message)
}
