package mutations

import (
	"slices"

	"planning-bee/internal/listedit"
	"planning-bee/internal/model"
	"planning-bee/internal/summary"
)

type serviceProps struct {
	Service string `json:"service"`
	Enabled bool   `json:"enabled"`
}

// SetServiceHandler switches a product on or off. The flags are stored only
// in clientDetails.servicesRequired; review screens read them from there.
type SetServiceHandler struct{}

func (h *SetServiceHandler) Validate(state *State, mutation *model.Mutation) []model.Message {
	var props serviceProps
	if msgs := decodeProps(mutation, &props); msgs != nil {
		return msgs
	}
	if !slices.Contains(summary.Services, props.Service) {
		return critical("UNKNOWN_SERVICE", "Unknown service: %q", props.Service)
	}
	if _, err := state.Section(model.SectionClientDetails); err != nil {
		return critical("INVALID_SECTION", "%v", err)
	}
	return nil
}

func (h *SetServiceHandler) Apply(state *State, mutation *model.Mutation) (string, []model.Message) {
	var props serviceProps
	decodeProps(mutation, &props)
	doc, _ := state.Section(model.SectionClientDetails)
	if err := mergeAt(doc, "servicesRequired", listedit.Doc{props.Service: props.Enabled}); err != nil {
		return "", listError(err)
	}
	state.Touch(model.SectionClientDetails)
	return "", nil
}
