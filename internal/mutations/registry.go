package mutations

var registry = map[string]MutationHandler{
	"patch_section": &PatchSectionHandler{},
	"merge_section": &MergeSectionHandler{},
	"list_add":      &ListAddHandler{},
	"list_update":   &ListUpdateHandler{},
	"list_remove":   &ListRemoveHandler{},
	"select_person": &SelectPersonHandler{},
	"set_service":   &SetServiceHandler{},
	"reset_session": &ResetSessionHandler{},
}

func Get(name string) (MutationHandler, bool) {
	h, ok := registry[name]
	return h, ok
}

// Names lists the registered mutations.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
