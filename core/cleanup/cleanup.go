package cleanup

import (
	"github.com/siherrmann/linker/model"
)

// EntityFilterFn decides whether an entity is kept. Filters from multiple
// providers are combined by intersection: an entity survives cleanup only if
// every filter returns true.
type EntityFilterFn func(*model.Entity) bool

// FilterProvider contributes entity filters to a cleanup pass.
type FilterProvider interface {
	FilterFns() []EntityFilterFn
}

// Action is a single cleanup operation applied to a document.
type Action interface {
	Cleanup(doc *model.Document) error
}

// EntityFilterAction removes entities that fail any of its filters. Removal
// is per section and by identity, so duplicate-looking entities are only
// removed when the filtered instance itself is the one in the section.
type EntityFilterAction struct {
	filterFns []EntityFilterFn
}

// NewEntityFilterAction creates an action over an explicit filter list.
func NewEntityFilterAction(filterFns []EntityFilterFn) *EntityFilterAction {
	return &EntityFilterAction{filterFns: filterFns}
}

// FromFilterProviders collects the filters of all providers into one action.
func FromFilterProviders(providers []FilterProvider) *EntityFilterAction {
	var filterFns []EntityFilterFn
	for _, provider := range providers {
		filterFns = append(filterFns, provider.FilterFns()...)
	}
	return NewEntityFilterAction(filterFns)
}

// Cleanup applies the filter intersection to every section of doc.
func (a *EntityFilterAction) Cleanup(doc *model.Document) error {
	for _, section := range doc.Sections {
		kept := section.Entities[:0]
		for _, entity := range section.Entities {
			if a.keep(entity) {
				kept = append(kept, entity)
			}
		}
		section.Entities = kept
	}
	return nil
}

func (a *EntityFilterAction) keep(entity *model.Entity) bool {
	for _, filterFn := range a.filterFns {
		if !filterFn(entity) {
			return false
		}
	}
	return true
}

// DropUnmappedFilterProvider drops entities from the given namespaces that
// carry no mappings, keeping everything else.
type DropUnmappedFilterProvider struct {
	namespaces map[string]struct{}
}

// NewDropUnmappedFilterProvider creates a provider dropping unmapped
// entities produced by the given detection namespaces.
func NewDropUnmappedFilterProvider(namespaces []string) *DropUnmappedFilterProvider {
	set := make(map[string]struct{}, len(namespaces))
	for _, namespace := range namespaces {
		set[namespace] = struct{}{}
	}
	return &DropUnmappedFilterProvider{namespaces: set}
}

// FilterFns returns a single keep filter implementing the drop rule.
func (p *DropUnmappedFilterProvider) FilterFns() []EntityFilterFn {
	return []EntityFilterFn{
		func(entity *model.Entity) bool {
			if _, ok := p.namespaces[entity.Namespace]; !ok {
				return true
			}
			return len(entity.Mappings) > 0
		},
	}
}
