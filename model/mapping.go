package model

import (
	"sort"
	"strings"
)

// IDAndSource is a single knowledgebase identifier together with the name of
// the knowledgebase it originates from.
type IDAndSource struct {
	ID     string `json:"id"`
	Source string `json:"source"`
}

// EquivalentIdSet is an immutable set of knowledgebase ids, from one or more
// sources, that denote the same real world concept.
type EquivalentIdSet struct {
	IDsAndSource []IDAndSource `json:"ids_and_source"`
}

// NewEquivalentIdSet creates an EquivalentIdSet with its members deduplicated
// and held in a canonical sorted order, so that two sets built from the same
// pairs compare equal regardless of input order.
func NewEquivalentIdSet(idsAndSource ...IDAndSource) EquivalentIdSet {
	seen := make(map[IDAndSource]struct{}, len(idsAndSource))
	unique := make([]IDAndSource, 0, len(idsAndSource))
	for _, pair := range idsAndSource {
		if _, ok := seen[pair]; ok {
			continue
		}
		seen[pair] = struct{}{}
		unique = append(unique, pair)
	}
	sort.Slice(unique, func(i, j int) bool {
		if unique[i].ID != unique[j].ID {
			return unique[i].ID < unique[j].ID
		}
		return unique[i].Source < unique[j].Source
	})
	return EquivalentIdSet{IDsAndSource: unique}
}

// IDs returns the ids of all members.
func (e EquivalentIdSet) IDs() []string {
	ids := make([]string, 0, len(e.IDsAndSource))
	for _, pair := range e.IDsAndSource {
		ids = append(ids, pair.ID)
	}
	return ids
}

// Sources returns the distinct sources of all members.
func (e EquivalentIdSet) Sources() []string {
	seen := make(map[string]struct{}, len(e.IDsAndSource))
	sources := make([]string, 0, len(e.IDsAndSource))
	for _, pair := range e.IDsAndSource {
		if _, ok := seen[pair.Source]; ok {
			continue
		}
		seen[pair.Source] = struct{}{}
		sources = append(sources, pair.Source)
	}
	return sources
}

// key returns a canonical string representation used for structural equality.
func (e EquivalentIdSet) key() string {
	var b strings.Builder
	for _, pair := range e.IDsAndSource {
		b.WriteString(pair.ID)
		b.WriteByte('\x1f')
		b.WriteString(pair.Source)
		b.WriteByte('\x1e')
	}
	return b.String()
}

// Equal reports structural equality with another set. Both sides are assumed
// to be in canonical order, as produced by NewEquivalentIdSet.
func (e EquivalentIdSet) Equal(other EquivalentIdSet) bool {
	return e.key() == other.key()
}

// Mapping is a fully mapped and disambiguated knowledgebase concept assigned
// to an Entity. Mappings are immutable once constructed and compare by value;
// Metadata is excluded from equality.
type Mapping struct {
	// DefaultLabel is the default label from the knowledgebase.
	DefaultLabel string `json:"default_label"`
	// Source is the knowledgebase/database/ontology name.
	Source string `json:"source"`
	// ParserName is the origin of this mapping.
	ParserName string `json:"parser_name"`
	// Idx is the identifier within the knowledgebase.
	Idx                      string                   `json:"idx"`
	StringMatchStrategy      string                   `json:"string_match_strategy"`
	StringMatchConfidence    StringMatchConfidence    `json:"string_match_confidence"`
	DisambiguationConfidence DisambiguationConfidence `json:"disambiguation_confidence,omitempty"`
	DisambiguationStrategy   string                   `json:"disambiguation_strategy,omitempty"`
	// XrefSourceParserName is the source parser name if this mapping is an XREF.
	XrefSourceParserName string   `json:"xref_source_parser_name,omitempty"`
	Metadata             Metadata `json:"metadata,omitempty"`
}

// Equal reports value equality with another mapping, ignoring Metadata.
func (m Mapping) Equal(other Mapping) bool {
	return m.DefaultLabel == other.DefaultLabel &&
		m.Source == other.Source &&
		m.ParserName == other.ParserName &&
		m.Idx == other.Idx &&
		m.StringMatchStrategy == other.StringMatchStrategy &&
		m.StringMatchConfidence == other.StringMatchConfidence &&
		m.DisambiguationConfidence == other.DisambiguationConfidence &&
		m.DisambiguationStrategy == other.DisambiguationStrategy &&
		m.XrefSourceParserName == other.XrefSourceParserName
}
