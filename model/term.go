package model

import (
	"sort"
	"strconv"
	"strings"
)

// AssociatedIdSets is a collection of EquivalentIdSet held in canonical order.
type AssociatedIdSets []EquivalentIdSet

// NewAssociatedIdSets deduplicates the given sets and sorts them into a
// canonical order so collections built from the same sets compare equal.
func NewAssociatedIdSets(sets ...EquivalentIdSet) AssociatedIdSets {
	seen := make(map[string]struct{}, len(sets))
	unique := make(AssociatedIdSets, 0, len(sets))
	for _, set := range sets {
		key := set.key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, set)
	}
	sort.Slice(unique, func(i, j int) bool {
		return unique[i].key() < unique[j].key()
	})
	return unique
}

func (a AssociatedIdSets) key() string {
	var b strings.Builder
	for _, set := range a {
		b.WriteString(set.key())
		b.WriteByte('\x1d')
	}
	return b.String()
}

// SynonymTerm is a container for a single normalised synonym, as produced by
// an ontology parser. It may be composed of multiple raw terms that normalise
// to the same unique string (e.g. "breast cancer" and "Breast Cancer").
// SynonymTerms are immutable and compare by the structural key of Terms,
// TermNorm, ParserName, IsSymbolic and AssociatedIdSets; AggregatedBy and
// MappingTypes are excluded from equality.
type SynonymTerm struct {
	// Terms holds the unnormalised synonym strings.
	Terms []string `json:"terms"`
	// TermNorm is the normalised form.
	TermNorm string `json:"term_norm"`
	// ParserName is the name of the ontology parser that produced this term.
	ParserName string `json:"parser_name"`
	// IsSymbolic is determined by the ontology parser.
	IsSymbolic       bool             `json:"is_symbolic"`
	AssociatedIdSets AssociatedIdSets `json:"associated_id_sets"`
	// AggregatedBy records the id aggregation strategy. Not part of equality.
	AggregatedBy IDAggregationStrategy `json:"aggregated_by,omitempty"`
	// MappingTypes holds mapping type metadata. Not part of equality.
	MappingTypes []string `json:"mapping_types,omitempty"`
}

// IsAmbiguous reports whether the term maps to more than one equivalent id set.
func (s SynonymTerm) IsAmbiguous() bool {
	return len(s.AssociatedIdSets) > 1
}

// StructuralKey returns the canonical key over the fields that participate in
// equality. Terms are treated as a set.
func (s SynonymTerm) StructuralKey() string {
	terms := make([]string, 0, len(s.Terms))
	seen := make(map[string]struct{}, len(s.Terms))
	for _, term := range s.Terms {
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	sort.Strings(terms)

	var b strings.Builder
	for _, term := range terms {
		b.WriteString(term)
		b.WriteByte('\x1f')
	}
	b.WriteByte('\x1e')
	b.WriteString(s.TermNorm)
	b.WriteByte('\x1e')
	b.WriteString(s.ParserName)
	b.WriteByte('\x1e')
	b.WriteString(strconv.FormatBool(s.IsSymbolic))
	b.WriteByte('\x1e')
	b.WriteString(s.AssociatedIdSets.key())
	return b.String()
}

// SynonymTermWithMetrics is a SynonymTerm carrying optional scores from the
// linking strategies that proposed it. The metric fields are excluded from
// structural equality, so care must be taken when the term is used as a key.
type SynonymTermWithMetrics struct {
	SynonymTerm

	SearchScore *float64 `json:"search_score,omitempty"`
	EmbedScore  *float64 `json:"embed_score,omitempty"`
	BoolScore   *float64 `json:"bool_score,omitempty"`
	ExactMatch  *bool    `json:"exact_match,omitempty"`
}

// WithMetrics attaches metric values to a plain SynonymTerm. Nil arguments
// leave the corresponding metric unset.
func WithMetrics(term SynonymTerm, searchScore, embedScore, boolScore *float64, exactMatch *bool) SynonymTermWithMetrics {
	return SynonymTermWithMetrics{
		SynonymTerm: term,
		SearchScore: searchScore,
		EmbedScore:  embedScore,
		BoolScore:   boolScore,
		ExactMatch:  exactMatch,
	}
}

// MergeMetrics returns a new term combining the receiver with the incoming
// term: for each metric field the incoming value wins if set, otherwise the
// existing value is kept. The structural fields are taken from the receiver;
// both terms are expected to share the same structural key.
func (s SynonymTermWithMetrics) MergeMetrics(incoming SynonymTermWithMetrics) SynonymTermWithMetrics {
	merged := s
	if incoming.SearchScore != nil {
		merged.SearchScore = incoming.SearchScore
	}
	if incoming.EmbedScore != nil {
		merged.EmbedScore = incoming.EmbedScore
	}
	if incoming.BoolScore != nil {
		merged.BoolScore = incoming.BoolScore
	}
	if incoming.ExactMatch != nil {
		merged.ExactMatch = incoming.ExactMatch
	}
	return merged
}

// Float64 returns a pointer to v, for setting optional metric fields.
func Float64(v float64) *float64 {
	return &v
}

// Bool returns a pointer to v, for setting optional metric fields.
func Bool(v bool) *bool {
	return &v
}
