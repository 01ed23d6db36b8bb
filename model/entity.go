package model

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ErrNoSpans is returned when an Entity is constructed without any spans.
var ErrNoSpans = errors.New("entity requires at least one span")

// NormalizeFunc is a pure function that maps a string to its normalised form,
// keyed by entity class. It must be deterministic and free of side effects.
type NormalizeFunc func(text string, entityClass string) string

// DefaultNormalize is the fallback normalizer used when an Entity is built
// without an explicit one. It collapses whitespace and uppercases, which is
// sufficient for case and spacing variants of the same surface form.
func DefaultNormalize(text string, entityClass string) string {
	return strings.ToUpper(strings.Join(strings.Fields(text), " "))
}

// Entity is a container for information about a single mention detected
// within a Section. The most important fields are Match (the actual string
// detected), the synonym term store (candidates for knowledgebase hits) and
// Mappings, the final product of linked references to the underlying concept.
//
// Equality and hashing are by identity, not by field values: every Entity is
// assigned a unique id at construction, and two entities with identical
// match/spans/class remain distinct. This is load bearing. Overlapping
// candidate mentions from different detectors legitimately coexist until a
// disambiguation stage picks one, and cleanup removes entities by identity.
type Entity struct {
	id uuid.UUID

	// Match is the exact text representation of the mention.
	Match string
	// EntityClass is the vocabulary/category tag of the mention.
	EntityClass string
	// Spans is the non-empty set of character spans covered by the mention.
	// Spans may be non-contiguous.
	Spans []CharSpan
	// Namespace identifies the detection step that produced this instance.
	Namespace         string
	MentionConfidence MentionConfidence
	// Mappings is the set of resolved knowledgebase links, value-equal.
	Mappings []Mapping
	Metadata Metadata

	start     int
	end       int
	matchNorm string

	// synonymTerms is keyed by the structural key of each term.
	synonymTerms map[string]SynonymTermWithMetrics
}

// EntityParams holds the caller supplied fields for Entity construction.
type EntityParams struct {
	Match             string
	EntityClass       string
	Namespace         string
	MentionConfidence MentionConfidence
	Mappings          []Mapping
	Metadata          Metadata
	// Normalizer computes the normalised match. DefaultNormalize is used
	// when nil.
	Normalizer NormalizeFunc
}

// NewEntity creates an Entity from an explicit span set. It fails with
// ErrNoSpans if spans is empty. MentionConfidence defaults to
// MentionConfidenceHighlyLikely when unset.
func NewEntity(spans []CharSpan, params EntityParams) (*Entity, error) {
	start, end, err := calcStartsAndEnds(spans)
	if err != nil {
		return nil, err
	}

	normalizer := params.Normalizer
	if normalizer == nil {
		normalizer = DefaultNormalize
	}
	confidence := params.MentionConfidence
	if confidence == MentionConfidenceIgnore {
		confidence = MentionConfidenceHighlyLikely
	}

	entity := &Entity{
		id:                uuid.New(),
		Match:             params.Match,
		EntityClass:       params.EntityClass,
		Spans:             append([]CharSpan(nil), spans...),
		Namespace:         params.Namespace,
		MentionConfidence: confidence,
		Mappings:          append([]Mapping(nil), params.Mappings...),
		Metadata:          params.Metadata,
		start:             start,
		end:               end,
		matchNorm:         normalizer(params.Match, params.EntityClass),
		synonymTerms:      make(map[string]SynonymTermWithMetrics),
	}
	return entity, nil
}

// NewEntityFromSpans creates an Entity from a list of character spans plus
// the text of the containing section. The match string is derived by joining
// the covered substrings with joinStr.
func NewEntityFromSpans(spans []CharSpan, text string, joinStr string, params EntityParams) (*Entity, error) {
	pieces := make([]string, 0, len(spans))
	for _, span := range spans {
		pieces = append(pieces, text[span.Start:span.End])
	}
	params.Match = strings.Join(pieces, joinStr)
	return NewEntity(spans, params)
}

// NewContiguousEntity creates an Entity covering a single contiguous span.
func NewContiguousEntity(start, end int, params EntityParams) (*Entity, error) {
	return NewEntity([]CharSpan{{Start: start, End: end}}, params)
}

func calcStartsAndEnds(spans []CharSpan) (int, int, error) {
	earliestStart := math.MaxInt
	latestEnd := 0
	for _, span := range spans {
		if span.Start < earliestStart {
			earliestStart = span.Start
		}
		if span.End > latestEnd {
			latestEnd = span.End
		}
	}
	if earliestStart == math.MaxInt {
		return 0, 0, ErrNoSpans
	}
	return earliestStart, latestEnd, nil
}

// ID returns the identity of this entity, assigned at construction.
func (e *Entity) ID() uuid.UUID {
	return e.id
}

// Equal reports identity equality: true only for the same instance.
func (e *Entity) Equal(other *Entity) bool {
	return other != nil && e.id == other.id
}

// Start returns the minimum span start.
func (e *Entity) Start() int {
	return e.start
}

// End returns the maximum span end.
func (e *Entity) End() int {
	return e.end
}

// MatchNorm returns the normalised match, computed once at construction.
func (e *Entity) MatchNorm() string {
	return e.matchNorm
}

// Len returns the number of characters enclosed by the entity bounds.
func (e *Entity) Len() int {
	return e.end - e.start
}

func (e *Entity) String() string {
	return fmt.Sprintf("%s:%s:%s:%d:%d", e.Match, e.EntityClass, e.Namespace, e.start, e.end)
}

// AddMapping adds a mapping if no value-equal mapping is already present.
func (e *Entity) AddMapping(mapping Mapping) {
	for _, existing := range e.Mappings {
		if existing.Equal(mapping) {
			return
		}
	}
	e.Mappings = append(e.Mappings, mapping)
}

// UpdateTerms inserts scored synonym terms into the per-entity term store.
// Terms sharing a structural key with an existing entry are merged: incoming
// non-nil metric values replace the stored ones, everything else is kept.
// Repeated merges for the same normalised synonym across detection passes
// converge to a single entry carrying the union of available metrics.
func (e *Entity) UpdateTerms(terms []SynonymTermWithMetrics) {
	if e.synonymTerms == nil {
		e.synonymTerms = make(map[string]SynonymTermWithMetrics)
	}
	for _, term := range terms {
		key := term.StructuralKey()
		if existing, ok := e.synonymTerms[key]; ok {
			e.synonymTerms[key] = existing.MergeMetrics(term)
		} else {
			e.synonymTerms[key] = term
		}
	}
}

// SynonymTerms returns the distinct stored terms in a deterministic order.
func (e *Entity) SynonymTerms() []SynonymTermWithMetrics {
	keys := make([]string, 0, len(e.synonymTerms))
	for key := range e.synonymTerms {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	terms := make([]SynonymTermWithMetrics, 0, len(keys))
	for _, key := range keys {
		terms = append(terms, e.synonymTerms[key])
	}
	return terms
}

// ClearTerms drops all stored synonym terms.
func (e *Entity) ClearTerms() {
	e.synonymTerms = make(map[string]SynonymTermWithMetrics)
}

// IsCompletelyOverlapped reports whether every span of this entity is
// completely contained in some span of other.
func (e *Entity) IsCompletelyOverlapped(other *Entity) bool {
	for _, span := range e.Spans {
		contained := false
		for _, otherSpan := range other.Spans {
			if span.IsCompletelyOverlapped(otherSpan) {
				contained = true
				break
			}
		}
		if !contained {
			return false
		}
	}
	return true
}

// IsPartiallyOverlapped reports whether the two entities geometrically
// overlap. It is defined only when both entities have exactly one span each
// and returns false otherwise: multi-span entities may overlap in the
// technical sense while carrying distinct semantic meaning, e.g.
//
//	text: lung and liver cancer
//	lung cancer  -> [CharSpan(0,4), CharSpan(15,21)]
//	liver cancer -> [CharSpan(9,21)]
//
// are distinct concepts despite sharing characters.
func (e *Entity) IsPartiallyOverlapped(other *Entity) bool {
	if len(e.Spans) == 1 && len(other.Spans) == 1 {
		return e.Spans[0].IsPartiallyOverlapped(other.Spans[0])
	}
	return false
}

// AsBrat renders this entity in the third party biomedical nlp Brat format.
func (e *Entity) AsBrat() string {
	return fmt.Sprintf("%s\t%s\t%d\t%d\t%s\n", e.id, e.EntityClass, e.start, e.end, e.Match)
}
