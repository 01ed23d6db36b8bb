package curation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/siherrmann/linker/model"
)

// ErrNoForms is returned when a CuratedTerm is constructed without any
// original forms.
var ErrNoForms = errors.New("curated term requires at least one original form")

// ErrCaseSensitivityConflict is returned when a case-insensitive form is
// laxer than a case-sensitive form for the same lowercased string. Allowing
// this would let a capitalization-agnostic rule silently override a stricter
// capitalization-aware rule for the same text.
var ErrCaseSensitivityConflict = errors.New("case sensitive conflict between curated forms")

// ErrAmbiguousTermNorm is returned when the original forms of a CuratedTerm
// normalise to more than one string. Such a curation spans multiple
// normalised concepts and must be split by the caller.
var ErrAmbiguousTermNorm = errors.New("curated term produces multiple term norms")

// CuratedTermBehaviour describes how a curated term affects NER and linking.
type CuratedTermBehaviour string

const (
	// AddForNERAndLinking uses the term for both dictionary based NER and as
	// a linking target.
	AddForNERAndLinking CuratedTermBehaviour = "ADD_FOR_NER_AND_LINKING"
	// AddForLinkingOnly uses the term only as a linking target.
	AddForLinkingOnly CuratedTermBehaviour = "ADD_FOR_LINKING_ONLY"
	// DropSynonymTermForLinking removes the term as a linking target,
	// normally to eliminate a bad synonym from the underlying ontology. If
	// the term does not exist, it has no effect.
	DropSynonymTermForLinking CuratedTermBehaviour = "DROP_SYNONYM_TERM_FOR_LINKING"
)

// MentionForm is a single surface form of a curated term.
type MentionForm struct {
	String            string                  `json:"string"`
	CaseSensitive     bool                    `json:"case_sensitive"`
	MentionConfidence model.MentionConfidence `json:"mention_confidence"`
}

// CuratedTerm represents a human or rule derived override of the default
// linking behaviour for a single normalised synonym. CuratedTerms are
// validated at construction and immutable afterwards.
type CuratedTerm struct {
	id uuid.UUID

	// originalForms are the versions of this term exactly as specified in
	// the source ontology. They must all normalise to the same string.
	originalForms []MentionForm
	behaviour     CuratedTermBehaviour
	// alternativeForms are generated variants of the original forms.
	alternativeForms []MentionForm
	// associatedIdSets, when non-nil, overrides the parser defaults for the
	// associated synonym term.
	associatedIdSets model.AssociatedIdSets
	// autocurationResults records decisions made by automated curation.
	autocurationResults map[string]string
	// comment holds human readable notes about the curation decision.
	comment string
}

// CuratedTermParams holds the fields of a CuratedTerm under construction.
type CuratedTermParams struct {
	OriginalForms       []MentionForm
	Behaviour           CuratedTermBehaviour
	AlternativeForms    []MentionForm
	AssociatedIdSets    model.AssociatedIdSets
	AutocurationResults map[string]string
	Comment             string
}

// NewCuratedTerm validates and constructs a CuratedTerm. It fails with
// ErrNoForms if no original form is given, and with
// ErrCaseSensitivityConflict if, among the active NER forms, any
// case-insensitive group's minimum confidence is laxer than the minimum
// confidence of the case-sensitive group sharing the same lowercased string.
func NewCuratedTerm(params CuratedTermParams) (*CuratedTerm, error) {
	if len(params.OriginalForms) == 0 {
		return nil, ErrNoForms
	}

	term := &CuratedTerm{
		id:                  uuid.New(),
		originalForms:       append([]MentionForm(nil), params.OriginalForms...),
		behaviour:           params.Behaviour,
		alternativeForms:    append([]MentionForm(nil), params.AlternativeForms...),
		associatedIdSets:    params.AssociatedIdSets,
		autocurationResults: params.AutocurationResults,
		comment:             params.Comment,
	}

	if err := term.checkCaseSensitivityConflicts(); err != nil {
		return nil, err
	}
	return term, nil
}

func (c *CuratedTerm) checkCaseSensitivityConflicts() error {
	caseSensitiveMin := make(map[string]model.MentionConfidence)
	caseInsensitiveMin := make(map[string]model.MentionConfidence)
	for _, form := range c.ActiveNERForms() {
		if form.CaseSensitive {
			recordMin(caseSensitiveMin, strings.ToLower(form.String), form.MentionConfidence)
		} else {
			recordMin(caseInsensitiveMin, strings.ToLower(form.String), form.MentionConfidence)
		}
	}

	for key, ciMin := range caseInsensitiveMin {
		csMin, ok := caseSensitiveMin[key]
		if !ok {
			// no case sensitive counterpart, nothing to conflict with
			csMin = model.MentionConfidencePossible
		}
		if ciMin < csMin {
			return fmt.Errorf("%w: %q", ErrCaseSensitivityConflict, key)
		}
	}
	return nil
}

func recordMin(minima map[string]model.MentionConfidence, key string, confidence model.MentionConfidence) {
	if existing, ok := minima[key]; !ok || confidence < existing {
		minima[key] = confidence
	}
}

// ID returns the opaque identifier of this curation, assigned at
// construction and excluded from comparisons.
func (c *CuratedTerm) ID() uuid.UUID {
	return c.id
}

// Behaviour returns the intended behaviour of this term.
func (c *CuratedTerm) Behaviour() CuratedTermBehaviour {
	return c.behaviour
}

// OriginalForms returns the forms exactly as specified in the source.
func (c *CuratedTerm) OriginalForms() []MentionForm {
	return c.originalForms
}

// AssociatedIdSets returns the id set override, or nil if none is set.
func (c *CuratedTerm) AssociatedIdSets() model.AssociatedIdSets {
	return c.associatedIdSets
}

// Comment returns the human readable curation notes.
func (c *CuratedTerm) Comment() string {
	return c.comment
}

// AutocurationResults returns the recorded automated curation decisions.
func (c *CuratedTerm) AutocurationResults() map[string]string {
	return c.autocurationResults
}

// AdditionalToSource reports whether this term was created in addition to
// the terms defined in the original ontology.
func (c *CuratedTerm) AdditionalToSource() bool {
	return c.associatedIdSets != nil &&
		(c.behaviour == AddForNERAndLinking || c.behaviour == AddForLinkingOnly)
}

// TermNormForLinking normalises every original form and requires the results
// to collapse to exactly one string, returned as the linking key. Multiple
// norms fail with ErrAmbiguousTermNorm; the curation should be separated
// into two or more items by the caller.
func (c *CuratedTerm) TermNormForLinking(entityClass string, normalize model.NormalizeFunc) (string, error) {
	norms := make(map[string]struct{}, 1)
	var norm string
	for _, form := range c.originalForms {
		norm = normalize(form.String, entityClass)
		norms[norm] = struct{}{}
	}
	if len(norms) != 1 {
		return "", fmt.Errorf("%w: %v", ErrAmbiguousTermNorm, keys(norms))
	}
	return norm, nil
}

// AllForms returns the original and alternative forms.
func (c *CuratedTerm) AllForms() []MentionForm {
	forms := make([]MentionForm, 0, len(c.originalForms)+len(c.alternativeForms))
	forms = append(forms, c.originalForms...)
	forms = append(forms, c.alternativeForms...)
	return forms
}

// AllStrings returns the strings of all forms.
func (c *CuratedTerm) AllStrings() []string {
	forms := c.AllForms()
	result := make([]string, 0, len(forms))
	for _, form := range forms {
		result = append(result, form.String)
	}
	return result
}

// ActiveNERForms returns the forms usable for dictionary based NER: all
// forms when the behaviour is AddForNERAndLinking, excluding forms marked
// with the ignore confidence.
func (c *CuratedTerm) ActiveNERForms() []MentionForm {
	if c.behaviour != AddForNERAndLinking {
		return nil
	}
	var active []MentionForm
	for _, form := range c.AllForms() {
		if form.MentionConfidence != model.MentionConfidenceIgnore {
			active = append(active, form)
		}
	}
	return active
}

type curatedTermJSON struct {
	OriginalForms       []MentionForm          `json:"original_forms"`
	Behaviour           CuratedTermBehaviour   `json:"behaviour"`
	AlternativeForms    []MentionForm          `json:"alternative_forms,omitempty"`
	AssociatedIdSets    model.AssociatedIdSets `json:"associated_id_sets,omitempty"`
	AutocurationResults map[string]string      `json:"autocuration_results,omitempty"`
	Comment             string                 `json:"comment,omitempty"`
}

// MarshalJSON serializes the curation without its identifier.
func (c *CuratedTerm) MarshalJSON() ([]byte, error) {
	return json.Marshal(curatedTermJSON{
		OriginalForms:       c.originalForms,
		Behaviour:           c.behaviour,
		AlternativeForms:    c.alternativeForms,
		AssociatedIdSets:    c.associatedIdSets,
		AutocurationResults: c.autocurationResults,
		Comment:             c.comment,
	})
}

// CuratedTermFromJSON parses and validates a serialized curation.
func CuratedTermFromJSON(data []byte) (*CuratedTerm, error) {
	var encoded curatedTermJSON
	if err := json.Unmarshal(data, &encoded); err != nil {
		return nil, err
	}
	return NewCuratedTerm(CuratedTermParams{
		OriginalForms:       encoded.OriginalForms,
		Behaviour:           encoded.Behaviour,
		AlternativeForms:    encoded.AlternativeForms,
		AssociatedIdSets:    encoded.AssociatedIdSets,
		AutocurationResults: encoded.AutocurationResults,
		Comment:             encoded.Comment,
	})
}

func keys(set map[string]struct{}) []string {
	result := make([]string, 0, len(set))
	for key := range set {
		result = append(result, key)
	}
	return result
}
