package curation

import (
	"testing"

	"github.com/siherrmann/linker/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCuratedTerm(t *testing.T) {
	t.Run("Valid term is constructed", func(t *testing.T) {
		term, err := NewCuratedTerm(CuratedTermParams{
			OriginalForms: []MentionForm{
				{String: "EGFR", CaseSensitive: true, MentionConfidence: model.MentionConfidenceHighlyLikely},
			},
			Behaviour: AddForNERAndLinking,
			Comment:   "well known gene symbol",
		})
		require.NoError(t, err)
		assert.Equal(t, AddForNERAndLinking, term.Behaviour())
		assert.Equal(t, "well known gene symbol", term.Comment())
		assert.Len(t, term.OriginalForms(), 1)
	})

	t.Run("No original forms fail", func(t *testing.T) {
		_, err := NewCuratedTerm(CuratedTermParams{Behaviour: AddForNERAndLinking})
		assert.ErrorIs(t, err, ErrNoForms)
	})

	t.Run("Identifiers are unique per construction", func(t *testing.T) {
		params := CuratedTermParams{
			OriginalForms: []MentionForm{{String: "EGFR", MentionConfidence: model.MentionConfidenceProbable}},
			Behaviour:     AddForLinkingOnly,
		}
		a, err := NewCuratedTerm(params)
		require.NoError(t, err)
		b, err := NewCuratedTerm(params)
		require.NoError(t, err)
		assert.NotEqual(t, a.ID(), b.ID())
	})
}

func TestCuratedTermCaseSensitivityConflicts(t *testing.T) {
	t.Run("Laxer case-insensitive form conflicts", func(t *testing.T) {
		_, err := NewCuratedTerm(CuratedTermParams{
			OriginalForms: []MentionForm{
				{String: "ALL", CaseSensitive: true, MentionConfidence: model.MentionConfidenceHighlyLikely},
				{String: "all", CaseSensitive: false, MentionConfidence: model.MentionConfidencePossible},
			},
			Behaviour: AddForNERAndLinking,
		})
		assert.ErrorIs(t, err, ErrCaseSensitivityConflict)
	})

	t.Run("Stricter case-insensitive form passes", func(t *testing.T) {
		_, err := NewCuratedTerm(CuratedTermParams{
			OriginalForms: []MentionForm{
				{String: "ALL", CaseSensitive: true, MentionConfidence: model.MentionConfidencePossible},
				{String: "all", CaseSensitive: false, MentionConfidence: model.MentionConfidenceProbable},
			},
			Behaviour: AddForNERAndLinking,
		})
		assert.NoError(t, err)
	})

	t.Run("Missing case-sensitive counterpart defaults to possible", func(t *testing.T) {
		// a case-insensitive form below POSSIBLE conflicts even without a
		// case-sensitive counterpart, IGNORE is excluded from active forms so
		// use a raw confidence between IGNORE and POSSIBLE
		_, err := NewCuratedTerm(CuratedTermParams{
			OriginalForms: []MentionForm{
				{String: "all", CaseSensitive: false, MentionConfidence: model.MentionConfidence(5)},
			},
			Behaviour: AddForNERAndLinking,
		})
		assert.ErrorIs(t, err, ErrCaseSensitivityConflict)

		_, err = NewCuratedTerm(CuratedTermParams{
			OriginalForms: []MentionForm{
				{String: "all", CaseSensitive: false, MentionConfidence: model.MentionConfidencePossible},
			},
			Behaviour: AddForNERAndLinking,
		})
		assert.NoError(t, err)
	})

	t.Run("Conflicting alternative forms are caught", func(t *testing.T) {
		_, err := NewCuratedTerm(CuratedTermParams{
			OriginalForms: []MentionForm{
				{String: "ALL", CaseSensitive: true, MentionConfidence: model.MentionConfidenceHighlyLikely},
			},
			AlternativeForms: []MentionForm{
				{String: "All", CaseSensitive: false, MentionConfidence: model.MentionConfidencePossible},
			},
			Behaviour: AddForNERAndLinking,
		})
		assert.ErrorIs(t, err, ErrCaseSensitivityConflict)
	})

	t.Run("Linking-only behaviour skips the check", func(t *testing.T) {
		_, err := NewCuratedTerm(CuratedTermParams{
			OriginalForms: []MentionForm{
				{String: "ALL", CaseSensitive: true, MentionConfidence: model.MentionConfidenceHighlyLikely},
				{String: "all", CaseSensitive: false, MentionConfidence: model.MentionConfidencePossible},
			},
			Behaviour: AddForLinkingOnly,
		})
		assert.NoError(t, err, "Expected no conflict when no form is active for NER")
	})

	t.Run("Ignored forms do not participate", func(t *testing.T) {
		_, err := NewCuratedTerm(CuratedTermParams{
			OriginalForms: []MentionForm{
				{String: "ALL", CaseSensitive: true, MentionConfidence: model.MentionConfidenceHighlyLikely},
				{String: "all", CaseSensitive: false, MentionConfidence: model.MentionConfidenceIgnore},
			},
			Behaviour: AddForNERAndLinking,
		})
		assert.NoError(t, err)
	})
}

func TestCuratedTermTermNormForLinking(t *testing.T) {
	t.Run("Forms collapsing to one norm succeed", func(t *testing.T) {
		term, err := NewCuratedTerm(CuratedTermParams{
			OriginalForms: []MentionForm{
				{String: "breast cancer", MentionConfidence: model.MentionConfidenceProbable},
				{String: "Breast Cancer", MentionConfidence: model.MentionConfidenceProbable},
			},
			Behaviour: AddForLinkingOnly,
		})
		require.NoError(t, err)

		norm, err := term.TermNormForLinking("disease", model.DefaultNormalize)
		require.NoError(t, err)
		assert.Equal(t, "BREAST CANCER", norm)
	})

	t.Run("Forms producing multiple norms fail", func(t *testing.T) {
		term, err := NewCuratedTerm(CuratedTermParams{
			OriginalForms: []MentionForm{
				{String: "breast cancer", MentionConfidence: model.MentionConfidenceProbable},
				{String: "breast carcinoma", MentionConfidence: model.MentionConfidenceProbable},
			},
			Behaviour: AddForLinkingOnly,
		})
		require.NoError(t, err)

		_, err = term.TermNormForLinking("disease", model.DefaultNormalize)
		assert.ErrorIs(t, err, ErrAmbiguousTermNorm)
	})
}

func TestCuratedTermProjections(t *testing.T) {
	term, err := NewCuratedTerm(CuratedTermParams{
		OriginalForms: []MentionForm{
			{String: "EGFR", CaseSensitive: true, MentionConfidence: model.MentionConfidenceHighlyLikely},
		},
		AlternativeForms: []MentionForm{
			{String: "Egfr", CaseSensitive: true, MentionConfidence: model.MentionConfidenceProbable},
			{String: "egfr", CaseSensitive: true, MentionConfidence: model.MentionConfidenceIgnore},
		},
		Behaviour: AddForNERAndLinking,
	})
	require.NoError(t, err)

	t.Run("AllForms spans original and alternative forms", func(t *testing.T) {
		assert.Len(t, term.AllForms(), 3)
	})

	t.Run("AllStrings returns the form strings", func(t *testing.T) {
		assert.Equal(t, []string{"EGFR", "Egfr", "egfr"}, term.AllStrings())
	})

	t.Run("ActiveNERForms excludes ignored forms", func(t *testing.T) {
		active := term.ActiveNERForms()
		require.Len(t, active, 2)
		assert.Equal(t, "EGFR", active[0].String)
		assert.Equal(t, "Egfr", active[1].String)
	})

	t.Run("ActiveNERForms is empty for linking-only terms", func(t *testing.T) {
		linkingOnly, err := NewCuratedTerm(CuratedTermParams{
			OriginalForms: []MentionForm{{String: "EGFR", MentionConfidence: model.MentionConfidenceProbable}},
			Behaviour:     AddForLinkingOnly,
		})
		require.NoError(t, err)
		assert.Empty(t, linkingOnly.ActiveNERForms())
	})
}

func TestCuratedTermAdditionalToSource(t *testing.T) {
	idSets := model.NewAssociatedIdSets(
		model.NewEquivalentIdSet(model.IDAndSource{ID: "ENSG00000146648", Source: "ENSEMBL"}),
	)

	t.Run("Added term with id set override", func(t *testing.T) {
		term, err := NewCuratedTerm(CuratedTermParams{
			OriginalForms:    []MentionForm{{String: "EGFR", MentionConfidence: model.MentionConfidenceProbable}},
			Behaviour:        AddForLinkingOnly,
			AssociatedIdSets: idSets,
		})
		require.NoError(t, err)
		assert.True(t, term.AdditionalToSource())
	})

	t.Run("Added term without id set override", func(t *testing.T) {
		term, err := NewCuratedTerm(CuratedTermParams{
			OriginalForms: []MentionForm{{String: "EGFR", MentionConfidence: model.MentionConfidenceProbable}},
			Behaviour:     AddForLinkingOnly,
		})
		require.NoError(t, err)
		assert.False(t, term.AdditionalToSource())
	})

	t.Run("Dropped term with id set override", func(t *testing.T) {
		term, err := NewCuratedTerm(CuratedTermParams{
			OriginalForms:    []MentionForm{{String: "EGFR", MentionConfidence: model.MentionConfidenceProbable}},
			Behaviour:        DropSynonymTermForLinking,
			AssociatedIdSets: idSets,
		})
		require.NoError(t, err)
		assert.False(t, term.AdditionalToSource())
	})
}

func TestCuratedTermJSON(t *testing.T) {
	term, err := NewCuratedTerm(CuratedTermParams{
		OriginalForms: []MentionForm{
			{String: "EGFR", CaseSensitive: true, MentionConfidence: model.MentionConfidenceHighlyLikely},
		},
		Behaviour: AddForNERAndLinking,
		Comment:   "well known gene symbol",
		AutocurationResults: map[string]string{
			"symbol_check": "passed",
		},
	})
	require.NoError(t, err)

	data, err := term.MarshalJSON()
	require.NoError(t, err)

	restored, err := CuratedTermFromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, term.OriginalForms(), restored.OriginalForms())
	assert.Equal(t, term.Behaviour(), restored.Behaviour())
	assert.Equal(t, term.Comment(), restored.Comment())
	assert.Equal(t, term.AutocurationResults(), restored.AutocurationResults())
	assert.NotEqual(t, term.ID(), restored.ID(), "Expected the identifier to be excluded from the wire format")

	t.Run("Invalid serialized curation fails validation", func(t *testing.T) {
		_, err := CuratedTermFromJSON([]byte(`{"behaviour": "ADD_FOR_NER_AND_LINKING"}`))
		assert.ErrorIs(t, err, ErrNoForms)
	})

	t.Run("Conflicting serialized curation fails validation", func(t *testing.T) {
		data := `{
			"original_forms": [
				{"string": "ALL", "case_sensitive": true, "mention_confidence": "HIGHLY_LIKELY"},
				{"string": "all", "case_sensitive": false, "mention_confidence": "POSSIBLE"}
			],
			"behaviour": "ADD_FOR_NER_AND_LINKING"
		}`
		_, err := CuratedTermFromJSON([]byte(data))
		assert.ErrorIs(t, err, ErrCaseSensitivityConflict)
	})
}
