package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEquivalentIdSet(t *testing.T) {
	t.Run("Members are deduplicated and sorted", func(t *testing.T) {
		set := NewEquivalentIdSet(
			IDAndSource{ID: "MONDO:0005233", Source: "MONDO"},
			IDAndSource{ID: "DOID:3908", Source: "DOID"},
			IDAndSource{ID: "MONDO:0005233", Source: "MONDO"},
		)
		require.Len(t, set.IDsAndSource, 2)
		assert.Equal(t, "DOID:3908", set.IDsAndSource[0].ID)
		assert.Equal(t, "MONDO:0005233", set.IDsAndSource[1].ID)
	})

	t.Run("Equality is independent of input order", func(t *testing.T) {
		a := NewEquivalentIdSet(
			IDAndSource{ID: "MONDO:0005233", Source: "MONDO"},
			IDAndSource{ID: "DOID:3908", Source: "DOID"},
		)
		b := NewEquivalentIdSet(
			IDAndSource{ID: "DOID:3908", Source: "DOID"},
			IDAndSource{ID: "MONDO:0005233", Source: "MONDO"},
		)
		assert.True(t, a.Equal(b))
	})

	t.Run("Different members are not equal", func(t *testing.T) {
		a := NewEquivalentIdSet(IDAndSource{ID: "MONDO:0005233", Source: "MONDO"})
		b := NewEquivalentIdSet(IDAndSource{ID: "MONDO:0007254", Source: "MONDO"})
		assert.False(t, a.Equal(b))
	})

	t.Run("IDs and Sources projections", func(t *testing.T) {
		set := NewEquivalentIdSet(
			IDAndSource{ID: "DOID:3908", Source: "DOID"},
			IDAndSource{ID: "MONDO:0005233", Source: "MONDO"},
			IDAndSource{ID: "MONDO:0005061", Source: "MONDO"},
		)
		assert.Equal(t, []string{"DOID:3908", "MONDO:0005061", "MONDO:0005233"}, set.IDs())
		assert.Equal(t, []string{"DOID", "MONDO"}, set.Sources())
	})
}

func TestMappingEqual(t *testing.T) {
	base := Mapping{
		DefaultLabel:          "non-small cell lung carcinoma",
		Source:                "MONDO",
		ParserName:            "mondo_parser",
		Idx:                   "MONDO:0005233",
		StringMatchStrategy:   "ExactMatch",
		StringMatchConfidence: StringMatchHighlyLikely,
	}

	t.Run("Identical mappings are equal", func(t *testing.T) {
		assert.True(t, base.Equal(base))
	})

	t.Run("Metadata is excluded from equality", func(t *testing.T) {
		withMetadata := base
		withMetadata.Metadata = Metadata{"score": 0.9}
		assert.True(t, base.Equal(withMetadata))
	})

	t.Run("Differing idx breaks equality", func(t *testing.T) {
		other := base
		other.Idx = "MONDO:0007254"
		assert.False(t, base.Equal(other))
	})

	t.Run("Differing confidence breaks equality", func(t *testing.T) {
		other := base
		other.StringMatchConfidence = StringMatchProbable
		assert.False(t, base.Equal(other))
	})
}
