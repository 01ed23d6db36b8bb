package model

import (
	"encoding/json"
	"fmt"
)

// MentionConfidence grades how certain a detection step is that a mention is
// a real entity. Higher values are stricter. MentionConfidenceIgnore marks a
// form that must not be used for NER at all.
type MentionConfidence int

const (
	MentionConfidenceIgnore       MentionConfidence = 0
	MentionConfidencePossible     MentionConfidence = 10
	MentionConfidenceProbable     MentionConfidence = 50
	MentionConfidenceHighlyLikely MentionConfidence = 100
)

var mentionConfidenceNames = map[MentionConfidence]string{
	MentionConfidenceIgnore:       "IGNORE",
	MentionConfidencePossible:     "POSSIBLE",
	MentionConfidenceProbable:     "PROBABLE",
	MentionConfidenceHighlyLikely: "HIGHLY_LIKELY",
}

func (m MentionConfidence) String() string {
	if name, ok := mentionConfidenceNames[m]; ok {
		return name
	}
	return fmt.Sprintf("MentionConfidence(%d)", int(m))
}

// MarshalJSON serializes the confidence by name rather than numeric value.
func (m MentionConfidence) MarshalJSON() ([]byte, error) {
	name, ok := mentionConfidenceNames[m]
	if !ok {
		return nil, fmt.Errorf("unknown mention confidence: %d", int(m))
	}
	return json.Marshal(name)
}

// UnmarshalJSON parses a confidence name back to its value.
func (m *MentionConfidence) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for value, valueName := range mentionConfidenceNames {
		if valueName == name {
			*m = value
			return nil
		}
	}
	return fmt.Errorf("unknown mention confidence: %q", name)
}

// StringMatchConfidence grades the reliability of a string match strategy
// that produced a Mapping.
type StringMatchConfidence string

const (
	StringMatchHighlyLikely StringMatchConfidence = "HIGHLY_LIKELY"
	StringMatchProbable     StringMatchConfidence = "PROBABLE"
	StringMatchPossible     StringMatchConfidence = "POSSIBLE"
)

// DisambiguationConfidence grades the reliability of a disambiguation
// strategy that selected between candidate Mappings.
type DisambiguationConfidence string

const (
	DisambiguationHighlyLikely DisambiguationConfidence = "HIGHLY_LIKELY"
	DisambiguationProbable     DisambiguationConfidence = "PROBABLE"
	DisambiguationPossible     DisambiguationConfidence = "POSSIBLE"
	DisambiguationAmbiguous    DisambiguationConfidence = "AMBIGUOUS"
)

// IDAggregationStrategy records how the ids of a SynonymTerm were grouped
// into equivalent id sets by an ontology parser.
type IDAggregationStrategy string

const (
	AggregationNoStrategy           IDAggregationStrategy = "NO_STRATEGY"
	AggregationResolvedBySimilarity IDAggregationStrategy = "RESOLVED_BY_SIMILARITY"
	AggregationSynonymIsAmbiguous   IDAggregationStrategy = "SYNONYM_IS_AMBIGUOUS"
	AggregationCustom               IDAggregationStrategy = "CUSTOM"
	AggregationUnambiguous          IDAggregationStrategy = "UNAMBIGUOUS"
	AggregationMergedAsNonSymbolic  IDAggregationStrategy = "MERGED_AS_NON_SYMBOLIC"
	AggregationModifiedByCuration   IDAggregationStrategy = "MODIFIED_BY_CURATION"
	AggregationResolvedByXref       IDAggregationStrategy = "RESOLVED_BY_XREF"
)
