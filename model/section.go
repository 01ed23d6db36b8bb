package model

import (
	"errors"
	"fmt"
)

// ErrSentenceSpansSet is returned when the write-once sentence spans of a
// Section are assigned a second time.
var ErrSentenceSpansSet = errors.New("sentence spans are already set")

// ErrDuplicateSentenceSpans is returned when the sentence spans assigned to a
// Section contain duplicates.
var ErrDuplicateSentenceSpans = errors.New("duplicate sentence spans")

// Section is a container for text and the entities detected in it. One or
// more sections make up a Document.
type Section struct {
	// Text is the text to be processed.
	Text string
	// Name is the name of the section (e.g. abstract, body, header, footer).
	Name     string
	Metadata Metadata
	// Entities detected in this section, in detection order. The list is not
	// deduplicated by identity.
	Entities []*Entity

	// sentenceSpans may be set at most once, to prevent a second sentence
	// splitter silently overwriting the first.
	sentenceSpans    []CharSpan
	sentenceSpansSet bool
}

// NewSection creates a section with the given text and name.
func NewSection(text, name string) *Section {
	return &Section{Text: text, Name: name}
}

// SentenceSpans returns the sentence spans in the order they were assigned,
// or an empty slice if none were set.
func (s *Section) SentenceSpans() []CharSpan {
	return s.sentenceSpans
}

// SetSentenceSpans assigns the sentence spans of this section, in the order
// provided, which is not necessarily sorted. Assigning twice is a usage error
// (ErrSentenceSpansSet); the spans must be unique (ErrDuplicateSentenceSpans).
func (s *Section) SetSentenceSpans(spans []CharSpan) error {
	if s.sentenceSpansSet {
		return ErrSentenceSpansSet
	}
	seen := make(map[CharSpan]struct{}, len(spans))
	for _, span := range spans {
		if _, ok := seen[span]; ok {
			return ErrDuplicateSentenceSpans
		}
		seen[span] = struct{}{}
	}
	s.sentenceSpans = append([]CharSpan(nil), spans...)
	s.sentenceSpansSet = true
	return nil
}

func (s *Section) String() string {
	text := s.Text
	if len(text) > 100 {
		text = text[:100]
	}
	return fmt.Sprintf("name: %s, text: %s", s.Name, text)
}
