package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Document is the primary input into a processing pipeline.
type Document struct {
	// Idx is an opaque document identifier, generated if absent.
	Idx string
	// Sections comprising this document, in order.
	Sections []*Section
	Metadata Metadata
}

// NewDocument creates an empty document with a generated identifier.
func NewDocument() *Document {
	return &Document{Idx: strings.ReplaceAll(uuid.New().String(), "-", "")}
}

// SimpleDocument creates a document with a single unnamed section holding the
// given text.
func SimpleDocument(text string) *Document {
	doc := NewDocument()
	doc.Sections = []*Section{NewSection(text, "na")}
	return doc
}

// DocumentFromSentences creates a single-section document from pre-split
// sentences, joining them with spaces and recording the sentence spans.
func DocumentFromSentences(sentences []string) (*Document, error) {
	section := NewSection(strings.Join(sentences, " "), "na")
	spans := make([]CharSpan, 0, len(sentences))
	start := 0
	for _, sentence := range sentences {
		spans = append(spans, CharSpan{Start: start, End: start + len(sentence)})
		start += len(sentence) + 1 // the joining space
	}
	if err := section.SetSentenceSpans(spans); err != nil {
		return nil, err
	}
	doc := NewDocument()
	doc.Sections = []*Section{section}
	return doc, nil
}

// NamedSection pairs a section name with its text, preserving caller order.
type NamedSection struct {
	Name string
	Text string
}

// DocumentFromNamedSections creates a document with one section per entry,
// in the given order.
func DocumentFromNamedSections(namedSections []NamedSection) *Document {
	doc := NewDocument()
	doc.Sections = make([]*Section, 0, len(namedSections))
	for _, named := range namedSections {
		doc.Sections = append(doc.Sections, NewSection(named.Text, named.Name))
	}
	return doc
}

// Entities returns all entities across all sections of this document.
func (d *Document) Entities() []*Entity {
	var entities []*Entity
	for _, section := range d.Sections {
		entities = append(entities, section.Entities...)
	}
	return entities
}

// Len returns the total character length of all section texts.
func (d *Document) Len() int {
	total := 0
	for _, section := range d.Sections {
		total += len(section.Text)
	}
	return total
}

func (d *Document) String() string {
	return fmt.Sprintf("idx: %s", d.Idx)
}
