package model

// Serialization of the document aggregate to a self-describing JSON record.
// Each type has an explicit encode/decode pair rather than relying on
// reflective marshalling of the in-memory form, because the wire format
// deliberately differs from it: fields at their default value are omitted,
// the per-entity synonym term store is renamed to a "synonym_terms" list of
// its distinct values, and the write-once sentence spans of a section are
// exposed as a plain list, omitted when empty.

import (
	"encoding/json"

	"github.com/google/uuid"
)

// MinifyOptions control the two independent minification toggles applied
// when serializing a Document.
type MinifyOptions struct {
	// DropUnmappedEntities drops entities carrying no mappings.
	DropUnmappedEntities bool
	// DropTerms drops each entity's synonym term candidate list.
	DropTerms bool
}

type entityJSON struct {
	Match             string                   `json:"match"`
	EntityClass       string                   `json:"entity_class"`
	Spans             []CharSpan               `json:"spans"`
	Namespace         string                   `json:"namespace,omitempty"`
	MentionConfidence *MentionConfidence       `json:"mention_confidence,omitempty"`
	Mappings          []Mapping                `json:"mappings,omitempty"`
	Metadata          Metadata                 `json:"metadata,omitempty"`
	Start             int                      `json:"start"`
	End               int                      `json:"end"`
	MatchNorm         string                   `json:"match_norm,omitempty"`
	SynonymTerms      []SynonymTermWithMetrics `json:"synonym_terms,omitempty"`
}

type sectionJSON struct {
	Text          string       `json:"text"`
	Name          string       `json:"name"`
	Metadata      Metadata     `json:"metadata,omitempty"`
	Entities      []entityJSON `json:"entities,omitempty"`
	SentenceSpans []CharSpan   `json:"sentence_spans,omitempty"`
}

type documentJSON struct {
	Idx      string        `json:"idx"`
	Sections []sectionJSON `json:"sections"`
	Metadata Metadata      `json:"metadata,omitempty"`
}

func encodeEntity(e *Entity, dropTerms bool) entityJSON {
	encoded := entityJSON{
		Match:       e.Match,
		EntityClass: e.EntityClass,
		Spans:       e.Spans,
		Namespace:   e.Namespace,
		Mappings:    e.Mappings,
		Metadata:    e.Metadata,
		Start:       e.start,
		End:         e.end,
		MatchNorm:   e.matchNorm,
	}
	if e.MentionConfidence != MentionConfidenceHighlyLikely {
		confidence := e.MentionConfidence
		encoded.MentionConfidence = &confidence
	}
	if !dropTerms {
		encoded.SynonymTerms = e.SynonymTerms()
	}
	return encoded
}

func decodeEntity(encoded entityJSON) (*Entity, error) {
	start, end, err := calcStartsAndEnds(encoded.Spans)
	if err != nil {
		return nil, err
	}
	confidence := MentionConfidenceHighlyLikely
	if encoded.MentionConfidence != nil {
		confidence = *encoded.MentionConfidence
	}
	entity := &Entity{
		id:                uuid.New(),
		Match:             encoded.Match,
		EntityClass:       encoded.EntityClass,
		Spans:             encoded.Spans,
		Namespace:         encoded.Namespace,
		MentionConfidence: confidence,
		Mappings:          encoded.Mappings,
		Metadata:          encoded.Metadata,
		start:             start,
		end:               end,
		// the stored norm is kept verbatim so a round trip does not depend
		// on the normalizer that produced it
		matchNorm:    encoded.MatchNorm,
		synonymTerms: make(map[string]SynonymTermWithMetrics),
	}
	entity.UpdateTerms(encoded.SynonymTerms)
	return entity, nil
}

func encodeSection(s *Section, opts MinifyOptions) sectionJSON {
	encoded := sectionJSON{
		Text:          s.Text,
		Name:          s.Name,
		Metadata:      s.Metadata,
		SentenceSpans: s.sentenceSpans,
	}
	for _, entity := range s.Entities {
		if opts.DropUnmappedEntities && len(entity.Mappings) == 0 {
			continue
		}
		encoded.Entities = append(encoded.Entities, encodeEntity(entity, opts.DropTerms))
	}
	return encoded
}

func decodeSection(encoded sectionJSON) (*Section, error) {
	section := &Section{
		Text:     encoded.Text,
		Name:     encoded.Name,
		Metadata: encoded.Metadata,
	}
	for _, encodedEntity := range encoded.Entities {
		entity, err := decodeEntity(encodedEntity)
		if err != nil {
			return nil, err
		}
		section.Entities = append(section.Entities, entity)
	}
	if len(encoded.SentenceSpans) > 0 {
		if err := section.SetSentenceSpans(encoded.SentenceSpans); err != nil {
			return nil, err
		}
	}
	return section, nil
}

func encodeDocument(d *Document, opts MinifyOptions) documentJSON {
	encoded := documentJSON{
		Idx:      d.Idx,
		Metadata: d.Metadata,
		Sections: make([]sectionJSON, 0, len(d.Sections)),
	}
	for _, section := range d.Sections {
		encoded.Sections = append(encoded.Sections, encodeSection(section, opts))
	}
	return encoded
}

// MarshalJSON serializes the full document without minification.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(encodeDocument(d, MinifyOptions{}))
}

// ToJSON serializes the document, applying the given minification options as
// a read-side projection. The in-memory document is not mutated.
func (d *Document) ToJSON(opts MinifyOptions) ([]byte, error) {
	return json.Marshal(encodeDocument(d, opts))
}

// MinifyInPlace applies the given minification options destructively to the
// in-memory document: unmapped entities are removed from their sections
// and/or term stores are cleared.
func (d *Document) MinifyInPlace(opts MinifyOptions) {
	for _, section := range d.Sections {
		if opts.DropUnmappedEntities {
			kept := section.Entities[:0]
			for _, entity := range section.Entities {
				if len(entity.Mappings) > 0 {
					kept = append(kept, entity)
				}
			}
			section.Entities = kept
		}
		if opts.DropTerms {
			for _, entity := range section.Entities {
				entity.ClearTerms()
			}
		}
	}
}

// UnmarshalJSON restores a document from its serialized record. Entities are
// assigned fresh identities; identity is per-instance, not part of the wire
// format.
func (d *Document) UnmarshalJSON(data []byte) error {
	var encoded documentJSON
	if err := json.Unmarshal(data, &encoded); err != nil {
		return err
	}
	doc := Document{
		Idx:      encoded.Idx,
		Metadata: encoded.Metadata,
	}
	if doc.Idx == "" {
		doc.Idx = NewDocument().Idx
	}
	for _, encodedSection := range encoded.Sections {
		section, err := decodeSection(encodedSection)
		if err != nil {
			return err
		}
		doc.Sections = append(doc.Sections, section)
	}
	*d = doc
	return nil
}

// DocumentFromJSON parses a serialized document record.
func DocumentFromJSON(data []byte) (*Document, error) {
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	return doc, nil
}
