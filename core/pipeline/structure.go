package pipeline

import (
	"log/slog"

	"github.com/siherrmann/linker/model"
)

// structureBreaks terminate a chemical nomenclature token.
// https://www.acdlabs.com/iupac/nomenclature/93/r93_45.htm
const structureBreaks = " !@#&?|\t\n\r"

// StructureLinkingStep resolves entities whose surface form is a systematic
// chemical nomenclature string. Token classification NER tends to truncate
// such matches at the first hyphen, so the match is extended outwards to the
// surrounding break characters (allowing up to two enclosed spaces) before
// each parse attempt. A parser rejection is not an error; the attempt is
// logged and no mapping is produced.
type StructureLinkingStep struct {
	entityClass string
	parse       StructureParseFunc
	log         *slog.Logger
}

// StructureNamespace is recorded on entities produced by this step.
const StructureNamespace = "StructureLinkingStep"

// NewStructureLinkingStep creates a step that attempts structure parsing for
// unmapped entities of the given class.
func NewStructureLinkingStep(entityClass string, parse StructureParseFunc, logger *slog.Logger) *StructureLinkingStep {
	return &StructureLinkingStep{
		entityClass: entityClass,
		parse:       parse,
		log:         logger,
	}
}

// Run attempts to resolve unmapped entities of the configured class in doc.
// A successfully parsed entity is replaced by a new contiguous entity
// covering the extended match and carrying the structure mapping.
func (s *StructureLinkingStep) Run(doc *model.Document) error {
	for _, section := range doc.Sections {
		replacements := make(map[*model.Entity]*model.Entity)
		for _, entity := range section.Entities {
			if entity.EntityClass != s.entityClass || len(entity.Mappings) > 0 {
				continue
			}
			// look up to two spaces out
			for spaces := 2; spaces >= 0; spaces-- {
				match, start, end := extendMatch(entity, section.Text, spaces)
				mapping, ok := s.parseName(match)
				if !ok {
					continue
				}
				replacement, err := model.NewContiguousEntity(start, end, model.EntityParams{
					Match:       match,
					EntityClass: entity.EntityClass,
					Namespace:   entity.Namespace,
					Mappings:    []model.Mapping{mapping},
				})
				if err != nil {
					return err
				}
				replacements[entity] = replacement
				break
			}
		}

		for original, replacement := range replacements {
			for i, entity := range section.Entities {
				if entity.Equal(original) {
					section.Entities[i] = replacement
					break
				}
			}
		}
	}
	return nil
}

// parseName runs the external parser. Rejections are soft failures: logged
// for diagnostics, never propagated.
func (s *StructureLinkingStep) parseName(name string) (model.Mapping, bool) {
	idx, ok := s.parse(name)
	if !ok {
		s.log.Debug("structure parse rejected", slog.String("name", name))
		return model.Mapping{}, false
	}
	return model.Mapping{
		DefaultLabel:          name,
		Source:                "StructureParser",
		ParserName:            "StructureParser",
		Idx:                   idx,
		StringMatchStrategy:   StructureNamespace,
		StringMatchConfidence: model.StringMatchHighlyLikely,
	}, true
}

// extendMatch widens an entity match outwards to the nearest break
// characters, allowing up to the given number of enclosed spaces to the
// right.
func extendMatch(entity *model.Entity, text string, spaces int) (string, int, int) {
	start := entity.Start()
	end := entity.End()
	for start > 0 && !isBreak(text[start-1]) {
		start--
	}
	for end < len(text) && (!isBreak(text[end]) || spaces > 0) {
		if isBreak(text[end]) {
			spaces--
		}
		end++
	}
	return text[start:end], start, end
}

func isBreak(c byte) bool {
	for i := 0; i < len(structureBreaks); i++ {
		if structureBreaks[i] == c {
			return true
		}
	}
	return false
}
