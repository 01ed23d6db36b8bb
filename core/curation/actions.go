package curation

import (
	"errors"
	"fmt"
)

// ErrNoTargetMappings is returned when a ParserAction is constructed without
// any affected parsers.
var ErrNoTargetMappings = errors.New("parser action requires at least one affected parser")

// ErrNoTargetIDs is returned when a ParserAction names a parser with an
// empty target id set.
var ErrNoTargetIDs = errors.New("parser action requires at least one target id per parser")

// ParserBehaviour describes what a global parser action does.
type ParserBehaviour string

// DropIDsFromParser completely removes the target ids from the parser, so
// they are never used anywhere.
const DropIDsFromParser ParserBehaviour = "DROP_IDS_FROM_PARSER"

// ParserAction changes the behaviour of an ontology parser in a global
// sense, overriding both parser defaults and any conflicting CuratedTerms.
// Useful for eliminating unwanted behaviour wholesale, e.g. dropping an
// ontology root whose default label is a common word from every lookup.
type ParserAction struct {
	Behaviour ParserBehaviour
	// ParserToTargetIDs names the affected parsers and, per parser, the
	// affected ids.
	ParserToTargetIDs map[string][]string
}

// NewParserAction validates and constructs a ParserAction. Every named
// parser must carry at least one target id.
func NewParserAction(behaviour ParserBehaviour, parserToTargetIDs map[string][]string) (*ParserAction, error) {
	if len(parserToTargetIDs) == 0 {
		return nil, ErrNoTargetMappings
	}
	for parserName, ids := range parserToTargetIDs {
		if len(ids) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrNoTargetIDs, parserName)
		}
	}
	return &ParserAction{
		Behaviour:         behaviour,
		ParserToTargetIDs: parserToTargetIDs,
	}, nil
}

// GlobalParserActions is the container for all ParserActions of a vocabulary
// build. The per-parser index is built once at construction and immutable
// afterwards.
type GlobalParserActions struct {
	actions  []*ParserAction
	byParser map[string][]*ParserAction
}

// NewGlobalParserActions indexes the given actions by affected parser name.
// An action naming several parsers appears in each one's list, in the order
// the actions were declared.
func NewGlobalParserActions(actions ...*ParserAction) *GlobalParserActions {
	global := &GlobalParserActions{
		actions:  actions,
		byParser: make(map[string][]*ParserAction),
	}
	for _, action := range actions {
		for parserName := range action.ParserToTargetIDs {
			global.byParser[parserName] = append(global.byParser[parserName], action)
		}
	}
	return global
}

// Actions returns all actions in declaration order.
func (g *GlobalParserActions) Actions() []*ParserAction {
	return g.actions
}

// ParserActions returns the actions affecting the given parser in
// declaration order, or an empty slice if none apply.
func (g *GlobalParserActions) ParserActions(parserName string) []*ParserAction {
	return g.byParser[parserName]
}
