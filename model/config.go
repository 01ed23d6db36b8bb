package model

// ResolverConfig represents configuration for embedding based mapping
// resolution.
type ResolverConfig struct {
	// BatchSize is the number of surface strings sent to the embedding
	// function per call.
	BatchSize int `json:"batch_size"`
	// LookupCacheSize bounds the (match, entity class) -> Mapping cache.
	LookupCacheSize int `json:"lookup_cache_size"`
	// ProcessAllEntities controls whether resolution runs over all entities
	// or only entities that have no mappings yet (i.e. entities that were not
	// already linked via a cheaper method such as dictionary lookup).
	ProcessAllEntities bool `json:"process_all_entities"`
	// Source is the knowledgebase name recorded on produced mappings.
	Source string `json:"source"`
	// ParserName is the parser name recorded on produced mappings.
	ParserName string `json:"parser_name"`
}

// DefaultResolverConfig returns a sensible default configuration
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		BatchSize:          32,
		LookupCacheSize:    5000,
		ProcessAllEntities: false,
		Source:             "knowledgebase",
		ParserName:         "embedding_resolver",
	}
}
