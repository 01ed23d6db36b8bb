package linking

import (
	"log/slog"

	"github.com/siherrmann/linker/core/pipeline"
	"github.com/siherrmann/linker/helper"
	"github.com/siherrmann/linker/model"
)

// ResolverNamespace is recorded as the string match strategy on mappings
// produced by the Resolver.
const ResolverNamespace = "EmbeddingResolver"

// Resolver assigns knowledgebase mappings to entities by embedding their
// surface strings and selecting the nearest knowledgebase concept. Resolved
// mappings are cached by (match, entity class) so repeated mentions of the
// same string skip the embedding call.
type Resolver struct {
	config model.ResolverConfig
	kb     *KnowledgeBase
	embed  pipeline.EmbedBatchFunc
	cache  *MappingCache
	log    *slog.Logger
}

// NewResolver creates a resolver over the given knowledgebase and embedding
// function.
func NewResolver(config model.ResolverConfig, kb *KnowledgeBase, embed pipeline.EmbedBatchFunc, logger *slog.Logger) *Resolver {
	return &Resolver{
		config: config,
		kb:     kb,
		embed:  embed,
		cache:  NewMappingCache(config.LookupCacheSize),
		log:    logger,
	}
}

// Cache exposes the lookup cache, mainly so a knowledgebase or model swap
// can Reset it.
func (r *Resolver) Cache() *MappingCache {
	return r.cache
}

// ResolveDocuments resolves the candidate entities of all documents in one
// batch. Unless ProcessAllEntities is configured, entities that already
// carry mappings are skipped.
func (r *Resolver) ResolveDocuments(docs []*model.Document) error {
	var candidates []*model.Entity
	for _, doc := range docs {
		for _, entity := range doc.Entities() {
			if !r.config.ProcessAllEntities && len(entity.Mappings) > 0 {
				continue
			}
			candidates = append(candidates, entity)
		}
	}
	return r.ResolveEntities(candidates)
}

// ResolveEntities resolves a batch of entities. Cache hits get the stored
// mapping applied immediately; misses are embedded in one batched call and
// matched against the knowledgebase by nearest neighbor. An embedding
// failure fails the whole batch, leaving the misses unresolved.
func (r *Resolver) ResolveEntities(entities []*model.Entity) error {
	misses := r.applyCached(entities)
	if len(misses) == 0 {
		return nil
	}

	matches := make([]string, 0, len(misses))
	for _, entity := range misses {
		matches = append(matches, entity.Match)
	}

	vectors, err := r.embedBatched(matches)
	if err != nil {
		return helper.NewError("embed entity matches", err)
	}

	for i, vector := range vectors {
		entity := misses[i]
		nearest := r.kb.Nearest(vector)
		if nearest < 0 {
			continue
		}
		id, label := r.kb.Row(nearest)
		mapping := model.Mapping{
			DefaultLabel:          label,
			Source:                r.config.Source,
			ParserName:            r.config.ParserName,
			Idx:                   id,
			StringMatchStrategy:   ResolverNamespace,
			StringMatchConfidence: model.StringMatchProbable,
		}
		entity.AddMapping(mapping)
		// first writer wins, a later resolution never replaces a cached one
		r.cache.PutIfAbsent(EntityCacheKey(entity), mapping)
	}

	r.log.Debug("resolved entities",
		slog.Int("total", len(entities)),
		slog.Int("cache_hits", len(entities)-len(misses)),
		slog.Int("cache_misses", len(misses)),
	)

	return nil
}

// applyCached applies cached mappings to the hits and returns the misses.
func (r *Resolver) applyCached(entities []*model.Entity) []*model.Entity {
	var misses []*model.Entity
	for _, entity := range entities {
		if mapping, ok := r.cache.Get(EntityCacheKey(entity)); ok {
			entity.AddMapping(mapping)
		} else {
			misses = append(misses, entity)
		}
	}
	return misses
}

func (r *Resolver) embedBatched(texts []string) ([][]float32, error) {
	batchSize := r.config.BatchSize
	if batchSize < 1 {
		batchSize = len(texts)
	}
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := r.embed(texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}
