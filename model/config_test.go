package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultResolverConfig(t *testing.T) {
	config := DefaultResolverConfig()

	assert.Equal(t, 32, config.BatchSize)
	assert.Equal(t, 5000, config.LookupCacheSize)
	assert.False(t, config.ProcessAllEntities)
	assert.Equal(t, "knowledgebase", config.Source)
	assert.Equal(t, "embedding_resolver", config.ParserName)
}
