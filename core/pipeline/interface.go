package pipeline

// EmbedBatchFunc is a function that generates embeddings for a batch of
// texts. The output holds one fixed-size vector per input, in input order.
// There are no partial-success semantics: either every input gets a vector
// or the call fails entirely.
type EmbedBatchFunc func(texts []string) ([][]float32, error)

// StructureParseFunc parses a systematic chemical nomenclature string into a
// canonical structure identifier. A rejected input is not an error: ok is
// false and no identifier is produced.
type StructureParseFunc func(name string) (idx string, ok bool)
