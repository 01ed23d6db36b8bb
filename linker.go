package linker

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/siherrmann/linker/core/cleanup"
	"github.com/siherrmann/linker/core/linking"
	"github.com/siherrmann/linker/core/pipeline"
	"github.com/siherrmann/linker/database"
	"github.com/siherrmann/linker/helper"
	"github.com/siherrmann/linker/model"
)

// Linker provides a unified interface to entity resolution, cleanup and
// optional document storage
type Linker struct {
	DB             *helper.Database
	Documents      *database.DocumentsDBHandler
	KnowledgeBase  *database.KnowledgeBaseDBHandler
	Resolver       *linking.Resolver
	Structure      *pipeline.StructureLinkingStep // Optional structure parsing step
	CleanupActions []cleanup.Action
	// Logging
	log *slog.Logger
}

// NewLinker creates a new Linker instance without database storage.
// Documents are processed in memory only.
func NewLinker(config model.ResolverConfig, kb *linking.KnowledgeBase, embed pipeline.EmbedBatchFunc) *Linker {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	return &Linker{
		Resolver: linking.NewResolver(config, kb, embed, logger),
		log:      logger,
	}
}

// NewLinkerWithDatabase creates a new Linker instance with all database
// handlers initialized. embeddingDim is the dimension of the stored
// knowledgebase embeddings.
func NewLinkerWithDatabase(dbConfig *helper.DatabaseConfiguration, config model.ResolverConfig, kb *linking.KnowledgeBase, embed pipeline.EmbedBatchFunc, embeddingDim int) (*Linker, error) {
	linker := NewLinker(config, kb, embed)

	// Initialize database
	db := helper.NewDatabase("linker", dbConfig, linker.log)

	// force=false to not reload if functions already exist
	documents, err := database.NewDocumentsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create documents handler", err)
	}

	knowledgeBase, err := database.NewKnowledgeBaseDBHandler(db, embeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create knowledgebase handler", err)
	}

	linker.DB = db
	linker.Documents = documents
	linker.KnowledgeBase = knowledgeBase

	return linker, nil
}

// Close closes the database connection
func (l *Linker) Close() error {
	if l.DB != nil && l.DB.Instance != nil {
		return l.DB.Instance.Close()
	}
	return nil
}

// SetStructure sets the optional structure parsing step applied before
// resolution
func (l *Linker) SetStructure(step *pipeline.StructureLinkingStep) {
	l.Structure = step
}

// SetCleanupActions sets the cleanup actions applied after resolution
func (l *Linker) SetCleanupActions(actions ...cleanup.Action) {
	l.CleanupActions = actions
}

// UseDefaultResolver sets up a resolver with the default embedding model.
// This uses DefaultEmbedder with the all-MiniLM-L6-v2 model (384 dimensions).
func UseDefaultResolver(config model.ResolverConfig, kb *linking.KnowledgeBase) (*Linker, error) {
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return nil, helper.NewError("create default embedder", err)
	}

	return NewLinker(config, kb, embedder), nil
}

// ProcessDocuments runs the full linking pass over docs:
// 1. The optional structure step rewrites parseable entities per document
// 2. All candidate entities are resolved in one batch
// 3. Cleanup actions run per document
// A resolution failure aborts the whole batch. A per-document failure during
// structure parsing or cleanup marks the document with a processing exception
// in its metadata and moves it to the failed slice, the remaining documents
// are unaffected.
func (l *Linker) ProcessDocuments(docs []*model.Document) (processed []*model.Document, failed []*model.Document, err error) {
	pending := make([]*model.Document, 0, len(docs))
	for _, doc := range docs {
		if l.Structure != nil {
			if stepErr := l.runDocumentStep(doc, l.Structure.Run); stepErr != nil {
				failed = append(failed, doc)
				continue
			}
		}
		pending = append(pending, doc)
	}

	err = l.Resolver.ResolveDocuments(pending)
	if err != nil {
		return nil, failed, helper.NewError("resolve documents", err)
	}

	for _, doc := range pending {
		docFailed := false
		for _, action := range l.CleanupActions {
			if stepErr := l.runDocumentStep(doc, action.Cleanup); stepErr != nil {
				docFailed = true
				break
			}
		}
		if docFailed {
			failed = append(failed, doc)
			continue
		}
		processed = append(processed, doc)
	}

	l.log.Info("Processed documents",
		slog.Int("processed", len(processed)),
		slog.Int("failed", len(failed)),
	)

	return processed, failed, nil
}

// ProcessAndStoreDocuments processes docs and upserts the successfully
// processed ones. Failed documents are stored too, so their processing
// exception is queryable later.
func (l *Linker) ProcessAndStoreDocuments(docs []*model.Document, opts model.MinifyOptions) (processed []*model.Document, failed []*model.Document, err error) {
	if l.Documents == nil {
		return nil, nil, helper.NewError("store documents", fmt.Errorf("document storage not configured, use NewLinkerWithDatabase"))
	}

	processed, failed, err = l.ProcessDocuments(docs)
	if err != nil {
		return processed, failed, err
	}

	for _, doc := range append(append([]*model.Document{}, processed...), failed...) {
		if insertErr := l.Documents.InsertDocument(doc, opts); insertErr != nil {
			return processed, failed, helper.NewError("insert document", insertErr)
		}
	}

	return processed, failed, nil
}

// runDocumentStep runs step on doc, converting both errors and panics into a
// processing exception recorded on the document metadata.
func (l *Linker) runDocumentStep(doc *model.Document, step func(*model.Document) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during document processing: %v", r)
		}
		if err != nil {
			if doc.Metadata == nil {
				doc.Metadata = model.Metadata{}
			}
			doc.Metadata[model.ProcessingExceptionKey] = err.Error()
			l.log.Warn("Document processing failed",
				slog.String("document_idx", doc.Idx),
				slog.String("error", err.Error()),
			)
		}
	}()

	return step(doc)
}
