package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/linker/core/linking"
	"github.com/siherrmann/linker/helper"
	linkersql "github.com/siherrmann/linker/sql"
)

// KnowledgeBaseDBHandlerFunctions defines the interface for KnowledgeBase database operations.
type KnowledgeBaseDBHandlerFunctions interface {
	InsertConcept(row linking.KnowledgeBaseRow, embedding []float32) (int64, error)
	SelectNearestConcept(query []float32) (linking.KnowledgeBaseRow, float64, error)
	CountConcepts() (int64, error)
	Truncate() error
}

// KnowledgeBaseDBHandler handles knowledgebase-related database operations
type KnowledgeBaseDBHandler struct {
	db  *helper.Database
	dim int
}

// NewKnowledgeBaseDBHandler creates a new knowledgebase database handler.
// It initializes the database connection and loads knowledgebase-related SQL functions.
// The table stores embeddings of dimension dim.
// If force is true, it will reload the SQL functions even if they already exist.
func NewKnowledgeBaseDBHandler(db *helper.Database, dim int, force bool) (*KnowledgeBaseDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if dim <= 0 {
		return nil, helper.NewError("dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", dim))
	}

	knowledgeBaseDbHandler := &KnowledgeBaseDBHandler{
		db:  db,
		dim: dim,
	}

	err := linkersql.Init(knowledgeBaseDbHandler.db.Instance)
	if err != nil {
		return nil, helper.NewError("init extensions", err)
	}

	err = linkersql.LoadKnowledgeBaseSql(knowledgeBaseDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load knowledgebase sql", err)
	}

	err = knowledgeBaseDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized KnowledgeBaseDBHandler")

	return knowledgeBaseDbHandler, nil
}

// CreateTable creates the 'knowledgebase' table in the database.
// If the table already exists, it does not create it again.
func (h *KnowledgeBaseDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_knowledgebase($1);`, h.dim)
	if err != nil {
		log.Panicf("error initializing knowledgebase table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table knowledgebase")

	return nil
}

// InsertConcept inserts a concept with its embedding and returns the row id.
// Insertion order defines the tie breaking order of nearest neighbor lookups.
func (h *KnowledgeBaseDBHandler) InsertConcept(row linking.KnowledgeBaseRow, embedding []float32) (int64, error) {
	if len(embedding) != h.dim {
		return 0, helper.NewError("embedding validation", fmt.Errorf("expected dimension %d, got %d", h.dim, len(embedding)))
	}

	var id int64
	err := h.db.Instance.QueryRow(
		`SELECT * FROM insert_kb_concept($1, $2, $3)`,
		row.ID,
		row.DefaultLabel,
		pgvector.NewVector(embedding),
	).Scan(&id)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}

	return id, nil
}

// SelectNearestConcept returns the concept closest to query by L2 distance.
// Ties resolve to the earliest inserted concept.
func (h *KnowledgeBaseDBHandler) SelectNearestConcept(query []float32) (linking.KnowledgeBaseRow, float64, error) {
	if len(query) != h.dim {
		return linking.KnowledgeBaseRow{}, 0, helper.NewError("query validation", fmt.Errorf("expected dimension %d, got %d", h.dim, len(query)))
	}

	var (
		row      linking.KnowledgeBaseRow
		distance float64
	)
	err := h.db.Instance.QueryRow(
		`SELECT * FROM select_nearest_concept($1)`,
		pgvector.NewVector(query),
	).Scan(&row.ID, &row.DefaultLabel, &distance)
	if err != nil {
		return linking.KnowledgeBaseRow{}, 0, helper.NewError("scan", err)
	}

	return row, distance, nil
}

// CountConcepts returns the number of stored concepts
func (h *KnowledgeBaseDBHandler) CountConcepts() (int64, error) {
	var count int64
	err := h.db.Instance.QueryRow(`SELECT * FROM count_kb_concepts()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}

	return count, nil
}

// Truncate removes all stored concepts and resets the row order
func (h *KnowledgeBaseDBHandler) Truncate() error {
	_, err := h.db.Instance.Exec(`SELECT truncate_knowledgebase()`)
	if err != nil {
		return helper.NewError("exec", err)
	}

	return nil
}
