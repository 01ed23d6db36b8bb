package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/siherrmann/linker/helper"
	"github.com/siherrmann/linker/model"
	linkersql "github.com/siherrmann/linker/sql"
)

// DocumentsDBHandlerFunctions defines the interface for Documents database operations.
type DocumentsDBHandlerFunctions interface {
	InsertDocument(doc *model.Document, opts model.MinifyOptions) error
	SelectDocument(idx string) (*model.Document, error)
	SelectAllDocuments(limit int) ([]*model.Document, error)
	DeleteDocument(idx string) error
}

// DocumentsDBHandler handles document-related database operations
type DocumentsDBHandler struct {
	db *helper.Database
}

// NewDocumentsDBHandler creates a new documents database handler.
// It initializes the database connection and loads document-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewDocumentsDBHandler(db *helper.Database, force bool) (*DocumentsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	documentsDbHandler := &DocumentsDBHandler{
		db: db,
	}

	err := linkersql.LoadDocumentsSql(documentsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load documents sql", err)
	}

	err = documentsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized DocumentsDBHandler")

	return documentsDbHandler, nil
}

// CreateTable creates the 'documents' table in the database.
// If the table already exists, it does not create it again.
func (h *DocumentsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_documents();`)
	if err != nil {
		log.Panicf("error initializing documents table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table documents")

	return nil
}

// InsertDocument upserts a document keyed by its idx. The stored record is
// the serialized form of doc after applying opts.
func (h *DocumentsDBHandler) InsertDocument(doc *model.Document, opts model.MinifyOptions) error {
	record, err := doc.ToJSON(opts)
	if err != nil {
		return helper.NewError("serialize document", err)
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_document($1, $2)`,
		doc.Idx,
		record,
	)

	_, _, err = scanDocumentRecord(row)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectDocument retrieves a document by idx
func (h *DocumentsDBHandler) SelectDocument(idx string) (*model.Document, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_document($1)`,
		idx,
	)

	_, record, err := scanDocumentRecord(row)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	doc, err := model.DocumentFromJSON(record)
	if err != nil {
		return nil, helper.NewError("decode document", err)
	}

	return doc, nil
}

// SelectAllDocuments retrieves up to limit documents in insertion order
func (h *DocumentsDBHandler) SelectAllDocuments(limit int) ([]*model.Document, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_all_documents($1)`,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	docs := []*model.Document{}
	for rows.Next() {
		_, record, err := scanDocumentRecord(rows)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		doc, err := model.DocumentFromJSON(record)
		if err != nil {
			return nil, helper.NewError("decode document", err)
		}

		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows", err)
	}

	return docs, nil
}

// DeleteDocument deletes a document by idx
func (h *DocumentsDBHandler) DeleteDocument(idx string) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_document($1)`,
		idx,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocumentRecord(row rowScanner) (string, []byte, error) {
	var (
		id        int64
		idx       string
		record    []byte
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(
		&id,
		&idx,
		&record,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return "", nil, err
	}

	return idx, record, nil
}
