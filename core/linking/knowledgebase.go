package linking

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/siherrmann/linker/core/pipeline"
	"github.com/siherrmann/linker/helper"
)

// KnowledgeBase holds the precomputed embedding matrix for a set of
// knowledgebase concepts. It is built once at startup from a table of
// (id, default label) pairs; row order defines the stable index used by
// nearest neighbor lookup. The matrix is read-only after construction and
// may be shared across concurrent readers.
type KnowledgeBase struct {
	ids        []string
	labels     []string
	embeddings [][]float32
}

// KnowledgeBaseRow is one (id, default label) pair of the source table.
type KnowledgeBaseRow struct {
	ID           string
	DefaultLabel string
}

// ReadKnowledgeBaseCSV reads a two column CSV of (id, default_label) rows in
// full, preserving row order.
func ReadKnowledgeBaseCSV(path string) ([]KnowledgeBaseRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, helper.NewError("open knowledgebase", err)
	}
	defer file.Close()
	return readKnowledgeBase(file)
}

func readKnowledgeBase(r io.Reader) ([]KnowledgeBaseRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2

	var rows []KnowledgeBaseRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, helper.NewError("read knowledgebase", err)
		}
		rows = append(rows, KnowledgeBaseRow{ID: record[0], DefaultLabel: record[1]})
	}
	return rows, nil
}

// NewKnowledgeBase builds the embedding matrix for the given rows by
// embedding every default label, batchSize labels per call. This blocks
// until the full matrix is built.
func NewKnowledgeBase(rows []KnowledgeBaseRow, embed pipeline.EmbedBatchFunc, batchSize int) (*KnowledgeBase, error) {
	if batchSize < 1 {
		return nil, helper.NewError("build knowledgebase", fmt.Errorf("batch size must be positive, got %d", batchSize))
	}

	kb := &KnowledgeBase{
		ids:        make([]string, 0, len(rows)),
		labels:     make([]string, 0, len(rows)),
		embeddings: make([][]float32, 0, len(rows)),
	}
	for _, row := range rows {
		kb.ids = append(kb.ids, row.ID)
		kb.labels = append(kb.labels, row.DefaultLabel)
	}

	for start := 0; start < len(kb.labels); start += batchSize {
		end := start + batchSize
		if end > len(kb.labels) {
			end = len(kb.labels)
		}
		vectors, err := embed(kb.labels[start:end])
		if err != nil {
			return nil, helper.NewError("embed knowledgebase labels", err)
		}
		if len(vectors) != end-start {
			return nil, helper.NewError("embed knowledgebase labels", fmt.Errorf("expected %d vectors, got %d", end-start, len(vectors)))
		}
		kb.embeddings = append(kb.embeddings, vectors...)
	}

	return kb, nil
}

// Len returns the number of concepts.
func (kb *KnowledgeBase) Len() int {
	return len(kb.ids)
}

// Row returns the id and default label at the given index.
func (kb *KnowledgeBase) Row(index int) (string, string) {
	return kb.ids[index], kb.labels[index]
}

// Nearest returns the index of the row whose embedding has the minimum
// euclidean distance to the query vector. Ties are broken by the first
// minimal index.
func (kb *KnowledgeBase) Nearest(query []float32) int {
	best := -1
	bestDist := math.Inf(1)
	for i, row := range kb.embeddings {
		dist := squaredDistance(query, row)
		if dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	return best
}

func squaredDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
