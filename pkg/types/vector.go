package types

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/pgvector/pgvector-go"
)

// VectorCollection selects which similarity collection an operation
// targets. The two collections are independent tables with identical
// schemas.
type VectorCollection string

const (
	VECTOR_COLLECTION_TEXT  VectorCollection = "text"
	VECTOR_COLLECTION_IMAGE VectorCollection = "image"
)

func (c VectorCollection) Table() TableName {
	if c == VECTOR_COLLECTION_IMAGE {
		return TABLE_VECTORS_IMAGE
	}
	return TABLE_VECTORS_TEXT
}

// VectorRecord is one entry of a collection. The descriptive metadata
// is first-class columns rather than a JSON bag so the store boundary
// stays typed. Chunk is the 1-based ordinal within a chunked text
// document, 0 for unchunked entries.
type VectorRecord struct {
	ID            string          `json:"id" db:"id"`
	Embedding     pgvector.Vector `json:"embedding" db:"embedding"`
	Document      string          `json:"document" db:"document"`
	Source        string          `json:"source" db:"source"`
	Title         string          `json:"title" db:"title"`
	DocumentType  string          `json:"document_type" db:"document_type"`
	WorkspaceName string          `json:"workspace_name" db:"workspace_name"`
	Chunk         int             `json:"chunk" db:"chunk"`
	TotalChunks   int             `json:"total_chunks" db:"total_chunks"`
	OriginalPath  string          `json:"original_path" db:"original_path"`
	CreatedAt     int64           `json:"created_at" db:"created_at"`
}

// VectorQueryResult carries the cosine similarity alongside the id so
// callers can rank without re-fetching.
type VectorQueryResult struct {
	ID  string  `json:"id" db:"id"`
	Cos float32 `json:"cos" db:"cos"`
}

type GetVectorsOptions struct {
	ID            string
	WorkspaceName string
	Source        string
}

func (opts GetVectorsOptions) Apply(query *sq.SelectBuilder) {
	if opts.ID != "" {
		*query = query.Where(sq.Eq{"id": opts.ID})
	}
	if opts.WorkspaceName != "" {
		*query = query.Where(sq.Eq{"workspace_name": opts.WorkspaceName})
	}
	if opts.Source != "" {
		*query = query.Where(sq.Eq{"source": opts.Source})
	}
}
