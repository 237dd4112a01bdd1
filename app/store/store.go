package store

import (
	"context"

	"github.com/pgvector/pgvector-go"

	"github.com/docuquery/docuquery/pkg/types"
)

// DocumentStore persists the structured-document rows mapping a
// vector-index doc_id to its extracted-content blob path.
type DocumentStore interface {
	Create(ctx context.Context, data types.Document) error
	GetByDocID(ctx context.Context, docID string) (*types.Document, error)
	List(ctx context.Context, opts types.GetDocumentOptions) ([]types.Document, error)
	Delete(ctx context.Context, docID string) error
}

type WorkspaceStore interface {
	Create(ctx context.Context, data types.Workspace) (int64, error)
	GetByName(ctx context.Context, name string) (*types.Workspace, error)
	List(ctx context.Context) ([]types.Workspace, error)
	// UpdateTotalFiles shifts the derived counter by delta and bumps
	// last_modified. Must run inside the transaction that mutates the
	// workspace_files rows.
	UpdateTotalFiles(ctx context.Context, id int64, delta int) error
	Delete(ctx context.Context, id int64) error
}

type WorkspaceFileStore interface {
	Create(ctx context.Context, data types.WorkspaceFile) (int64, error)
	Get(ctx context.Context, workspaceID int64, fileName string) (*types.WorkspaceFile, error)
	List(ctx context.Context, opts types.GetWorkspaceFileOptions) ([]types.WorkspaceFile, error)
	Delete(ctx context.Context, id int64) error
}

type WorkspaceFileDocStore interface {
	BatchCreate(ctx context.Context, datas []types.WorkspaceFileDoc) error
	ListDocIDs(ctx context.Context, fileID int64) ([]string, error)
	DeleteByFileID(ctx context.Context, fileID int64) error
}

// VectorStore spans both similarity collections; every call names the
// collection it targets.
type VectorStore interface {
	Create(ctx context.Context, collection types.VectorCollection, data types.VectorRecord) error
	BatchCreate(ctx context.Context, collection types.VectorCollection, datas []types.VectorRecord) error
	Get(ctx context.Context, collection types.VectorCollection, id string) (*types.VectorRecord, error)
	List(ctx context.Context, collection types.VectorCollection, opts types.GetVectorsOptions) ([]types.VectorRecord, error)
	Delete(ctx context.Context, collection types.VectorCollection, id string) error
	Query(ctx context.Context, collection types.VectorCollection, opts types.GetVectorsOptions, vector pgvector.Vector, limit uint64) ([]types.VectorQueryResult, error)
}

// Provider is the injected store-adapter bundle. Logic depends on
// this interface only, so tests run against in-memory fakes and
// failure injection needs no database.
type Provider interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	DocumentStore() DocumentStore
	WorkspaceStore() WorkspaceStore
	WorkspaceFileStore() WorkspaceFileStore
	WorkspaceFileDocStore() WorkspaceFileDocStore
	VectorStore() VectorStore
}
