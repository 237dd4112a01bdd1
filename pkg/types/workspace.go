package types

import (
	sq "github.com/Masterminds/squirrel"
)

// Workspace is a named partition of documents. TotalFiles is a
// derived counter kept in lockstep with the workspace_files rows
// inside the same transaction, never recomputed.
type Workspace struct {
	ID           int64  `json:"id" db:"id"`
	UserID       string `json:"user_id" db:"user_id"`
	Name         string `json:"workspace_name" db:"workspace_name"`
	TotalFiles   int    `json:"total_files" db:"total_files"`
	CreatedAt    int64  `json:"created_at" db:"created_at"`
	LastModified int64  `json:"last_modified" db:"last_modified"`
}

type WorkspaceFile struct {
	ID           int64  `json:"id" db:"id"`
	WorkspaceID  int64  `json:"workspace_id" db:"workspace_id"`
	FileName     string `json:"file_name" db:"file_name"`
	FilePath     string `json:"file_path" db:"file_path"`
	CreatedAt    int64  `json:"created_at" db:"created_at"`
	LastModified int64  `json:"last_modified" db:"last_modified"`
}

// WorkspaceFileDoc maps a registered file to one vector-index doc_id.
// One file owns many rows when it was chunked.
type WorkspaceFileDoc struct {
	ID          int64  `json:"id" db:"id"`
	WorkspaceID int64  `json:"workspace_id" db:"workspace_id"`
	FileID      int64  `json:"file_id" db:"file_id"`
	DocID       string `json:"doc_id" db:"doc_id"`
	CreatedAt   int64  `json:"created_at" db:"created_at"`
}

type GetWorkspaceFileOptions struct {
	WorkspaceID int64
	FileName    string
}

func (opts GetWorkspaceFileOptions) Apply(query *sq.SelectBuilder) {
	if opts.WorkspaceID != 0 {
		*query = query.Where(sq.Eq{"workspace_id": opts.WorkspaceID})
	}
	if opts.FileName != "" {
		*query = query.Where(sq.Eq{"file_name": opts.FileName})
	}
}
