package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/samber/lo"

	"github.com/docuquery/docuquery/app/core"
	"github.com/docuquery/docuquery/pkg/errors"
	"github.com/docuquery/docuquery/pkg/i18n"
	"github.com/docuquery/docuquery/pkg/types"
)

type WorkspaceLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewWorkspaceLogic(ctx context.Context, core *core.Core) *WorkspaceLogic {
	return &WorkspaceLogic{
		ctx:  ctx,
		core: core,
	}
}

// CreateWorkspace is idempotent on the workspace name: creating an
// existing workspace returns its id untouched.
func (l *WorkspaceLogic) CreateWorkspace(name, userID string) (int64, error) {
	if name == "" {
		return 0, errors.New("WorkspaceLogic.CreateWorkspace.EmptyName", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	existing, err := l.core.Store().WorkspaceStore().GetByName(l.ctx, name)
	if err != nil {
		return 0, errors.New("WorkspaceLogic.CreateWorkspace.WorkspaceStore.GetByName", i18n.ERROR_INTERNAL, err).Kind(errors.KIND_DATABASE_ERROR)
	}
	if existing != nil {
		return existing.ID, nil
	}

	id, err := l.core.Store().WorkspaceStore().Create(l.ctx, types.Workspace{
		UserID: userID,
		Name:   name,
	})
	if err != nil {
		return 0, errors.New("WorkspaceLogic.CreateWorkspace.WorkspaceStore.Create", i18n.ERROR_INTERNAL, err).Kind(errors.KIND_DATABASE_ERROR)
	}
	return id, nil
}

func (l *WorkspaceLogic) ListWorkspaces() ([]types.Workspace, error) {
	list, err := l.core.Store().WorkspaceStore().List(l.ctx)
	if err != nil {
		return nil, errors.New("WorkspaceLogic.ListWorkspaces.WorkspaceStore.List", i18n.ERROR_INTERNAL, err).Kind(errors.KIND_DATABASE_ERROR)
	}
	return list, nil
}

type WorkspaceDetail struct {
	ID           int64    `json:"id"`
	Name         string   `json:"workspace_name"`
	UserID       string   `json:"user_id"`
	TotalFiles   int      `json:"total_files"`
	CreatedAt    string   `json:"created_at"`
	LastModified string   `json:"last_modified"`
	Files        []string `json:"files"`
}

func (l *WorkspaceLogic) GetWorkspaceDetail(name string) (*WorkspaceDetail, error) {
	ws, err := l.core.Store().WorkspaceStore().GetByName(l.ctx, name)
	if err != nil {
		return nil, errors.New("WorkspaceLogic.GetWorkspaceDetail.WorkspaceStore.GetByName", i18n.ERROR_INTERNAL, err).Kind(errors.KIND_DATABASE_ERROR)
	}
	if ws == nil {
		return nil, errors.New("WorkspaceLogic.GetWorkspaceDetail.NotFound", i18n.ERROR_WORKSPACE_NOT_FOUND, nil).
			Code(http.StatusNotFound).Kind(errors.KIND_NOT_FOUND)
	}

	files, err := l.core.Store().WorkspaceFileStore().List(l.ctx, types.GetWorkspaceFileOptions{WorkspaceID: ws.ID})
	if err != nil {
		return nil, errors.New("WorkspaceLogic.GetWorkspaceDetail.WorkspaceFileStore.List", i18n.ERROR_INTERNAL, err).Kind(errors.KIND_DATABASE_ERROR)
	}

	return &WorkspaceDetail{
		ID:           ws.ID,
		Name:         ws.Name,
		UserID:       ws.UserID,
		TotalFiles:   ws.TotalFiles,
		CreatedAt:    time.Unix(ws.CreatedAt, 0).UTC().Format(time.RFC3339),
		LastModified: time.Unix(ws.LastModified, 0).UTC().Format(time.RFC3339),
		Files: lo.Map(files, func(f types.WorkspaceFile, _ int) string {
			return f.FileName
		}),
	}, nil
}

func (l *WorkspaceLogic) ListFiles(name string) ([]types.WorkspaceFile, error) {
	ws, err := l.core.Store().WorkspaceStore().GetByName(l.ctx, name)
	if err != nil {
		return nil, errors.New("WorkspaceLogic.ListFiles.WorkspaceStore.GetByName", i18n.ERROR_INTERNAL, err).Kind(errors.KIND_DATABASE_ERROR)
	}
	if ws == nil {
		return nil, errors.New("WorkspaceLogic.ListFiles.NotFound", i18n.ERROR_WORKSPACE_NOT_FOUND, nil).
			Code(http.StatusNotFound).Kind(errors.KIND_NOT_FOUND)
	}

	files, err := l.core.Store().WorkspaceFileStore().List(l.ctx, types.GetWorkspaceFileOptions{WorkspaceID: ws.ID})
	if err != nil {
		return nil, errors.New("WorkspaceLogic.ListFiles.WorkspaceFileStore.List", i18n.ERROR_INTERNAL, err).Kind(errors.KIND_DATABASE_ERROR)
	}
	return files, nil
}
