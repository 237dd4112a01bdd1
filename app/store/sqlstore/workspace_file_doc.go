package sqlstore

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/docuquery/docuquery/pkg/register"
	"github.com/docuquery/docuquery/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.WorkspaceFileDocStore = NewWorkspaceFileDocStore(provider)
	})
}

type WorkspaceFileDocStore struct {
	CommonFields
}

func NewWorkspaceFileDocStore(provider SqlProviderAchieve) *WorkspaceFileDocStore {
	store := &WorkspaceFileDocStore{}
	store.SetProvider(provider)
	store.SetTable(types.TABLE_WORKSPACE_FILE_DOC)
	store.SetAllColumns("id", "workspace_id", "file_id", "doc_id", "created_at")
	return store
}

func (s *WorkspaceFileDocStore) BatchCreate(ctx context.Context, datas []types.WorkspaceFileDoc) error {
	if len(datas) == 0 {
		return nil
	}

	query := sq.Insert(s.GetTable()).Columns("workspace_id", "file_id", "doc_id", "created_at")
	for _, data := range datas {
		if data.CreatedAt == 0 {
			data.CreatedAt = time.Now().Unix()
		}
		query = query.Values(data.WorkspaceID, data.FileID, data.DocID, data.CreatedAt)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *WorkspaceFileDocStore) ListDocIDs(ctx context.Context, fileID int64) ([]string, error) {
	query := sq.Select("doc_id").From(s.GetTable()).Where(sq.Eq{"file_id": fileID}).OrderBy("id ASC")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []string
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *WorkspaceFileDocStore) DeleteByFileID(ctx context.Context, fileID int64) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"file_id": fileID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
