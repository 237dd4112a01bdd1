package sqlstore

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/docuquery/docuquery/pkg/register"
	"github.com/docuquery/docuquery/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.WorkspaceFileStore = NewWorkspaceFileStore(provider)
	})
}

type WorkspaceFileStore struct {
	CommonFields
}

func NewWorkspaceFileStore(provider SqlProviderAchieve) *WorkspaceFileStore {
	store := &WorkspaceFileStore{}
	store.SetProvider(provider)
	store.SetTable(types.TABLE_WORKSPACE_FILE)
	store.SetAllColumns("id", "workspace_id", "file_name", "file_path", "created_at", "last_modified")
	return store
}

func (s *WorkspaceFileStore) Create(ctx context.Context, data types.WorkspaceFile) (int64, error) {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.LastModified == 0 {
		data.LastModified = data.CreatedAt
	}

	query := sq.Insert(s.GetTable()).
		Columns("workspace_id", "file_name", "file_path", "created_at", "last_modified").
		Values(data.WorkspaceID, data.FileName, data.FilePath, data.CreatedAt, data.LastModified).
		Suffix("RETURNING id")

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	var id int64
	if err = s.GetMaster(ctx).Get(&id, queryString, args...); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *WorkspaceFileStore) Get(ctx context.Context, workspaceID int64, fileName string) (*types.WorkspaceFile, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"workspace_id": workspaceID, "file_name": fileName})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.WorkspaceFile
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (s *WorkspaceFileStore) List(ctx context.Context, opts types.GetWorkspaceFileOptions) ([]types.WorkspaceFile, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).OrderBy("created_at ASC")
	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.WorkspaceFile
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *WorkspaceFileStore) Delete(ctx context.Context, id int64) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
