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
		provider.stores.WorkspaceStore = NewWorkspaceStore(provider)
	})
}

type WorkspaceStore struct {
	CommonFields
}

func NewWorkspaceStore(provider SqlProviderAchieve) *WorkspaceStore {
	store := &WorkspaceStore{}
	store.SetProvider(provider)
	store.SetTable(types.TABLE_WORKSPACE)
	store.SetAllColumns("id", "user_id", "workspace_name", "total_files", "created_at", "last_modified")
	return store
}

func (s *WorkspaceStore) Create(ctx context.Context, data types.Workspace) (int64, error) {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.LastModified == 0 {
		data.LastModified = data.CreatedAt
	}

	query := sq.Insert(s.GetTable()).
		Columns("user_id", "workspace_name", "total_files", "created_at", "last_modified").
		Values(data.UserID, data.Name, data.TotalFiles, data.CreatedAt, data.LastModified).
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

func (s *WorkspaceStore) GetByName(ctx context.Context, name string) (*types.Workspace, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"workspace_name": name})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.Workspace
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (s *WorkspaceStore) List(ctx context.Context) ([]types.Workspace, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).OrderBy("last_modified DESC")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.Workspace
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

// UpdateTotalFiles keeps the derived counter in lockstep with the
// workspace_files rows. Callers run it inside the same transaction
// as the file insert or delete.
func (s *WorkspaceStore) UpdateTotalFiles(ctx context.Context, id int64, delta int) error {
	query := sq.Update(s.GetTable()).
		Set("total_files", sq.Expr("total_files + ?", delta)).
		Set("last_modified", time.Now().Unix()).
		Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *WorkspaceStore) Delete(ctx context.Context, id int64) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
