package sqlstore

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/docuquery/docuquery/pkg/register"
	"github.com/docuquery/docuquery/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.DocumentStore = NewDocumentStore(provider)
	})
}

type DocumentStore struct {
	CommonFields
}

func NewDocumentStore(provider SqlProviderAchieve) *DocumentStore {
	store := &DocumentStore{}
	store.SetProvider(provider)
	store.SetTable(types.TABLE_DOCUMENT)
	store.SetAllColumns("id", "doc_id", "title", "workspace_name", "timestamp", "content_path")
	return store
}

func (s *DocumentStore) Create(ctx context.Context, data types.Document) error {
	query := sq.Insert(s.GetTable()).
		Columns("doc_id", "title", "workspace_name", "timestamp", "content_path").
		Values(data.DocID, data.Title, data.WorkspaceName, data.Timestamp, data.ContentPath)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *DocumentStore) GetByDocID(ctx context.Context, docID string) (*types.Document, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"doc_id": docID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.Document
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (s *DocumentStore) List(ctx context.Context, opts types.GetDocumentOptions) ([]types.Document, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable())
	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.Document
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *DocumentStore) Delete(ctx context.Context, docID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"doc_id": docID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
