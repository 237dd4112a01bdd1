package sqlstore

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pgvector/pgvector-go"

	"github.com/docuquery/docuquery/pkg/register"
	"github.com/docuquery/docuquery/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.VectorStore = NewVectorStore(provider)
	})
}

// VectorStore serves both similarity collections. The collection
// selector is passed through GetTable so the two identical tables
// share one implementation.
type VectorStore struct {
	CommonFields
}

func NewVectorStore(provider SqlProviderAchieve) *VectorStore {
	store := &VectorStore{}
	store.SetProvider(provider)
	store.SetTableFunc(func(key []interface{}) string {
		if len(key) > 0 {
			if c, ok := key[0].(types.VectorCollection); ok {
				return c.Table().Name()
			}
		}
		return types.TABLE_VECTORS_TEXT.Name()
	})
	store.SetAllColumns("id", "embedding", "document", "source", "title", "document_type", "workspace_name", "chunk", "total_chunks", "original_path", "created_at")
	return store
}

func (s *VectorStore) Create(ctx context.Context, collection types.VectorCollection, data types.VectorRecord) error {
	return s.BatchCreate(ctx, collection, []types.VectorRecord{data})
}

func (s *VectorStore) BatchCreate(ctx context.Context, collection types.VectorCollection, datas []types.VectorRecord) error {
	if len(datas) == 0 {
		return nil
	}

	query := sq.Insert(s.GetTable(collection)).
		Columns("id", "embedding", "document", "source", "title", "document_type", "workspace_name", "chunk", "total_chunks", "original_path", "created_at")
	for _, data := range datas {
		if data.CreatedAt == 0 {
			data.CreatedAt = time.Now().Unix()
		}
		query = query.Values(data.ID, data.Embedding, data.Document, data.Source, data.Title, data.DocumentType, data.WorkspaceName, data.Chunk, data.TotalChunks, data.OriginalPath, data.CreatedAt)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *VectorStore) Get(ctx context.Context, collection types.VectorCollection, id string) (*types.VectorRecord, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable(collection)).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.VectorRecord
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (s *VectorStore) List(ctx context.Context, collection types.VectorCollection, opts types.GetVectorsOptions) ([]types.VectorRecord, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable(collection)).OrderBy("chunk ASC")
	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.VectorRecord
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *VectorStore) Delete(ctx context.Context, collection types.VectorCollection, id string) error {
	query := sq.Delete(s.GetTable(collection)).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// Query runs a nearest-neighbor search over the collection.
// pgvector distance operators:
// <-> L2, <#> negative inner product, <=> cosine, <+> L1
func (s *VectorStore) Query(ctx context.Context, collection types.VectorCollection, opts types.GetVectorsOptions, vector pgvector.Vector, limit uint64) ([]types.VectorQueryResult, error) {
	cosColumn, vectorArgs, _ := sq.Expr("1 - (embedding <=> ?) as cos", vector).ToSql()
	query := sq.Select("id", cosColumn).From(s.GetTable(collection)).Limit(limit).OrderBy("cos DESC")
	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	args = append(vectorArgs, args...)

	var res []types.VectorQueryResult
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}
