package types

import (
	"encoding/json"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Document is a relational row pointing a vector-index doc_id at the
// structured-content blob extracted for page-oriented formats. Chunked
// plain text and images never get a row here, their content lives in
// the vector collections directly.
type Document struct {
	ID            int64  `json:"id" db:"id"`
	DocID         string `json:"doc_id" db:"doc_id"`
	Title         string `json:"title" db:"title"`
	WorkspaceName string `json:"workspace_name" db:"workspace_name"`
	Timestamp     string `json:"timestamp" db:"timestamp"`
	ContentPath   string `json:"content_path" db:"content_path"`
}

type GetDocumentOptions struct {
	DocID         string
	WorkspaceName string
}

func (opts GetDocumentOptions) Apply(query *sq.SelectBuilder) {
	if opts.DocID != "" {
		*query = query.Where(sq.Eq{"doc_id": opts.DocID})
	}
	if opts.WorkspaceName != "" {
		*query = query.Where(sq.Eq{"workspace_name": opts.WorkspaceName})
	}
}

// DocIDs holds the vector-index ids minted for one ingested file. A
// single unsplit document has one id; chunked text has the full
// ordered chunk id list. The ledger historically stored either a bare
// string or an array, so unmarshalling accepts both.
type DocIDs []string

func (d DocIDs) MarshalJSON() ([]byte, error) {
	if len(d) == 1 {
		return json.Marshal(d[0])
	}
	return json.Marshal([]string(d))
}

func (d *DocIDs) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*d = DocIDs{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*d = DocIDs(many)
	return nil
}

// ChunkSource returns the base document identity shared by all chunks
// of one file, the text before the last '-' separator in a chunk id.
// Ids are "{uuid}-{index}" so the uuid's own dashes must survive.
func ChunkSource(id string) string {
	idx := strings.LastIndex(id, "-")
	if idx <= 0 {
		return id
	}
	return id[:idx]
}
