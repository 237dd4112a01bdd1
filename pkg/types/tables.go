package types

import "fmt"

type TableName string

func (s TableName) Name() string {
	return fmt.Sprintf("%s%s", TABLE_PREFIX, s)
}

const TABLE_PREFIX = "dq_"

const (
	TABLE_DOCUMENT           = TableName("documents")
	TABLE_WORKSPACE          = TableName("workspace_manager")
	TABLE_WORKSPACE_FILE     = TableName("workspace_files")
	TABLE_WORKSPACE_FILE_DOC = TableName("workspace_files_docid")
	TABLE_VECTORS_TEXT       = TableName("vectors_text")
	TABLE_VECTORS_IMAGE      = TableName("vectors_image")
)
