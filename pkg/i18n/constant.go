package i18n

var ALLOW_LANG = map[string]bool{
	"en": true,
}

const DEFAULT_LANG = "en"

const (
	ERROR_INTERNAL        = "error.internal"
	ERROR_NOT_FOUND       = "error.notfound"
	ERROR_INVALIDARGUMENT = "error.invalidargument"
	ERROR_EXIST           = "error.exist"
	ERROR_FORBIDDEN       = "error.forbidden"

	ERROR_FILE_ALREADY_EXISTS   = "error.file.already.exists"
	ERROR_FILE_TOO_LARGE        = "error.file.too.large"
	ERROR_FILE_TYPE_UNSUPPORTED = "error.file.type.unsupported"
	ERROR_FILE_DOWNLOAD_FAILED  = "error.file.download.failed"
	ERROR_FILE_READ_FAIL        = "error.file.read.fail"
	ERROR_PROCESSING_FAILED     = "error.processing.failed"
	ERROR_PARTIAL_DELETION      = "error.deletion.partial"
	ERROR_WORKSPACE_NOT_FOUND   = "error.workspace.notfound"
	ERROR_DOCUMENT_NOT_FOUND    = "error.document.notfound"

	ERROR_AI_EMBEDDING_FAILED  = "error.ai.embedding.failed"
	ERROR_AI_GENERATION_FAILED = "error.ai.generation.failed"
)
