package errors

// Error kinds surfaced to API callers. Handlers map them onto the
// response envelope unchanged.
const (
	KIND_FILE_ALREADY_EXISTS      = "file_already_exists"
	KIND_FILE_TOO_LARGE           = "file_too_large"
	KIND_UNSUPPORTED_FILE_TYPE    = "unsupported_file_type"
	KIND_DOWNLOAD_FAILED          = "download_failed"
	KIND_PROCESSING_FAILED        = "processing_failed"
	KIND_NOT_FOUND                = "not_found"
	KIND_DATABASE_ERROR           = "database_error"
	KIND_PARTIAL_DELETION_FAILURE = "partial_deletion_failure"
)
