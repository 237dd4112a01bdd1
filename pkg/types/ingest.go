package types

// IngestMetadata is the caller-supplied descriptive metadata attached
// to an ingested file. Title defaults to the file basename,
// DocumentType to the classifier's verdict when empty.
type IngestMetadata struct {
	Title           string `json:"title"`
	DocumentType    string `json:"document_type"`
	UserDescription string `json:"user_description"`
}

const (
	DOC_TYPE_IMAGE      = "image"
	DOC_TYPE_TEXT       = "text"
	DOC_TYPE_STRUCTURED = "structured"
)
