package types

// ContextKind tags the variant of a retrieval context. The three
// variants carry fixed field sets, converted from store rows at the
// aggregator boundary.
type ContextKind string

const (
	CONTEXT_KIND_STRUCTURED ContextKind = "structured"
	CONTEXT_KIND_CHUNK      ContextKind = "chunk"
	CONTEXT_KIND_IMAGE      ContextKind = "image"
)

// RetrievalContext is one candidate handed to the relevance oracle
// and, if admitted, to the generation oracle. Built per query, never
// persisted.
type RetrievalContext struct {
	Kind    ContextKind
	Content string

	Source        string
	Title         string
	DocumentType  string
	WorkspaceName string

	// chunk variant only, 1-based; 0 means not a chunk
	Chunk       int
	TotalChunks int

	// structured variant only
	Tables     map[string]string
	ImagePaths []string

	// image variant only
	ExtractedText   string
	UserDescription string
	OriginalPath    string
}

// ScoreText returns the text submitted to the relevance oracle for
// this context.
func (c RetrievalContext) ScoreText() string {
	if c.Kind == CONTEXT_KIND_IMAGE && c.Content == "" {
		return c.Title + "\n" + c.ExtractedText + "\n" + c.UserDescription
	}
	return c.Content
}

// SearchClass selects the retrieval pipeline variant.
const (
	SEARCH_CLASS_TEXT  = "text"
	SEARCH_CLASS_IMAGE = "image"
)
