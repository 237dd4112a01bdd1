package v1

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pgvector/pgvector-go"
	"github.com/samber/lo"

	"github.com/docuquery/docuquery/app/core"
	"github.com/docuquery/docuquery/pkg/errors"
	"github.com/docuquery/docuquery/pkg/extract"
	"github.com/docuquery/docuquery/pkg/i18n"
	"github.com/docuquery/docuquery/pkg/types"
)

const (
	// admission is strictly greater-than, a context scoring exactly
	// the threshold is excluded
	relevanceThreshold = 0.7

	// candidate ceiling per collection query
	queryLimit = 10

	NoRelevantInformation = "No relevant information found in documents"
	GenerationUnavailable = "I'm having trouble accessing the AI service. Please try again later."
)

type AnswerLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewAnswerLogic(ctx context.Context, core *core.Core) *AnswerLogic {
	return &AnswerLogic{
		ctx:  ctx,
		core: core,
	}
}

// Answer runs the retrieval pipeline for one question: embed, query
// the selected collection, resolve candidates to contexts, admit by
// relevance, regroup chunks into whole documents and generate. An
// empty admitted set short-circuits to the fixed no-information reply
// without any generation call. Workspace, when non-empty, scopes the
// collection query.
func (l *AnswerLogic) Answer(question, searchClass, workspace string) (string, error) {
	collection := types.VECTOR_COLLECTION_TEXT
	if searchClass == types.SEARCH_CLASS_IMAGE {
		collection = types.VECTOR_COLLECTION_IMAGE
	}

	vector, err := l.core.Oracle().EmbedText(l.ctx, question)
	if err != nil {
		l.core.Metrics().AnswerInc(searchClass, "error")
		return "", errors.New("AnswerLogic.Answer.EmbedText", i18n.ERROR_AI_EMBEDDING_FAILED, err).
			Kind(errors.KIND_PROCESSING_FAILED)
	}

	results, err := l.core.Store().VectorStore().Query(l.ctx, collection,
		types.GetVectorsOptions{WorkspaceName: workspace}, pgvector.NewVector(vector), queryLimit)
	if err != nil {
		l.core.Metrics().AnswerInc(searchClass, "error")
		return "", errors.New("AnswerLogic.Answer.VectorStore.Query", i18n.ERROR_INTERNAL, err).
			Kind(errors.KIND_DATABASE_ERROR)
	}

	contexts := l.resolve(collection, results)
	admitted := l.admit(contexts, question)
	admitted = regroupChunks(admitted)

	if len(admitted) == 0 {
		l.core.Metrics().AnswerInc(searchClass, "empty")
		return NoRelevantInformation, nil
	}

	var answer string
	if searchClass == types.SEARCH_CLASS_IMAGE {
		answer, err = l.core.Oracle().AnswerImage(l.ctx, admitted, question)
	} else {
		answer, err = l.core.Oracle().AnswerText(l.ctx, admitted, question)
	}
	if err != nil {
		slog.Error("answer generation failed", slog.String("class", searchClass), slog.Any("error", err))
		l.core.Metrics().AnswerInc(searchClass, "degraded")
		answer = GenerationUnavailable
	} else {
		l.core.Metrics().AnswerInc(searchClass, "ok")
	}

	return answer + sourcesLine(admitted), nil
}

// resolve turns query hits into retrieval contexts, deduplicating by
// id. A hit whose id names a structured-document row resolves through
// its extracted blob; anything else resolves through the collection
// entry itself.
func (l *AnswerLogic) resolve(collection types.VectorCollection, results []types.VectorQueryResult) []types.RetrievalContext {
	seen := make(map[string]bool, len(results))
	contexts := make([]types.RetrievalContext, 0, len(results))

	for _, hit := range results {
		if seen[hit.ID] {
			continue
		}
		seen[hit.ID] = true

		doc, err := l.core.Store().DocumentStore().GetByDocID(l.ctx, hit.ID)
		if err != nil {
			slog.Error("resolve candidate: document row", slog.String("id", hit.ID), slog.Any("error", err))
			continue
		}
		if doc != nil && doc.ContentPath != "" {
			ctx, err := l.resolveStructured(doc)
			if err != nil {
				slog.Error("resolve candidate: structured blob", slog.String("id", hit.ID), slog.Any("error", err))
				continue
			}
			contexts = append(contexts, ctx)
			continue
		}

		record, err := l.core.Store().VectorStore().Get(l.ctx, collection, hit.ID)
		if err != nil {
			slog.Error("resolve candidate: vector entry", slog.String("id", hit.ID), slog.Any("error", err))
			continue
		}
		if record == nil {
			continue
		}
		contexts = append(contexts, l.resolveRecord(collection, record))
	}
	return contexts
}

func (l *AnswerLogic) resolveStructured(doc *types.Document) (types.RetrievalContext, error) {
	blob, err := extract.LoadBlob(doc.ContentPath)
	if err != nil {
		return types.RetrievalContext{}, err
	}
	return types.RetrievalContext{
		Kind:          types.CONTEXT_KIND_STRUCTURED,
		Content:       blob.ConcatenatedText(),
		Source:        blob.Metadata.Source,
		Title:         doc.Title,
		DocumentType:  blob.Metadata.DocumentType,
		WorkspaceName: doc.WorkspaceName,
		Tables:        blob.Tables,
		ImagePaths:    blob.ImagePaths(),
	}, nil
}

func (l *AnswerLogic) resolveRecord(collection types.VectorCollection, record *types.VectorRecord) types.RetrievalContext {
	source := record.Source
	if source == "" {
		source = types.ChunkSource(record.ID)
	}
	ctx := types.RetrievalContext{
		Kind:          types.CONTEXT_KIND_CHUNK,
		Content:       record.Document,
		Source:        source,
		Title:         record.Title,
		DocumentType:  record.DocumentType,
		WorkspaceName: record.WorkspaceName,
		Chunk:         record.Chunk,
		TotalChunks:   record.TotalChunks,
		OriginalPath:  record.OriginalPath,
	}
	if collection == types.VECTOR_COLLECTION_IMAGE {
		ctx.Kind = types.CONTEXT_KIND_IMAGE
		if rec, ok, err := l.core.Ledger().GetImageRecord(record.ID); err == nil && ok {
			ctx.Title = rec.Title
			ctx.ExtractedText = rec.ExtractedText
			ctx.UserDescription = rec.UserDescription
			ctx.OriginalPath = rec.OriginalPath
		}
	}
	return ctx
}

// admit keeps the contexts the relevance oracle scores strictly above
// the threshold. A scoring failure demotes that context to zero
// rather than failing the query.
func (l *AnswerLogic) admit(contexts []types.RetrievalContext, question string) []types.RetrievalContext {
	admitted := make([]types.RetrievalContext, 0, len(contexts))
	for _, ctx := range contexts {
		score, err := l.core.Oracle().Score(l.ctx, ctx.ScoreText(), question)
		if err != nil {
			slog.Warn("relevance scoring failed", slog.String("source", ctx.Source), slog.Any("error", err))
			score = 0
		}
		if score > relevanceThreshold {
			admitted = append(admitted, ctx)
		}
	}
	return admitted
}

// regroupChunks merges chunk contexts sharing a source into one
// synthesized document context. The merged context sits at the
// position of the group's first appearance, its content is the
// chunk texts in chunk order joined by newlines and its metadata
// comes from the lowest-ordinal chunk. Non-chunk contexts pass
// through untouched.
func regroupChunks(contexts []types.RetrievalContext) []types.RetrievalContext {
	groups := make(map[string][]types.RetrievalContext)
	for _, ctx := range contexts {
		if ctx.Kind == types.CONTEXT_KIND_CHUNK && ctx.Chunk > 0 {
			groups[ctx.Source] = append(groups[ctx.Source], ctx)
		}
	}

	emitted := make(map[string]bool, len(groups))
	out := make([]types.RetrievalContext, 0, len(contexts))
	for _, ctx := range contexts {
		if ctx.Kind != types.CONTEXT_KIND_CHUNK || ctx.Chunk == 0 {
			out = append(out, ctx)
			continue
		}
		if emitted[ctx.Source] {
			continue
		}
		emitted[ctx.Source] = true

		group := groups[ctx.Source]
		sort.Slice(group, func(i, j int) bool { return group[i].Chunk < group[j].Chunk })

		parts := make([]string, 0, len(group))
		for _, member := range group {
			parts = append(parts, member.Content)
		}

		merged := group[0]
		merged.Content = strings.Join(parts, "\n")
		out = append(out, merged)
	}
	return out
}

// sourcesLine renders the trailing attribution of an answer. Names
// dedup order-preserving; an empty context set yields no line.
func sourcesLine(contexts []types.RetrievalContext) string {
	names := lo.FilterMap(contexts, func(ctx types.RetrievalContext, _ int) (string, bool) {
		name := ctx.OriginalPath
		if name != "" {
			name = filepath.Base(name)
		}
		if name == "" {
			name = ctx.Title
		}
		if name == "" {
			name = ctx.Source
		}
		return name, name != ""
	})
	names = lo.Uniq(names)
	if len(names) == 0 {
		return ""
	}
	return "\n\nSources: " + strings.Join(names, ", ")
}
