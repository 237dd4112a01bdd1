// Package ai declares the oracle contracts consumed by the lifecycle
// engine. Embedding, relevance scoring, generation and classification
// are delegated to an external provider; the engine only depends on
// these interfaces.
package ai

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/docuquery/docuquery/pkg/types"
)

type Embedder interface {
	EmbedText(ctx context.Context, content string) ([]float32, error)
	// EmbedImage returns an image-derived vector zero-padded to the
	// text embedding dimension when shorter.
	EmbedImage(ctx context.Context, filePath string) ([]float32, error)
}

type Relevance interface {
	// Score returns a 0..1 relevance score for the context/question
	// pair. Callers treat failures as 0.
	Score(ctx context.Context, contextText, question string) (float64, error)
}

type Generator interface {
	AnswerText(ctx context.Context, contexts []types.RetrievalContext, question string) (string, error)
	AnswerImage(ctx context.Context, contexts []types.RetrievalContext, question string) (string, error)
	Classify(ctx context.Context, contentSample string) (string, error)
	Summarize(ctx context.Context, content string) (string, error)
	DescribeImage(ctx context.Context, filePath string) (string, error)
}

// Oracle bundles the three collaborator roles one provider usually
// serves together.
type Oracle interface {
	Embedder
	Relevance
	Generator
}

// ParseScore interprets a relevance oracle reply. Non-numeric or
// out-of-range replies collapse to 0.
func ParseScore(reply string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(reply), 64)
	if err != nil || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// DedupeAnswerLines removes repeated lines from a generated answer,
// comparing case-insensitively and keeping first occurrences.
func DedupeAnswerLines(answer string) string {
	seen := make(map[string]struct{})
	var kept []string
	for _, line := range strings.Split(answer, "\n") {
		key := strings.ToLower(strings.TrimSpace(line))
		if key == "" {
			kept = append(kept, line)
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// BuildTextAnswerPrompt flattens admitted contexts into the text
// generation contract: running text, numbered tables and discovered
// image paths, followed by the question.
func BuildTextAnswerPrompt(contexts []types.RetrievalContext, question, lang string) string {
	var (
		text       strings.Builder
		tables     strings.Builder
		imagePaths []string
	)

	for _, c := range contexts {
		text.WriteString(c.Content)
		text.WriteString("\n")

		if len(c.Tables) == 0 {
			tables.WriteString("No relevant tables found\n")
		} else {
			keys := make([]string, 0, len(c.Tables))
			for k := range c.Tables {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for idx, k := range keys {
				fmt.Fprintf(&tables, "Table %d:\n%s\n", idx, c.Tables[k])
			}
		}
		imagePaths = append(imagePaths, c.ImagePaths...)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Context: %s\n", text.String())
	fmt.Fprintf(&b, "Tables: %s\n", tables.String())
	fmt.Fprintf(&b, "Images: Available at paths - %v\n\n", imagePaths)
	fmt.Fprintf(&b, "Question: %s\n", question)
	b.WriteString("Answer with text and refer to images at the end of the answer as [Image: path]. ")
	b.WriteString("Do not invent images that don't exist, and don't repeat your answer. ")
	b.WriteString("Respond in well-formatted Markdown with proper structure.")
	if lang != "" {
		fmt.Fprintf(&b, " Answer in %s.", lang)
	}
	return b.String()
}

// BuildImageAnswerPrompt frames admitted image contexts: extracted
// OCR text, the user's description, title and resolved source path
// per candidate.
func BuildImageAnswerPrompt(contexts []types.RetrievalContext, question, lang string) string {
	var b strings.Builder
	b.WriteString("You are answering a question about the user's indexed images.\n\n")
	for i, c := range contexts {
		fmt.Fprintf(&b, "Image %d:\n", i+1)
		if c.Title != "" {
			fmt.Fprintf(&b, "Title: %s\n", c.Title)
		}
		if c.ExtractedText != "" {
			fmt.Fprintf(&b, "Extracted text: %s\n", c.ExtractedText)
		}
		if c.UserDescription != "" {
			fmt.Fprintf(&b, "User description: %s\n", c.UserDescription)
		}
		if c.OriginalPath != "" {
			fmt.Fprintf(&b, "Source: %s\n", c.OriginalPath)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Question: %s\n", question)
	b.WriteString("Answer based only on the images above and mention which image supports each claim.")
	if lang != "" {
		fmt.Fprintf(&b, " Answer in %s.", lang)
	}
	return b.String()
}

// BuildRelevancePrompt asks for a bare numeric verdict so the reply
// parses with ParseScore.
func BuildRelevancePrompt(contextText, question string) string {
	var b strings.Builder
	b.WriteString("Determine if this context is relevant to the question. ")
	b.WriteString("Answer ONLY 1 for relevant or 0 for irrelevant.\n\n")
	fmt.Fprintf(&b, "Question: %s\n", question)
	fmt.Fprintf(&b, "Context: %s\n", contextText)
	return b.String()
}

func BuildClassifyPrompt(contentSample string) string {
	var b strings.Builder
	b.WriteString("You are given the text content of a document. Analyze it and answer with a short ")
	b.WriteString("document type label such as Invoice, Bank Statement, Resume, Learning Notes, ")
	b.WriteString("Business Report, Research Paper or General Document. Answer with the label only.\n\n")
	fmt.Fprintf(&b, "Content:\n%s\n", contentSample)
	return b.String()
}

func BuildSummarizePrompt(content string) string {
	var b strings.Builder
	b.WriteString("Summarize the following document content, preserving the key facts, ")
	b.WriteString("named entities and figures so the summary can stand in for the document ")
	b.WriteString("during semantic search.\n\n")
	fmt.Fprintf(&b, "Content:\n%s\n", content)
	return b.String()
}
