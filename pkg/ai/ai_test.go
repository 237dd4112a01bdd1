package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docuquery/docuquery/pkg/types"
)

func TestParseScore(t *testing.T) {
	assert.Equal(t, 1.0, ParseScore("1"))
	assert.Equal(t, 0.0, ParseScore("0"))
	assert.Equal(t, 0.85, ParseScore(" 0.85\n"))

	// non-numeric replies collapse to zero
	assert.Equal(t, 0.0, ParseScore("the context is relevant"))
	assert.Equal(t, 0.0, ParseScore(""))
	assert.Equal(t, 0.0, ParseScore("-0.3"))
	// clamped to the unit interval
	assert.Equal(t, 1.0, ParseScore("7"))
}

func TestDedupeAnswerLines(t *testing.T) {
	in := "The total is 42.\nThe total is 42.\nTHE TOTAL IS 42.\nSee table 1."
	assert.Equal(t, "The total is 42.\nSee table 1.", DedupeAnswerLines(in))
}

func TestBuildTextAnswerPromptCarriesTablesAndImages(t *testing.T) {
	prompt := BuildTextAnswerPrompt([]types.RetrievalContext{
		{
			Kind:       types.CONTEXT_KIND_STRUCTURED,
			Content:    "Quarterly revenue grew.",
			Tables:     map[string]string{"t0": "| Q | Revenue |"},
			ImagePaths: []string{"/outputs/ws/doc/img0.png"},
		},
	}, "How did revenue develop?", "Eng")

	assert.True(t, strings.Contains(prompt, "Quarterly revenue grew."))
	assert.True(t, strings.Contains(prompt, "| Q | Revenue |"))
	assert.True(t, strings.Contains(prompt, "/outputs/ws/doc/img0.png"))
	assert.True(t, strings.Contains(prompt, "How did revenue develop?"))
}
