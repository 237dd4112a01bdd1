package v1

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextRoundTrip(t *testing.T) {
	cases := map[string]string{
		"single line":        "just one line",
		"several lines":      "alpha\nbeta\ngamma\ndelta",
		"blank lines":        "alpha\n\nbeta\n\n\ngamma",
		"trailing newline":   "alpha\nbeta\n",
		"only blank lines":   "\n\n\n",
		"oversized line":     strings.Repeat("x", 500),
		"mixed sizes":        strings.Repeat("y", 300) + "\nshort\n" + strings.Repeat("z", 250),
		"boundary at window": strings.Repeat("a", 100) + "\n" + strings.Repeat("b", 100),
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			chunks := SplitText(content, 100)
			require.NotEmpty(t, chunks)
			assert.Equal(t, content, JoinChunks(chunks))
		})
	}
}

func TestSplitTextRespectsWindow(t *testing.T) {
	var lines []string
	for i := 0; i < 50; i++ {
		lines = append(lines, strings.Repeat("w", 20))
	}
	content := strings.Join(lines, "\n")

	chunks := SplitText(content, 100)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 100)
	}
}

func TestSplitTextOversizedLineIsItsOwnChunk(t *testing.T) {
	long := strings.Repeat("x", 300)
	content := "short\n" + long + "\nalso short"

	chunks := SplitText(content, 100)
	require.Len(t, chunks, 3)
	assert.Equal(t, "short", chunks[0])
	assert.Equal(t, long, chunks[1])
	assert.Equal(t, "also short", chunks[2])
}

func TestSplitTextEmpty(t *testing.T) {
	assert.Nil(t, SplitText("", 100))
	assert.Nil(t, SplitText("anything", 0))
}
