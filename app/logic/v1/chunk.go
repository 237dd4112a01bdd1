package v1

import "strings"

// SplitText cuts content into character windows of roughly size,
// breaking only at line boundaries so that rejoining the chunks with
// newlines reproduces the original text exactly. A single line longer
// than size becomes its own oversized chunk rather than being torn.
func SplitText(content string, size int) []string {
	if size <= 0 || content == "" {
		return nil
	}

	var (
		chunks  []string
		current []string
		length  int
	)
	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = nil
			length = 0
		}
	}

	for _, line := range strings.Split(content, "\n") {
		if len(current) > 0 && length+len(line)+1 > size {
			flush()
		}
		if len(current) > 0 {
			length++
		}
		current = append(current, line)
		length += len(line)
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}

	return chunks
}

// JoinChunks is the inverse of SplitText.
func JoinChunks(chunks []string) string {
	return strings.Join(chunks, "\n")
}
