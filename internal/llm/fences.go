package llm

import (
	"regexp"
	"strings"
)

var reFence = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.+?)\\s*```")

// StripFences removes markdown code fences around a JSON payload. When there is no
// fence, any prose before the first '{' and after the last '}' is dropped.
func StripFences(content string) string {
	content = strings.TrimSpace(content)
	if m := reFence.FindStringSubmatch(content); m != nil {
		content = strings.TrimSpace(m[1])
	}
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return content
}
