package normalizers

import (
	"strings"
)

const Indentation = `  `

// LongDesc trims a command's long description.
func LongDesc(s string) string {
	return strings.TrimSpace(s)
}

// Examples trims an example block and indents every line by Indentation so
// cobra renders it under the "Examples:" heading.
func Examples(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}

	lines := strings.Split(s, "\n")
	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(Indentation)
		sb.WriteString(strings.TrimSpace(line))
	}
	return sb.String()
}
