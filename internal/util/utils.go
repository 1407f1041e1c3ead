package util

import (
	"bytes"
	"fmt"
	"strings"
)

// GetLineAndColumn converts a byte offset into a 1-based line and column.
// Columns count runes, so a multi-byte character occupies one column.
func GetLineAndColumn(src string, pos int) (line int, column int) {
	line = 1
	column = 1
	for i, char := range src {
		if i >= pos {
			break
		}
		if char == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return
}

// GetContextLines renders up to two lines before errorLine, the error line
// itself and a caret under errorCol.
func GetContextLines(src string, errorLine, errorCol int) string {
	var result bytes.Buffer

	lines := strings.Split(strings.TrimSuffix(src, "\n"), "\n")
	if errorLine < 1 {
		errorLine = 1
	}
	if errorLine > len(lines) {
		errorLine = len(lines)
		errorCol = len([]rune(lines[errorLine-1])) + 1
	}

	startLine := errorLine - 2
	if startLine < 1 {
		startLine = 1
	}

	for i := startLine; i <= errorLine; i++ {
		lineContent := lines[i-1]
		if i != errorLine {
			result.WriteString(fmt.Sprintf("     %3d | %s\n", i, lineContent))
			continue
		}
		margin := fmt.Sprintf("  >  %3d | ", i)
		result.WriteString(margin + lineContent + "\n")
		runes := []rune(lineContent)
		col := errorCol - 1
		if col > len(runes) {
			col = len(runes)
		}
		if col < 0 {
			col = 0
		}
		result.WriteString(replaceVisibleWithSpaces(margin+string(runes[:col])) + "^ here")
	}

	return result.String()
}

// Snippet locates pos in src and renders the surrounding lines.
func Snippet(src string, pos int) string {
	line, col := GetLineAndColumn(src, pos)
	return GetContextLines(src, line, col)
}

// replaceVisibleWithSpaces replaces all non-whitespace characters with spaces
// while preserving tabs for correct alignment.
func replaceVisibleWithSpaces(s string) string {
	var buf bytes.Buffer
	for _, c := range s {
		if c == '\t' {
			buf.WriteRune('\t')
		} else {
			buf.WriteRune(' ')
		}
	}
	return buf.String()
}
