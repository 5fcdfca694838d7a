package tui

import (
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
)

// readClipboard prefers plain text on macOS, where pbpaste otherwise hands
// out RTF for rich sources.
func readClipboard() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

func writeClipboard(text string) error {
	return clipboard.WriteAll(text)
}

// cleanClipboardText turns whatever the clipboard held into a one line
// label: RTF and HTML markup are stripped, control characters dropped and
// whitespace collapsed.
func cleanClipboardText(text string) string {
	if text == "" {
		return text
	}
	switch {
	case isRTF(text):
		text = extractTextFromRTF(text)
	case isHTML(text):
		text = extractTextFromHTML(text)
	}
	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\r' || r == '\t' || r >= 32 {
			result.WriteRune(r)
		}
	}
	return singleLine(result.String())
}

func isRTF(text string) bool {
	return strings.HasPrefix(text, "{\\rtf") || strings.Contains(text, "\\rtf1")
}

func isHTML(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "<") &&
		(strings.Contains(text, "<html") || strings.Contains(text, "<body") || strings.Contains(text, "<div") || strings.Contains(text, "<span"))
}

// extractTextFromRTF keeps the text runs of an RTF document, translating
// \par and \line into newlines and \'hh escapes into bytes.
func extractTextFromRTF(rtf string) string {
	var result strings.Builder
	b := []byte(rtf)
	depth := 0
	skipDepth := -1

	for i := 0; i < len(b); i++ {
		c := b[i]
		switch c {
		case '{':
			depth++
			continue
		case '}':
			if depth == skipDepth {
				skipDepth = -1
			}
			depth--
			continue
		case '\r', '\n':
			continue
		}
		if skipDepth >= 0 {
			continue
		}
		if c != '\\' {
			result.WriteByte(c)
			continue
		}
		if i+1 >= len(b) {
			break
		}

		next := b[i+1]
		switch {
		case next == '\'' && i+3 < len(b):
			if v, err := strconv.ParseUint(string(b[i+2:i+4]), 16, 8); err == nil {
				result.WriteByte(byte(v))
			}
			i += 3
		case next == '\\' || next == '{' || next == '}':
			result.WriteByte(next)
			i++
		case next == '*':
			// \* marks an ignorable destination group
			skipDepth = depth
			i++
		case isLetter(next):
			start := i + 1
			j := start
			for j < len(b) && isLetter(b[j]) {
				j++
			}
			word := string(b[start:j])
			for j < len(b) && (b[j] == '-' || (b[j] >= '0' && b[j] <= '9')) {
				j++
			}
			if j < len(b) && b[j] == ' ' {
				j++
			}
			switch word {
			case "par", "line":
				result.WriteByte('\n')
			case "tab":
				result.WriteByte('\t')
			case "fonttbl", "colortbl", "stylesheet", "info":
				skipDepth = depth
			}
			i = j - 1
		default:
			i++
		}
	}
	return result.String()
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func extractTextFromHTML(html string) string {
	var result strings.Builder
	result.Grow(len(html))
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			result.WriteRune(' ')
		case !inTag:
			result.WriteRune(r)
		}
	}
	return strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", "\"",
		"&#39;", "'",
		"&nbsp;", " ",
	).Replace(result.String())
}
