package functions

import (
	"strings"

	"golang.org/x/net/html"
)

// HTMLToText strips an HTML document down to its visible text. Script
// and style subtrees are dropped entirely. Unparseable input falls back
// to the raw string so a malformed body is never lost.
func HTMLToText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return NormalizeWhitespace(htmlContent)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "head":
				return
			}
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return NormalizeWhitespace(sb.String())
}

// NormalizeWhitespace collapses runs of whitespace to single spaces and
// trims the ends.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateForPrompt caps text at maxChars before it is embedded in a
// model prompt. Bodies can be arbitrarily large; prompts cannot.
func TruncateForPrompt(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars])
}

// StripCodeFences removes a surrounding markdown code fence from a
// model response. Models frequently wrap JSON in ```json fences even
// when told not to.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag on the opening fence line
		firstLine := strings.TrimSpace(s[:idx])
		if firstLine == "" || isFenceLanguage(firstLine) {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func isFenceLanguage(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
