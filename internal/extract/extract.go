// Package extract pulls an HTML document and an optional explanation out of
// free-form model output.
//
// Models are asked to answer in the form
//
//	EXPLANATION:
//	...
//	HTML_START:
//	<!DOCTYPE html>...
//	HTML_END:
//
// but they drift, so extraction falls back through fenced ```html blocks and
// bare documents before giving up. Every function here is pure.
package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MarkerHTMLStart   = "HTML_START:"
	MarkerHTMLEnd     = "HTML_END:"
	MarkerExplanation = "EXPLANATION:"

	fenceHTML = "```html"

	// minProseLen is how much text must precede an unmarked document before
	// it is treated as an explanation.
	minProseLen = 50
)

// Strategy names the rule that located the HTML document.
type Strategy string

const (
	StrategyMarkers Strategy = "markers"
	StrategyFenced  Strategy = "fenced"
	StrategyDoctype Strategy = "doctype"
	StrategyHTMLTag Strategy = "html_tag"
	StrategyNone    Strategy = "none"
)

var (
	fencedBlock   = regexp.MustCompile("(?is)```html\\s*(.*?)\\s*```")
	leadingFence  = regexp.MustCompile("(?i)^```html\\s*")
	trailingFence = regexp.MustCompile("\\s*```$")
)

// Result is the structured form of one model reply.
type Result struct {
	// HTML is the extracted document, or the untouched reply when
	// RawFallback is set.
	HTML        string
	Explanation string
	RawFallback bool
	Strategy    Strategy
}

// HasExplanation reports whether an explanation was found.
func (r Result) HasExplanation() bool { return r.Explanation != "" }

// Parse runs both extraction passes. The raw content is never lost: when no
// document is found it is returned as HTML with RawFallback set.
func Parse(content string) Result {
	html, strategy := locateHTML(content)
	explanation, _ := Explanation(content)
	if strategy == StrategyNone {
		return Result{HTML: content, Explanation: explanation, RawFallback: true, Strategy: StrategyNone}
	}
	return Result{HTML: html, Explanation: explanation, Strategy: strategy}
}

// HTML returns the HTML document embedded in content, if any.
func HTML(content string) (string, bool) {
	html, strategy := locateHTML(content)
	return html, strategy != StrategyNone
}

func locateHTML(content string) (string, Strategy) {
	if content == "" {
		return "", StrategyNone
	}

	if start := strings.Index(content, MarkerHTMLStart); start != -1 {
		rest := content[start+len(MarkerHTMLStart):]
		if end := strings.Index(rest, MarkerHTMLEnd); end != -1 {
			html := strings.TrimSpace(rest[:end])
			html = leadingFence.ReplaceAllString(html, "")
			html = trailingFence.ReplaceAllString(html, "")
			if html == "" {
				return "", StrategyNone
			}
			return html, StrategyMarkers
		}
	}

	if m := fencedBlock.FindStringSubmatch(content); m != nil && m[1] != "" {
		return strings.TrimSpace(m[1]), StrategyFenced
	}

	lower := asciiLower(content)
	if i := strings.Index(lower, "<!doctype"); i != -1 {
		return sliceDocument(content, lower, i), StrategyDoctype
	}
	if i := strings.Index(lower, "<html"); i != -1 {
		return sliceDocument(content, lower, i), StrategyHTMLTag
	}
	return "", StrategyNone
}

// sliceDocument cuts from start to the last closing html tag inclusive, or to
// the end of content when there is none after start.
func sliceDocument(content, lower string, start int) string {
	const closing = "</html>"
	if end := strings.LastIndex(lower, closing); end >= start {
		return strings.TrimSpace(content[start : end+len(closing)])
	}
	return strings.TrimSpace(content[start:])
}

// Explanation returns the prose the model wrote about its change, if any.
func Explanation(content string) (string, bool) {
	if content == "" {
		return "", false
	}

	if idx := strings.Index(content, MarkerExplanation); idx != -1 {
		body := content[idx+len(MarkerExplanation):]
		end := len(body)
		for _, marker := range []string{MarkerHTMLStart, fenceHTML, "<!DOCTYPE", "<html"} {
			if i := strings.Index(body, marker); i != -1 && i < end {
				end = i
			}
		}
		text := strings.TrimSpace(body[:end])
		return text, text != ""
	}

	lower := asciiLower(content)
	earliest := -1
	for _, i := range []int{
		strings.Index(content, fenceHTML),
		strings.Index(lower, "<!doctype"),
		strings.Index(lower, "<html"),
	} {
		if i != -1 && (earliest == -1 || i < earliest) {
			earliest = i
		}
	}
	if earliest == -1 || utf8.RuneCountInString(content[:earliest]) <= minProseLen {
		return "", false
	}
	text := strings.TrimSpace(content[:earliest])
	return text, text != ""
}

// asciiLower lowercases ASCII letters only so byte offsets line up with the
// input.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
