package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarkerFormat(t *testing.T) {
	content := "EXPLANATION:\nDid X.\nHTML_START:\n<!DOCTYPE html><html><body>Hi</body></html>\nHTML_END:"

	res := Parse(content)
	assert.Equal(t, "<!DOCTYPE html><html><body>Hi</body></html>", res.HTML)
	assert.Equal(t, "Did X.", res.Explanation)
	assert.False(t, res.RawFallback)
	assert.Equal(t, StrategyMarkers, res.Strategy)
}

func TestHTMLStripsFenceInsideMarkers(t *testing.T) {
	content := "HTML_START:\n```html\n<html><body>Y</body></html>\n```\nHTML_END:"

	html, ok := HTML(content)
	require.True(t, ok)
	assert.Equal(t, "<html><body>Y</body></html>", html)
}

func TestHTMLStartWithoutEndFallsThrough(t *testing.T) {
	content := "HTML_START:\n<!DOCTYPE html><html><body>Z</body></html>"

	res := Parse(content)
	assert.Equal(t, StrategyDoctype, res.Strategy)
	assert.Equal(t, "<!DOCTYPE html><html><body>Z</body></html>", res.HTML)
}

func TestEmptyMarkerBodyIsNotADocument(t *testing.T) {
	res := Parse("HTML_START:\n\nHTML_END:")
	assert.True(t, res.RawFallback)
	assert.Equal(t, "HTML_START:\n\nHTML_END:", res.HTML)
}

func TestFencedBlockFallback(t *testing.T) {
	content := "```html\n<html><body>X</body></html>\n```"

	html, ok := HTML(content)
	require.True(t, ok)
	assert.Equal(t, "<html><body>X</body></html>", html)

	_, ok = Explanation(content)
	assert.False(t, ok)
	assert.Equal(t, StrategyFenced, Parse(content).Strategy)
}

func TestFencedBlockIsCaseInsensitive(t *testing.T) {
	html, ok := HTML("Sure!\n```HTML\n<div>x</div>\n```\nDone.")
	require.True(t, ok)
	assert.Equal(t, "<div>x</div>", html)
}

func TestBareDocumentFallback(t *testing.T) {
	content := "<!DOCTYPE html>\n<html><head></head><body>A</body></html> trailing junk"

	html, ok := HTML(content)
	require.True(t, ok)
	assert.Equal(t, "<!DOCTYPE html>\n<html><head></head><body>A</body></html>", html)
}

func TestDocumentSlicesToLastClosingTag(t *testing.T) {
	content := "prefix <html>a</html> middle <html>b</HTML> tail"

	res := Parse(content)
	assert.Equal(t, StrategyHTMLTag, res.Strategy)
	assert.Equal(t, "<html>a</html> middle <html>b</HTML>", res.HTML)
}

func TestDocumentWithoutClosingTagRunsToEnd(t *testing.T) {
	html, ok := HTML("Here you go: <!doctype html><p>unfinished  ")
	require.True(t, ok)
	assert.Equal(t, "<!doctype html><p>unfinished", html)
}

func TestDocumentAfterMultibyteText(t *testing.T) {
	content := "Ünïcödé prose → <!DOCTYPE html><html><body>é</body></html>"

	html, ok := HTML(content)
	require.True(t, ok)
	assert.Equal(t, "<!DOCTYPE html><html><body>é</body></html>", html)
}

func TestNoMatchIsRawFallback(t *testing.T) {
	content := "Just a plain sentence with no html."

	_, ok := HTML(content)
	assert.False(t, ok)

	res := Parse(content)
	assert.True(t, res.RawFallback)
	assert.Equal(t, content, res.HTML)
	assert.Equal(t, StrategyNone, res.Strategy)
}

func TestEmptyInput(t *testing.T) {
	_, ok := HTML("")
	assert.False(t, ok)
	_, ok = Explanation("")
	assert.False(t, ok)

	res := Parse("")
	assert.True(t, res.RawFallback)
	assert.Empty(t, res.HTML)
	assert.False(t, res.HasExplanation())
}

func TestExplanationStopsAtEarliestMarker(t *testing.T) {
	content := "EXPLANATION: Changed the colours.\n```html\n<html></html>\n```\nHTML_START:\n<html></html>\nHTML_END:"

	text, ok := Explanation(content)
	require.True(t, ok)
	assert.Equal(t, "Changed the colours.", text)
}

func TestExplanationWithoutTerminatorRunsToEnd(t *testing.T) {
	text, ok := Explanation("EXPLANATION:\n  Nothing to change.  ")
	require.True(t, ok)
	assert.Equal(t, "Nothing to change.", text)
}

func TestProseBeforeDocumentIsExplanation(t *testing.T) {
	prose := "I rebuilt the hero section and tightened the services grid spacing for mobile."
	content := prose + "\n\n<!DOCTYPE html><html></html>"

	text, ok := Explanation(content)
	require.True(t, ok)
	assert.Equal(t, prose, text)
}

func TestShortProseIsNotExplanation(t *testing.T) {
	_, ok := Explanation("Here it is:\n<html><body></body></html>")
	assert.False(t, ok)
}

func TestProseThresholdCountsCharacters(t *testing.T) {
	// 50 two-byte runes: over the limit in bytes, not in characters.
	prose := strings.Repeat("é", 50)
	_, ok := Explanation(prose + "<html></html>")
	assert.False(t, ok)

	_, ok = Explanation(prose + "é<html></html>")
	assert.True(t, ok)
}

func TestParseIsIdempotent(t *testing.T) {
	inputs := []string{
		"EXPLANATION:\nDid X.\nHTML_START:\n<html></html>\nHTML_END:",
		"```html\n<p>a</p>\n```",
		"plain text",
		"",
	}
	for _, in := range inputs {
		assert.Equal(t, Parse(in), Parse(in), "input %q", in)
	}
}
