// internal/engine/hybrid/detector.go
package hybrid

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/papers/internal/extractor"
)

// Signals summarizes what a fetched listing page looks like
type Signals struct {
	// PaperLinks counts anchors the extractor would accept
	PaperLinks int
	// ScriptData is true when an inline script carries paper data
	ScriptData bool
	// Scripts counts all script tags
	Scripts int
	// Framework names a detected client-side framework, or "Unknown"
	Framework string
	// TextLength is the visible body text length
	TextLength int
}

// HasListingMarkers reports whether the extractor can work on the page as is
func (s Signals) HasListingMarkers() bool {
	return s.PaperLinks > 0 || s.ScriptData
}

// Inspect parses content and gathers the signals used to pick a strategy
func Inspect(content []byte) Signals {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return Signals{Framework: "Unknown"}
	}

	var s Signals
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if _, ok := a.Attr("data-paper-id"); ok || extractor.IsPaperHref(href) {
			s.PaperLinks++
		}
	})

	scripts := doc.Find("script")
	s.Scripts = scripts.Length()
	scripts.Each(func(_ int, sc *goquery.Selection) {
		if _, external := sc.Attr("src"); !external && strings.Contains(sc.Text(), "Papers") {
			s.ScriptData = true
		}
	})

	body := doc.Find("body").Clone()
	body.Find("script, style, noscript").Remove()
	s.TextLength = len(strings.TrimSpace(body.Text()))

	s.Framework = DetectJavaScriptFramework(string(content))
	return s
}

// DetectJavaScriptFramework detects common JS frameworks from their mount
// points and bootstrap markers
func DetectJavaScriptFramework(html string) string {
	html = strings.ToLower(html)

	switch {
	case strings.Contains(html, "__next_data__") || strings.Contains(html, "data-reactroot") ||
		strings.Contains(html, `id="root"`) || strings.Contains(html, "react-dom"):
		return "React"
	case strings.Contains(html, "__nuxt") || strings.Contains(html, "data-v-") ||
		strings.Contains(html, `id="app"`) || strings.Contains(html, "vue.js") || strings.Contains(html, "vue.min.js"):
		return "Vue"
	case strings.Contains(html, "ng-version") || strings.Contains(html, "ng-app"):
		return "Angular"
	case strings.Contains(html, "ember-application"):
		return "Ember"
	case strings.Contains(html, "svelte-"):
		return "Svelte"
	}
	return "Unknown"
}
