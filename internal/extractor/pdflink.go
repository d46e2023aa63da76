package extractor

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var downloadLabel = regexp.MustCompile(`(?i)PDF|Download`)

// FindPDFLink looks for the PDF behind a paper landing page. It prefers the
// citation_pdf_url meta tag, then links labelled PDF or Download, then any
// link to a .pdf file.
func FindPDFLink(content []byte, pageURL string) (string, bool) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", false
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", false
	}

	if meta, ok := doc.Find(`meta[name="citation_pdf_url"]`).First().Attr("content"); ok {
		if abs, ok := resolve(base, meta); ok {
			return abs, true
		}
	}

	var labelled, first string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		abs, ok := resolve(base, href)
		if !ok || !strings.Contains(strings.ToLower(abs), ".pdf") {
			return true
		}
		if first == "" {
			first = abs
		}
		if downloadLabel.MatchString(a.Text()) {
			labelled = abs
			return false
		}
		return true
	})

	switch {
	case labelled != "":
		return labelled, true
	case first != "":
		return first, true
	}
	return "", false
}

func resolve(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "#") {
		return "", false
	}
	abs, err := base.Parse(href)
	if err != nil || (abs.Scheme != "http" && abs.Scheme != "https") {
		return "", false
	}
	return abs.String(), true
}
