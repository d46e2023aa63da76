// internal/engine/metadata/metadata.go
package metadata

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page describes a listing page for the run report
type Page struct {
	Title       string `json:"title,omitempty"`
	Conference  string `json:"conference,omitempty"`
	Description string `json:"description,omitempty"`
	Generator   string `json:"generator,omitempty"`
	Links       int    `json:"links"`
	PDFLinks    int    `json:"pdf_links"`
}

// conferenceKeys are checked in order; the first non-empty one names the conference
var conferenceKeys = []string{"citation_conference_title", "og:site_name", "application-name"}

// Extract reads the title, meta tags and link counts from an HTML document.
// Unparseable content yields an empty Page.
func Extract(content []byte) Page {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return Page{}
	}

	meta := make(map[string]string)
	doc.Find("meta").Each(func(i int, sel *goquery.Selection) {
		content := strings.TrimSpace(sel.AttrOr("content", ""))
		if content == "" {
			return
		}
		for _, attr := range []string{"name", "property"} {
			if key, ok := sel.Attr(attr); ok {
				key = strings.ToLower(strings.TrimSpace(key))
				if _, seen := meta[key]; !seen {
					meta[key] = content
				}
			}
		}
	})

	page := Page{
		Title:       strings.Join(strings.Fields(doc.Find("title").First().Text()), " "),
		Description: firstOf(meta, "description", "og:description"),
		Generator:   meta["generator"],
		Conference:  firstOf(meta, conferenceKeys...),
	}

	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(i int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") || seen[href] {
			return
		}
		seen[href] = true
		page.Links++
		if isPDFHref(href) {
			page.PDFLinks++
		}
	})

	return page
}

func firstOf(meta map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := meta[k]; v != "" {
			return v
		}
	}
	return ""
}

func isPDFHref(href string) bool {
	path, _, _ := strings.Cut(href, "?")
	path, _, _ = strings.Cut(path, "#")
	return strings.HasSuffix(strings.ToLower(path), ".pdf")
}
