package output

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// noise is removed entirely before a listing is snapshotted
const noise = "script, style, link, meta, noscript, iframe, svg, form, input, button, select, textarea, canvas"

// keptAttrs lists the attributes that survive cleaning, per element
var keptAttrs = map[string][]string{
	"a":   {"href", "title"},
	"img": {"src", "alt", "title"},
}

// CleanHTML strips scripts, styles and form controls and drops every attribute
// except link and image targets, leaving markup fit for a Markdown snapshot
func CleanHTML(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	doc.Find(noise).Remove()
	for _, node := range doc.Find("*").Nodes {
		node.Attr = filterAttrs(node.Attr, keptAttrs[node.Data])
	}

	out, err := doc.Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func filterAttrs(attrs []html.Attribute, keep []string) []html.Attribute {
	var kept []html.Attribute
	for _, a := range attrs {
		for _, k := range keep {
			if a.Key == k {
				kept = append(kept, a)
				break
			}
		}
	}
	return kept
}
