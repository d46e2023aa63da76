package output

import (
	"fmt"
	"os"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	urlutil "github.com/law-makers/papers/internal/utils/url"
)

// ToMarkdown converts a page to Markdown with every link made absolute
// against pageURL, so the snapshot can be followed after the run
func ToMarkdown(htmlContent, pageURL string) (string, error) {
	cleaned, err := CleanHTML(htmlContent)
	if err != nil {
		return "", err
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	converter.AddRules(absoluteLinks(pageURL))
	return converter.ConvertString(cleaned)
}

func absoluteLinks(pageURL string) md.Rule {
	return md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			href, ok := selec.Attr("href")
			if !ok {
				return nil
			}
			text := strings.Join(strings.Fields(selec.Text()), " ")
			link := fmt.Sprintf("[%s](%s)", text, urlutil.ResolveURL(pageURL, href))
			if title, ok := selec.Attr("title"); ok {
				link = fmt.Sprintf("[%s](%s %q)", text, urlutil.ResolveURL(pageURL, href), title)
			}
			return &link
		},
	}
}

// SaveMarkdown writes the Markdown form of a page to path, headed by the URL
// it was taken from
func SaveMarkdown(htmlContent, pageURL, path string) error {
	body, err := ToMarkdown(htmlContent, pageURL)
	if err != nil {
		return err
	}
	doc := fmt.Sprintf("<!-- snapshot of %s -->\n\n%s\n", pageURL, body)
	return os.WriteFile(path, []byte(doc), 0644)
}
