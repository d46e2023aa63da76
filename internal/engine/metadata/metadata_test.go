package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	html := `<html><head>
		<title>
			Accepted Papers |
			ConfX 2025
		</title>
		<meta name="description" content="Main track papers">
		<meta property="og:site_name" content="ConfX">
		<meta name="citation_conference_title" content="International Conference on X">
		<meta name="generator" content="Hugo 0.120">
	</head><body>
		<a href="/papers/101.pdf">PDF</a>
		<a href="/papers/101.pdf">duplicate</a>
		<a href="/papers/102.PDF?dl=1">PDF</a>
		<a href="/schedule">Schedule</a>
		<a href="#top">Top</a>
	</body></html>`

	page := Extract([]byte(html))

	assert.Equal(t, "Accepted Papers | ConfX 2025", page.Title)
	assert.Equal(t, "International Conference on X", page.Conference)
	assert.Equal(t, "Main track papers", page.Description)
	assert.Equal(t, "Hugo 0.120", page.Generator)
	assert.Equal(t, 3, page.Links)
	assert.Equal(t, 2, page.PDFLinks)
}

func TestExtract_FallsBackToSiteName(t *testing.T) {
	page := Extract([]byte(`<meta property="og:site_name" content="ConfX"><p>no links</p>`))

	assert.Equal(t, "ConfX", page.Conference)
	assert.Zero(t, page.Links)
}

func TestExtract_Empty(t *testing.T) {
	assert.Equal(t, Page{}, Extract(nil))
}
