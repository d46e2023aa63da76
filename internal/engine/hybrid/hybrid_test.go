package hybrid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetermineStrategy(t *testing.T) {
	tests := []struct {
		name string
		html string
		want Strategy
	}{
		{
			name: "plain listing",
			html: `<html><body><a href="/papers/1">One</a></body></html>`,
			want: StrategyStatic,
		},
		{
			name: "no scripts no links",
			html: `<html><body><p>Program coming soon</p></body></html>`,
			want: StrategyStatic,
		},
		{
			name: "react shell",
			html: `<html><body><div id="root"></div><script src="/static/js/main.js"></script></body></html>`,
			want: StrategyRendered,
		},
		{
			name: "inline paper data is enough",
			html: `<html><body><div id="app"></div><script>var Papers = [];</script></body></html>`,
			want: StrategyStatic,
		},
		{
			name: "text heavy page loading its program from a bundle",
			html: `<html><body><nav>` + strings.Repeat("Home Call for Papers Venue Registration ", 8) +
				`</nav><div id="program">Loading program...</div><script src="/js/program.js"></script>` +
				`<footer>` + strings.Repeat("Sponsors Contact ", 5) + `</footer></body></html>`,
			want: StrategyRendered,
		},
		{
			name: "text heavy page without scripts",
			html: `<html><body><p>` + strings.Repeat("conference news ", 30) + `</p></body></html>`,
			want: StrategyStatic,
		},
		{
			name: "empty scripted body",
			html: `<html><body><script>load()</script></body></html>`,
			want: StrategyRendered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := DetermineStrategy([]byte(tt.html))
			assert.Equal(t, tt.want, got, got.String())
		})
	}
}

func TestInspect(t *testing.T) {
	s := Inspect([]byte(`<html><body>
		<a href="/papers/1">1</a><a data-paper-id="2" href="#">2</a><a href="/about">about</a>
		<script>var x = 1;</script><script src="a.js"></script>
	</body></html>`))

	assert.Equal(t, 2, s.PaperLinks)
	assert.Equal(t, 2, s.Scripts)
	assert.False(t, s.ScriptData)
	assert.True(t, s.HasListingMarkers())
}

func TestDetectJavaScriptFramework(t *testing.T) {
	assert.Equal(t, "React", DetectJavaScriptFramework(`<script id="__NEXT_DATA__">`))
	assert.Equal(t, "Vue", DetectJavaScriptFramework(`<div id="app" data-v-123>`))
	assert.Equal(t, "Angular", DetectJavaScriptFramework(`<app-root ng-version="17">`))
	assert.Equal(t, "Unknown", DetectJavaScriptFramework(`<p>plain</p>`))
}

func TestStrategy_String(t *testing.T) {
	assert.Equal(t, "Static", StrategyStatic.String())
	assert.Equal(t, "Rendered", StrategyRendered.String())
	assert.Equal(t, "Unknown", Strategy(9).String())
}
