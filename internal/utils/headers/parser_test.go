package headers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaders(t *testing.T) {
	in := []string{"accept-language: de", "Accept: text/html", "BadHeader", ": empty", "Bad Key: x", "X-Token: a:b", "accept: */*"}

	out := ParseHeaders(in)

	assert.Equal(t, map[string]string{
		"Accept-Language": "de",
		"Accept":          "*/*",
		"X-Token":         "a:b",
	}, out)
}

func TestApply_KeepsUserAgent(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://conf.example.org", nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "Papers/1.0")

	Apply(req, map[string]string{"user-agent": "Other/2.0", "X-Trace": "1"})

	assert.Equal(t, "Papers/1.0", req.Header.Get("User-Agent"))
	assert.Equal(t, "1", req.Header.Get("X-Trace"))
}
