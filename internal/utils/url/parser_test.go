package urlutil

import "testing"

func TestValidate(t *testing.T) {
	valid := []string{
		"http://example.com",
		"https://example.com/path",
	}
	for _, u := range valid {
		if err := ValidateURL(u); err != nil {
			t.Fatalf("expected valid, got error: %v", err)
		}
	}

	invalid := []string{"ftp://example.com", "//example.com", "http:///"}
	for _, u := range invalid {
		if err := ValidateURL(u); err == nil {
			t.Fatalf("expected invalid for %s", u)
		}
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, href, want string
	}{
		{"https://example.org/conf/2024", "/papers/101", "https://example.org/papers/101"},
		{"https://example.org/conf/2024", "p.pdf", "https://example.org/conf/p.pdf"},
		{"https://example.org/conf", "https://cdn.example.org/a.pdf", "https://cdn.example.org/a.pdf"},
	}
	for _, tt := range tests {
		if got := ResolveURL(tt.base, tt.href); got != tt.want {
			t.Errorf("ResolveURL(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
		}
	}
}

func TestSiteRoot(t *testing.T) {
	root, err := SiteRoot("https://conference.example.org:8443/conferences/fall?x=1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root != "https://conference.example.org:8443" {
		t.Errorf("unexpected root %q", root)
	}

	if _, err := SiteRoot("not a url"); err == nil {
		t.Error("expected error for relative input")
	}
}

func TestRequestPath(t *testing.T) {
	tests := map[string]string{
		"https://example.org":                "/",
		"https://example.org/pdf/101.pdf":    "/pdf/101.pdf",
		"https://example.org/search?q=paper": "/search?q=paper",
		"/conf_papers/f1.pdf":                "/conf_papers/f1.pdf",
	}
	for in, want := range tests {
		if got := RequestPath(in); got != want {
			t.Errorf("RequestPath(%q) = %q, want %q", in, got, want)
		}
	}
}
