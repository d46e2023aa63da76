// Package extractor turns a conference listing page into PaperRecords.
package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/papers/pkg/models"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNoIdentifier is reported for candidates whose id cannot be derived
	ErrNoIdentifier = errors.New("no derivable paper identifier")
	// ErrUnsafeIdentifier is reported for ids that cannot be used in a file name
	ErrUnsafeIdentifier = errors.New("unsafe paper identifier")
)

var (
	safeID       = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	sessionClass = regexp.MustCompile(`session|paper|presentation`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// maxIDLength keeps Paper_<id>.pdf within common file name limits
const maxIDLength = 200

// minSessionTitle is the length a session heading must exceed to be taken as a paper title
const minSessionTitle = 10

// Extractor finds papers on pages belonging to one listing URL
type Extractor struct {
	listing *url.URL
	root    string
}

// candidate is a raw finding before id derivation and validation
type candidate struct {
	id     string
	title  string
	href   string
	pdfURL string
	origin string
}

// New creates an extractor that resolves links against listingURL
func New(listingURL string) (*Extractor, error) {
	u, err := url.Parse(listingURL)
	if err != nil {
		return nil, fmt.Errorf("invalid listing URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid listing URL %q: missing scheme or host", listingURL)
	}
	return &Extractor{
		listing: u,
		root:    u.Scheme + "://" + u.Host,
	}, nil
}

// ValidID reports whether id can be used verbatim in a file name. Distinct
// valid ids always give distinct file names.
func ValidID(id string) bool {
	return len(id) <= maxIDLength && id != "." && id != ".." && safeID.MatchString(id)
}

// IsPaperHref reports whether href follows one of the known paper link patterns
func IsPaperHref(href string) bool {
	return strings.Contains(href, "/papers/") ||
		strings.Contains(href, "/conf_papers/") ||
		strings.Contains(strings.ToLower(href), ".pdf")
}

// Extract yields the papers found in content. Links in the markup are used
// first; inline script data is consulted only when the markup has none.
// The sequence is lazy and re-parses content on every iteration, so ranging
// over it twice gives the same records in the same order.
func (e *Extractor) Extract(content []byte) iter.Seq[models.PaperRecord] {
	return func(yield func(models.PaperRecord) bool) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
		if err != nil {
			log.Warn().Err(err).Msg("Failed to parse listing content")
			return
		}

		seen := make(map[string]struct{})
		emitted := 0
		emit := func(c candidate) bool {
			rec, err := e.record(c)
			if err != nil {
				log.Debug().Err(err).Str("href", c.href).Str("origin", c.origin).Msg("Dropped paper candidate")
				return true
			}
			if _, dup := seen[rec.ID]; dup {
				log.Debug().Str("id", rec.ID).Msg("Dropped duplicate paper")
				return true
			}
			seen[rec.ID] = struct{}{}
			emitted++
			return yield(rec)
		}

		for c := range e.markupCandidates(doc) {
			if !emit(c) {
				return
			}
		}
		if emitted > 0 {
			return
		}

		for c := range e.scriptCandidates(doc) {
			if !emit(c) {
				return
			}
		}
	}
}

// Records collects Extract into a slice
func (e *Extractor) Records(content []byte) []models.PaperRecord {
	return slices.Collect(e.Extract(content))
}

// markupCandidates walks paper anchors and then session blocks in document order
func (e *Extractor) markupCandidates(doc *goquery.Document) iter.Seq[candidate] {
	return func(yield func(candidate) bool) {
		stopped := false

		doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			dataID, hasDataID := a.Attr("data-paper-id")
			if !hasDataID && !IsPaperHref(href) {
				return true
			}

			c := candidate{
				id:     strings.TrimSpace(dataID),
				title:  cleanText(a.Text()),
				href:   href,
				origin: "anchor",
			}
			if c.title == "" {
				c.title = sessionHeading(a)
			}
			stopped = !yield(c)
			return !stopped
		})
		if stopped {
			return
		}

		doc.Find("div, section").FilterFunction(isSessionBlock).EachWithBreak(func(_ int, block *goquery.Selection) bool {
			block.Find("h3, h4, strong").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
				title := cleanText(heading.Text())
				if len(title) <= minSessionTitle {
					return true
				}
				link := heading.Parent().Find("a[href]").First()
				href, ok := link.Attr("href")
				if !ok {
					return true
				}
				stopped = !yield(candidate{title: title, href: href, origin: "session"})
				return !stopped
			})
			return !stopped
		})
	}
}

// record derives and validates the PaperRecord for c
func (e *Extractor) record(c candidate) (models.PaperRecord, error) {
	rec := models.PaperRecord{
		ID:    c.id,
		Title: c.title,
	}

	if c.pdfURL != "" {
		rec.PDFURL = c.pdfURL
		rec.SourceURL = e.listing.String()
	} else {
		abs, err := e.listing.Parse(strings.TrimSpace(c.href))
		if err != nil {
			return rec, fmt.Errorf("%w: %v", ErrNoIdentifier, err)
		}
		// A link back to the listing itself ("#", "") is no landing page and
		// names no paper.
		if !e.isListing(abs) {
			rec.SourceURL = abs.String()
			if strings.HasSuffix(strings.ToLower(abs.Path), ".pdf") {
				rec.PDFURL = abs.String()
			}
			if rec.ID == "" {
				rec.ID = idFromPath(abs.Path)
			}
		}
	}

	if rec.ID == "" {
		return rec, ErrNoIdentifier
	}
	if !ValidID(rec.ID) {
		return rec, fmt.Errorf("%w: %q", ErrUnsafeIdentifier, rec.ID)
	}
	if rec.Title == "" {
		rec.Title = rec.ID
	}
	return rec, nil
}

func (e *Extractor) isListing(u *url.URL) bool {
	a, b := *u, *e.listing
	a.Fragment, b.Fragment = "", ""
	a.RawFragment, b.RawFragment = "", ""
	return a.String() == b.String()
}

// idFromPath returns the last path segment without a .pdf extension. A bare
// listing directory such as /papers/ has no id.
func idFromPath(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	seg := path.Base(p)
	if seg == "papers" || seg == "conf_papers" {
		return ""
	}
	if unescaped, err := url.PathUnescape(seg); err == nil {
		seg = unescaped
	}
	if ext := path.Ext(seg); strings.EqualFold(ext, ".pdf") {
		seg = strings.TrimSuffix(seg, ext)
	}
	return seg
}

func isSessionBlock(_ int, s *goquery.Selection) bool {
	class, _ := s.Attr("class")
	return sessionClass.MatchString(class)
}

// sessionHeading returns the heading of the nearest enclosing session block
func sessionHeading(s *goquery.Selection) string {
	block := s.ParentsFiltered("div, section").FilterFunction(isSessionBlock).First()
	if block.Length() == 0 {
		return ""
	}
	return cleanText(block.Find("h3, h4, strong").First().Text())
}

func cleanText(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
