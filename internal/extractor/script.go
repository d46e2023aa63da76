package extractor

import (
	"encoding/json"
	"fmt"
	"iter"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
	"github.com/rs/zerolog/log"
)

var (
	// The literal may not contain an unescaped quote, so code outside the
	// string can never be captured.
	papersLiteral = regexp.MustCompile(`Papers\s*=\s*JSON\.parse\('((?:[^'\\\n]|\\(?s:.))*)'\)`)
	scriptID      = regexp.MustCompile(`"id":"([a-zA-Z0-9]+)"`)
)

const (
	// maxScriptIDs caps the bare id scan, which is prone to false positives
	maxScriptIDs = 50
	scriptBudget = 2 * time.Second
)

// papersGlobals are the variable names listing pages use for their paper data
var papersGlobals = []string{"Papers", "confPapers"}

type paperEntry struct {
	ID    string
	Title string
}

// scriptCandidates scans inline scripts that mention paper data. For each
// script the first technique that finds anything wins: evaluating the script,
// decoding a JSON.parse literal, then a bare id scan.
func (e *Extractor) scriptCandidates(doc *goquery.Document) iter.Seq[candidate] {
	return func(yield func(candidate) bool) {
		doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if _, external := s.Attr("src"); external {
				return true
			}
			body := s.Text()
			if !strings.Contains(body, "Papers") {
				return true
			}

			for _, entry := range e.scriptEntries(body) {
				c := candidate{
					id:     entry.ID,
					title:  entry.Title,
					pdfURL: e.confPaperURL(entry.ID),
					origin: "script",
				}
				if !yield(c) {
					return false
				}
			}
			return true
		})
	}
}

func (e *Extractor) scriptEntries(body string) []paperEntry {
	if entries := evalPapers(body, e.listing.String()); len(entries) > 0 {
		return entries
	}
	if entries := decodePapersLiteral(body); len(entries) > 0 {
		return entries
	}

	var entries []paperEntry
	for _, m := range scriptID.FindAllStringSubmatch(body, maxScriptIDs) {
		entries = append(entries, paperEntry{ID: m[1]})
	}
	return entries
}

func (e *Extractor) confPaperURL(id string) string {
	return e.root + "/conf_papers/" + id + ".pdf"
}

// evalPapers runs the script in a minimal browser-like global scope and reads
// back the paper globals it assigned. Errors after the assignment are ignored.
func evalPapers(body, pageURL string) []paperEntry {
	vm := newVM(pageURL)

	timer := time.AfterFunc(scriptBudget, func() {
		vm.Interrupt("script budget exceeded")
	})
	defer timer.Stop()

	if _, err := vm.RunString(body); err != nil {
		log.Debug().Err(err).Msg("Inline script evaluation stopped")
	}

	for _, name := range papersGlobals {
		val := vm.Get(name)
		if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
			continue
		}
		if entries := entriesFrom(val.Export()); len(entries) > 0 {
			return entries
		}
	}
	return nil
}

func newVM(pageURL string) *goja.Runtime {
	vm := goja.New()
	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	null := func(goja.FunctionCall) goja.Value { return goja.Null() }

	location := map[string]interface{}{"href": pageURL}
	vm.Set("window", vm.GlobalObject())
	vm.Set("self", vm.GlobalObject())
	vm.Set("location", location)
	vm.Set("document", map[string]interface{}{
		"location":         location,
		"getElementById":   null,
		"querySelector":    null,
		"querySelectorAll": func(goja.FunctionCall) goja.Value { return vm.NewArray() },
		"addEventListener": noop,
		"createElement":    func(goja.FunctionCall) goja.Value { return vm.NewObject() },
	})
	vm.Set("addEventListener", noop)
	vm.Set("setTimeout", noop)
	vm.Set("console", map[string]interface{}{
		"log":   noop,
		"warn":  noop,
		"error": noop,
	})
	return vm
}

// decodePapersLiteral handles Papers = JSON.parse('...') when the surrounding
// script cannot be evaluated. Only the string escapes are interpreted.
func decodePapersLiteral(body string) []paperEntry {
	m := papersLiteral.FindStringSubmatch(body)
	if m == nil {
		return nil
	}

	raw, err := unescapeJSString(m[1])
	if err != nil {
		log.Debug().Err(err).Msg("Failed to unescape Papers JSON literal")
		return nil
	}

	var data interface{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		log.Debug().Err(err).Msg("Failed to decode Papers JSON literal")
		return nil
	}
	return entriesFrom(data)
}

var simpleEscapes = map[byte]string{
	'n': "\n", 'r': "\r", 't': "\t", 'b': "\b", 'f': "\f", 'v': "\v", '0': "\x00",
}

// unescapeJSString interprets the escape sequences of a single-quoted
// JavaScript string body
func unescapeJSString(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", fmt.Errorf("dangling escape at end of literal")
		}

		switch e := s[i]; {
		case simpleEscapes[e] != "":
			b.WriteString(simpleEscapes[e])
		case e == '\n':
			// line continuation
		case e == 'x':
			r, err := hexRune(s, i+1, 2)
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
			i += 2
		case e == 'u':
			r, n, err := unicodeEscape(s, i+1)
			if err != nil {
				return "", err
			}
			if utf16.IsSurrogate(r) && strings.HasPrefix(s[i+1+n:], "\\u") {
				if low, m, err := unicodeEscape(s, i+1+n+2); err == nil {
					if pair := utf16.DecodeRune(r, low); pair != utf8.RuneError {
						r = pair
						n += 2 + m
					}
				}
			}
			b.WriteRune(r)
			i += n
		default:
			b.WriteByte(e)
		}
	}
	return b.String(), nil
}

// unicodeEscape reads XXXX or {X...} starting at s[i] and returns the rune and
// the number of bytes consumed
func unicodeEscape(s string, i int) (rune, int, error) {
	if i < len(s) && s[i] == '{' {
		end := strings.IndexByte(s[i:], '}')
		if end < 2 {
			return 0, 0, fmt.Errorf("bad unicode escape at offset %d", i)
		}
		r, err := hexRune(s, i+1, end-1)
		return r, end + 1, err
	}
	r, err := hexRune(s, i, 4)
	return r, 4, err
}

func hexRune(s string, i, n int) (rune, error) {
	if i+n > len(s) || n > 6 {
		return 0, fmt.Errorf("short hex escape at offset %d", i)
	}
	v, err := strconv.ParseUint(s[i:i+n], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("bad hex escape %q: %w", s[i:i+n], err)
	}
	return rune(v), nil
}

// entriesFrom accepts either a list of paper objects or an object keyed by id
func entriesFrom(v interface{}) []paperEntry {
	switch data := v.(type) {
	case []interface{}:
		var entries []paperEntry
		for _, item := range data {
			if obj, ok := item.(map[string]interface{}); ok {
				if entry, ok := entryFrom(obj, ""); ok {
					entries = append(entries, entry)
				}
			}
		}
		return entries

	case []map[string]interface{}:
		var entries []paperEntry
		for _, obj := range data {
			if entry, ok := entryFrom(obj, ""); ok {
				entries = append(entries, entry)
			}
		}
		return entries

	case map[string]interface{}:
		keys := make([]string, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var entries []paperEntry
		for _, k := range keys {
			if obj, ok := data[k].(map[string]interface{}); ok {
				if entry, ok := entryFrom(obj, k); ok {
					entries = append(entries, entry)
				}
			}
		}
		return entries
	}
	return nil
}

func entryFrom(obj map[string]interface{}, key string) (paperEntry, bool) {
	var entry paperEntry
	switch id := obj["id"].(type) {
	case nil:
		entry.ID = key
	case string:
		entry.ID = strings.TrimSpace(id)
	case float64:
		entry.ID = strconv.FormatFloat(id, 'f', -1, 64)
	default:
		entry.ID = fmt.Sprint(id)
	}
	if title, ok := obj["title"].(string); ok {
		entry.Title = cleanText(title)
	}
	return entry, entry.ID != ""
}
