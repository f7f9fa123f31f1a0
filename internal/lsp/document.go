package lsp

import (
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

// Document is a SQL file the client has open.
type Document struct {
	URI     string
	Content string
	Version int
	Lines   []int // byte offset of each line start

	// Violations from the last analysis, nil when the document did not parse.
	Violations []lint.Violation
}

// DocumentStore holds the open documents by URI. It is safe for
// concurrent use.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*Document
}

// NewDocumentStore returns an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{documents: map[string]*Document{}}
}

// Open adds or replaces a document in the store.
func (s *DocumentStore) Open(uri, content string, version int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents[uri] = newDocument(uri, content, version)
}

// Close forgets a document.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.documents, uri)
}

// Get returns a snapshot of a document, or nil.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[uri]
	if !ok {
		return nil
	}
	snapshot := *doc
	return &snapshot
}

// Update replaces an open document's content.
func (s *DocumentStore) Update(uri, content string, version int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[uri]; ok {
		s.documents[uri] = newDocument(uri, content, version)
	}
}

// SetViolations records the analysis of a document version. Results for
// a stale version are dropped.
func (s *DocumentStore) SetViolations(uri string, version int, violations []lint.Violation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc, ok := s.documents[uri]; ok && doc.Version == version {
		doc.Violations = violations
	}
}

func newDocument(uri, content string, version int) *Document {
	return &Document{
		URI:     uri,
		Content: content,
		Version: version,
		Lines:   computeLineOffsets(content),
	}
}

// computeLineOffsets returns the byte offset at which each line starts.
func computeLineOffsets(content string) []int {
	offsets := make([]int, 1, strings.Count(content, "\n")+1)
	for i := range len(content) {
		if content[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// lineEnd returns the byte offset of the end of line, excluding the newline.
func (d *Document) lineEnd(line int) int {
	if line+1 < len(d.Lines) {
		return d.Lines[line+1] - 1
	}
	return len(d.Content)
}

// PositionToOffset converts a Position to a byte offset in the document.
// Characters are counted in UTF-16 code units.
func (d *Document) PositionToOffset(pos Position) int {
	if d == nil || len(d.Lines) == 0 {
		return 0
	}

	line := int(pos.Line)
	if line >= len(d.Lines) {
		return len(d.Content)
	}

	offset := d.Lines[line]
	end := d.lineEnd(line)
	units := int(pos.Character)
	for offset < end && units > 0 {
		r, size := utf8.DecodeRuneInString(d.Content[offset:])
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		units -= n
		offset += size
	}
	return offset
}

// OffsetToPosition converts a byte offset to a Position.
func (d *Document) OffsetToPosition(offset int) Position {
	if d == nil || len(d.Lines) == 0 {
		return Position{}
	}

	offset = max(0, min(offset, len(d.Content)))

	// Last line starting at or before offset.
	line := sort.SearchInts(d.Lines, offset+1) - 1

	var character int
	for _, r := range d.Content[d.Lines[line]:offset] {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		character += n
	}
	return Position{
		Line:      uint32(line),      //nolint:gosec // G115: line is always non-negative
		Character: uint32(character), //nolint:gosec // G115: character is always non-negative
	}
}

// SpanToRange converts a source span to an LSP range.
func (d *Document) SpanToRange(span token.Span) Range {
	return Range{
		Start: d.OffsetToPosition(span.Start.Offset),
		End:   d.OffsetToPosition(span.End.Offset),
	}
}

// FullRange covers the whole document.
func (d *Document) FullRange() Range {
	return Range{End: d.OffsetToPosition(len(d.Content))}
}

// URIToPath converts a file:// URI to a file system path.
func URIToPath(uri string) string {
	const prefix = "file://"
	if !strings.HasPrefix(uri, prefix) {
		return uri
	}
	if u, err := url.Parse(uri); err == nil {
		return filepath.FromSlash(u.Path)
	}
	return uri[len(prefix):]
}

// PathToURI converts a file system path to a file:// URI.
func PathToURI(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// rangeContains reports whether pos lies within r. An empty range
// contains its own start.
func rangeContains(r Range, pos Position) bool {
	if before(pos, r.Start) {
		return false
	}
	if r.Start == r.End {
		return pos == r.Start
	}
	return before(pos, r.End) || pos == r.End
}

// rangesOverlap reports whether a and b share a position.
func rangesOverlap(a, b Range) bool {
	return !before(a.End, b.Start) && !before(b.End, a.Start)
}

func before(a, b Position) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Character < b.Character)
}
