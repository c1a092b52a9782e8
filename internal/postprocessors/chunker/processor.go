// Package chunker provides a recursive character text splitter.
//
// Text is first broken into pieces at the coarsest separator that keeps
// pieces small (paragraphs, then lines, then sentences, then words). Pieces
// are then packed greedily into chunks of at most chunkSize characters, and
// each chunk after the first starts overlap characters before the previous
// chunk's end, moved back to a word start when room allows.
//
// Guarantees, with lengths counted in runes:
//   - chunks appear in document order and their non-overlapping tails
//     rebuild the text exactly;
//   - consecutive chunks share at least overlap characters;
//   - a chunk exceeds chunkSize only when it holds a single word longer
//     than chunkSize-overlap, which is never split;
//   - text no longer than chunkSize yields exactly one chunk.
//
// When there is no room to move back to a word start, the overlap begins
// mid-word.
package chunker

import (
	"context"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// DefaultSeparators are tried in order, coarsest first.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " "}

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// Span is one chunk of text and its rune offset in the source text.
type Span struct {
	Text  string
	Start int
}

// End returns the rune offset just past the span.
func (s Span) End() int {
	return s.Start + utf8.RuneCountInString(s.Text)
}

// Processor splits document content into overlapping chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators replaces the separator hierarchy.
func WithSeparators(seps ...string) Option {
	return func(p *Processor) {
		if len(seps) > 0 {
			p.separators = seps
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process splits the document text into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
// Every chunk receives a copy of the document metadata.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	spans := p.Split(doc.FullText())
	if len(spans) == 0 {
		return nil, nil
	}

	chunks := make([]domain.Chunk, 0, len(spans))
	for i, s := range spans {
		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Content:    s.Text,
			Position:   i,
			Start:      s.Start,
			Metadata:   doc.Metadata.Clone(),
		})
	}
	return chunks, nil
}

// Split divides text into ordered, overlapping spans.
func (p *Processor) Split(text string) []Span {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= p.chunkSize {
		return []Span{{Text: text, Start: 0}}
	}

	bounds := p.boundaries(text)
	total := len(runes)

	var spans []Span
	start, prevEnd := 0, 0
	for {
		end := p.extend(bounds, start, prevEnd)
		spans = append(spans, Span{Text: string(runes[start:end]), Start: start})
		if end >= total {
			return spans
		}
		start = p.nextStart(runes, bounds, start, end)
		prevEnd = end
	}
}

// boundaries returns the ascending rune offsets at which pieces end.
// The last boundary is the text length.
func (p *Processor) boundaries(text string) []int {
	limit := p.chunkSize - p.overlap
	pieces := splitRecursive(text, p.separators, limit)

	bounds := make([]int, 0, len(pieces))
	offset := 0
	for _, piece := range pieces {
		offset += utf8.RuneCountInString(piece)
		bounds = append(bounds, offset)
	}
	return bounds
}

// extend returns the furthest piece boundary reachable from start within
// chunkSize. The first boundary past minEnd is always taken so every chunk
// advances, and pieces keep being taken while the chunk is no longer than
// overlap so the next chunk can overlap it in full. Either rule may pull in
// an oversized word.
func (p *Processor) extend(bounds []int, start, minEnd int) int {
	i := sort.SearchInts(bounds, minEnd+1)
	end := bounds[i]
	for i+1 < len(bounds) && (bounds[i+1]-start <= p.chunkSize || end-start <= p.overlap) {
		i++
		end = bounds[i]
	}
	return end
}

// nextStart picks where the chunk after [prevStart, prevEnd) begins:
// overlap characters back from prevEnd, moved further back to a word start
// if the next piece still fits.
func (p *Processor) nextStart(runes []rune, bounds []int, prevStart, prevEnd int) int {
	if p.overlap == 0 {
		return prevEnd
	}
	target := prevEnd - p.overlap
	if target <= prevStart {
		target = prevStart + 1
	}

	next := bounds[sort.SearchInts(bounds, prevEnd+1)] - prevEnd
	slack := p.chunkSize - p.overlap - next
	floor := max(target-slack, prevStart+1)
	for s := target; s >= floor && slack > 0; s-- {
		if unicode.IsSpace(runes[s-1]) {
			return s
		}
	}
	return target
}

// splitRecursive breaks text at the first separator it contains, keeping
// separators attached to the preceding piece, and recurses into pieces still
// longer than limit with the finer separators. A separator that would push
// its piece past limit is split off on its own. Pieces with no separator
// left are returned whole.
func splitRecursive(text string, seps []string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}
	for i, sep := range seps {
		if sep == "" || !strings.Contains(text, sep) {
			continue
		}
		var out []string
		for _, part := range strings.SplitAfter(text, sep) {
			if part == "" {
				continue
			}
			// A word that fits only without its separator ends its own piece.
			if body, ok := strings.CutSuffix(part, sep); ok && body != "" &&
				utf8.RuneCountInString(part) > limit {
				out = append(out, splitRecursive(body, seps[i+1:], limit)...)
				out = append(out, sep)
				continue
			}
			out = append(out, splitRecursive(part, seps[i+1:], limit)...)
		}
		return out
	}
	return []string{text}
}
