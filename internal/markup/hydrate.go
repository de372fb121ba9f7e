package markup

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/marklight/marklight/internal/doc"
)

var (
	// ErrMalformedMarkup reports input that is not valid against the markup
	// contract (truncated tags, mismatched closers, stray text).
	ErrMalformedMarkup = errors.New("malformed markup")
	// ErrUnknownTag reports an element outside the contract's closed set.
	ErrUnknownTag = errors.New("unknown markup tag")
)

var kindForTag = map[string]doc.Kind{
	"p":  doc.Paragraph,
	"h1": doc.Heading1,
	"h2": doc.Heading2,
	"h3": doc.Heading3,
}

var unescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
)

// Hydrate parses markup produced by Serialize back into a document. Inter-
// element whitespace is ignored. Empty input yields the one-empty-paragraph
// document.
func Hydrate(markup string) (*doc.Document, error) {
	h := &hydrator{src: markup}
	var blocks []*doc.Block
	for {
		h.skipSpace()
		if h.eof() {
			break
		}
		b, err := h.block()
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	if len(blocks) == 0 {
		return doc.New(), nil
	}
	return doc.FromBlocks(blocks), nil
}

type hydrator struct {
	src string
	pos int
}

func (h *hydrator) eof() bool { return h.pos >= len(h.src) }

func (h *hydrator) skipSpace() {
	for !h.eof() && unicode.IsSpace(rune(h.src[h.pos])) {
		h.pos++
	}
}

// tagName consumes letters and digits at the cursor.
func (h *hydrator) tagName() string {
	start := h.pos
	for !h.eof() {
		c := h.src[h.pos]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			break
		}
		h.pos++
	}
	return h.src[start:h.pos]
}

func (h *hydrator) expect(c byte) error {
	if h.eof() || h.src[h.pos] != c {
		return fmt.Errorf("%w: expected %q at offset %d", ErrMalformedMarkup, string(c), h.pos)
	}
	h.pos++
	return nil
}

// block parses one <tag>content</tag> element.
func (h *hydrator) block() (*doc.Block, error) {
	if err := h.expect('<'); err != nil {
		return nil, err
	}
	tag := h.tagName()
	kind, ok := kindForTag[tag]
	if !ok {
		return nil, fmt.Errorf("%w: <%s>", ErrUnknownTag, tag)
	}
	if err := h.expect('>'); err != nil {
		return nil, err
	}

	var spans []doc.Span
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			spans = append(spans, doc.TextSpan(unescaper.Replace(text.String())))
			text.Reset()
		}
	}

	for {
		if h.eof() {
			return nil, fmt.Errorf("%w: unclosed <%s>", ErrMalformedMarkup, tag)
		}
		c := h.src[h.pos]
		if c != '<' {
			text.WriteByte(c)
			h.pos++
			continue
		}
		h.pos++

		if !h.eof() && h.src[h.pos] == '/' {
			h.pos++
			closer := h.tagName()
			if err := h.expect('>'); err != nil {
				return nil, err
			}
			if closer != tag {
				return nil, fmt.Errorf("%w: <%s> closed by </%s>", ErrMalformedMarkup, tag, closer)
			}
			flush()
			return doc.NewBlock(kind, spans...), nil
		}

		inner := h.tagName()
		if inner != "br" {
			return nil, fmt.Errorf("%w: <%s>", ErrUnknownTag, inner)
		}
		// Accept the void form and the self-closed form.
		if !h.eof() && h.src[h.pos] == '/' {
			h.pos++
		}
		if err := h.expect('>'); err != nil {
			return nil, err
		}
		flush()
		spans = append(spans, doc.LineBreak())
	}
}
