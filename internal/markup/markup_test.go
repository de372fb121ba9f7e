package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marklight/marklight/internal/doc"
)

func TestSerialize(t *testing.T) {
	tests := []struct {
		name   string
		blocks []*doc.Block
		want   string
	}{
		{
			name:   "single paragraph",
			blocks: []*doc.Block{doc.NewTextBlock(doc.Paragraph, "hello")},
			want:   "<p>hello</p>",
		},
		{
			name:   "heading",
			blocks: []*doc.Block{doc.NewTextBlock(doc.Heading1, "# Title")},
			want:   "<h1># Title</h1>",
		},
		{
			name: "mixed kinds",
			blocks: []*doc.Block{
				doc.NewTextBlock(doc.Heading1, "# Title"),
				doc.NewTextBlock(doc.Paragraph, "body"),
			},
			want: "<h1># Title</h1>\n<p>body</p>",
		},
		{
			name: "inline break",
			blocks: []*doc.Block{doc.NewBlock(doc.Paragraph,
				doc.TextSpan("one"), doc.LineBreak(), doc.TextSpan("two"))},
			want: "<p>one<br>two</p>",
		},
		{
			name:   "escaping",
			blocks: []*doc.Block{doc.NewTextBlock(doc.Paragraph, `a < b & c > "d"`)},
			want:   `<p>a &lt; b &amp; c &gt; "d"</p>`,
		},
		{
			name:   "empty placeholder block",
			blocks: []*doc.Block{doc.NewTextBlock(doc.Paragraph, "")},
			want:   "<p></p>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Serialize(doc.FromBlocks(tt.blocks)))
		})
	}
}

func TestHydrate(t *testing.T) {
	d, err := Hydrate("<h1># Title</h1>\n<p>one<br>two</p>\n<h2>sub</h2>\n<h3>subsub</h3>")
	require.NoError(t, err)
	require.Equal(t, 4, d.BlockCount())

	b, _ := d.BlockAt(0)
	assert.Equal(t, doc.Heading1, b.Kind())
	assert.Equal(t, "# Title", b.Text())

	b, _ = d.BlockAt(1)
	assert.Equal(t, doc.Paragraph, b.Kind())
	assert.Equal(t, "one\ntwo", b.Text())
	assert.True(t, b.Spans()[1].IsBreak())

	b, _ = d.BlockAt(2)
	assert.Equal(t, doc.Heading2, b.Kind())
	b, _ = d.BlockAt(3)
	assert.Equal(t, doc.Heading3, b.Kind())
}

func TestHydrateEmptyInput(t *testing.T) {
	d, err := Hydrate("")
	require.NoError(t, err)
	require.Equal(t, 1, d.BlockCount())
	b, _ := d.BlockAt(0)
	assert.Equal(t, "", b.Text())
}

func TestHydrateSelfClosedBreak(t *testing.T) {
	d, err := Hydrate("<p>a<br/>b</p>")
	require.NoError(t, err)
	b, _ := d.BlockAt(0)
	assert.Equal(t, "a\nb", b.Text())
}

func TestHydrateUnescapes(t *testing.T) {
	d, err := Hydrate("<p>a &lt; b &amp; c &gt; d</p>")
	require.NoError(t, err)
	b, _ := d.BlockAt(0)
	assert.Equal(t, "a < b & c > d", b.Text())
}

func TestHydrateErrors(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   error
	}{
		{"unknown element", "<div>x</div>", ErrUnknownTag},
		{"unknown inline element", "<p><em>x</em></p>", ErrUnknownTag},
		{"mismatched closer", "<p>x</h1>", ErrMalformedMarkup},
		{"unclosed element", "<p>x", ErrMalformedMarkup},
		{"stray text", "hello", ErrMalformedMarkup},
		{"truncated tag", "<p", ErrMalformedMarkup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Hydrate(tt.markup)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	blocks := []*doc.Block{
		doc.NewTextBlock(doc.Heading1, "# A & B"),
		doc.NewBlock(doc.Paragraph,
			doc.TextSpan("first"), doc.LineBreak(), doc.TextSpan("<second>")),
		doc.NewTextBlock(doc.Paragraph, ""),
	}
	orig := doc.FromBlocks(blocks)

	d, err := Hydrate(Serialize(orig))
	require.NoError(t, err)

	require.Equal(t, orig.BlockCount(), d.BlockCount())
	for i := 0; i < orig.BlockCount(); i++ {
		ob, _ := orig.BlockAt(i)
		nb, _ := d.BlockAt(i)
		assert.Equal(t, ob.Kind(), nb.Kind(), "block %d kind", i)
		assert.Equal(t, ob.Text(), nb.Text(), "block %d text", i)
		assert.Equal(t, ob.Spans(), nb.Spans(), "block %d spans", i)
	}
}

func TestFromPlainText(t *testing.T) {
	d := FromPlainText("one\ntwo\r\nthree")
	require.Equal(t, 3, d.BlockCount())
	for i, want := range []string{"one", "two", "three"} {
		b, _ := d.BlockAt(i)
		assert.Equal(t, want, b.Text())
		assert.Equal(t, doc.Paragraph, b.Kind())
	}

	empty := FromPlainText("")
	assert.Equal(t, 1, empty.BlockCount())
}

func TestToPlainText(t *testing.T) {
	d := doc.FromBlocks([]*doc.Block{
		doc.NewTextBlock(doc.Paragraph, "one"),
		doc.NewBlock(doc.Paragraph,
			doc.TextSpan("two"), doc.LineBreak(), doc.TextSpan("three")),
	})
	assert.Equal(t, "one\ntwo\nthree", ToPlainText(d))
}

func TestFromMarkdownHeadings(t *testing.T) {
	d := FromMarkdown([]byte("# Title\n\nbody\n\n## Sub\n\n#### Deep\n"))
	require.Equal(t, 4, d.BlockCount())

	b, _ := d.BlockAt(0)
	assert.Equal(t, doc.Heading1, b.Kind())
	assert.Equal(t, "# Title", b.Text(), "marker kept so the prefix rule holds")
	assert.True(t, strings.HasPrefix(b.Text(), "# "))

	b, _ = d.BlockAt(1)
	assert.Equal(t, doc.Paragraph, b.Kind())
	assert.Equal(t, "body", b.Text())

	b, _ = d.BlockAt(2)
	assert.Equal(t, doc.Heading2, b.Kind())
	assert.Equal(t, "## Sub", b.Text())

	b, _ = d.BlockAt(3)
	assert.Equal(t, doc.Paragraph, b.Kind(), "levels past the enum degrade")
	assert.Equal(t, "#### Deep", b.Text())
}

func TestFromMarkdownParagraphBreaks(t *testing.T) {
	d := FromMarkdown([]byte("line one\nline two\n"))
	require.Equal(t, 1, d.BlockCount())
	b, _ := d.BlockAt(0)
	assert.Equal(t, "line one\nline two", b.Text())
	assert.Equal(t, 3, b.SpanCount())
	assert.True(t, b.Spans()[1].IsBreak())
}

func TestFromMarkdownCodeBlockKeepsLines(t *testing.T) {
	d := FromMarkdown([]byte("```\nfirst\nsecond\n```\n"))
	require.Equal(t, 1, d.BlockCount())
	b, _ := d.BlockAt(0)
	assert.Equal(t, doc.Paragraph, b.Kind())
	assert.Equal(t, "first\nsecond", b.Text())
	assert.Equal(t, 3, b.SpanCount())
	assert.True(t, b.Spans()[1].IsBreak())
}

func TestFromMarkdownFlattensContainers(t *testing.T) {
	d := FromMarkdown([]byte("- alpha\n- beta\n"))
	require.Equal(t, 2, d.BlockCount())
	a, _ := d.BlockAt(0)
	assert.Equal(t, "alpha", a.Text())
	bb, _ := d.BlockAt(1)
	assert.Equal(t, "beta", bb.Text())
}

func TestToMarkdownRoundTrip(t *testing.T) {
	source := "# Title\n\nline one\nline two\n\n## Sub\n"
	d := FromMarkdown([]byte(source))
	assert.Equal(t, source, ToMarkdown(d))
}

func TestFromMarkdownEmpty(t *testing.T) {
	d := FromMarkdown(nil)
	require.Equal(t, 1, d.BlockCount())
}
