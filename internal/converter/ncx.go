package converter

import (
	"fmt"
	"html"
	"strings"

	"github.com/yuanying/epub32/internal/epub"
)

// ncxBuilder writes an NCX document while tracking the global playOrder
// counter. The counter is scoped to one BuildNCX call so concurrent
// conversions never share numbering state.
type ncxBuilder struct {
	b         strings.Builder
	playOrder int
}

// BuildNCX synthesizes a complete EPUB 2 NCX document from a navigation
// tree. The navMap is a pre-order walk: every item gets the next
// playOrder value regardless of nesting level, so a parent always
// numbers lower than its descendants and descendants number before the
// next sibling. An empty tree yields a valid document with an empty
// navMap.
func BuildNCX(items []epub.NavItem, meta epub.Metadata) string {
	title := meta.Title
	if title == "" {
		title = "Untitled"
	}

	g := &ncxBuilder{playOrder: 1}
	g.b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	g.b.WriteString("<ncx xmlns=\"http://www.daisy.org/z3986/2005/ncx/\" version=\"2005-1\">\n")
	g.b.WriteString("<head><meta name=\"dtb:uid\" content=\"auto-gen\"/><meta name=\"dtb:depth\" content=\"3\"/></head>\n")
	fmt.Fprintf(&g.b, "<docTitle><text>%s</text></docTitle>\n", html.EscapeString(title))
	if meta.Creator != "" {
		fmt.Fprintf(&g.b, "<docAuthor><text>%s</text></docAuthor>\n", html.EscapeString(meta.Creator))
	}
	g.b.WriteString("<navMap>\n")
	g.writeNavPoints(items)
	g.b.WriteString("</navMap>\n</ncx>\n")

	return g.b.String()
}

// writeNavPoints recursively writes NavItems as nested navPoint elements.
func (g *ncxBuilder) writeNavPoints(items []epub.NavItem) {
	for _, item := range items {
		order := g.playOrder
		g.playOrder++

		fmt.Fprintf(&g.b, "<navPoint id=\"nav_%d\" playOrder=\"%d\">\n", order, order)
		fmt.Fprintf(&g.b, "  <navLabel><text>%s</text></navLabel>\n", html.EscapeString(item.Label))
		fmt.Fprintf(&g.b, "  <content src=\"%s\"/>\n", html.EscapeString(item.Target))
		if len(item.Children) > 0 {
			g.writeNavPoints(item.Children)
		}
		g.b.WriteString("</navPoint>\n")
	}
}
