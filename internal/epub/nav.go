package epub

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LoadNavTree locates the EPUB 3 navigation document through the
// manifest and parses its table of contents. A package without a nav
// item yields a nil tree and no error; a declared nav document that is
// missing from the archive surfaces as an ErrEntryNotFound from ReadFile.
func LoadNavTree(r *Reader, opf *OPF) ([]NavItem, error) {
	navHref, ok := FindNavPath(opf)
	if !ok {
		return nil, nil
	}

	opfDir := path.Dir(r.OPFPath())
	navPath := navHref
	if opfDir != "." {
		navPath = path.Join(opfDir, navHref)
	}

	content, err := r.ReadFile(navPath)
	if err != nil {
		return nil, err
	}

	return parseNav(content, path.Dir(navHref))
}

// parseNav parses a navigation document into a NavItem tree. navDir is
// the nav document's directory relative to the OPF directory; every
// anchor href is resolved against it so the targets drop straight into
// an NCX placed next to the OPF.
func parseNav(content []byte, navDir string) ([]NavItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseXML, err)
	}

	nav := findTocNav(doc)
	if nav == nil {
		return nil, nil
	}

	ol := nav.ChildrenFiltered("ol").First()
	if ol.Length() == 0 {
		return nil, nil
	}

	return parseNavList(ol, navDir), nil
}

// findTocNav picks the nav element typed as the table of contents,
// falling back to the first nav element when none is typed.
func findTocNav(doc *goquery.Document) *goquery.Selection {
	var toc *goquery.Selection
	navs := doc.Find("nav")
	navs.EachWithBreak(func(i int, s *goquery.Selection) bool {
		if typ, ok := s.Attr("epub:type"); ok && typ == "toc" {
			toc = s
			return false
		}
		return true
	})
	if toc != nil {
		return toc
	}
	if navs.Length() > 0 {
		return navs.First()
	}
	return nil
}

// parseNavList recursively parses an ordered list into NavItems,
// preserving document order. List items without a direct child anchor
// are skipped.
func parseNavList(ol *goquery.Selection, navDir string) []NavItem {
	var items []NavItem
	ol.ChildrenFiltered("li").Each(func(i int, li *goquery.Selection) {
		anchor := li.ChildrenFiltered("a").First()
		if anchor.Length() == 0 {
			return
		}

		href, _ := anchor.Attr("href")
		item := NavItem{
			Label:  strings.TrimSpace(anchor.Text()),
			Target: resolveTarget(navDir, href),
		}

		if sub := li.ChildrenFiltered("ol").First(); sub.Length() > 0 {
			item.Children = parseNavList(sub, navDir)
		}

		items = append(items, item)
	})
	return items
}

// resolveTarget joins an anchor href with the nav document's directory,
// keeping any fragment attached.
func resolveTarget(navDir, href string) string {
	if navDir == "" || navDir == "." {
		return href
	}

	target, fragment := splitFragment(href)
	if target == "" {
		return href
	}

	resolved := path.Join(navDir, target)
	if fragment != "" {
		resolved += "#" + fragment
	}
	return resolved
}

// splitFragment splits an href into the path and fragment identifier.
func splitFragment(src string) (p, fragment string) {
	if src == "" {
		return "", ""
	}
	parts := strings.SplitN(src, "#", 2)
	p = parts[0]
	if len(parts) == 2 {
		fragment = parts[1]
	}
	return p, fragment
}
