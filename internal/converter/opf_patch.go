package converter

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrEncoding reports a package document that cannot be decoded as text.
var ErrEncoding = errors.New("package document is not valid UTF-8 text")

var (
	navPropertiesRe = regexp.MustCompile(`\s*properties="[^"]*nav[^"]*"`)
	spineOpenRe     = regexp.MustCompile(`<spine([^>]*)>`)
)

const ncxManifestItem = `<item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>`

// PatchOPF rewrites a package document for EPUB 2 readers with plain
// textual substitution, leaving every byte outside the substitutions
// untouched (formatting, whitespace and comments survive):
//
//   - the version attribute is downgraded from 3.0 to 2.0;
//   - manifest properties attributes carrying the nav marker are removed
//     as whole attributes;
//   - unless the document already references toc.ncx, the NCX manifest
//     item is appended before </manifest> and the spine opening tag
//     gains toc="ncx". The toc.ncx guard makes a second conversion
//     pass a no-op.
func PatchOPF(content []byte) ([]byte, error) {
	if !utf8.Valid(content) {
		return nil, ErrEncoding
	}

	text := string(content)
	text = strings.ReplaceAll(text, `version="3.0"`, `version="2.0"`)
	text = navPropertiesRe.ReplaceAllString(text, "")

	if !strings.Contains(text, "toc.ncx") {
		text = strings.Replace(text, "</manifest>", ncxManifestItem+"\n</manifest>", 1)
		text = spineOpenRe.ReplaceAllString(text, `<spine$1 toc="ncx">`)
	}

	return []byte(text), nil
}
