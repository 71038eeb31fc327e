package epub

// OPF represents the parsed Open Package Format document
type OPF struct {
	Version       string
	Metadata      Metadata
	Manifest      map[string]ManifestItem // id -> item
	ManifestOrder []string                // ids in document order
	Spine         []SpineItem
	SpineToc      string // spine toc attribute (NCX manifest id), if any
}

// Metadata represents the descriptive metadata of the package document.
// Fields hold the first occurrence in document order, trimmed; absent
// fields stay empty.
type Metadata struct {
	Title      string
	Creator    string
	Language   string
	Identifier string
	Publisher  string
	Date       string
}

// ManifestItem represents an item in the manifest
type ManifestItem struct {
	ID         string
	Href       string // relative to the OPF directory, as declared
	MediaType  string
	Properties []string
}

// SpineItem represents an item reference in the spine
type SpineItem struct {
	IDRef  string
	Linear bool
}

// NavItem is one entry of the EPUB 3 navigation tree. Target is the
// anchor href resolved against the navigation document's directory
// relative to the OPF, fragment included, so it can be used directly as
// an NCX content src next to the OPF. Children preserve document order.
type NavItem struct {
	Label    string
	Target   string
	Children []NavItem
}
