package epub

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

// ErrParseXML reports a package or navigation document that is not
// well-formed XML.
var ErrParseXML = errors.New("document is not well-formed XML")

// opfPackage represents the OPF XML structure
type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Version  string      `xml:"version,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Spine    opfSpine    `xml:"spine"`
}

// opfMetadata represents the metadata section
type opfMetadata struct {
	Title      []string `xml:"http://purl.org/dc/elements/1.1/ title"`
	Creator    []string `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Language   []string `xml:"http://purl.org/dc/elements/1.1/ language"`
	Identifier []string `xml:"http://purl.org/dc/elements/1.1/ identifier"`
	Publisher  []string `xml:"http://purl.org/dc/elements/1.1/ publisher"`
	Date       []string `xml:"http://purl.org/dc/elements/1.1/ date"`
}

// opfManifest represents the manifest section
type opfManifest struct {
	Items []opfManifestItem `xml:"item"`
}

// opfManifestItem represents an item in the manifest
type opfManifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

// opfSpine represents the spine section
type opfSpine struct {
	Toc      string       `xml:"toc,attr"`
	ItemRefs []opfItemRef `xml:"itemref"`
}

// opfItemRef represents an itemref in the spine
type opfItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr"`
}

// ParseOPF parses a package document. Manifest hrefs are kept as
// declared, relative to the OPF's own directory.
func ParseOPF(content []byte) (*OPF, error) {
	var pkg opfPackage
	if err := xml.Unmarshal(content, &pkg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseXML, err)
	}

	opf := &OPF{
		Version:  pkg.Version,
		Manifest: make(map[string]ManifestItem),
		SpineToc: pkg.Spine.Toc,
	}

	opf.Metadata = parseMetadata(&pkg.Metadata)

	// Parse manifest
	for _, item := range pkg.Manifest.Items {
		manifestItem := ManifestItem{
			ID:        item.ID,
			Href:      item.Href,
			MediaType: item.MediaType,
		}

		// Parse properties (space-separated)
		if item.Properties != "" {
			manifestItem.Properties = strings.Fields(item.Properties)
		}

		opf.Manifest[item.ID] = manifestItem
		opf.ManifestOrder = append(opf.ManifestOrder, item.ID)
	}

	// Parse spine
	for _, itemRef := range pkg.Spine.ItemRefs {
		linear := true
		if itemRef.Linear == "no" {
			linear = false
		}

		opf.Spine = append(opf.Spine, SpineItem{
			IDRef:  itemRef.IDRef,
			Linear: linear,
		})
	}

	return opf, nil
}

// parseMetadata extracts the first occurrence of each descriptive field,
// trimmed. Absent fields yield empty strings, never an error.
func parseMetadata(meta *opfMetadata) Metadata {
	return Metadata{
		Title:      firstTrimmed(meta.Title),
		Creator:    firstTrimmed(meta.Creator),
		Language:   firstTrimmed(meta.Language),
		Identifier: firstTrimmed(meta.Identifier),
		Publisher:  firstTrimmed(meta.Publisher),
		Date:       firstTrimmed(meta.Date),
	}
}

func firstTrimmed(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

// FindNavPath returns the href of the manifest item carrying the EPUB 3
// "nav" property, relative to the OPF directory. ok is false when the
// package declares no navigation document, which is not an error.
func FindNavPath(opf *OPF) (string, bool) {
	for _, id := range opf.ManifestOrder {
		item := opf.Manifest[id]
		for _, prop := range item.Properties {
			if prop == "nav" {
				return item.Href, true
			}
		}
	}
	return "", false
}
