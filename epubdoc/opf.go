package epubdoc

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"path"
	"strings"
)

var (
	ErrNoOPF      = errors.New("epubdoc: missing package document (OPF)")
	ErrInvalidOPF = errors.New("epubdoc: invalid package document")
	ErrEmptySpine = errors.New("epubdoc: no readable content in spine")
)

// pkgDocument is the parsed OPF package: Dublin Core metadata, the
// manifest keyed by item ID, and the spine in reading order.
type pkgDocument struct {
	version  string
	meta     pkgMetadata
	manifest map[string]manifestItem
	spine    []spineRef
}

type pkgMetadata struct {
	title    string
	creators []string
	language string
}

type manifestItem struct {
	id         string
	href       string
	mediaType  string
	properties string
}

// isNav reports whether the item is an EPUB 3 navigation document.
func (m manifestItem) isNav() bool {
	for _, p := range strings.Fields(m.properties) {
		if p == "nav" {
			return true
		}
	}
	return false
}

type spineRef struct {
	idRef  string
	linear bool
}

type opfXML struct {
	XMLName  xml.Name `xml:"package"`
	Version  string   `xml:"version,attr"`
	Metadata struct {
		Title    []string `xml:"title"`
		Creator  []string `xml:"creator"`
		Language []string `xml:"language"`
	} `xml:"metadata"`
	Manifest struct {
		Items []struct {
			ID         string `xml:"id,attr"`
			Href       string `xml:"href,attr"`
			MediaType  string `xml:"media-type,attr"`
			Properties string `xml:"properties,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef  string `xml:"idref,attr"`
			Linear string `xml:"linear,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

// parseOPF parses the package document at opfPath and returns it along
// with the base directory for resolving manifest hrefs.
func parseOPF(zr *zip.Reader, opfPath string) (*pkgDocument, string, error) {
	data, err := readArchiveFile(zr, opfPath)
	if err != nil {
		return nil, "", ErrNoOPF
	}

	var opf opfXML
	if err := xml.Unmarshal(data, &opf); err != nil {
		return nil, "", ErrInvalidOPF
	}

	pkg := &pkgDocument{
		version:  opf.Version,
		manifest: make(map[string]manifestItem, len(opf.Manifest.Items)),
	}

	if len(opf.Metadata.Title) > 0 {
		pkg.meta.title = strings.TrimSpace(opf.Metadata.Title[0])
	}
	for _, c := range opf.Metadata.Creator {
		if s := strings.TrimSpace(c); s != "" {
			pkg.meta.creators = append(pkg.meta.creators, s)
		}
	}
	if len(opf.Metadata.Language) > 0 {
		pkg.meta.language = strings.TrimSpace(opf.Metadata.Language[0])
	}

	for _, item := range opf.Manifest.Items {
		pkg.manifest[item.ID] = manifestItem{
			id:         item.ID,
			href:       item.Href,
			mediaType:  item.MediaType,
			properties: item.Properties,
		}
	}

	for _, ref := range opf.Spine.ItemRefs {
		pkg.spine = append(pkg.spine, spineRef{
			idRef:  ref.IDRef,
			linear: ref.Linear != "no",
		})
	}
	if len(pkg.spine) == 0 {
		return nil, "", ErrEmptySpine
	}

	baseDir := path.Dir(opfPath)
	if baseDir == "." {
		baseDir = ""
	}
	return pkg, baseDir, nil
}
