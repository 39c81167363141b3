package epubdoc

import (
	"archive/zip"
	"encoding/xml"
	"errors"
)

var (
	ErrNoContainer      = errors.New("epubdoc: missing META-INF/container.xml")
	ErrInvalidContainer = errors.New("epubdoc: invalid container.xml")
	ErrNoRootfile       = errors.New("epubdoc: no rootfile found in container.xml")
)

type containerXML struct {
	XMLName   xml.Name `xml:"container"`
	Rootfiles struct {
		Rootfile []struct {
			FullPath  string `xml:"full-path,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"rootfile"`
	} `xml:"rootfiles"`
}

// parseContainer returns the archive path of the package document.
func parseContainer(zr *zip.Reader) (string, error) {
	data, err := readArchiveFile(zr, "META-INF/container.xml")
	if err != nil {
		return "", ErrNoContainer
	}

	var container containerXML
	if err := xml.Unmarshal(data, &container); err != nil {
		return "", ErrInvalidContainer
	}

	for _, rf := range container.Rootfiles.Rootfile {
		if rf.MediaType == "application/oebps-package+xml" || rf.MediaType == "" {
			if rf.FullPath != "" {
				return rf.FullPath, nil
			}
		}
	}
	if rfs := container.Rootfiles.Rootfile; len(rfs) > 0 && rfs[0].FullPath != "" {
		return rfs[0].FullPath, nil
	}
	return "", ErrNoRootfile
}
