package epubdoc

import (
	"archive/zip"
	"encoding/xml"
	"strings"
)

type encryptionXML struct {
	XMLName       xml.Name `xml:"encryption"`
	EncryptedData []struct {
		EncryptionMethod struct {
			Algorithm string `xml:"Algorithm,attr"`
		} `xml:"EncryptionMethod"`
		CipherData struct {
			CipherReference struct {
				URI string `xml:"URI,attr"`
			} `xml:"CipherReference"`
		} `xml:"CipherData"`
	} `xml:"EncryptedData"`
}

// checkForDRM returns ErrDRMProtected when the archive shows signs of
// rights management. Font obfuscation is not DRM and is allowed.
func checkForDRM(zr *zip.Reader) error {
	for _, f := range zr.File {
		switch f.Name {
		case "META-INF/rights.xml":
			// Adobe ADEPT marker
			return ErrDRMProtected
		case "META-INF/encryption.xml":
			encrypted, err := hasEncryptedContent(zr)
			if err != nil || encrypted {
				return ErrDRMProtected
			}
		}
	}
	return nil
}

func hasEncryptedContent(zr *zip.Reader) (bool, error) {
	data, err := readArchiveFile(zr, "META-INF/encryption.xml")
	if err != nil {
		return false, err
	}

	var enc encryptionXML
	if err := xml.Unmarshal(data, &enc); err != nil {
		return false, err
	}

	for _, ed := range enc.EncryptedData {
		if isFontObfuscation(ed.EncryptionMethod.Algorithm) {
			continue
		}
		if isContentFile(ed.CipherData.CipherReference.URI) {
			return true, nil
		}
	}
	return false, nil
}

func isFontObfuscation(algorithm string) bool {
	if !strings.Contains(algorithm, "obfuscation") {
		return false
	}
	return strings.Contains(algorithm, "adobe.com") || strings.Contains(algorithm, "idpf.org")
}

func isContentFile(uri string) bool {
	uri = strings.ToLower(uri)
	for _, ext := range []string{".xhtml", ".html", ".htm", ".xml", ".css"} {
		if strings.HasSuffix(uri, ext) {
			return true
		}
	}
	return false
}
