package docx

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// stylesXML represents the structure of word/styles.xml.
type stylesXML struct {
	XMLName xml.Name      `xml:"styles"`
	Styles  []styleDefXML `xml:"style"`
}

// styleDefXML represents a style definition.
type styleDefXML struct {
	Type    string       `xml:"type,attr"`
	StyleID string       `xml:"styleId,attr"`
	Name    styleNameXML `xml:"name"`
}

// styleNameXML represents a style name.
type styleNameXML struct {
	Val string `xml:"val,attr"`
}

// numberingXML represents word/numbering.xml.
type numberingXML struct {
	XMLName      xml.Name         `xml:"numbering"`
	AbstractNums []abstractNumXML `xml:"abstractNum"`
	Nums         []numXML         `xml:"num"`
}

// abstractNumXML represents an abstract numbering definition.
type abstractNumXML struct {
	AbstractNumID string   `xml:"abstractNumId,attr"`
	Levels        []lvlXML `xml:"lvl"`
}

// lvlXML represents one level of a numbering definition.
type lvlXML struct {
	ILvl   string `xml:"ilvl,attr"`
	NumFmt valXML `xml:"numFmt"`
}

// numXML maps a concrete numbering instance to its abstract definition.
type numXML struct {
	NumID         string `xml:"numId,attr"`
	AbstractNumID valXML `xml:"abstractNumId"`
}

// headingLevel derives a heading level (1-9) from a style ID or name, per
// the "Heading1".."Heading9" / "heading 1" conventions. Returns 0 for
// non-heading styles.
func headingLevel(styleID, styleName string) int {
	for _, s := range []string{styleID, styleName} {
		s = strings.ToLower(strings.TrimSpace(s))
		s = strings.TrimPrefix(s, "heading")
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if lvl, err := strconv.Atoi(s); err == nil && lvl >= 1 && lvl <= 9 {
			return lvl
		}
	}
	if strings.EqualFold(styleID, "Title") || strings.EqualFold(styleName, "Title") {
		return 1
	}
	return 0
}

// styleTable maps style IDs to heading levels and names.
type styleTable struct {
	names  map[string]string
	levels map[string]int
}

func newStyleTable(styles *stylesXML) *styleTable {
	st := &styleTable{
		names:  make(map[string]string),
		levels: make(map[string]int),
	}
	if styles == nil {
		return st
	}
	for _, s := range styles.Styles {
		if s.Type != "" && s.Type != "paragraph" {
			continue
		}
		st.names[s.StyleID] = s.Name.Val
		if lvl := headingLevel(s.StyleID, s.Name.Val); lvl > 0 {
			st.levels[s.StyleID] = lvl
		}
	}
	return st
}

// level returns the heading level for a style ID, falling back to parsing
// the ID itself for documents without a styles part.
func (st *styleTable) level(styleID string) int {
	if styleID == "" {
		return 0
	}
	if lvl, ok := st.levels[styleID]; ok {
		return lvl
	}
	return headingLevel(styleID, "")
}

// numberingTable resolves numbering IDs to their level-zero format.
type numberingTable struct {
	formats map[string]string // numId -> numFmt ("bullet", "decimal", ...)
}

func newNumberingTable(numbering *numberingXML) *numberingTable {
	nt := &numberingTable{formats: make(map[string]string)}
	if numbering == nil {
		return nt
	}
	abstract := make(map[string]string)
	for _, an := range numbering.AbstractNums {
		for _, lvl := range an.Levels {
			if lvl.ILvl == "0" || lvl.ILvl == "" {
				abstract[an.AbstractNumID] = lvl.NumFmt.Val
				break
			}
		}
	}
	for _, n := range numbering.Nums {
		if fmt, ok := abstract[n.AbstractNumID.Val]; ok {
			nt.formats[n.NumID] = fmt
		}
	}
	return nt
}

// ordered reports whether the numbering instance renders numbers rather than
// bullets. Unknown IDs default to unordered.
func (nt *numberingTable) ordered(numID string) bool {
	fmt, ok := nt.formats[numID]
	return ok && fmt != "bullet" && fmt != "none"
}
