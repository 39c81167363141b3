package docx

import "encoding/xml"

// paragraphXML represents a paragraph element (<w:p>).
type paragraphXML struct {
	XMLName    xml.Name          `xml:"p"`
	Properties paragraphPropsXML `xml:"pPr"`
	Runs       []runXML          `xml:"r"`
	Hyperlinks []hyperlinkXML    `xml:"hyperlink"`
}

// paragraphPropsXML represents paragraph properties (<w:pPr>).
type paragraphPropsXML struct {
	Style      styleRefXML       `xml:"pStyle"`
	NumPr      numberingPropsXML `xml:"numPr"`
	OutlineLvl outlineLvlXML     `xml:"outlineLvl"`
}

// styleRefXML represents a style reference.
type styleRefXML struct {
	Val string `xml:"val,attr"`
}

// numberingPropsXML represents numbering properties for lists.
type numberingPropsXML struct {
	ILvl  valXML `xml:"ilvl"`
	NumID valXML `xml:"numId"`
}

// valXML is a generic element carrying a w:val attribute.
type valXML struct {
	Val string `xml:"val,attr"`
}

// outlineLvlXML represents the outline level (0-based heading level).
type outlineLvlXML struct {
	Val string `xml:"val,attr"`
}

// runXML represents a text run (<w:r>).
type runXML struct {
	XMLName xml.Name     `xml:"r"`
	Text    []textXML    `xml:"t"`
	Tabs    []tabXML     `xml:"tab"`
	Breaks  []breakXML   `xml:"br"`
	Drawing []drawingXML `xml:"drawing"`
	Objects []objectXML  `xml:"object"`
}

// textXML represents literal run text (<w:t>).
type textXML struct {
	Space string `xml:"space,attr"`
	Value string `xml:",chardata"`
}

// tabXML represents a tab character (<w:tab>).
type tabXML struct{}

// breakXML represents a line or page break (<w:br>).
type breakXML struct {
	Type string `xml:"type,attr"` // "page", "column", or empty for line break
}

// drawingXML marks an embedded drawing; content is not extracted.
type drawingXML struct{}

// objectXML marks an embedded OLE object; content is not extracted.
type objectXML struct{}

// hyperlinkXML represents a hyperlink wrapper around runs.
type hyperlinkXML struct {
	Runs []runXML `xml:"r"`
}

// tableXML represents a table element (<w:tbl>).
type tableXML struct {
	XMLName xml.Name      `xml:"tbl"`
	Rows    []tableRowXML `xml:"tr"`
}

// tableRowXML represents a table row (<w:tr>).
type tableRowXML struct {
	Cells []tableCellXML `xml:"tc"`
}

// tableCellXML represents a table cell (<w:tc>).
type tableCellXML struct {
	Paragraphs []paragraphXML `xml:"p"`
}

// corePropertiesXML represents docProps/core.xml metadata.
type corePropertiesXML struct {
	XMLName xml.Name `xml:"coreProperties"`
	Title   string   `xml:"title"`
	Creator string   `xml:"creator"`
}
