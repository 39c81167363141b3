// Package rtfdoc reads Rich Text Format files.
//
// The parser walks the RTF group structure directly: control words that
// carry text semantics (\par, \tab, \u, \'hh) are honored, destination
// groups such as font and color tables are skipped, and everything else
// falls through as plain text. Title and author are picked out of the
// \info group when present.
package rtfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/docshift/docshift/model"
)

// ErrNotRTF is returned when the input does not start with an RTF header.
var ErrNotRTF = errors.New("rtfdoc: not an RTF document")

// Read parses the RTF file at path.
func Read(path string) (*model.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rtfdoc: reading %s: %w", path, err)
	}
	doc, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	doc.Metadata.SourcePath = path
	return doc, nil
}

// destinations that never contribute body text.
var skipDests = map[string]bool{
	"fonttbl":             true,
	"colortbl":            true,
	"stylesheet":          true,
	"pict":                true,
	"object":              true,
	"themedata":           true,
	"colorschememapping":  true,
	"latentstyles":        true,
	"datastore":           true,
	"listtable":           true,
	"listoverridetable":   true,
	"rsidtbl":             true,
	"xmlnstbl":            true,
	"generator":           true,
	"header":              true,
	"footer":              true,
	"footnote":            true,
	"creatim":             true,
	"revtim":              true,
	"printim":             true,
}

type group struct {
	skip   bool
	dest   string
	ucSkip int
}

type parser struct {
	src   []byte
	pos   int
	stack []group
	cur   group

	para   strings.Builder
	title  strings.Builder
	author strings.Builder
	doc    *model.Document
}

// Parse parses RTF source bytes. Each \par boundary closes a paragraph
// block; empty paragraphs are dropped.
func Parse(src []byte) (*model.Document, error) {
	if !bytes.HasPrefix(src, []byte(`{\rtf`)) {
		return nil, ErrNotRTF
	}

	p := &parser{
		src: src,
		cur: group{ucSkip: 1},
		doc: model.NewDocument(),
	}
	p.doc.Metadata.SourceFormat = "rtf"
	p.run()
	p.flushParagraph()

	p.doc.Metadata.Title = strings.TrimSpace(p.title.String())
	p.doc.Metadata.Author = strings.TrimSpace(p.author.String())
	return p.doc, nil
}

func (p *parser) run() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '{':
			p.pos++
			p.stack = append(p.stack, p.cur)
		case '}':
			p.pos++
			if n := len(p.stack); n > 0 {
				p.cur = p.stack[n-1]
				p.stack = p.stack[:n-1]
			}
		case '\\':
			p.control()
		case '\r', '\n':
			// line breaks in the source carry no meaning
			p.pos++
		default:
			p.pos++
			p.emitByte(c)
		}
	}
}

// control handles one control word or control symbol starting at the
// backslash under p.pos.
func (p *parser) control() {
	p.pos++ // backslash
	if p.pos >= len(p.src) {
		return
	}

	c := p.src[p.pos]
	if !isLetter(c) {
		p.pos++
		switch c {
		case '\\', '{', '}':
			p.emitByte(c)
		case '~':
			p.emitByte(' ')
		case '\'':
			p.hexEscape()
		case '*':
			// \* marks an optional destination; skip its group
			// unless the following word is one we understand.
			p.starDestination()
		}
		// other symbols (\-, \_, ...) are dropped
		return
	}

	word, param, hasParam := p.controlWord()
	switch word {
	case "par", "line":
		p.flushParagraph()
	case "tab", "cell":
		p.emitByte(' ')
	case "uc":
		if hasParam {
			p.cur.ucSkip = param
		}
	case "u":
		p.unicodeEscape(param)
	case "bin":
		if hasParam && param > 0 {
			p.pos += param
		}
	case "title":
		p.cur.dest = "title"
	case "author":
		p.cur.dest = "author"
	case "info":
		// neutral container; its children decide
	default:
		if skipDests[word] {
			p.cur.skip = true
		}
	}
}

// controlWord reads the word letters plus an optional signed numeric
// parameter, consuming the single delimiting space if present.
func (p *parser) controlWord() (word string, param int, hasParam bool) {
	start := p.pos
	for p.pos < len(p.src) && isLetter(p.src[p.pos]) {
		p.pos++
	}
	word = string(p.src[start:p.pos])

	neg := false
	if p.pos < len(p.src) && p.src[p.pos] == '-' {
		neg = true
		p.pos++
	}
	numStart := p.pos
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		p.pos++
	}
	if p.pos > numStart {
		hasParam = true
		for _, d := range p.src[numStart:p.pos] {
			param = param*10 + int(d-'0')
		}
		if neg {
			param = -param
		}
	}
	if p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
	return word, param, hasParam
}

// starDestination skips the group opened just before a \* marker when
// it names a destination the parser has no use for.
func (p *parser) starDestination() {
	// Peek at the control word that follows.
	save := p.pos
	if p.pos < len(p.src) && p.src[p.pos] == '\\' {
		p.pos++
		word, _, _ := p.controlWord()
		if word == "title" || word == "author" {
			p.pos = save
			return
		}
	}
	p.pos = save
	p.cur.skip = true
}

func (p *parser) hexEscape() {
	if p.pos+1 >= len(p.src) {
		return
	}
	hi, okHi := hexVal(p.src[p.pos])
	lo, okLo := hexVal(p.src[p.pos+1])
	p.pos += 2
	if !okHi || !okLo {
		return
	}
	r := charmap.Windows1252.DecodeByte(byte(hi<<4 | lo))
	p.emitRune(r)
}

func (p *parser) unicodeEscape(param int) {
	if param < 0 {
		param += 65536
	}
	p.emitRune(rune(param))

	// The escape is followed by ucSkip fallback characters for
	// readers that cannot handle Unicode. Skip them.
	for i := 0; i < p.cur.ucSkip && p.pos < len(p.src); i++ {
		if p.src[p.pos] == '\\' && p.pos+3 < len(p.src) && p.src[p.pos+1] == '\'' {
			p.pos += 4
		} else {
			p.pos++
		}
	}
}

func (p *parser) emitByte(c byte) {
	p.emitRune(rune(c))
}

func (p *parser) emitRune(r rune) {
	switch {
	case p.cur.skip:
	case p.cur.dest == "title":
		p.title.WriteRune(r)
	case p.cur.dest == "author":
		p.author.WriteRune(r)
	default:
		p.para.WriteRune(r)
	}
}

func (p *parser) flushParagraph() {
	if p.cur.skip || p.cur.dest != "" {
		return
	}
	text := strings.TrimSpace(p.para.String())
	p.para.Reset()
	if text != "" {
		p.doc.Append(model.Paragraph{Text: text})
	}
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func hexVal(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}
