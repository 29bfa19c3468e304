package rendering

import (
	"bytes"
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// Style selects how a block is drawn.
type Style int

const (
	StyleBody Style = iota
	StyleLink
	StyleHeading
)

func (s Style) String() string {
	switch s {
	case StyleLink:
		return "link"
	case StyleHeading:
		return "heading"
	default:
		return "body"
	}
}

// Block is one paragraph of the document.
type Block struct {
	Text  string
	Style Style
}

// DefaultLinkColor is used when Hints.LinkColor is empty.
const DefaultLinkColor = "#0000FF"

// Hints adjust rendering. The zero value is valid.
type Hints struct {
	LinkColor string // "#RRGGBB"
	Title     string // document metadata only
}

// Layout, in points. Body text is 11pt on 16pt leading with 8pt between paragraphs.
const (
	pageMargin     = 72.0
	bodyFontSize   = 11.0
	bodyLeading    = 16.0
	headingSize    = 14.0
	headingLeading = 20.0
	paragraphGap   = 8.0
)

// documentDate is stamped as both creation and modification date so output
// depends on input alone.
var documentDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Blocks splits text on blank lines into paragraphs. Any block containing
// "http" is link-styled; a markdown heading is heading-styled with its
// marker removed. Empty blocks are dropped.
func Blocks(text string) []Block {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var blocks []Block
	for _, part := range strings.Split(text, "\n\n") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch {
		case strings.Contains(part, "http"):
			blocks = append(blocks, Block{Text: part, Style: StyleLink})
		default:
			if heading, ok := headingText(part); ok {
				if heading != "" {
					blocks = append(blocks, Block{Text: heading, Style: StyleHeading})
				}
				continue
			}
			blocks = append(blocks, Block{Text: part, Style: StyleBody})
		}
	}
	return blocks
}

// ParseHexColor parses "#RRGGBB" (the leading '#' is optional).
func ParseHexColor(s string) (r, g, b int, err error) {
	value := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(value) != 6 {
		return 0, 0, 0, &HintError{Hint: "link color", Value: s}
	}
	rgb, decodeErr := hex.DecodeString(value)
	if decodeErr != nil {
		return 0, 0, 0, &HintError{Hint: "link color", Value: s}
	}
	return int(rgb[0]), int(rgb[1]), int(rgb[2]), nil
}

// Render lays text out as an A4 PDF, one paragraph per block. The same text
// and hints always produce the same bytes. Characters outside the core
// font's code page are printed as '.'.
func Render(text string, hints Hints) ([]byte, error) {
	linkColor := hints.LinkColor
	if linkColor == "" {
		linkColor = DefaultLinkColor
	}
	lr, lg, lb, err := ParseHexColor(linkColor)
	if err != nil {
		return nil, &RenderError{Message: "invalid styling hints", Cause: err}
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCreationDate(documentDate)
	pdf.SetModificationDate(documentDate)
	pdf.SetCatalogSort(true)
	if hints.Title != "" {
		pdf.SetTitle(hints.Title, true)
	}
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, block := range Blocks(text) {
		content := tr(StripInlineMarkdown(block.Text))
		switch block.Style {
		case StyleHeading:
			pdf.SetFont("Helvetica", "B", headingSize)
			pdf.SetTextColor(0, 0, 0)
			pdf.MultiCell(0, headingLeading, content, "", "L", false)
		case StyleLink:
			pdf.SetFont("Helvetica", "", bodyFontSize)
			pdf.SetTextColor(lr, lg, lb)
			pdf.MultiCell(0, bodyLeading, content, "", "L", false)
		default:
			pdf.SetFont("Helvetica", "", bodyFontSize)
			pdf.SetTextColor(0, 0, 0)
			pdf.MultiCell(0, bodyLeading, content, "", "L", false)
		}
		pdf.Ln(paragraphGap)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Message: "failed to write PDF", Cause: err}
	}
	return buf.Bytes(), nil
}
