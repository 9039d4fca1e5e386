package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"planning-bee/internal/model"
	"planning-bee/internal/summary"
)

const (
	fontFamily = "Helvetica"
	labelWidth = 170
	lineHeight = 13
	blockLine  = 12
	moneyCol   = 90
	rowHeight  = 16
)

type renderer struct {
	pdf      *fpdf.Fpdf
	tr       func(string) string
	layout   *Layout
	pictures map[string]picture
	logger   *zap.Logger
	seq      int
}

func newRenderer(opts Options, pictures map[string]picture, logger *zap.Logger) *renderer {
	geo := opts.Geometry
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: geo.PageWidth, Ht: geo.PageHeight},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(opts.Compress)
	pdf.SetCreator("Planning Bee", false)
	pdf.SetTitle(opts.Title, false)

	r := &renderer{
		pdf:      pdf,
		tr:       pdf.UnicodeTranslatorFromDescriptor(""),
		pictures: pictures,
		logger:   logger,
	}
	r.layout = NewLayout(geo, r.newPage, r.continued)
	geo = r.layout.Geometry()
	pdf.SetMargins(geo.Margin, geo.Margin, geo.Margin)
	pdf.SetFooterFunc(func() {
		pdf.SetFont(fontFamily, "", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.Text(geo.Margin, geo.PageHeight-geo.Margin/2, fmt.Sprintf("Page %d", pdf.PageNo()))
		pdf.SetTextColor(0, 0, 0)
	})
	return r
}

func (r *renderer) newPage(int) {
	r.pdf.AddPage()
}

func (r *renderer) continued(text string, pos Position) {
	r.drawSectionTitle(text, pos, r.layout.Geometry().ContinuedHeight)
}

func (r *renderer) render(els []Element) {
	r.layout.Break()
	for _, el := range els {
		switch e := el.(type) {
		case Heading:
			r.heading(e)
		case TextLine:
			r.textLine(e)
		case YesNo:
			r.yesNo(e)
		case WrappedBlock:
			r.block(e)
		case MoneyTable:
			r.moneyTable(e)
		case Image:
			r.image(e)
		}
	}
}

func (r *renderer) heading(h Heading) {
	if h.Level <= 1 {
		r.layout.Section("", false)
		pos := r.layout.Place(KindHeading, 26, h.Text)
		r.drawSectionTitle(h.Text, pos, 26)
		r.layout.Section(h.Text, h.Repeat)
		return
	}
	pos := r.layout.Place(KindHeading, 20, h.Text)
	r.pdf.SetFont(fontFamily, "B", 10.5)
	r.pdf.Text(pos.X, pos.Y+14, r.tr(h.Text))
	r.pdf.SetLineWidth(0.5)
	r.pdf.Line(pos.X, pos.Y+17, pos.X+pos.Width, pos.Y+17)
}

func (r *renderer) drawSectionTitle(text string, pos Position, height float64) {
	r.pdf.SetFillColor(232, 236, 242)
	r.pdf.Rect(pos.X, pos.Y+2, pos.Width, height-6, "F")
	r.pdf.SetFont(fontFamily, "B", 12)
	r.pdf.Text(pos.X+6, pos.Y+height-9, r.tr(text))
}

// textLine draws a labelled value. A value too long for one page carries
// on under a continued label.
func (r *renderer) textLine(t TextLine) {
	const overhead = 5
	geo := r.layout.Geometry()
	width := geo.PageWidth - 2*geo.Margin - labelWidth
	r.pdf.SetFont(fontFamily, "", 10)
	lines := r.wrap(t.Value, width)

	label, text := t.Label, t.Label+": "+t.Value
	for len(lines) > 0 {
		n := len(lines)
		if float64(n)*lineHeight+overhead > r.layout.ContentHeight()-geo.ContinuedHeight {
			n = min(r.layout.Fit(KindText, lineHeight, overhead), n)
		}
		chunk := lines[:n]
		lines = lines[n:]

		h := float64(len(chunk))*lineHeight + overhead
		pos := r.layout.Place(KindText, h, text)

		r.label(label, pos.X, pos.Y+11)
		r.pdf.SetFont(fontFamily, "", 10)
		for i, line := range chunk {
			r.pdf.Text(pos.X+labelWidth, pos.Y+11+float64(i)*lineHeight, line)
		}
		r.pdf.SetLineWidth(0.3)
		r.pdf.SetDrawColor(160, 160, 160)
		r.pdf.Line(pos.X+labelWidth, pos.Y+h-2, pos.X+pos.Width, pos.Y+h-2)
		r.pdf.SetDrawColor(0, 0, 0)

		label = t.Label + " (continued)"
		text = label
	}
}

func (r *renderer) label(text string, x, y float64) {
	r.pdf.SetFont(fontFamily, "", 9)
	r.pdf.SetTextColor(80, 80, 80)
	r.pdf.Text(x, y, r.tr(text))
	r.pdf.SetTextColor(0, 0, 0)
}

func (r *renderer) yesNo(y YesNo) {
	answer := "No"
	if y.Value {
		answer = "Yes"
	}
	pos := r.layout.Place(KindYesNo, 18, y.Label+": "+answer)
	r.label(y.Label, pos.X, pos.Y+12)
	r.checkbox(pos.X+labelWidth, pos.Y+4, "Yes", y.Value)
	r.checkbox(pos.X+labelWidth+60, pos.Y+4, "No", !y.Value)
}

func (r *renderer) checkbox(x, y float64, text string, ticked bool) {
	r.pdf.SetLineWidth(0.6)
	r.pdf.Rect(x, y, 9, 9, "D")
	if ticked {
		r.pdf.Line(x+1.5, y+1.5, x+7.5, y+7.5)
		r.pdf.Line(x+1.5, y+7.5, x+7.5, y+1.5)
	}
	r.pdf.SetFont(fontFamily, "", 9)
	r.pdf.Text(x+13, y+8, text)
}

// block draws the text in a bordered box, splitting it across pages when
// it does not fit.
func (r *renderer) block(b WrappedBlock) {
	const overhead = lineHeight + 8
	width := r.layout.Geometry().PageWidth - 2*r.layout.Geometry().Margin - 12
	r.pdf.SetFont(fontFamily, "", 9.5)
	lines := r.wrap(b.Text, width)

	label := b.Label
	for len(lines) > 0 {
		n := min(r.layout.Fit(KindBlock, blockLine, overhead), len(lines))
		chunk := lines[:n]
		lines = lines[n:]

		h := overhead + float64(len(chunk))*blockLine
		text := label
		if label == b.Label {
			text = b.Label + ": " + b.Text
		}
		pos := r.layout.Place(KindBlock, h, text)

		r.label(label, pos.X, pos.Y+10)
		r.pdf.SetLineWidth(0.5)
		r.pdf.Rect(pos.X, pos.Y+lineHeight, pos.Width, h-lineHeight-2, "D")
		r.pdf.SetFont(fontFamily, "", 9.5)
		for i, line := range chunk {
			r.pdf.Text(pos.X+6, pos.Y+lineHeight+2+float64(i+1)*blockLine-2, line)
		}
		label = b.Label + " (continued)"
	}
}

func (r *renderer) moneyTable(t MoneyTable) {
	fin := summary.ComputeFinancial(model.FinancialInfo{Assets: t.Assets, Liabilities: t.Liabilities})

	r.tableRow("Description", []string{"Joint", "Client 1", "Client 2"}, true)
	r.tableRow("Assets", nil, true)
	for _, row := range t.Assets {
		r.tableRow(row.Description, []string{money(row.Joint), money(row.C1), money(row.C2)}, false)
	}
	r.tableRow("Total assets", columns(fin.Assets), true)
	r.tableRow("Liabilities", nil, true)
	for _, row := range t.Liabilities {
		r.tableRow(row.Description, []string{money(row.Joint), money(row.C1), money(row.C2)}, false)
	}
	r.tableRow("Total liabilities", columns(fin.Liabilities), true)
	r.tableRow("Net", columns(fin.Net), true)
	r.tableRow("Net estate", []string{"", "", pounds(fin.NetEstate)}, true)
}

func columns(c summary.Columns) []string {
	return []string{pounds(c.Joint), pounds(c.Client1), pounds(c.Client2)}
}

func (r *renderer) tableRow(desc string, cells []string, bold bool) {
	text := desc
	if len(cells) > 0 {
		text += ": " + strings.Join(cells, " | ")
	}
	pos := r.layout.Place(KindTableRow, rowHeight, text)

	style := ""
	if bold {
		style = "B"
	}
	r.pdf.SetFont(fontFamily, style, 9.5)
	descWidth := pos.Width - 3*moneyCol
	r.pdf.Text(pos.X, pos.Y+11, r.truncate(desc, descWidth-6))
	for i, cell := range cells {
		s := r.tr(cell)
		right := pos.X + descWidth + float64(i+1)*moneyCol
		r.pdf.Text(right-r.pdf.GetStringWidth(s)-4, pos.Y+11, s)
	}
	r.pdf.SetLineWidth(0.2)
	r.pdf.SetDrawColor(200, 200, 200)
	r.pdf.Line(pos.X, pos.Y+rowHeight-1, pos.X+pos.Width, pos.Y+rowHeight-1)
	r.pdf.SetDrawColor(0, 0, 0)
}

func (r *renderer) image(img Image) {
	p, ok := r.pictures[strings.TrimSpace(img.Source)]
	if !ok {
		p = picture{err: errNoImageData}
	}
	if p.err != nil {
		r.placeholder(img, p.err)
		return
	}

	r.seq++
	name := fmt.Sprintf("image-%d", r.seq)
	opts := fpdf.ImageOptions{ImageType: p.format}
	r.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(p.data))
	if r.pdf.Err() {
		err := r.pdf.Error()
		r.pdf.ClearError()
		r.placeholder(img, err)
		return
	}

	geo := r.layout.Geometry()
	maxWidth := geo.PageWidth - 2*geo.Margin
	h := positive(img.Height, 120)
	h = min(h, r.layout.ContentHeight()-lineHeight-geo.ContinuedHeight-6)
	w := h * float64(p.width) / float64(p.height)
	if w > maxWidth {
		w = maxWidth
		h = w * float64(p.height) / float64(p.width)
	}

	pos := r.layout.Place(KindImage, lineHeight+h+6, img.Label)
	r.label(img.Label, pos.X, pos.Y+10)
	r.pdf.ImageOptions(name, pos.X, pos.Y+lineHeight, w, h, false, opts, 0, "")
	if r.pdf.Err() {
		r.logger.Warn("image could not be drawn", zap.String("name", img.Name), zap.Error(r.pdf.Error()))
		r.pdf.ClearError()
	}
}

// placeholder replaces an image that could not be used with a visible
// error block.
func (r *renderer) placeholder(img Image, err error) {
	mime := img.MimeType
	if mime == "" {
		mime = "unknown type"
	}
	text := fmt.Sprintf("Image unavailable: %s (%s): %v", img.Name, mime, err)
	r.logger.Warn("image replaced by placeholder", zap.String("name", img.Name), zap.Error(err))

	pos := r.layout.Place(KindPlaceholder, 52, text)
	r.pdf.SetDrawColor(200, 40, 40)
	r.pdf.SetLineWidth(1)
	r.pdf.Rect(pos.X, pos.Y+2, pos.Width, 46, "D")
	r.pdf.SetDrawColor(0, 0, 0)

	r.pdf.SetFont(fontFamily, "B", 9.5)
	r.pdf.SetTextColor(200, 40, 40)
	r.pdf.Text(pos.X+6, pos.Y+15, r.truncate("Image unavailable: "+img.Label, pos.Width-12))
	r.pdf.SetTextColor(0, 0, 0)
	r.pdf.SetFont(fontFamily, "", 9)
	r.pdf.Text(pos.X+6, pos.Y+28, r.truncate(fmt.Sprintf("Document: %s (%s)", img.Name, mime), pos.Width-12))
	r.pdf.Text(pos.X+6, pos.Y+41, r.truncate("Error: "+err.Error(), pos.Width-12))
}

// wrap translates text to the PDF code page and splits it into lines no
// wider than width in the current font. It always returns at least one
// line.
func (r *renderer) wrap(text string, width float64) []string {
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(r.tr(text), "\r\n", "\n"), "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			for r.pdf.GetStringWidth(word) > width && len(word) > 1 {
				cut := r.fitBytes(word, width)
				if line != "" {
					lines = append(lines, line)
					line = ""
				}
				lines = append(lines, word[:cut])
				word = word[cut:]
			}
			switch {
			case line == "":
				line = word
			case r.pdf.GetStringWidth(line+" "+word) <= width:
				line += " " + word
			default:
				lines = append(lines, line)
				line = word
			}
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

// fitBytes is the longest prefix of s, at least one byte, that fits width.
// Translated text is single-byte so any cut is safe.
func (r *renderer) fitBytes(s string, width float64) int {
	n := 1
	for n < len(s) && r.pdf.GetStringWidth(s[:n+1]) <= width {
		n++
	}
	return n
}

// truncate translates s and shortens it to width, adding an ellipsis.
func (r *renderer) truncate(s string, width float64) string {
	s = r.tr(s)
	if width <= 0 || r.pdf.GetStringWidth(s) <= width {
		return s
	}
	ellipsis := r.tr("…")
	for len(s) > 0 && r.pdf.GetStringWidth(s+ellipsis) > width {
		s = s[:len(s)-1]
	}
	return s + ellipsis
}
