package document

import "planning-bee/internal/model"

// Element is one renderable piece of the document. The set of variants is
// closed; the renderer dispatches on the concrete type.
type Element interface {
	element()
}

// Heading titles a section or a list entry. When Repeat is set, a page
// break inside the section repeats the title with "(continued)".
type Heading struct {
	Text   string
	Level  int
	Repeat bool
}

// TextLine is a label, its value and an underline.
type TextLine struct {
	Label string
	Value string
}

// YesNo is a label with a ticked Yes or No box.
type YesNo struct {
	Label string
	Value bool
}

// WrappedBlock is free text wrapped inside a bordered box.
type WrappedBlock struct {
	Label string
	Text  string
}

// MoneyTable shows assets and liabilities in joint, client 1 and client 2
// columns with totals and the net figure per column.
type MoneyTable struct {
	Assets      []model.MoneyRow
	Liabilities []model.MoneyRow
}

// Image embeds a raster image given as a data URL, bare base64 or an
// http(s) URL. Images that cannot be used are replaced by a placeholder.
type Image struct {
	Label    string
	Name     string
	MimeType string
	Source   string
	Height   float64
}

func (Heading) element()      {}
func (TextLine) element()     {}
func (YesNo) element()        {}
func (WrappedBlock) element() {}
func (MoneyTable) element()   {}
func (Image) element()        {}
