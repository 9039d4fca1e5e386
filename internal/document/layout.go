package document

import "math"

// Kind classifies placed elements. Each kind has its own page-break
// threshold.
type Kind string

const (
	KindHeading     Kind = "heading"
	KindText        Kind = "text"
	KindYesNo       Kind = "yesno"
	KindBlock       Kind = "block"
	KindTableRow    Kind = "table"
	KindImage       Kind = "image"
	KindPlaceholder Kind = "placeholder"
)

// thresholds is the space that must remain below the cursor before an
// element of that kind starts on the current page. Headings keep some room
// for the content they introduce.
var thresholds = map[Kind]float64{
	KindHeading:     72,
	KindText:        18,
	KindYesNo:       18,
	KindBlock:       40,
	KindTableRow:    16,
	KindImage:       60,
	KindPlaceholder: 48,
}

// Geometry is the page frame in points.
type Geometry struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64
	// ContinuedHeight is the space a repeated "(continued)" heading takes.
	ContinuedHeight float64
}

// A4 portrait in points.
var A4 = Geometry{PageWidth: 595.28, PageHeight: 841.89, Margin: 40, ContinuedHeight: 22}

// Position is where an element was placed: its top-left corner and the
// usable width.
type Position struct {
	Page  int
	X, Y  float64
	Width float64
}

// Placement records one placed element.
type Placement struct {
	Page   int     `json:"page"`
	Y      float64 `json:"y"`
	Height float64 `json:"height"`
	Kind   Kind    `json:"kind"`
	Text   string  `json:"text,omitempty"`
}

// Layout is the accumulator that owns the page and cursor. Elements ask
// it for a position; it decides page breaks.
type Layout struct {
	geo        Geometry
	page       int
	y          float64
	continuing string
	placements []Placement

	onPage      func(page int)
	onContinued func(text string, pos Position)
}

// NewLayout returns a layout with no page yet. onPage is called whenever a
// page starts; onContinued draws a repeated section heading.
func NewLayout(geo Geometry, onPage func(int), onContinued func(string, Position)) *Layout {
	geo.PageWidth = positive(geo.PageWidth, A4.PageWidth)
	geo.PageHeight = positive(geo.PageHeight, A4.PageHeight)
	geo.Margin = finite(geo.Margin, A4.Margin)
	if geo.Margin < 0 || 2*geo.Margin >= min(geo.PageWidth, geo.PageHeight) {
		geo.Margin = A4.Margin
	}
	geo.ContinuedHeight = finite(geo.ContinuedHeight, A4.ContinuedHeight)
	if geo.ContinuedHeight < 0 {
		geo.ContinuedHeight = A4.ContinuedHeight
	}
	if onPage == nil {
		onPage = func(int) {}
	}
	if onContinued == nil {
		onContinued = func(string, Position) {}
	}
	return &Layout{geo: geo, onPage: onPage, onContinued: onContinued}
}

func (l *Layout) Geometry() Geometry { return l.geo }

func (l *Layout) Page() int { return l.page }

func (l *Layout) Placements() []Placement { return l.placements }

// ContentHeight is the usable height of a page.
func (l *Layout) ContentHeight() float64 {
	return l.geo.PageHeight - 2*l.geo.Margin
}

// Remaining is the space left below the cursor on the current page.
func (l *Layout) Remaining() float64 {
	if l.page == 0 {
		return 0
	}
	return l.bottom() - l.y
}

func (l *Layout) bottom() float64 {
	return l.geo.PageHeight - l.geo.Margin
}

// Section sets the title repeated after page breaks. An empty title or
// repeat=false stops repeating.
func (l *Layout) Section(title string, repeat bool) {
	if !repeat {
		title = ""
	}
	l.continuing = title
}

// Break starts a new page. Pages after the first repeat the current
// section title.
func (l *Layout) Break() {
	l.page++
	l.y = l.geo.Margin
	l.onPage(l.page)
	if l.continuing != "" && l.page > 1 {
		text := l.continuing + " (continued)"
		pos := l.position()
		l.onContinued(text, pos)
		l.record(KindHeading, l.geo.ContinuedHeight, text)
		l.y += l.geo.ContinuedHeight
	}
}

// Place reserves height for an element of kind and returns its position.
// Heights that are not finite or not positive fall back to the kind's
// threshold; heights taller than a page are clamped to the page.
func (l *Layout) Place(kind Kind, height float64, text string) Position {
	threshold := thresholds[kind]
	height = positive(height, max(threshold, 1))
	limit := l.ContentHeight()
	if l.continuing != "" {
		limit -= l.geo.ContinuedHeight
	}
	if height > limit {
		height = limit
	}
	if l.page == 0 || l.y+max(height, threshold) > l.bottom() {
		l.Break()
	}
	pos := l.position()
	l.record(kind, height, text)
	l.y += height
	return pos
}

// Fit reports how many rows of rowHeight fit on the current page after
// overhead, breaking to a new page first when not even one fits or the
// kind's threshold is not met.
func (l *Layout) Fit(kind Kind, rowHeight, overhead float64) int {
	rowHeight = positive(rowHeight, 12)
	overhead = finite(overhead, 0)
	if overhead < 0 {
		overhead = 0
	}
	if l.page == 0 || l.Remaining() < max(overhead+rowHeight, thresholds[kind]) {
		l.Break()
	}
	n := int((l.Remaining() - overhead) / rowHeight)
	return max(n, 1)
}

// Skip moves the cursor down without placing anything.
func (l *Layout) Skip(dy float64) {
	dy = finite(dy, 0)
	if dy <= 0 || l.page == 0 {
		return
	}
	l.y = math.Min(l.y+dy, l.bottom())
}

func (l *Layout) position() Position {
	return Position{Page: l.page, X: l.geo.Margin, Y: l.y, Width: l.geo.PageWidth - 2*l.geo.Margin}
}

func (l *Layout) record(kind Kind, height float64, text string) {
	l.placements = append(l.placements, Placement{Page: l.page, Y: l.y, Height: height, Kind: kind, Text: text})
}

// finite returns v, or def when v is NaN or infinite.
func finite(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// positive is finite that also rejects zero and negative values.
func positive(v, def float64) float64 {
	v = finite(v, def)
	if v <= 0 {
		return def
	}
	return v
}
