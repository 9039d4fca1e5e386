package model

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Amount is a money or percentage cell as typed by the adviser. The editors
// send either a JSON number or a string, so the raw text is kept and only
// interpreted when a figure is needed.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	s, err := scalarText(b)
	*a = Amount(s)
	return err
}

// ID is a record id. Ids are generated by the editors, and older records
// carry millisecond timestamps sent as JSON numbers.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	s, err := scalarText(b)
	*id = ID(s)
	return err
}

// Text is a short free-text field that the editors may send as a number,
// such as an age or a count of years.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	s, err := scalarText(b)
	*t = Text(s)
	return err
}

// scalarText returns a JSON string's value, or the literal text of any other
// value. null decodes to "".
func scalarText(b []byte) (string, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return "", nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return string(b), nil
}

// Value parses the cell. Currency symbols, thousands separators and
// surrounding spaces are ignored; anything else that is not a finite number
// counts as 0.
func (a Amount) Value() float64 {
	s := strings.TrimSpace(string(a))
	if s == "" {
		return 0
	}
	s = strings.NewReplacer("£", "", ",", "", " ", "", "%", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func (a Amount) IsSet() bool {
	return strings.TrimSpace(string(a)) != ""
}
