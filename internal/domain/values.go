package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// CitationID is a citation label that the service may send as either a JSON
// number or a JSON string. Re-encoding keeps the form it arrived in.
type CitationID struct {
	label   string
	numeric bool
}

// IntCitation returns a numeric citation label.
func IntCitation(n int) CitationID {
	return CitationID{label: strconv.Itoa(n), numeric: true}
}

// StringCitation returns a textual citation label.
func StringCitation(s string) CitationID {
	return CitationID{label: s}
}

func (c CitationID) String() string { return c.label }

// IsNumeric reports whether the label arrived as a JSON number.
func (c CitationID) IsNumeric() bool { return c.numeric }

func (c *CitationID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = CitationID{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = CitationID{label: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = CitationID{label: n.String(), numeric: true}
	return nil
}

func (c CitationID) MarshalJSON() ([]byte, error) {
	if c.numeric {
		return []byte(c.label), nil
	}
	return json.Marshal(c.label)
}

// DisplayValue is an opaque value shown to the user as-is. Strings keep their
// text, any other JSON value keeps its compact JSON encoding.
type DisplayValue string

func (d *DisplayValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = DisplayValue(s)
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return err
	}
	*d = DisplayValue(buf.String())
	return nil
}

func (d DisplayValue) String() string { return string(d) }
