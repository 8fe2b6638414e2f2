// =============================================================================
// GST Returns Reporter - Fail-Soft JSON Fields
// =============================================================================
//
// Return exports are not consistent about JSON types. The same field can be a
// number in one file and a quoted string in the next; a list can arrive as a
// single object; a section can be a bare list or an object wrapping the list.
// The types in this package decode all of those shapes without ever failing,
// so a single odd field never aborts extraction of a whole document.
//
// TYPES:
//   - Amount:     a numeric field kept as raw text, plus whether the key exists
//   - Text:       a string field that also accepts numbers
//   - List[T]:    an array (or single object) of T; bad elements are dropped
//   - Section[T]: a List[T] or an object wrapping one under "inv" or
//                 "invoiceDetails"
//
// =============================================================================

package jsonx

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nihasbabu/gst-modules/internal/normalize"
	"github.com/nihasbabu/gst-modules/internal/types"
)

// =============================================================================
// AMOUNT
// =============================================================================

// Amount is a numeric field. The raw JSON text is kept and parsed on demand
// so each caller can choose its own rounding mode.
type Amount struct {
	raw     string
	present bool
}

// NewAmount builds an Amount from raw text, as if decoded from JSON.
func NewAmount(raw string) Amount {
	return Amount{raw: raw, present: true}
}

// UnmarshalJSON accepts numbers, numeric strings, null and anything else
// (which reads as zero). It never returns an error.
func (a *Amount) UnmarshalJSON(b []byte) error {
	a.present = true
	a.raw = scalarText(b)
	return nil
}

// Present reports whether the key appeared in the source object, even with a
// null value.
func (a Amount) Present() bool { return a.present }

// Raw returns the text as it appeared in the source.
func (a Amount) Raw() string { return a.raw }

// Dec parses the amount under the given mode.
func (a Amount) Dec(mode normalize.Mode) decimal.Decimal {
	return normalize.ParseNumber(a.raw, mode)
}

// Value parses the amount under the given mode and wraps it as a cell.
func (a Amount) Value(mode normalize.Mode) types.Value {
	return types.Number(a.Dec(mode))
}

// Or returns a when its key was present, else fallback.
func (a Amount) Or(fallback Amount) Amount {
	if a.present {
		return a
	}
	return fallback
}

// =============================================================================
// TEXT
// =============================================================================

// Text is a string field that also accepts numbers and booleans (kept as
// their JSON text). Null and structured values read as "".
type Text string

// UnmarshalJSON never returns an error.
func (t *Text) UnmarshalJSON(b []byte) error {
	*t = Text(scalarText(b))
	return nil
}

// String returns the text.
func (t Text) String() string { return string(t) }

// Trim returns the text without surrounding whitespace.
func (t Text) Trim() string { return strings.TrimSpace(string(t)) }

// Value wraps the text as a cell.
func (t Text) Value() types.Value { return types.Text(string(t)) }

// =============================================================================
// LIST
// =============================================================================

// List is an array of T. A single JSON object is read as a one-element list.
// Elements that fail to decode as T (strings where objects were expected, and
// so on) are skipped. Anything that is neither array nor object reads as an
// empty list.
type List[T any] []T

// UnmarshalJSON never returns an error.
func (l *List[T]) UnmarshalJSON(b []byte) error {
	*l = decodeList[T](b)
	return nil
}

func decodeList[T any](b []byte) []T {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '[':
		var raws []json.RawMessage
		if err := json.Unmarshal(b, &raws); err != nil {
			return nil
		}
		out := make([]T, 0, len(raws))
		for _, raw := range raws {
			if isNull(raw) {
				continue
			}
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				continue
			}
			out = append(out, v)
		}
		return out
	case '{':
		var v T
		if err := json.Unmarshal(b, &v); err != nil {
			return nil
		}
		return []T{v}
	default:
		return nil
	}
}

// =============================================================================
// SECTION
// =============================================================================

// Section is the shape used by the flat GSTR-1 sections (B2CS, NIL, HSN, DOC,
// AT, TXPD): either a bare list of entries, or an object carrying the list
// under "inv" or "invoiceDetails" (the first non-empty one wins).
type Section[T any] []T

// UnmarshalJSON never returns an error.
func (s *Section[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*s = nil
		return nil
	}
	switch b[0] {
	case '[':
		*s = decodeList[T](b)
	case '{':
		var wrap struct {
			Inv            json.RawMessage `json:"inv"`
			InvoiceDetails json.RawMessage `json:"invoiceDetails"`
		}
		if err := json.Unmarshal(b, &wrap); err != nil {
			*s = nil
			return nil
		}
		entries := decodeArray[T](wrap.Inv)
		if len(entries) == 0 {
			entries = decodeArray[T](wrap.InvoiceDetails)
		}
		*s = entries
	default:
		*s = nil
	}
	return nil
}

// decodeArray only accepts a JSON array.
func decodeArray[T any](b []byte) []T {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '[' {
		return nil
	}
	return decodeList[T](b)
}

// =============================================================================
// LOOSE DECODING
// =============================================================================

// Decode unmarshals raw into v, keeping whatever decoded when some fields have
// the wrong JSON type. It reports false for empty, null or malformed input.
func Decode(raw []byte, v interface{}) bool {
	if len(bytes.TrimSpace(raw)) == 0 || isNull(raw) {
		return false
	}
	err := json.Unmarshal(raw, v)
	if err == nil {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &typeErr)
}

// =============================================================================
// HELPERS
// =============================================================================

func isNull(b []byte) bool {
	return bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}

// scalarText returns the text of a JSON scalar: the unquoted content of a
// string, the literal of a number or boolean, "" for null, objects and arrays.
func scalarText(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return ""
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return ""
		}
		return s
	case '{', '[', 'n':
		return ""
	default:
		return string(b)
	}
}
