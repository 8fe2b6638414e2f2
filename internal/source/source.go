// =============================================================================
// GST Returns Reporter - Return Document Loader
// =============================================================================
//
// This module is responsible for reading return exports downloaded from the
// GST portal. It handles the shapes those downloads arrive in:
//   - Plain JSON files
//   - ZIP archives carrying a single JSON payload (large GSTR-1 downloads)
//   - Hand-edited JSON with trailing commas, comments or single quotes
//     (only when lenient decoding is enabled)
//
// The loaded Document keeps every top-level field as raw JSON together with
// the order the keys appeared in. Small GSTR-1 exports are keyed by the
// return period itself, so "the first key" is meaningful and must survive
// decoding.
//
// =============================================================================

package source

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// ErrNoPayload is returned when an archive holds no JSON entry.
var ErrNoPayload = errors.New("archive contains no JSON payload")

// reservedKey is the sibling annotation key that is never a period key.
const reservedKey = "month"

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is one parsed return export.
type Document struct {
	// Path is the file the document was read from.
	Path string

	// Keys holds the top-level keys in source order.
	Keys []string

	// Fields maps each top-level key to its raw JSON.
	Fields map[string]json.RawMessage

	// raw is the full payload as valid JSON.
	raw []byte
}

// Options controls how payloads are decoded.
type Options struct {
	// Lenient enables the repair and Hjson fallbacks when strict decoding
	// fails.
	Lenient bool
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads a return export from disk.
//
// PARAMETERS:
//   - path: A .json file, or a .zip archive holding one.
//   - opts: Decoding options.
//
// RETURNS:
//   - The parsed Document.
//   - An error if the file cannot be read or is not a JSON object.
//
// LOADING PROCESS:
//   1. For archives, pick the first entry whose name ends in .json
//   2. Decode strictly with encoding/json
//   3. When lenient, retry through json-repair and then Hjson
func Load(path string, opts Options) (*Document, error) {
	var data []byte
	var err error

	if strings.EqualFold(filepath.Ext(path), ".zip") {
		data, err = readArchive(path)
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			err = fmt.Errorf("failed to read file: %w", err)
		}
	}
	if err != nil {
		return nil, err
	}

	doc, err := Decode(data, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	doc.Path = path
	return doc, nil
}

// readArchive returns the first JSON entry of a ZIP archive.
func readArchive(path string) ([]byte, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".json") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open archive entry %s: %w", f.Name, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to read archive entry %s: %w", f.Name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrNoPayload)
}

// Decode parses a JSON object payload.
//
// Hjson decoding goes through a generic map, so a document recovered that way
// has its keys in sorted order rather than source order.
func Decode(data []byte, opts Options) (*Document, error) {
	doc, strictErr := decodeObject(data)
	if strictErr == nil || !opts.Lenient {
		return doc, strictErr
	}

	if repaired, err := jsonrepair.RepairJSON(string(data)); err == nil {
		if doc, err := decodeObject([]byte(repaired)); err == nil {
			return doc, nil
		}
	}

	var generic interface{}
	if err := hjson.Unmarshal(data, &generic); err == nil {
		if normalized, err := json.Marshal(generic); err == nil {
			if doc, err := decodeObject(normalized); err == nil {
				return doc, nil
			}
		}
	}

	return nil, strictErr
}

// decodeObject walks the top level of a JSON object with a token decoder so
// the key order is kept.
func decodeObject(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("payload is not a JSON object")
	}

	doc := &Document{Fields: make(map[string]json.RawMessage)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to read value of %q: %w", key, err)
		}
		if _, dup := doc.Fields[key]; !dup {
			doc.Keys = append(doc.Keys, key)
		}
		doc.Fields[key] = raw
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to read JSON: %w", err)
	}

	doc.raw = data
	return doc, nil
}

// =============================================================================
// ACCESS
// =============================================================================

// FirstKey returns the first top-level key, or "".
func (d *Document) FirstKey() string {
	if d == nil || len(d.Keys) == 0 {
		return ""
	}
	return d.Keys[0]
}

// PeriodKey returns the first top-level key that is not the reserved
// annotation key.
func (d *Document) PeriodKey() (string, bool) {
	if d == nil {
		return "", false
	}
	for _, k := range d.Keys {
		if k != reservedKey {
			return k, true
		}
	}
	return "", false
}

// Into decodes one top-level field into v. A missing key leaves v untouched
// and is not an error.
func (d *Document) Into(key string, v interface{}) error {
	if d == nil {
		return nil
	}
	raw, ok := d.Fields[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return nil
}

// Unmarshal decodes the whole document into v.
func (d *Document) Unmarshal(v interface{}) error {
	if d == nil || len(d.raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(d.raw, v); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}

// Name returns the base name of the source file.
func (d *Document) Name() string {
	if d == nil {
		return ""
	}
	return filepath.Base(d.Path)
}
