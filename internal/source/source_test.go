package source

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeZip(t *testing.T, dir, name string, entries map[string]string, order []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, entry := range order {
		w, err := zw.Create(entry)
		require.NoError(t, err)
		_, err = w.Write([]byte(entries[entry]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestDecodeKeepsKeyOrder(t *testing.T) {
	doc, err := Decode([]byte(`{"month": "x", "052024": {"a": 1}, "042024": {}}`), Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"month", "052024", "042024"}, doc.Keys)
	assert.Equal(t, "month", doc.FirstKey())

	key, ok := doc.PeriodKey()
	require.True(t, ok)
	assert.Equal(t, "052024", key)
}

func TestDecodeRejectsNonObject(t *testing.T) {
	_, err := Decode([]byte(`[1, 2]`), Options{})
	assert.Error(t, err)

	_, err = Decode([]byte(``), Options{})
	assert.Error(t, err)
}

func TestDecodeLenient(t *testing.T) {
	payload := []byte(`{"fp": "042024", "b2b": [{"ctin": "29AAA"},],}`)

	_, err := Decode(payload, Options{})
	require.Error(t, err)

	doc, err := Decode(payload, Options{Lenient: true})
	require.NoError(t, err)

	var fp string
	require.NoError(t, doc.Into("fp", &fp))
	assert.Equal(t, "042024", fp)
}

func TestIntoAndUnmarshal(t *testing.T) {
	doc, err := Decode([]byte(`{"fp": "042024", "b2b": []}`), Options{})
	require.NoError(t, err)

	var missing string
	require.NoError(t, doc.Into("absent", &missing))
	assert.Equal(t, "", missing)

	var wrongType int
	assert.Error(t, doc.Into("fp", &wrongType))

	var whole struct {
		Fp string `json:"fp"`
	}
	require.NoError(t, doc.Unmarshal(&whole))
	assert.Equal(t, "042024", whole.Fp)
}

func TestPeriodKeyOnlyReserved(t *testing.T) {
	doc, err := Decode([]byte(`{"month": "April"}`), Options{})
	require.NoError(t, err)

	_, ok := doc.PeriodKey()
	assert.False(t, ok)

	var nilDoc *Document
	_, ok = nilDoc.PeriodKey()
	assert.False(t, ok)
	assert.Equal(t, "", nilDoc.FirstKey())
}

func TestLoadJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "GSTR1_042024.json", `{"042024": {"summary": {}}}`)

	doc, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, path, doc.Path)
	assert.Equal(t, "GSTR1_042024.json", doc.Name())
	assert.Equal(t, "042024", doc.FirstKey())
}

func TestLoadArchivePicksFirstJSONEntry(t *testing.T) {
	dir := t.TempDir()
	path := writeZip(t, dir, "GSTR1_Full_052024.zip",
		map[string]string{
			"readme.txt":  "not json",
			"first.JSON":  `{"fp": "052024"}`,
			"second.json": `{"fp": "062024"}`,
		},
		[]string{"readme.txt", "first.JSON", "second.json"},
	)

	doc, err := Load(path, Options{})
	require.NoError(t, err)

	var fp string
	require.NoError(t, doc.Into("fp", &fp))
	assert.Equal(t, "052024", fp)
}

func TestLoadArchiveWithoutPayload(t *testing.T) {
	dir := t.TempDir()
	path := writeZip(t, dir, "empty.zip",
		map[string]string{"notes.txt": "nothing"},
		[]string{"notes.txt"},
	)

	_, err := Load(path, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoPayload))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), Options{})
	assert.Error(t, err)
}
