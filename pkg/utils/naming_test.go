package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReturnFileName(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		excluded []string
	}{
		{"/in/GSTR1_042024_27ABCDE1234F1Z5.json", "042024", nil},
		{"GSTR1_052024_excluding_B2B_HSN.json", "052024", []string{"B2B", "HSN"}},
		{"GSTR1_062024_excluding_B2CS_B2BA.zip", "062024", []string{"B2CS", "B2BA"}},
		{"returns_excluding_DOC_.zip", "", []string{"DOC"}},
		{"random.json", "", nil},
	}
	for _, tt := range tests {
		code, excluded := ParseReturnFileName(tt.name)
		assert.Equal(t, tt.code, code, tt.name)
		assert.Equal(t, tt.excluded, excluded, tt.name)
	}
}

func TestParseLargeFileName(t *testing.T) {
	assert.Equal(t, "062024", ParseLargeFileName("/x/27ABCDE1234F1Z5_062024_B2B.zip"))
	assert.Equal(t, "072024", ParseLargeFileName("B2Bdetails072024.zip"))
	assert.Equal(t, "", ParseLargeFileName("B2B_large.json"))
	assert.Equal(t, "", ParseLargeFileName("B2B_06202.zip"))
}
