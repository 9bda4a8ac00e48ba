package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeForPath(t *testing.T) {
	tests := []struct {
		path string
		want FileType
		ok   bool
	}{
		{"data/sales.csv", TypeCSV, true},
		{"users.JSON", TypeJSON, true},
		{"/var/log/app.log", TypeLog, true},
		{"catalog.Xml", TypeXML, true},
		{"readme.txt", TypeUnknown, false},
		{"noextension", TypeUnknown, false},
		{"archive.csv.gz", TypeUnknown, false},
	}
	for _, tt := range tests {
		ft, ok := TypeForPath(tt.path)
		assert.Equal(t, tt.want, ft, tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
	}
}

func TestFileErrorString(t *testing.T) {
	assert.Equal(t, "line 7: bad row", FileError{Line: 7, Message: "bad row"}.String())
	assert.Equal(t, "file is empty", FileError{Message: "file is empty"}.String())
}
