package spreadsheet_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/uniadmin/internal/pkg/spreadsheet"
)

var departments = spreadsheet.Table{
	Headers: []string{"ID", "Name", "Faculty"},
	Rows: [][]string{
		{"101", "Computer Science", "Information & Computing"},
		{"102", "Physics", "Sciences"},
	},
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []spreadsheet.Format{spreadsheet.FormatCSV, spreadsheet.FormatXLSX} {
		t.Run(string(f), func(t *testing.T) {
			data, err := spreadsheet.Encode(f, "Departments", departments)
			require.NoError(t, err)

			got, err := spreadsheet.Read(bytes.NewReader(data), f)
			require.NoError(t, err)

			assert.Equal(t, []string{"id", "name", "faculty"}, got.Headers)
			recs := got.Records()
			require.Len(t, recs, 2)
			assert.Equal(t, "Physics", recs[1]["name"])
			assert.Equal(t, "Information & Computing", recs[0]["faculty"])
		})
	}
}

func TestReadCSVShortAndBlankRows(t *testing.T) {
	in := "\nid,name,faculty\n,Mathematics\n,,\n7,Chemistry,SC\n"

	got, err := spreadsheet.Read(strings.NewReader(in), spreadsheet.FormatCSV)
	require.NoError(t, err)

	recs := got.Records()
	require.Len(t, recs, 3)
	assert.Equal(t, "", recs[0]["faculty"])
	assert.Nil(t, recs[1])
	assert.Equal(t, "7", recs[2]["id"])
}

func TestReadEmpty(t *testing.T) {
	_, err := spreadsheet.Read(strings.NewReader(""), spreadsheet.FormatCSV)
	assert.Error(t, err)
}

func TestFormats(t *testing.T) {
	f, err := spreadsheet.ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, spreadsheet.FormatXLSX, f)

	f, err = spreadsheet.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, spreadsheet.FormatCSV, f)

	_, err = spreadsheet.ParseFormat("ods")
	assert.ErrorIs(t, err, spreadsheet.ErrUnsupportedFormat)

	f, err = spreadsheet.FormatFromFilename("courses.csv")
	require.NoError(t, err)
	assert.Equal(t, spreadsheet.FormatCSV, f)
	assert.Equal(t, "text/csv", f.ContentType())
}
