package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/dictcc-mcp/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDump = "# EN-DE vocabulary database\tcompiled by dict.cc\n" +
	"# Date and time\t2019-05-01 10:00\n" +
	"# License: see website\n" +
	"house {n} [housing]\tHaus {n}\tnoun\n" +
	"broken line\n" +
	"to go {went; gone}\tgehen\tverb\n"

func TestParse_ValidDump(t *testing.T) {
	p := New()
	result, err := p.Parse(strings.NewReader(sampleDump))
	require.NoError(t, err)

	require.True(t, result.HasMetadata)
	assert.Equal(t, "EN-DE", result.Metadata.LanguagePair)
	assert.Equal(t, "2019-05-01 10:00", result.Metadata.Timestamp)
	assert.Equal(t, 1, result.CommentLines)
	assert.Equal(t, 3, result.Total())
	assert.Equal(t, "broken line", result.Lines[1])
}

func TestParse_MinimalHeader(t *testing.T) {
	content := "dict.cc EN-DE dictionary\n2019-05-01 10:00\nhouse {n} [housing]\tHaus {n}\tnoun\n"

	result, err := New().Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.True(t, result.HasMetadata)
	require.Len(t, result.Lines, 1)

	entry, ok := ParseEntryLine(1, result.Lines[0])
	require.True(t, ok)
	assert.Equal(t, types.WordForm{Word: "house", Gender: "(n)", Qualifier: "[housing]"}, entry.Left)
	assert.Equal(t, types.WordForm{Word: "Haus", Gender: "(n)"}, entry.Right)
	assert.Equal(t, "noun", entry.Category)
}

func TestParse_MissingMetadata(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no dict.cc marker", "EN-DE dictionary\n2019-05-01 10:00\na\tb\tc\n"},
		{"no language pair", "dict.cc dictionary\n2019-05-01 10:00\na\tb\tc\n"},
		{"lowercase pair", "dict.cc en-de\n2019-05-01 10:00\na\tb\tc\n"},
		{"no timestamp", "dict.cc EN-DE\n2019-05-01\na\tb\tc\n"},
		{"timestamp on first line only", "dict.cc EN-DE 2019-05-01 10:00\nnothing\n"},
		{"single line", "dict.cc EN-DE"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := New().Parse(strings.NewReader(tt.content))
			require.NoError(t, err)
			assert.False(t, result.HasMetadata)
			assert.Empty(t, result.Lines)
		})
	}
}

func TestParse_CRLFAndTrailingLine(t *testing.T) {
	content := "dict.cc FR-DE\r\n2020-01-02 03:04\r\nmaison {f}\tHaus {n}\tnoun\r\n\r\nlast\tletzte\tadj"

	result, err := New().Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.True(t, result.HasMetadata)
	assert.Equal(t, "FR-DE", result.Metadata.LanguagePair)
	assert.Equal(t, []string{"maison {f}\tHaus {n}\tnoun", "", "last\tletzte\tadj"}, result.Lines)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleDump), 0o644))

	result, err := New().ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, result.Path)
	assert.True(t, result.HasMetadata)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := New().ParseFile(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestParseEntryLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		wantOK bool
		want   *types.Entry
	}{
		{
			name:   "three fields",
			line:   "cat\tKatze {f}\tnoun",
			wantOK: true,
			want: &types.Entry{
				ID:       7,
				Left:     types.WordForm{Word: "cat"},
				Right:    types.WordForm{Word: "Katze", Gender: "(f)"},
				Category: "noun",
			},
		},
		{
			name:   "extra fields ignored",
			line:   "cat\tKatze\tnoun\t[zool.]",
			wantOK: true,
			want: &types.Entry{
				ID:       7,
				Left:     types.WordForm{Word: "cat"},
				Right:    types.WordForm{Word: "Katze"},
				Category: "noun",
			},
		},
		{name: "two fields", line: "cat\tKatze", wantOK: false},
		{name: "empty", line: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := ParseEntryLine(7, tt.line)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, entry)
		})
	}
}
