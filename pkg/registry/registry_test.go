package registry_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japanir/equitysync/pkg/errors"
	"github.com/japanir/equitysync/pkg/registry"
)

const sampleCSV = `code,company_name,market
7203,トヨタ自動車,Prime
6758,ソニーグループ,Prime
9984,ソフトバンクグループ,Prime
285A,キオクシアHD,Prime
`

func TestParse(t *testing.T) {
	reg, err := registry.Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 4, reg.Len())
	assert.Equal(t, []string{"7203", "6758", "9984", "285A"}, reg.Codes())

	entry, ok := reg.Lookup("7203")
	require.True(t, ok)
	assert.Equal(t, "トヨタ自動車", entry.Company)
	assert.Equal(t, "Prime", entry.Extra["market"])
}

func TestParseMissingColumns(t *testing.T) {
	_, err := registry.Parse(strings.NewReader("code,market\n7203,Prime\n"))
	require.Error(t, err)
	assert.True(t, errors.IsSchemaMissing(err))

	var schemaErr *errors.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, schemaErr.Columns, "company_name")
}

func TestParseSkipsInvalidRows(t *testing.T) {
	csv := `code,company_name
7203,トヨタ自動車
72030,too long
72,too short
72#3,bad char
,blank
7203,duplicate
6758,ソニーグループ
`
	reg, err := registry.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, []string{"7203", "6758"}, reg.Codes())
}

func TestParseNarrowsFullWidthCodes(t *testing.T) {
	reg, err := registry.Parse(strings.NewReader("code,company_name\n７２０３,トヨタ自動車\n"))
	require.NoError(t, err)

	require.Equal(t, 1, reg.Len())
	assert.True(t, reg.Has("7203"))
	assert.True(t, reg.Has("７２０３"))
}

func TestValidCode(t *testing.T) {
	tests := []struct {
		code  string
		valid bool
	}{
		{"7203", true},
		{"285A", true},
		{"130a", true},
		{"720", false},
		{"72030", false},
		{"72-3", false},
		{"", false},
		{"７２０３", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.valid, registry.ValidCode(tt.code))
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "companies.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	reg, err := registry.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, reg.Len())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := registry.Load(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
}

func TestSelect(t *testing.T) {
	reg, err := registry.Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	t.Run("all", func(t *testing.T) {
		sub, err := reg.Select("", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 4, sub.Len())
	})

	t.Run("limit", func(t *testing.T) {
		sub, err := reg.Select("", 0, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"7203", "6758"}, sub.Codes())
	})

	t.Run("skip", func(t *testing.T) {
		sub, err := reg.Select("", 3, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"285A"}, sub.Codes())
	})

	t.Run("skip and limit", func(t *testing.T) {
		sub, err := reg.Select("", 1, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"6758", "9984"}, sub.Codes())
	})

	t.Run("skip past end", func(t *testing.T) {
		sub, err := reg.Select("", 10, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, sub.Len())
	})

	t.Run("single ticker", func(t *testing.T) {
		sub, err := reg.Select("9984", 0, 0)
		require.NoError(t, err)
		require.Equal(t, 1, sub.Len())
		assert.Equal(t, "ソフトバンクグループ", sub.Entries()[0].Company)
	})

	t.Run("ticker not in registry", func(t *testing.T) {
		sub, err := reg.Select("1301", 0, 0)
		require.NoError(t, err)
		require.Equal(t, 1, sub.Len())
		assert.Equal(t, "1301", sub.Entries()[0].Code)
	})

	t.Run("malformed ticker", func(t *testing.T) {
		_, err := reg.Select("not-a-code", 0, 0)
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})
}
