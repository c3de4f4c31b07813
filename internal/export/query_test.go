package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvtree/internal/core"
)

func TestQuery(t *testing.T) {
	p := sampleProject(t)

	t.Run("top level names", func(t *testing.T) {
		got, err := Query(p, "$.nodes[0].children[*].name")
		require.NoError(t, err)
		assert.Equal(t, []any{"src", "README"}, got)
	})

	t.Run("file attribute", func(t *testing.T) {
		got, err := Query(p, "$.nodes[0].children[0].children[0].attributes.loc")
		require.NoError(t, err)
		assert.Equal(t, []any{float64(100)}, got)
	})

	t.Run("filter by attribute", func(t *testing.T) {
		got, err := Query(p, FilesWhere("loc", ">", 60))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "main.c", got[0].(map[string]any)["name"])
	})

	t.Run("no match", func(t *testing.T) {
		got, err := Query(p, "$.nodes[0].children[9]")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestQuery_InvalidExpression(t *testing.T) {
	_, err := Query(core.NewProject("x", '/', ','), "$[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid jsonpath")
	assert.Equal(t, "QRY001", core.MapError(err).Code)
}

func TestFilesWhere(t *testing.T) {
	tests := []struct {
		attr string
		want string
	}{
		{"lang", `$..children[?(@.type == 'File' && @.attributes['lang'] == "c")]`},
		{"lines of code", `$..children[?(@.type == 'File' && @.attributes['lines of code'] == "c")]`},
		{"it's", `$..children[?(@.type == 'File' && @.attributes['it\'s'] == "c")]`},
		{`a\b`, `$..children[?(@.type == 'File' && @.attributes['a\\b'] == "c")]`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FilesWhere(tt.attr, "==", "c"), tt.attr)
	}
}

func TestFilesWhere_UnusualAttributeNames(t *testing.T) {
	p := core.NewProject("names", '/', ',')
	_, err := p.AddProjectFromCSV(strings.NewReader(
		"path,lines of code,m.c.c,owner's\n" +
			"big.c,500,12,ann\n" +
			"small.c,20,1,bob\n"))
	require.NoError(t, err)

	tests := []struct {
		attr  string
		op    string
		value any
		want  string
	}{
		{"lines of code", ">", 100, "big.c"},
		{"m.c.c", "<", 5, "small.c"},
		{"owner's", "==", "bob", "small.c"},
	}
	for _, tt := range tests {
		t.Run(tt.attr, func(t *testing.T) {
			got, err := Query(p, FilesWhere(tt.attr, tt.op, tt.value))
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].(map[string]any)["name"])
		})
	}
}
