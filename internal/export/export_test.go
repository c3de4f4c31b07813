package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvtree/internal/core"
)

func sampleProject(t *testing.T) *core.Project {
	t.Helper()
	p := core.NewProject("demo", '/', ',')
	_, err := p.AddProjectFromCSV(strings.NewReader(
		"path,loc,ratio,lang\n" +
			"src/main.c,100,0.5,c\n" +
			"src/util.c,50,1e3,c\n" +
			"README,3,,text\n"))
	require.NoError(t, err)
	return p
}

func TestEncode(t *testing.T) {
	p := core.NewProject("demo", '/', ',')
	_, err := p.AddProjectFromCSV(strings.NewReader("path,loc\nsrc/main.c,100\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, p))

	want := `{"projectName":"demo","apiVersion":"1.0","nodes":[` +
		`{"name":"root","type":"Folder","attributes":{},"children":[` +
		`{"name":"src","type":"Folder","attributes":{},"children":[` +
		`{"name":"main.c","type":"File","attributes":{"loc":100}}]}]}]}` + "\n"
	assert.Equal(t, want, buf.String())
}

func TestEncode_EmptyProject(t *testing.T) {
	b, err := Marshal(core.NewProject("empty", '/', ','))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"projectName":"empty","apiVersion":"1.0","nodes":[{"name":"root","type":"Folder","attributes":{}}]}`,
		string(b))
}

func TestRoundTrip(t *testing.T) {
	p := sampleProject(t)

	var buf bytes.Buffer
	require.NoError(t, EncodeIndent(&buf, p))

	got, err := Decode(&buf, '/')
	require.NoError(t, err)

	assert.Equal(t, p.Name(), got.Name())
	assert.Equal(t, p.Paths(), got.Paths())

	wantFolders, wantFiles := p.Stats()
	gotFolders, gotFiles := got.Stats()
	assert.Equal(t, wantFolders, gotFolders)
	assert.Equal(t, wantFiles, gotFiles)

	n, ok := got.Find("src", "main.c")
	require.True(t, ok)
	attrs := n.(*core.File).Attributes
	assert.Equal(t, core.Int(100), attrs["loc"])
	assert.Equal(t, core.Float(0.5), attrs["ratio"])
	assert.Equal(t, core.Text("c"), attrs["lang"])

	n, _ = got.Find("src", "util.c")
	assert.Equal(t, core.Float(1000), n.(*core.File).Attributes["ratio"])

	n, _ = got.Find("README")
	assert.Equal(t, core.Text(""), n.(*core.File).Attributes["ratio"])
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `{`},
		{"no nodes", `{"projectName":"x","nodes":[]}`},
		{"root is a file", `{"nodes":[{"name":"root","type":"File","attributes":{}}]}`},
		{"root misnamed", `{"nodes":[{"name":"top","type":"Folder","attributes":{}}]}`},
		{"unknown type", `{"nodes":[{"name":"root","type":"Folder","attributes":{},"children":[{"name":"x","type":"Link"}]}]}`},
		{"file with children", `{"nodes":[{"name":"root","type":"Folder","children":[{"name":"x","type":"File","children":[{"name":"y","type":"File"}]}]}]}`},
		{"nested attribute", `{"nodes":[{"name":"root","type":"Folder","children":[{"name":"x","type":"File","attributes":{"a":{"b":1}}}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input), '/')
			assert.Error(t, err)
		})
	}
}

func TestDocumentIsValidJSON(t *testing.T) {
	b, err := Marshal(sampleProject(t))
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(b, &generic))
	assert.Equal(t, "demo", generic["projectName"])
	assert.Equal(t, APIVersion, generic["apiVersion"])
}

func TestRoundTrip_WholeFloatsStayFloats(t *testing.T) {
	p := core.NewProject("cov", '/', ',')
	_, err := p.AddProjectFromCSV(strings.NewReader("path,cov,loc\na.c,3.0,3\n"))
	require.NoError(t, err)

	b, err := Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"cov":3.0`)
	assert.Contains(t, string(b), `"loc":3`)

	got, err := Decode(bytes.NewReader(b), '/')
	require.NoError(t, err)

	n, ok := got.Find("a.c")
	require.True(t, ok)
	attrs := n.(*core.File).Attributes
	cov, ok := attrs.Number("cov")
	require.True(t, ok)
	assert.False(t, cov.IsInt())
	assert.Equal(t, core.Float(3), cov)
	assert.Equal(t, core.Int(3), attrs["loc"])

	want, _ := p.Find("a.c")
	assert.Equal(t, want.(*core.File).Attributes, attrs)
}
