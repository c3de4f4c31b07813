package core

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

// ============================================================================
// End-to-end ingestion
// ============================================================================

func TestIngest_EndToEnd(t *testing.T) {
	p := NewProject("demo", '/', ',')
	res, err := p.AddProjectFromCSV(strings.NewReader("path,loc\nsrc/main.c,100\nsrc/util.c,50\n"))
	if err != nil {
		t.Fatalf("AddProjectFromCSV() error = %v", err)
	}
	if res.Rows != 2 || res.Inserted != 2 || res.Skipped != 0 {
		t.Errorf("result = %+v", res)
	}

	if got := childNames(p.Root()); len(got) != 1 || got[0] != "src" {
		t.Fatalf("root children = %v, want [src]", got)
	}
	for name, loc := range map[string]int64{"main.c": 100, "util.c": 50} {
		n, ok := p.Find("src", name)
		if !ok {
			t.Fatalf("src/%s missing", name)
		}
		got, ok := n.(*File).Attributes.Number("loc")
		if !ok || got != Int(loc) {
			t.Errorf("src/%s loc = %v, want %d", name, got, loc)
		}
	}
}

func TestIngest_NestedPath(t *testing.T) {
	p := NewProject("demo", '/', ',')
	if _, err := p.AddProjectFromCSV(strings.NewReader("path\na/b/c.txt\n")); err != nil {
		t.Fatal(err)
	}
	for _, tc := range []struct {
		path []string
		want NodeType
	}{
		{[]string{"a"}, NodeFolder},
		{[]string{"a", "b"}, NodeFolder},
		{[]string{"a", "b", "c.txt"}, NodeFile},
	} {
		n, ok := p.Find(tc.path...)
		if !ok || n.Type() != tc.want {
			t.Errorf("Find(%v) = %v, %v; want %s", tc.path, n, ok, tc.want)
		}
	}
}

func TestIngest_SkipsBadRows(t *testing.T) {
	input := "path,loc\n" +
		",5\n" + // empty path
		"src/a.c,1\n" +
		"only-one-field\n" +
		"///,2\n" +
		"src/b.c,2\n"

	var diags []Diagnostic
	p := NewProject("demo", '/', ',')
	res, err := p.Ingest(strings.NewReader(input), IngestOptions{
		Diagnostics: func(d Diagnostic) { diags = append(diags, d) },
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if res.Rows != 5 || res.Inserted != 2 || res.Skipped != 3 {
		t.Errorf("result = %+v", res)
	}
	wantLines := []int{2, 4, 5}
	if len(res.FailedRows) != len(wantLines) {
		t.Fatalf("FailedRows = %+v", res.FailedRows)
	}
	for i, line := range wantLines {
		if res.FailedRows[i].Line != line {
			t.Errorf("FailedRows[%d].Line = %d, want %d", i, res.FailedRows[i].Line, line)
		}
	}
	if !strings.HasPrefix(res.FailedRows[0].Reason, ReasonEmptyPath) {
		t.Errorf("FailedRows[0].Reason = %q", res.FailedRows[0].Reason)
	}
	if !strings.HasPrefix(res.FailedRows[1].Reason, ReasonFieldCount) {
		t.Errorf("FailedRows[1].Reason = %q", res.FailedRows[1].Reason)
	}

	if len(diags) != 3 {
		t.Fatalf("diagnostics = %+v", diags)
	}
	if want := "Ignoring line 2: empty path: row without path: ,5"; diags[0].Message != want {
		t.Errorf("diagnostic = %q, want %q", diags[0].Message, want)
	}
	if !errors.Is(diags[0].Err, ErrRowShape) {
		t.Errorf("diagnostic error = %v, want ErrRowShape", diags[0].Err)
	}

	if got := p.Paths(); len(got) != 2 || got[0] != "src/a.c" || got[1] != "src/b.c" {
		t.Errorf("Paths() = %v", got)
	}
}

func TestIngest_LineNumbersSpanQuotedNewlines(t *testing.T) {
	input := "path,desc\n" +
		"a.c,\"multi\nline\"\n" +
		",x\n"
	p := NewProject("demo", '/', ',')
	res, err := p.AddProjectFromCSV(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.FailedRows) != 1 || res.FailedRows[0].Line != 4 {
		t.Errorf("FailedRows = %+v, want one at line 4", res.FailedRows)
	}
	n, _ := p.Find("a.c")
	if got := n.(*File).Attributes["desc"]; got != Text("multi\nline") {
		t.Errorf("desc = %q", got)
	}
}

// ============================================================================
// Fatal header errors
// ============================================================================

func TestIngest_HeaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"missing path column", "name,loc\na,1\n", ErrInvalidHeader},
		{"empty input", "", ErrEmptyInput},
		{"only BOM", "\xEF\xBB\xBF", ErrEmptyInput},
		{"blank lines only", "\n\n", ErrEmptyInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProject("demo", '/', ',')
			res, err := p.AddProjectFromCSV(strings.NewReader(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if res.Rows != 0 {
				t.Errorf("Rows = %d, want 0", res.Rows)
			}
			if len(p.Root().Children) != 0 {
				t.Errorf("tree is not a bare root: %v", p.Paths())
			}
		})
	}
}

func TestIngest_HeaderOnly(t *testing.T) {
	p := NewProject("demo", '/', ',')
	res, err := p.AddProjectFromCSV(strings.NewReader("path,loc\n"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Rows != 0 || len(p.Root().Children) != 0 {
		t.Errorf("result = %+v", res)
	}
}

// ============================================================================
// Input variants
// ============================================================================

func TestIngest_Delimiters(t *testing.T) {
	tests := []struct {
		name  string
		sep   rune
		delim rune
		input string
		find  []string
	}{
		{"semicolon", '/', ';', "path;loc\na/b.c;3\n", []string{"a", "b.c"}},
		{"tab", '/', '\t', "path\tloc\na/b.c\t3\n", []string{"a", "b.c"}},
		{"backslash paths", '\\', ',', "path,loc\na\\b.c,3\n", []string{"a", "b.c"}},
		{"zero runes use defaults", 0, 0, "path,loc\na/b.c,3\n", []string{"a", "b.c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProject("demo", tt.sep, tt.delim)
			res, err := p.AddProjectFromCSV(strings.NewReader(tt.input))
			if err != nil {
				t.Fatal(err)
			}
			if res.Inserted != 1 {
				t.Fatalf("Inserted = %d, failed %+v", res.Inserted, res.FailedRows)
			}
			n, ok := p.Find(tt.find...)
			if !ok {
				t.Fatalf("Find(%v) failed; paths = %v", tt.find, p.Paths())
			}
			if v, _ := n.(*File).Attributes.Number("loc"); v != Int(3) {
				t.Errorf("loc = %v", v)
			}
		})
	}
}

func TestIngest_BOMAndInvalidUTF8(t *testing.T) {
	p := NewProject("demo", '/', ',')
	res, err := p.AddProjectFromCSV(strings.NewReader("\xEF\xBB\xBFpath,loc\ncaf\xe9.c,1\n"))
	if err != nil {
		t.Fatalf("BOM-prefixed header not recognized: %v", err)
	}
	if res.Inserted != 1 {
		t.Fatalf("result = %+v", res)
	}
	if _, ok := p.Find("caf�.c"); !ok {
		t.Errorf("Paths() = %q", p.Paths())
	}
}

func TestIngest_Substitutions(t *testing.T) {
	p := NewProject("demo", '/', ',')
	subs := Rename(map[string]string{"File": "path", "Lines": "loc"})
	if _, err := p.AddProjectFromCSVWith(strings.NewReader("File,Lines\nx.go,9\n"), subs); err != nil {
		t.Fatal(err)
	}
	n, ok := p.Find("x.go")
	if !ok {
		t.Fatal("x.go missing")
	}
	if _, ok := n.(*File).Attributes.Number("loc"); !ok {
		t.Errorf("attributes = %v, want renamed loc", n.(*File).Attributes.Keys())
	}
}

func TestIngest_HeaderWarnings(t *testing.T) {
	var diags []Diagnostic
	p := NewProject("demo", '/', ',')
	res, err := p.Ingest(strings.NewReader("path,loc,loc\na.c,1,2\n"), IngestOptions{
		Diagnostics: func(d Diagnostic) { diags = append(diags, d) },
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) != 1 || len(diags) != 1 {
		t.Fatalf("warnings = %v, diagnostics = %v", res.Warnings, diags)
	}
	if !strings.HasPrefix(diags[0].Message, "Ignoring column 3") || diags[0].Err != nil {
		t.Errorf("diagnostic = %+v", diags[0])
	}
	n, _ := p.Find("a.c")
	if got := n.(*File).Attributes["loc"]; got != Int(1) {
		t.Errorf("loc = %v, want first column's value", got)
	}
}

func TestIngest_PathColumnOverride(t *testing.T) {
	p := NewProject("demo", '/', ',', WithPathColumn("file"))
	if _, err := p.AddProjectFromCSV(strings.NewReader("file,loc\na.c,1\n")); err != nil {
		t.Fatalf("project path column: %v", err)
	}

	q := NewProject("demo", '/', ',')
	if _, err := q.Ingest(strings.NewReader("name,loc\na.c,1\n"), IngestOptions{PathColumn: "name"}); err != nil {
		t.Fatalf("option path column: %v", err)
	}
}

func TestIngest_DuplicatePolicyRowsReported(t *testing.T) {
	p := NewProject("demo", '/', ',', WithDuplicatePolicy(DuplicateReject))
	res, err := p.AddProjectFromCSV(strings.NewReader("path\na.c\na.c\n"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Skipped != 1 || res.FailedRows[0].Line != 3 {
		t.Errorf("result = %+v", res)
	}
}

// ============================================================================
// Stream and context errors
// ============================================================================

func TestIngest_ReadErrorIsFatal(t *testing.T) {
	errBoom := errors.New("boom")
	r := io.MultiReader(strings.NewReader("path\na.c\n"), iotest.ErrReader(errBoom))

	p := NewProject("demo", '/', ',')
	res, err := p.AddProjectFromCSV(r)
	if !errors.Is(err, errBoom) {
		t.Fatalf("error = %v, want boom", err)
	}
	if res.Inserted != 1 {
		t.Errorf("rows before the error should stay: %+v", res)
	}
}

func TestIngest_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewProject("demo", '/', ',')
	_, err := p.Ingest(strings.NewReader("path\na.c\n"), IngestOptions{Context: ctx})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if len(p.Root().Children) != 0 {
		t.Error("no row should be inserted after cancellation")
	}
}

func TestFormatFailedRows(t *testing.T) {
	got := FormatFailedRows([]FailedRow{{Line: 2, Reason: "empty path: x"}, {Line: 9, Reason: "field count: y"}})
	want := "line 2: empty path: x\nline 9: field count: y\n"
	if got != want {
		t.Errorf("FormatFailedRows() = %q, want %q", got, want)
	}
}
