package profiles

import (
	"strings"
	"testing"

	"github.com/JonMunkholm/csvtree/internal/core"
)

func TestBuiltinProfilesRegistered(t *testing.T) {
	for _, name := range []string{Trivial, SourceMonitor, "SourceMonitor"} {
		if _, err := core.LookupProfile(name); err != nil {
			t.Errorf("LookupProfile(%q) error = %v", name, err)
		}
	}
}

func TestSourceMonitorImport(t *testing.T) {
	prof, err := core.LookupProfile(SourceMonitor)
	if err != nil {
		t.Fatal(err)
	}

	input := "File Name,Lines,Maximum Complexity*,Max Depth Seen\n" +
		"src\\app\\main.c,120,7,3\n"

	p := core.NewProject("sm", prof.PathSeparator, ',')
	res, err := p.AddProjectFromCSVWith(strings.NewReader(input), prof.Substitutions)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if res.Inserted != 1 {
		t.Fatalf("Inserted = %d, want 1 (failed: %v)", res.Inserted, res.FailedRows)
	}

	n, ok := p.Find("src", "app", "main.c")
	if !ok {
		t.Fatalf("main.c not found; paths = %v", p.Paths())
	}
	f := n.(*core.File)
	for _, key := range []string{"loc", "max_function_mcc", "Max_Depth_Seen"} {
		if _, ok := f.Attributes.Number(key); !ok {
			t.Errorf("attribute %q missing or not numeric: %v", key, f.Attributes.Keys())
		}
	}
}
