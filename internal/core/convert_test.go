package core

import (
	"encoding/json"
	"testing"
)

// ----------------------------------------------------------------------------
// ParseValue Tests
// ----------------------------------------------------------------------------

func TestParseValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Value
	}{
		// Integers
		{name: "positive integer", input: "42", want: Int(42)},
		{name: "negative integer", input: "-7", want: Int(-7)},
		{name: "explicit plus sign", input: "+3", want: Int(3)},
		{name: "zero", input: "0", want: Int(0)},
		{name: "surrounding whitespace", input: " 12 ", want: Int(12)},

		// Floats
		{name: "decimal", input: "3.5", want: Float(3.5)},
		{name: "leading decimal point", input: ".5", want: Float(0.5)},
		{name: "trailing decimal point", input: "99.", want: Float(99)},
		{name: "scientific", input: "1e3", want: Float(1000)},
		{name: "negative scientific", input: "-2.5E-1", want: Float(-0.25)},
		{name: "integer beyond int64", input: "99999999999999999999", want: Float(1e20)},

		// Text
		{name: "word", input: "foo", want: Text("foo")},
		{name: "empty", input: "", want: Text("")},
		{name: "whitespace only kept verbatim", input: "  ", want: Text("  ")},
		{name: "text kept verbatim", input: " foo ", want: Text(" foo ")},
		{name: "NaN stays text", input: "NaN", want: Text("NaN")},
		{name: "Inf stays text", input: "Inf", want: Text("Inf")},
		{name: "hex stays text", input: "0x1F", want: Text("0x1F")},
		{name: "comma decimal stays text", input: "1,5", want: Text("1,5")},
		{name: "overflowing float stays text", input: "1e999", want: Text("1e999")},
		{name: "currency stays text", input: "$100", want: Text("$100")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseValue(tt.input)
			if got != tt.want {
				t.Errorf("ParseValue(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseValue_Deterministic(t *testing.T) {
	for _, in := range []string{"1", "1.0", "x", ""} {
		if ParseValue(in) != ParseValue(in) {
			t.Errorf("ParseValue(%q) is not deterministic", in)
		}
	}
}

func TestNumberFormatting(t *testing.T) {
	tests := []struct {
		name     string
		n        Number
		wantStr  string
		wantJSON string
		wantInt  bool
	}{
		{name: "integer", n: Int(100), wantStr: "100", wantJSON: "100", wantInt: true},
		{name: "float", n: Float(3.5), wantStr: "3.5", wantJSON: "3.5"},
		{name: "integral float", n: Float(1000), wantStr: "1000.0", wantJSON: "1000.0"},
		{name: "whole float from 3.0", n: ParseValue("3.0").(Number), wantStr: "3.0", wantJSON: "3.0"},
		{name: "small exponent", n: Float(1e-7), wantStr: "1e-07", wantJSON: "1e-07"},
		{name: "large exponent", n: Float(1e21), wantStr: "1e+21", wantJSON: "1e+21"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.n.String(); got != tt.wantStr {
				t.Errorf("String() = %q, want %q", got, tt.wantStr)
			}
			b, err := json.Marshal(tt.n)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(b) != tt.wantJSON {
				t.Errorf("MarshalJSON = %s, want %s", b, tt.wantJSON)
			}
			if tt.n.IsInt() != tt.wantInt {
				t.Errorf("IsInt() = %v, want %v", tt.n.IsInt(), tt.wantInt)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// CleanCell Tests
// ----------------------------------------------------------------------------

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// Basic cleaning
		{name: "simple string unchanged", input: "path", want: "path"},
		{name: "empty string", input: "", want: ""},

		// Whitespace trimming
		{name: "leading whitespace", input: "  loc", want: "loc"},
		{name: "trailing whitespace", input: "loc  ", want: "loc"},

		// Excel formula prefix handling
		{name: "Excel formula with quotes", input: `="path"`, want: "path"},
		{name: "bare equals sign", input: "=SUM(A1)", want: "SUM(A1)"},

		// Quote handling
		{name: "double quotes removed", input: `"mcc"`, want: "mcc"},
		{name: "single quotes removed", input: "'mcc'", want: "mcc"},
		{name: "mixed quotes removed outer only", input: `"mcc'`, want: "mcc"},

		// Combined cleaning
		{name: "whitespace and quotes", input: `  "loc"  `, want: "loc"},
		{name: "excel formula with whitespace", input: `  ="path"  `, want: "path"},

		// Edge cases
		{name: "only quotes", input: `""`, want: ""},
		{name: "only single quotes", input: "''", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanCell(tt.input)
			if got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSeparator(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{"", 0, false},
		{",", ',', false},
		{";", ';', false},
		{`\`, '\\', false},
		{`\t`, '\t', false},
		{"TAB", '\t', false},
		{"|", '|', false},
		{"ab", 0, true},
		{"\n", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSeparator(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSeparator(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSeparator(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
