package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JonMunkholm/csvtree/internal/core"
	"github.com/ohler55/ojg/jp"
)

// Query evaluates a JSONPath expression against the cc.json form of p.
// Numbers in the results are float64, as from encoding/json.
func Query(p *core.Project, expr string) ([]any, error) {
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", expr, err)
	}

	b, err := Marshal(p)
	if err != nil {
		return nil, err
	}
	var data any
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, err
	}

	return x.Get(data), nil
}

// FilesWhere builds an expression selecting every file whose attribute name
// satisfies op value, e.g. FilesWhere("loc", ">", 100). Any attribute name is
// accepted, including ones with spaces, dots or quotes.
func FilesWhere(attr, op string, value any) string {
	v, _ := json.Marshal(value)
	return fmt.Sprintf("$..children[?(@.type == 'File' && @.attributes['%s'] %s %s)]", quoteKey(attr), op, v)
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// quoteKey escapes a name for a single-quoted bracket selector.
func quoteKey(name string) string {
	return keyEscaper.Replace(name)
}
