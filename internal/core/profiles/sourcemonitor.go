package profiles

import "github.com/JonMunkholm/csvtree/internal/core"

// SourceMonitor is the name of the profile for SourceMonitor CSV exports.
const SourceMonitor = "sourcemonitor"

// sourceMonitorColumns maps SourceMonitor's column titles to metric names.
var sourceMonitorColumns = map[string]string{
	"File Name":                           "path",
	"Lines":                               "loc",
	"Statements":                          "statements",
	"Percent Branch Statements":           "percent_branch_statements",
	"Method Call Statements":              "method_call_statements",
	"Percent Lines with Comments":         "percent_lines_with_comments",
	"Classes and Interfaces":              "classes",
	"Methods per Class":                   "functions_per_class",
	"Average Statements per Method":       "average_statements_per_function",
	"Line Number of Most Complex Method*": "line_number_of_highest_complexity_function",
	"Name of Most Complex Method*":        "highest_complexity_function",
	"Maximum Complexity*":                 "max_function_mcc",
	"Line Number of Deepest Block":        "line_number_of_deepest_block",
	"Maximum Block Depth":                 "max_block_depth",
	"Average Block Depth":                 "average_block_depth",
	"Average Complexity*":                 "average_function_mcc",
}

func init() {
	subs := core.Rename(sourceMonitorColumns)

	// Titles not listed above become snake case without the "*" marker.
	for _, rule := range [][2]string{
		{`\*+$`, ""},
		{`\s+`, "_"},
	} {
		var err error
		if subs, err = subs.WithPattern(rule[0], rule[1]); err != nil {
			panic(err)
		}
	}

	core.RegisterProfile(core.Profile{
		Name:          SourceMonitor,
		Description:   "SourceMonitor metrics export (Windows paths)",
		PathSeparator: '\\',
		Substitutions: subs,
	})
}
