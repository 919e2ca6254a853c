package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Commands lists the subcommands the CLI understands
var Commands = []string{"list", "search", "index", "query"}

// ParseTagList splits a comma separated tag list. Surrounding spaces are
// trimmed and empty entries dropped; tags themselves keep their case.
func ParseTagList(s string) []string {
	tags := []string{}
	for _, part := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// MergeTagLists flattens repeated --tags flags into one list
func MergeTagLists(values []string) []string {
	tags := []string{}
	for _, value := range values {
		tags = append(tags, ParseTagList(value)...)
	}
	return tags
}

// PrintUsage outputs the command-line usage instructions
func PrintUsage(out io.Writer) {
	name := os.Args[0]
	fmt.Fprintf(out, "Usage:\n")
	fmt.Fprintf(out, "  %s list   --folder=PATH [--recursive] [--show-tags] [--keep-going] [--format=text|json|yaml]\n", name)
	fmt.Fprintf(out, "  %s search --folder=PATH --tags=TAG[,TAG...] [--mode=any|all] [--recursive] [--keep-going]\n", name)
	fmt.Fprintf(out, "  %s index  --folder=PATH [--database=PATH] [--recursive] [--force] [--prune] [--keep-going]\n", name)
	fmt.Fprintf(out, "  %s query  --tags=TAG[,TAG...] [--mode=any|all] [--database=PATH] [--vocabulary]\n", name)
	fmt.Fprintf(out, "\nCommon parameters:\n")
	fmt.Fprintf(out, "  --config      : YAML configuration file\n")
	fmt.Fprintf(out, "  --debug       : Enable debug mode (logs detailed information)\n")
	fmt.Fprintf(out, "  --logfile     : Specify custom log file path (default: tagfinder.log)\n")
	fmt.Fprintf(out, "\nExamples:\n")
	fmt.Fprintf(out, "  %s search --folder=/photos --tags=sunset,beach --mode=all\n", name)
	fmt.Fprintf(out, "  %s index --folder=/photos --recursive --database=/photos/tags.db\n", name)
	fmt.Fprintf(out, "  %s query --tags=beach --database=/photos/tags.db\n", name)
}
