package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"tagfinder/database"
	"tagfinder/scanner"
	"tagfinder/tagindex"
	"tagfinder/types"
)

// summaryReport is the structured form of an indexing summary
type summaryReport struct {
	Found    int             `json:"found" yaml:"found"`
	Indexed  int             `json:"indexed" yaml:"indexed"`
	Skipped  int             `json:"skipped" yaml:"skipped"`
	Tagged   int             `json:"tagged" yaml:"tagged"`
	Removed  int             `json:"removed" yaml:"removed"`
	Elapsed  string          `json:"elapsed" yaml:"elapsed"`
	Failures []failureReport `json:"failures,omitempty" yaml:"failures,omitempty"`
}

type failureReport struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

type indexReport struct {
	Summary summaryReport      `json:"summary" yaml:"summary"`
	Catalog database.ScanStats `json:"catalog" yaml:"catalog"`
}

func newSummaryReport(summary *scanner.ScanSummary) summaryReport {
	report := summaryReport{
		Found:   summary.Found,
		Indexed: summary.Indexed,
		Skipped: summary.Skipped,
		Tagged:  summary.Tagged,
		Removed: summary.Removed,
		Elapsed: summary.Elapsed.String(),
	}
	for _, failure := range summary.Failures {
		report.Failures = append(report.Failures, failureReport{Path: failure.Path, Error: failure.Error.Error()})
	}
	return report
}

func writeStructured(out io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return &types.InvalidArgumentError{Name: "format", Value: format}
	}
}

func writePaths(out io.Writer, format string, paths []string) error {
	if format != "text" {
		if paths == nil {
			paths = []string{}
		}
		return writeStructured(out, format, paths)
	}
	for _, path := range paths {
		fmt.Fprintln(out, path)
	}
	return nil
}

func writeAssociations(out io.Writer, format string, assocs []types.Association) error {
	if format != "text" {
		if assocs == nil {
			assocs = []types.Association{}
		}
		return writeStructured(out, format, assocs)
	}
	for _, assoc := range assocs {
		switch {
		case assoc.Tags.IsAbsent():
			fmt.Fprintf(out, "%s\t(no metadata)\n", assoc.Path)
		case assoc.Tags.Len() == 0:
			fmt.Fprintf(out, "%s\t(no tags)\n", assoc.Path)
		default:
			fmt.Fprintf(out, "%s\t%s\n", assoc.Path, strings.Join(assoc.Tags.Tags(), ", "))
		}
	}
	return nil
}

func writeVocabulary(out io.Writer, format string, counts []tagindex.TagCount) error {
	if format != "text" {
		return writeStructured(out, format, counts)
	}
	for _, count := range counts {
		fmt.Fprintf(out, "%6d  %s\n", count.Images, count.Tag)
	}
	return nil
}
