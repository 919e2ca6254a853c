// tagfinder finds JPEG images by the keyword tags stored in their embedded
// XMP packet.
//
// list and search read tags straight from the files. index stores the tags
// of a folder in a SQLite catalog and query filters that catalog without
// touching the images again.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"tagfinder/config"
	"tagfinder/database"
	"tagfinder/logging"
	"tagfinder/metadata"
	"tagfinder/scanner"
	"tagfinder/signalhandler"
	"tagfinder/tagindex"
	"tagfinder/utils"
	"tagfinder/vfs"
)

// usageError marks errors caused by bad invocation
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func main() {
	signalhandler.SetupHandler(logging.CloseLogger)

	err := run(os.Args[1:], os.Stdout, os.Stderr)
	logging.CloseLogger()

	if err != nil {
		var usage *usageError
		if errors.As(err, &usage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
			utils.PrintUsage(os.Stderr)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// options are the flags shared by every command
type options struct {
	configPath  string
	folder      string
	database    string
	tags        []string
	mode        string
	format      string
	logFile     string
	maxFileSize int64
	recursive   bool
	keepGoing   bool
	showTags    bool
	force       bool
	prune       bool
	vocabulary  bool
	debug       bool

	cfg *config.Config
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return &usageError{msg: "missing command"}
	}
	command := args[0]

	var opts options
	flagSet := pflag.NewFlagSet("tagfinder "+command, pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	flagSet.StringVar(&opts.folder, "folder", "", "folder containing images")
	flagSet.StringVar(&opts.database, "database", "", "path to the tag catalog")
	flagSet.StringVar(&opts.database, "db", "", "alias for --database")
	flagSet.StringSliceVar(&opts.tags, "tags", nil, "tags to match, comma separated")
	flagSet.StringVar(&opts.mode, "mode", "", "tag match mode: any or all")
	flagSet.StringVar(&opts.format, "format", "", "output format: text, json or yaml")
	flagSet.StringVar(&opts.logFile, "logfile", "", "debug log file")
	flagSet.Int64Var(&opts.maxFileSize, "max-file-size", 0, "skip reading images larger than this many bytes (0: no limit)")
	flagSet.BoolVarP(&opts.recursive, "recursive", "r", false, "descend into subdirectories")
	flagSet.BoolVar(&opts.keepGoing, "keep-going", false, "report unreadable images instead of stopping")
	flagSet.BoolVar(&opts.showTags, "show-tags", false, "print the tags of each listed image")
	flagSet.BoolVar(&opts.force, "force", false, "re-read images that have not changed")
	flagSet.BoolVar(&opts.prune, "prune", false, "drop catalogued images that are gone from the folder")
	flagSet.BoolVar(&opts.vocabulary, "vocabulary", false, "print every catalogued tag with its image count")
	flagSet.BoolVar(&opts.debug, "debug", false, "enable debug logging")

	if err := flagSet.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return &usageError{msg: err.Error()}
	}
	if flagSet.NArg() > 0 {
		return &usageError{msg: fmt.Sprintf("unexpected argument %q", flagSet.Arg(0))}
	}

	if err := opts.resolve(flagSet); err != nil {
		return err
	}

	if opts.debug {
		if err := logging.SetupLogger(opts.logFile, slog.LevelDebug); err != nil {
			fmt.Fprintf(stderr, "Warning: Failed to setup logging: %v\n", err)
		} else {
			fmt.Fprintf(stderr, "Debug mode enabled. Logging to: %s\n", opts.logFile)
		}
	}

	switch command {
	case "list":
		return handleListCommand(&opts, stdout, stderr)
	case "search":
		return handleSearchCommand(&opts, stdout, stderr)
	case "index":
		return handleIndexCommand(&opts, stdout)
	case "query":
		return handleQueryCommand(&opts, stdout)
	default:
		return &usageError{msg: fmt.Sprintf("unknown command: %s", command)}
	}
}

// resolve merges the configuration file under the flags that were set
func (o *options) resolve(flagSet *pflag.FlagSet) error {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.LoadFile(o.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if !flagSet.Changed("database") && !flagSet.Changed("db") {
		o.database = cfg.Database
	}
	if !flagSet.Changed("mode") {
		o.mode = cfg.Mode
	}
	if !flagSet.Changed("format") {
		o.format = cfg.Format
	}
	if !flagSet.Changed("logfile") {
		o.logFile = cfg.LogFile
	}
	if !flagSet.Changed("max-file-size") {
		o.maxFileSize = cfg.MaxFileSize
	}
	if !flagSet.Changed("recursive") {
		o.recursive = cfg.Recursive
	}
	if !flagSet.Changed("keep-going") {
		o.keepGoing = cfg.KeepGoing
	}

	o.tags = utils.MergeTagLists(o.tags)
	o.format = strings.ToLower(o.format)

	// the merged result is validated the same way as a config file
	cfg.Mode = o.mode
	cfg.Format = o.format
	cfg.MaxFileSize = o.maxFileSize
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}

func (o *options) requireFolder() (string, error) {
	if o.folder == "" {
		return "", &usageError{msg: "missing folder path (use --folder=PATH)"}
	}
	info, err := os.Stat(o.folder)
	if err != nil {
		return "", fmt.Errorf("cannot access folder path %s: %w", o.folder, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", o.folder)
	}
	return o.folder, nil
}

func (o *options) reader() *metadata.Reader {
	reader := metadata.NewReader(vfs.NewOS())
	reader.MaxFileSize = o.maxFileSize
	return reader
}

func handleListCommand(opts *options, stdout, stderr io.Writer) error {
	folder, err := opts.requireFolder()
	if err != nil {
		return err
	}

	paths, err := scanner.ListImages(vfs.NewOS(), folder, opts.recursive)
	if err != nil {
		return err
	}

	if !opts.showTags {
		return writePaths(stdout, opts.format, paths)
	}

	assocs, failures, err := scanner.CollectTags(opts.reader(), paths, opts.keepGoing)
	if err != nil {
		return err
	}
	reportFailures(stderr, failures)
	return writeAssociations(stdout, opts.format, assocs)
}

func handleSearchCommand(opts *options, stdout, stderr io.Writer) error {
	folder, err := opts.requireFolder()
	if err != nil {
		return err
	}

	paths, err := scanner.ListImages(vfs.NewOS(), folder, opts.recursive)
	if err != nil {
		return err
	}

	assocs, failures, err := scanner.CollectTags(opts.reader(), paths, opts.keepGoing)
	if err != nil {
		return err
	}
	reportFailures(stderr, failures)

	matches, err := tagindex.FilterByTags(assocs, opts.tags, opts.mode)
	if err != nil {
		return err
	}
	return writePaths(stdout, opts.format, matches)
}

func handleIndexCommand(opts *options, stdout io.Writer) error {
	folder, err := opts.requireFolder()
	if err != nil {
		return err
	}
	folder, err = filepath.Abs(folder)
	if err != nil {
		return fmt.Errorf("cannot resolve folder path: %w", err)
	}

	db, err := database.InitDatabase(opts.database)
	if err != nil {
		return err
	}
	defer db.Close()

	var progress io.Writer
	if opts.format == "text" {
		progress = stdout
		fmt.Fprintf(stdout, "Indexing %s into %s\n", folder, opts.database)
	}

	summary, err := scanner.ScanAndStoreFolder(db, vfs.NewOS(), scanner.ScanOptions{
		FolderPath:   folder,
		Recursive:    opts.recursive,
		ForceRewrite: opts.force,
		KeepGoing:    opts.keepGoing,
		PruneMissing: opts.prune,
		DebugMode:    opts.debug,
		MaxFileSize:  opts.maxFileSize,
		Progress:     progress,
	})
	if err != nil {
		return err
	}

	stats, err := database.GetScanStats(db)
	if err != nil {
		return err
	}

	if opts.format != "text" {
		return writeStructured(stdout, opts.format, indexReport{Summary: newSummaryReport(summary), Catalog: *stats})
	}

	scanner.PrintCompletionStats(stdout, *summary)
	fmt.Fprintf(stdout, "\nCatalog: %s\n", opts.database)
	fmt.Fprintf(stdout, "- Total images: %d\n", stats.TotalImages)
	fmt.Fprintf(stdout, "- With metadata: %d\n", stats.WithMetadata)
	fmt.Fprintf(stdout, "- Distinct tags: %d\n", stats.DistinctTags)
	return nil
}

func handleQueryCommand(opts *options, stdout io.Writer) error {
	if _, err := os.Stat(opts.database); err != nil {
		return fmt.Errorf("catalog %s is not readable, run index first: %w", opts.database, err)
	}

	db, err := database.OpenDatabase(opts.database)
	if err != nil {
		return err
	}
	defer db.Close()

	assocs, err := database.LoadAssociations(db)
	if err != nil {
		return err
	}

	if opts.vocabulary {
		return writeVocabulary(stdout, opts.format, tagindex.New(assocs).Tags())
	}

	matches, err := tagindex.FilterByTags(assocs, opts.tags, opts.mode)
	if err != nil {
		return err
	}
	return writePaths(stdout, opts.format, matches)
}

func reportFailures(stderr io.Writer, failures []scanner.ProcessImageResult) {
	for _, failure := range failures {
		fmt.Fprintf(stderr, "Warning: skipped %s: %v\n", failure.Path, failure.Error)
	}
}
