package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/pipe01/xmltok/internal/printer"
	"github.com/pipe01/xmltok/internal/workspace"
	"github.com/pipe01/xmltok/lexer"
	"github.com/tliron/commonlog"
	"golang.org/x/term"

	_ "github.com/tliron/commonlog/simple"
)

var version = "0.1.0"

var (
	configSet  bool
	configPath = kingpin.Flag("config", "TOML file with default settings").Default(defaultConfigPath).IsSetByUser(&configSet).String()
	format     = kingpin.Flag("format", "Output format").Short('f').Enum(printer.Formats...)
	colorMode  = kingpin.Flag("color", "Colorize text output").Enum("auto", "on", "off")
	allocator  = kingpin.Flag("alloc", "Attribute storage strategy").Enum("heap", "pool")
	watch      = kingpin.Flag("watch", "Watch files for changes and tokenize them again").Short('w').Bool()
	verbosity  = kingpin.Flag("verbose", "Increase log verbosity").Short('v').Counter()
	files      = kingpin.Arg("files", "List of files to tokenize").Required().ExistingFiles()

	widthSet, jobsSet bool

	width = kingpin.Flag("width", "Truncate text and values to this many columns, 0 for no limit").IsSetByUser(&widthSet).Int()
	jobs  = kingpin.Flag("jobs", "Files to tokenize in parallel, 0 for one per CPU").Short('j').IsSetByUser(&jobsSet).Int()

	log = commonlog.GetLogger("xmltok")

	cfg     Config
	outOpts printer.Options
	alloc   lexer.Allocator
)

func main() {
	kingpin.Version(version)
	kingpin.Parse()

	var err error
	cfg, err = resolveConfig()
	if err != nil {
		kingpin.Fatalf("invalid configuration: %s", err)
	}

	commonlog.Configure(cfg.Verbosity, nil)

	alloc, err = cfg.NewAllocator()
	if err != nil {
		kingpin.Fatalf("invalid configuration: %s", err)
	}
	outOpts = printer.Options{
		Format: printer.Format(cfg.Format),
		Color:  cfg.UseColor(term.IsTerminal(int(os.Stdout.Fd()))),
		Width:  cfg.Width,
	}

	wd, _ := os.Getwd()
	ws := workspace.New(wd, alloc)

	if *watch {
		err := watchFiles(ws)
		if err != nil {
			kingpin.Fatalf("failed to watch files: %s", err)
		}
	} else {
		err := tokenizeAll(context.Background(), ws, os.Stdout)
		if err != nil {
			kingpin.Fatalf("%s", err)
		}
	}
}

// resolveConfig layers command line flags over the configuration file.
func resolveConfig() (Config, error) {
	c, err := loadConfig(*configPath, configSet)
	if err != nil {
		return Config{}, err
	}

	if *format != "" {
		c.Format = *format
	}
	if *colorMode != "" {
		c.Color = *colorMode
	}
	if *allocator != "" {
		c.Allocator = *allocator
	}
	if widthSet {
		c.Width = *width
	}
	if jobsSet {
		c.Jobs = *jobs
	}
	c.Verbosity += *verbosity

	return c, c.Validate()
}

func tokenizeAll(ctx context.Context, ws *workspace.Workspace, out io.Writer) error {
	results, err := ws.LoadAll(ctx, *files, cfg.Jobs)
	if err != nil {
		return fmt.Errorf("tokenize files: %w", err)
	}

	bw := bufio.NewWriter(out)
	defer bw.Flush()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			log.Errorf("%s: %s", r.Path, r.Err)
			failed++
			continue
		}

		log.Debugf("%s: %d tokens", r.Path, len(r.Doc.Tokens))

		if err := printer.Print(bw, r.Doc, outOpts); err != nil {
			return fmt.Errorf("print %q: %w", r.Path, err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to tokenize", failed, len(results))
	}

	return nil
}

func watchFiles(ws *workspace.Workspace) error {
	if err := tokenizeAll(context.Background(), ws, os.Stdout); err != nil {
		log.Warningf("%s", err)
	}

	watcher, err := NewWatcher(ws, os.Stdout)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, f := range *files {
		err = watcher.WatchFile(f)
		if err != nil {
			return fmt.Errorf("watch file %q: %w", f, err)
		}
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	log.Infof("watching files for changes...")

	<-ch
	return nil
}
