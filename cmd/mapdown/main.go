package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/goliatone/go-mapdirective/cmd/mapdown/internal/bootstrap"
	markdowncmd "github.com/goliatone/go-mapdirective/internal/commands/markdown"
	"github.com/goliatone/go-mapdirective/internal/logging"
	"github.com/goliatone/go-mapdirective/internal/preview"
	"github.com/goliatone/go-mapdirective/internal/surface/browser"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("mapdown: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("mapdown", flag.ContinueOnError)
	contentDir := fs.String("dir", ".", "Path to the markdown content root")
	pattern := fs.String("pattern", "*.md", "Glob pattern applied when listing markdown files")
	recursive := fs.Bool("recursive", true, "Descend into sub directories when listing documents")
	filePath := fs.String("file", "", "Markdown file to render (relative to the content root)")
	output := fs.String("out", "", "Write the rendered page to this path instead of stdout")
	serve := fs.String("serve", "", "Start the preview server on this address, e.g. 127.0.0.1:8089")
	useBrowser := fs.Bool("browser", false, "Mount maps in a headless browser instead of the in-memory document")
	browserURL := fs.String("browser-url", "", "DevTools websocket URL of a running browser (launches Chrome when empty)")
	logLevel := fs.String("log-level", "", "Enable logging at this level (trace, debug, info, warn, error)")
	logProvider := fs.String("log-provider", "console", "Logging provider: console or gologger")
	timeout := fs.Duration("timeout", 30*time.Second, "How long a map waits for its container")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *filePath == "" && *serve == "" {
		return errors.New("either -file or -serve is required")
	}

	module, err := moduleBuilder(bootstrap.Options{
		ContentDir:     *contentDir,
		Pattern:        *pattern,
		Recursive:      *recursive,
		LogLevel:       *logLevel,
		LogProvider:    *logProvider,
		MountTimeout:   *timeout,
		PreviewAddress: *serve,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	if module == nil || module.Module == nil {
		return errors.New("map directive module not configured")
	}

	if *serve != "" {
		srv, err := preview.NewServer(module.Module,
			preview.WithLibrary(module.Service),
			preview.WithGeocoder(module.Module.Geocoder()),
			preview.WithLogger(logging.PreviewLogger(module.Module.Container().LoggerProvider())),
		)
		if err != nil {
			return err
		}
		return srv.ListenAndServe(ctx, *serve)
	}

	if *useBrowser {
		markup, err := bootstrap.RenderInBrowser(ctx, module, *filePath, browser.Config{
			RemoteURL: *browserURL,
			Headless:  true,
		})
		if err != nil {
			return fmt.Errorf("render in browser: %w", err)
		}
		return writeOutput(*output, markup, stdout)
	}

	handlers, err := module.Module.RegisterCommands(nil, markdowncmd.WithSink(stdout))
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	return handlers.Render.Execute(ctx, markdowncmd.RenderDocumentCommand{
		Path:   *filePath,
		Output: *output,
	})
}

func writeOutput(path string, markup []byte, stdout io.Writer) error {
	if path == "" {
		_, err := stdout.Write(markup)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, markup, 0o644)
}
