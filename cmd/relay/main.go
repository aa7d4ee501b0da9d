// Package main runs a small relay pipeline: a source relay emits
// messages, a transform relay rewrites them, and a sink relay prints them.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dshills/relay/internal/app"
	"github.com/dshills/relay/internal/relay"
	"github.com/dshills/relay/internal/schema"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

type flags struct {
	opts     app.Options
	messages []string
	wait     bool
}

func run() int {
	f := parseFlags()

	application, err := app.New(f.opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := application.Close(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: shutdown: %v\n", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, err := buildPipeline(application.Bus())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	for _, msg := range f.messages {
		if err := source.EmitAndWait(ctx, msg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: emit %q: %v\n", msg, err)
			return 1
		}
	}
	if err := application.Bus().Dispatcher().Wait(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if f.wait {
		application.Logger().Info("waiting for signal")
		<-ctx.Done()
	}
	return 0
}

// buildPipeline declares source -> upper -> sink and returns the source
// emitter. Each hop only accepts events from the relay before it.
func buildPipeline(bus *relay.Bus) (*relay.Emitter, error) {
	source := bus.NewRelay("source")
	upper := bus.NewRelay("upper")
	sink := bus.NewRelay("sink")

	out, err := source.Emitter("text",
		relay.OnChannel("text"),
		relay.OnEventType("raw"),
		relay.WithSchema(schema.TypeOf[string]()),
	)
	if err != nil {
		return nil, err
	}

	upperOut, err := upper.Emitter("text",
		relay.OnChannel("text"),
		relay.OnEventType("upper"),
		relay.WithSchema(schema.TypeOf[string]()),
	)
	if err != nil {
		return nil, err
	}

	_, err = relay.Listen(upper, "onRaw", func(ctx context.Context, _ relay.Event, s string) error {
		return upperOut.Emit(ctx, strings.ToUpper(s))
	},
		relay.OnChannel("text"),
		relay.OnEventType("raw"),
		relay.FromSource(relay.SourceInfo{Relay: source.ID()}),
	)
	if err != nil {
		return nil, err
	}

	_, err = relay.Listen(sink, "print", func(_ context.Context, ev relay.Event, s string) error {
		fmt.Printf("%s  %s\n", ev.Time.Format(time.TimeOnly), s)
		return nil
	},
		relay.OnChannel("text"),
		relay.OnEventType("upper"),
		relay.FromSource(upperOut.Source()),
	)
	if err != nil {
		return nil, err
	}

	return out, nil
}

func parseFlags() flags {
	var f flags
	var showVersion bool
	var showHelp bool

	flag.StringVar(&f.opts.ConfigPath, "config", "", "Path to configuration file (.toml or .yaml)")
	flag.StringVar(&f.opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&f.opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&f.opts.Watch, "watch", false, "Reload the configuration file when it changes")
	flag.BoolVar(&f.wait, "wait", false, "Keep running until interrupted")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "relay - typed in-process event relay\n\n")
		fmt.Fprintf(os.Stderr, "Usage: relay [options] [messages...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  relay hello world              Send two messages through the pipeline\n")
		fmt.Fprintf(os.Stderr, "  relay -log-level debug hi      Show dispatch logging\n")
		fmt.Fprintf(os.Stderr, "  relay -c relay.toml -watch -wait\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("relay %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	f.opts.DotEnv = []string{".env"}

	f.messages = flag.Args()
	if len(f.messages) == 0 {
		f.messages = []string{"hello"}
	}
	return f
}
