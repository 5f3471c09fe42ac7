// Command rectangle prints the dimensions and area of a rectangle.
//
//	rectangle [width] [height]
//
// Without arguments it prints the 10x5 sample.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"rectangle-service/internal/domain/rectangle"
	"rectangle-service/pkg/logger"
)

type cli struct {
	Width     uint32 `arg:"" optional:"" default:"10" help:"Rectangle width."`
	Height    uint32 `arg:"" optional:"" default:"5" help:"Rectangle height."`
	LogLevel  string `default:"warn" enum:"debug,info,warn,error" help:"Level of diagnostics written to stderr."`
	LogFormat string `default:"console" enum:"console,json" help:"Format of diagnostics written to stderr."`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses args, writes the display to stdout and diagnostics to stderr, and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	var c cli
	exitCode := -1

	parser, err := kong.New(&c,
		kong.Name("rectangle"),
		kong.Description("Print the dimensions and area of a rectangle."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exitCode = code }),
		kong.ShortUsageOnError(),
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	if _, err := parser.Parse(args); err != nil {
		parser.Errorf("%s", err)
		return 2
	}
	if exitCode >= 0 {
		// --help
		return exitCode
	}

	log, err := logger.NewWithConfig(logger.Config{
		Level:  c.LogLevel,
		Format: c.LogFormat,
		Writer: stderr,
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer func() { _ = logger.Sync(log) }()

	r := rectangle.New(c.Width, c.Height)
	if _, ok := r.AreaChecked(); !ok {
		log.Warn("area overflows 32 bits and wraps",
			zap.Uint32("width", c.Width),
			zap.Uint32("height", c.Height),
			zap.Uint32("area", r.Area()),
		)
	}
	log.Debug("displaying rectangle", zap.Uint32("width", c.Width), zap.Uint32("height", c.Height))

	if err := rectangle.Display(stdout, r); err != nil {
		log.Error("failed to write display", zap.Error(err))
		return 1
	}
	return 0
}
