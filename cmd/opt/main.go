package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/xyproto/env/v2"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/ssair/cfg"
	"github.com/wippyai/ssair/devirt"
	"github.com/wippyai/ssair/diag"
	ssairerrors "github.com/wippyai/ssair/errors"
	"github.com/wippyai/ssair/inline"
	"github.com/wippyai/ssair/ir"
	"github.com/wippyai/ssair/irtext"
	"github.com/wippyai/ssair/splice"
)

// config is the optional TOML configuration. Flags override the file,
// environment variables override both.
type config struct {
	Verbose bool `toml:"verbose"`
	Stats   bool `toml:"stats"`
	NoColor bool `toml:"no_color"`
}

func main() {
	var (
		inputFile        = flag.String("input", "", "Path to textual IR file")
		outputFile       = flag.String("output", "", "Output file (default stdout)")
		configFile       = flag.String("config", "", "Path to TOML config file")
		showStats        = flag.Bool("stats", false, "Print pass statistics to stderr")
		verifyIdempotent = flag.Bool("verify-idempotent", false, "Run the pass twice and require a fixed point")
		noColor          = flag.Bool("no-color", false, "Disable colored diagnostics")
		verbose          = flag.Bool("verbose", false, "Enable debug logging")
		interactive      = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *inputFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: opt -input <file.ir> [-output file] [-stats] [-verify-idempotent]")
		fmt.Fprintln(os.Stderr, "       opt -input <file.ir> -i  (interactive mode)")
		os.Exit(1)
	}

	cfgData, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		cfgData.Verbose = true
	}
	if *showStats {
		cfgData.Stats = true
	}
	if *noColor {
		cfgData.NoColor = true
	}
	// Environment wins over both file and flags.
	if env.Has("SSAIR_VERBOSE") {
		cfgData.Verbose = env.Bool("SSAIR_VERBOSE")
	}
	if env.Has("SSAIR_NO_COLOR") {
		cfgData.NoColor = env.Bool("SSAIR_NO_COLOR")
	}

	if cfgData.Verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			inline.SetLogger(logger)
			splice.SetLogger(logger)
			devirt.SetLogger(logger)
			cfg.SetLogger(logger)
		}
	}

	if *interactive {
		if err := runInteractive(*inputFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*inputFile, *outputFile, cfgData, *verifyIdempotent); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (config, error) {
	var c config
	if path == "" {
		path = env.Str("SSAIR_CONFIG")
	}
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, ssairerrors.Config("read "+path, err)
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return c, ssairerrors.Config("decode "+path, err)
	}
	return c, nil
}

func run(inputFile, outputFile string, c config, verifyIdempotent bool) error {
	source, err := os.ReadFile(inputFile)
	if err != nil {
		return ssairerrors.Load("read "+inputFile, err)
	}

	mod, err := irtext.Parse(inputFile, string(source))
	if err != nil {
		return err
	}

	diags := diag.NewEngine()
	pass := inline.NewPass(diags)
	stats := pass.Run(mod)

	color := !c.NoColor && term.IsTerminal(int(os.Stderr.Fd()))
	diags.Render(os.Stderr, color)
	if diags.ErrorCount() > 0 {
		return fmt.Errorf("%d error(s)", diags.ErrorCount())
	}

	if verifyIdempotent {
		before := ir.Print(mod)
		again := inline.NewPass(diag.NewEngine()).Run(mod)
		after := ir.Print(mod)
		if again.Inlined != 0 || before != after {
			return fmt.Errorf("pass is not idempotent: second run inlined %d call(s)", again.Inlined)
		}
	}

	output := ir.Print(mod)
	if outputFile == "" {
		fmt.Print(output)
	} else if err := os.WriteFile(outputFile, []byte(output), 0o644); err != nil {
		return err
	}

	if c.Stats {
		fmt.Fprintf(os.Stderr, "inlined: %d  devirtualized: %d  removed: %d\n",
			stats.Inlined, stats.Devirtualized, stats.Removed)
	}
	return nil
}
