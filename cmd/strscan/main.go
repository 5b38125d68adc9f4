// Package main implements strscan, a GNU strings compatible utility for
// extracting printable strings from binary files.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/richardwooding/strscan/internal/binary"
	"github.com/richardwooding/strscan/internal/codec"
	"github.com/richardwooding/strscan/internal/config"
	"github.com/richardwooding/strscan/internal/diag"
	"github.com/richardwooding/strscan/internal/extractor"
	"github.com/richardwooding/strscan/internal/input"
	"github.com/richardwooding/strscan/internal/printer"
)

const (
	name    = "strscan"
	version = "1.0.0"
)

// CLI defines the command-line interface structure
type CLI struct {
	MinLength            int      `short:"n" name:"bytes" default:"4" help:"Minimum string length"`
	PrintFileName        bool     `short:"f" name:"print-file-name" help:"Print file name before each string"`
	Radix                string   `short:"t" name:"radix" enum:"o,d,x," default:"" help:"Print offset in radix (o=octal, d=decimal, x=hex)"`
	OctalOffset          bool     `short:"o" help:"Print offset in octal (alias for -t o)"`
	Encoding             string   `short:"e" name:"encoding" enum:"s,S,b,l,B,L" default:"s" help:"Character encoding (s=7-bit, S=8-bit, b=16-bit BE, l=16-bit LE, B=32-bit BE, L=32-bit LE)"`
	Unicode              string   `short:"U" name:"unicode" enum:"default,invalid,locale,escape,hex,highlight" default:"default" help:"How to handle UTF-8 sequences (default/invalid/locale/escape/hex/highlight)"`
	OutputSeparator      string   `short:"s" name:"output-separator" default:"\\n" help:"Output record separator (\\n, \\t, \\r and \\0 are interpreted)"`
	IncludeAllWhitespace bool     `short:"w" name:"include-all-whitespace" help:"Include all whitespace characters in strings"`
	ScanAll              bool     `short:"a" name:"all" help:"Scan entire file (default)"`
	ScanDataOnly         bool     `short:"d" name:"data" help:"Scan only initialized data sections of object files"`
	TargetFormat         string   `short:"T" name:"target" enum:"elf,pe,macho,binary," default:"" help:"Object format for --data and --sections (elf/pe/macho/binary)"`
	Match                []string `name:"match" sep:"none" help:"Only print strings matching this regexp (repeatable)"`
	Exclude              []string `name:"exclude" sep:"none" help:"Do not print strings matching this regexp (repeatable)"`
	IgnoreCase           bool     `short:"i" name:"ignore-case" help:"Case-insensitive --match and --exclude"`
	JSON                 bool     `name:"json" help:"Write results as a JSON document"`
	Stats                bool     `name:"stats" help:"Print a statistics summary instead of the strings"`
	Color                string   `name:"color" enum:"auto,always,never" default:"auto" env:"STRSCAN_COLOR" help:"Colorize output (auto/always/never)"`
	Sections             bool     `name:"sections" help:"List the sections found in each file instead of strings"`
	Jobs                 int      `short:"j" name:"jobs" default:"1" env:"STRSCAN_JOBS" help:"Files to process in parallel (0 = one per CPU)"`
	MmapThreshold        int64    `name:"mmap-threshold" default:"1048576" help:"Memory-map files of at least this many bytes"`
	NoMmap               bool     `name:"no-mmap" help:"Never memory-map input files"`
	Version              bool     `short:"v" name:"version" help:"Display version information"`
	VersionAlt           bool     `short:"V" hidden:"" help:"Display version information (alias)"`
	Files                []string `arg:"" optional:"" name:"file" help:"Files to extract strings from" type:"path"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Exit))
}

func newParser(cli *CLI, stdout, stderr io.Writer, exit func(int)) (*kong.Kong, error) {
	options := []kong.Option{
		kong.Name(name),
		kong.Description("Extract printable strings from binary files. GNU strings compatible."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(exit),
	}
	options = append(options, config.Options()...)
	return kong.New(cli, options...)
}

// run parses args, processes every input and returns the exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer, exit func(int)) int {
	var cli CLI
	parser, err := newParser(&cli, stdout, stderr, exit)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 1
	}
	if _, err := parser.Parse(args); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 1
	}

	// Handle version flag
	if cli.Version || cli.VersionAlt {
		fmt.Fprintf(stdout, "%s %s\n", name, version)
		fmt.Fprintln(stdout, "GNU strings compatible utility written in Go")
		return 0
	}

	a, err := newApp(&cli, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 1
	}
	if err := a.run(cli.Files); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 1
	}
	if a.diag.Errors() > 0 {
		return 1
	}
	return 0
}

// buildConfig turns the parsed flags into a scan configuration. All
// configuration errors surface here, before any input is opened.
func (cli *CLI) buildConfig() (extractor.Config, error) {
	// Handle -o flag (alias for -t o)
	if cli.OctalOffset {
		cli.Radix = "o"
	}

	enc, err := codec.ParseEncoding(cli.Encoding)
	if err != nil {
		return extractor.Config{}, err
	}
	radix, err := extractor.ParseRadix(cli.Radix)
	if err != nil {
		return extractor.Config{}, err
	}
	unicode, err := extractor.ParseUnicode(cli.Unicode)
	if err != nil {
		return extractor.Config{}, err
	}
	color, err := extractor.ParseColorMode(cli.Color)
	if err != nil {
		return extractor.Config{}, err
	}
	match, err := extractor.CompilePatterns(cli.Match, cli.IgnoreCase)
	if err != nil {
		return extractor.Config{}, err
	}
	exclude, err := extractor.CompilePatterns(cli.Exclude, cli.IgnoreCase)
	if err != nil {
		return extractor.Config{}, err
	}

	cfg := extractor.Config{
		MinLength:            cli.MinLength,
		Encoding:             enc,
		Unicode:              unicode,
		IncludeAllWhitespace: cli.IncludeAllWhitespace,
		ScanDataOnly:         cli.ScanDataOnly && !cli.ScanAll,
		Radix:                radix,
		OutputSeparator:      unescapeSeparator(cli.OutputSeparator),
		PrintFileName:        cli.PrintFileName,
		Color:                color,
		MatchPatterns:        match,
		ExcludePatterns:      exclude,
	}
	if err := cfg.Validate(); err != nil {
		return extractor.Config{}, err
	}
	return cfg, nil
}

var separatorEscapes = strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\r`, "\r", `\0`, "\x00", `\\`, `\`)

// unescapeSeparator interprets the escapes accepted by -s.
func unescapeSeparator(s string) string {
	return separatorEscapes.Replace(s)
}

func (cli *CLI) target() (binary.Format, error) {
	return binary.ParseFormat(cli.TargetFormat)
}

func (cli *CLI) jobs() int {
	if cli.Jobs <= 0 {
		return runtime.NumCPU()
	}
	return cli.Jobs
}

func (cli *CLI) inputOptions() input.Options {
	return input.Options{
		DisableMmap:   cli.NoMmap,
		MmapThreshold: cli.MmapThreshold,
	}
}

func newApp(cli *CLI, stdin io.Reader, stdout, stderr io.Writer) (*app, error) {
	cfg, err := cli.buildConfig()
	if err != nil {
		return nil, err
	}
	target, err := cli.target()
	if err != nil {
		return nil, err
	}
	return &app{
		config:   cfg,
		target:   target,
		opts:     cli.inputOptions(),
		jobs:     cli.jobs(),
		json:     cli.JSON,
		stats:    cli.Stats,
		sections: cli.Sections,
		color:    printer.ShouldUseColor(cfg.Color),
		stdin:    stdin,
		stdout:   stdout,
		diag:     diag.NewWriter(stderr, name),
	}, nil
}
