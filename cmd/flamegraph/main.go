// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Command flamegraph renders a folded-stack file (or stdin) into a
// self-contained interactive SVG, following the CLI surface and exit
// codes spec.md §6/§7 define (0 success, 1 I/O error, 2 parse error, 64
// usage error). Its flag surface and custom usage renderer are modeled
// on the teacher's cmd/flamegraph/flamegraph.go and cmd/flame/flame.go
// (flag groups, Example strings, a hand-formatted usageFunc).
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"

	"flamefold/internal/app"
	"flamefold/internal/color"
	"flamefold/internal/ferrors"
	"flamefold/internal/flamegraph"
	"flamefold/internal/util"
)

var examples = []string{
	fmt.Sprintf("  Render a folded file:      $ %s out.folded > out.svg", app.Name),
	fmt.Sprintf("  Read from stdin:           $ collapse-perf perf.script | %s > out.svg", app.Name),
	fmt.Sprintf("  Icicle graph, Java colors: $ %s --inverted --colors java out.folded > out.svg", app.Name),
	fmt.Sprintf("  Stable colors across runs: $ %s --palette-file colors.map out.folded > out.svg", app.Name),
}

var (
	flagTitle          string
	flagSubtitle       string
	flagNotes          string
	flagWidth          int
	flagHeight         int
	flagFontSize       int
	flagFontType       string
	flagMinWidth       float64
	flagColors         string
	flagBGColors       string
	flagHash           bool
	flagDeterministic  bool
	flagColorDiffusion bool
	flagFlameChart     bool
	flagInverted       bool
	flagReverse        bool
	flagNegate         bool
	flagNoSort         bool
	flagPaletteFile    string
	flagPaletteBase    string
	flagFilter         string
	flagXlsxSummary    string
	flagXlsxTopN       int
	flagConfig         string
	flagVerbose        bool
)

const (
	flagTitleName          = "title"
	flagSubtitleName       = "subtitle"
	flagNotesName          = "notes"
	flagWidthName          = "width"
	flagHeightName         = "height"
	flagFontSizeName       = "fontsize"
	flagFontTypeName       = "fonttype"
	flagMinWidthName       = "minwidth"
	flagColorsName         = "colors"
	flagBGColorsName       = "bgcolors"
	flagHashName           = "hash"
	flagDeterministicName  = "deterministic"
	flagColorDiffusionName = "color-diffusion"
	flagFlameChartName     = "flamechart"
	flagInvertedName       = "inverted"
	flagReverseName        = "reverse"
	flagNegateName         = "negate"
	flagNoSortName         = "no-sort"
	flagPaletteFileName    = "palette-file"
	flagPaletteBaseName    = "palette-base"
	flagFilterName         = "filter"
	flagXlsxSummaryName    = "xlsx-summary"
	flagXlsxTopNName       = "xlsx-top-n"
	flagConfigName         = "config"
	flagVerboseName        = "verbose"
)

var rootCmd = &cobra.Command{
	Use:           fmt.Sprintf("%s [flags] [INPUT]", app.Name),
	Short:         "Render a folded-stack file into an interactive SVG flame graph",
	Example:       strings.Join(examples, "\n"),
	Args:          cobra.MaximumNArgs(1),
	RunE:          runFlamegraph,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	def := flamegraph.DefaultOptions()
	flags := rootCmd.Flags()
	flags.StringVar(&flagTitle, flagTitleName, def.Title, "")
	flags.StringVar(&flagSubtitle, flagSubtitleName, "", "")
	flags.StringVar(&flagNotes, flagNotesName, "", "")
	flags.IntVar(&flagWidth, flagWidthName, def.ImageWidth, "")
	flags.IntVar(&flagHeight, flagHeightName, def.FrameHeight, "")
	flags.IntVar(&flagFontSize, flagFontSizeName, def.FontSize, "")
	flags.StringVar(&flagFontType, flagFontTypeName, def.FontType, "")
	flags.Float64Var(&flagMinWidth, flagMinWidthName, def.MinWidth, "")
	flags.StringVar(&flagColors, flagColorsName, "hot", "")
	flags.StringVar(&flagBGColors, flagBGColorsName, "", "")
	flags.BoolVar(&flagHash, flagHashName, def.Hash, "")
	flags.BoolVar(&flagDeterministic, flagDeterministicName, false, "")
	flags.BoolVar(&flagColorDiffusion, flagColorDiffusionName, false, "")
	flags.BoolVar(&flagFlameChart, flagFlameChartName, false, "")
	flags.BoolVar(&flagInverted, flagInvertedName, false, "")
	flags.BoolVar(&flagReverse, flagReverseName, false, "")
	flags.BoolVar(&flagNegate, flagNegateName, false, "")
	flags.BoolVar(&flagNoSort, flagNoSortName, false, "")
	flags.StringVar(&flagPaletteFile, flagPaletteFileName, "", "")
	flags.StringVar(&flagPaletteBase, flagPaletteBaseName, "", "")
	flags.StringVar(&flagFilter, flagFilterName, "", "")
	flags.StringVar(&flagXlsxSummary, flagXlsxSummaryName, "", "")
	flags.IntVar(&flagXlsxTopN, flagXlsxTopNName, def.XlsxTopN, "")
	flags.StringVar(&flagConfig, flagConfigName, "", "")
	flags.BoolVar(&flagVerbose, flagVerboseName, false, "")

	rootCmd.SetUsageFunc(usageFunc)
}

func usageFunc(cmd *cobra.Command) error {
	cmd.Printf("Usage: %s\n\n", cmd.Use)
	cmd.Printf("Examples:\n%s\n\n", cmd.Example)
	cmd.Println("Flags:")
	for _, group := range getFlagGroups() {
		cmd.Printf("  %s:\n", group.GroupName)
		for _, f := range group.Flags {
			pf := cmd.Flags().Lookup(f.Name)
			def := ""
			if pf != nil && pf.DefValue != "" {
				def = fmt.Sprintf(" (default: %s)", pf.DefValue)
			}
			cmd.Printf("    --%-20s %s%s\n", f.Name, f.Help, def)
		}
	}
	return nil
}

func getFlagGroups() []app.FlagGroup {
	return []app.FlagGroup{
		{GroupName: "Labels", Flags: []app.Flag{
			{Name: flagTitleName, Help: "chart title"},
			{Name: flagSubtitleName, Help: "chart subtitle"},
			{Name: flagNotesName, Help: "footer notes text"},
		}},
		{GroupName: "Geometry", Flags: []app.Flag{
			{Name: flagWidthName, Help: "image width in pixels"},
			{Name: flagHeightName, Help: "per-frame height in pixels"},
			{Name: flagFontSizeName, Help: "label font size"},
			{Name: flagFontTypeName, Help: "label font family"},
			{Name: flagMinWidthName, Help: "minimum frame width in pixels; narrower frames are dropped"},
		}},
		{GroupName: "Coloring", Flags: []app.Flag{
			{Name: flagColorsName, Help: "palette: hot, mem, io, wakeup, java, js, perl, python, red, green, blue, aqua, yellow, purple, orange, rust, multi"},
			{Name: flagBGColorsName, Help: "two comma-separated CSS colors for the background gradient"},
			{Name: flagHashName, Help: "hash-based per-name coloring (default on)"},
			{Name: flagDeterministicName, Help: "hash coloring only, no width weighting"},
			{Name: flagColorDiffusionName, Help: "width-weighted diffusion coloring"},
			{Name: flagPaletteFileName, Help: "persisted function->color map, read-modify-write across renders"},
			{Name: flagPaletteBaseName, Help: "seed palette map, consulted but never rewritten"},
		}},
		{GroupName: "Layout", Flags: []app.Flag{
			{Name: flagFlameChartName, Help: "order siblings first-seen instead of alphabetically"},
			{Name: flagInvertedName, Help: "icicle graph, drawn top-down"},
			{Name: flagReverseName, Help: "merge leaf-first instead of root-first"},
			{Name: flagNegateName, Help: "negate the reverse merge direction"},
			{Name: flagNoSortName, Help: "skip alphabetical sibling sort"},
		}},
		{GroupName: "Advanced", Flags: []app.Flag{
			{Name: flagFilterName, Help: "govaluate boolean expression over (name, depth, samples) to prune frames"},
			{Name: flagXlsxSummaryName, Help: "write the top-N heaviest stacks to this .xlsx path"},
			{Name: flagXlsxTopNName, Help: "how many stacks --xlsx-summary keeps"},
			{Name: flagConfigName, Help: "load flag values from a YAML file; explicit flags still override it"},
			{Name: flagVerboseName, Help: "enable debug logging"},
		}},
	}
}

// yamlConfig mirrors the subset of Options a --config file may set,
// grounded in the teacher's internal/common/targets.go yaml.v2 usage.
type yamlConfig struct {
	Title         *string  `yaml:"title"`
	Subtitle      *string  `yaml:"subtitle"`
	Notes         *string  `yaml:"notes"`
	Width         *int     `yaml:"width"`
	Height        *int     `yaml:"height"`
	FontSize      *int     `yaml:"fontsize"`
	FontType      *string  `yaml:"fonttype"`
	MinWidth      *float64 `yaml:"minwidth"`
	Colors        *string  `yaml:"colors"`
	Hash          *bool    `yaml:"hash"`
	Deterministic *bool    `yaml:"deterministic"`
	FlameChart    *bool    `yaml:"flamechart"`
	Inverted      *bool    `yaml:"inverted"`
	PaletteFile   *string  `yaml:"palette_file"`
	PaletteBase   *string  `yaml:"palette_base"`
	Filter        *string  `yaml:"filter"`
}

func loadConfig(path string, flags *pflag.FlagSet) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var cfg yamlConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}
	// Only apply a config value when the user didn't also pass the
	// corresponding flag explicitly, so flags always win.
	applyString(flags, flagTitleName, cfg.Title, &flagTitle)
	applyString(flags, flagSubtitleName, cfg.Subtitle, &flagSubtitle)
	applyString(flags, flagNotesName, cfg.Notes, &flagNotes)
	applyInt(flags, flagWidthName, cfg.Width, &flagWidth)
	applyInt(flags, flagHeightName, cfg.Height, &flagHeight)
	applyInt(flags, flagFontSizeName, cfg.FontSize, &flagFontSize)
	applyString(flags, flagFontTypeName, cfg.FontType, &flagFontType)
	applyFloat(flags, flagMinWidthName, cfg.MinWidth, &flagMinWidth)
	applyString(flags, flagColorsName, cfg.Colors, &flagColors)
	applyBool(flags, flagHashName, cfg.Hash, &flagHash)
	applyBool(flags, flagDeterministicName, cfg.Deterministic, &flagDeterministic)
	applyBool(flags, flagFlameChartName, cfg.FlameChart, &flagFlameChart)
	applyBool(flags, flagInvertedName, cfg.Inverted, &flagInverted)
	applyString(flags, flagPaletteFileName, cfg.PaletteFile, &flagPaletteFile)
	applyString(flags, flagPaletteBaseName, cfg.PaletteBase, &flagPaletteBase)
	applyString(flags, flagFilterName, cfg.Filter, &flagFilter)
	return nil
}

func applyString(flags *pflag.FlagSet, name string, v *string, dst *string) {
	if v != nil && !flags.Changed(name) {
		*dst = *v
	}
}

func applyInt(flags *pflag.FlagSet, name string, v *int, dst *int) {
	if v != nil && !flags.Changed(name) {
		*dst = *v
	}
}

func applyFloat(flags *pflag.FlagSet, name string, v *float64, dst *float64) {
	if v != nil && !flags.Changed(name) {
		*dst = *v
	}
}

func applyBool(flags *pflag.FlagSet, name string, v *bool, dst *bool) {
	if v != nil && !flags.Changed(name) {
		*dst = *v
	}
}

func runFlamegraph(cmd *cobra.Command, args []string) error {
	app.InitLogging(flagVerbose)

	if flagConfig != "" {
		if err := loadConfig(flagConfig, cmd.Flags()); err != nil {
			return fmt.Errorf("loading --config: %w", err)
		}
	}

	opts := flamegraph.DefaultOptions()
	opts.Title = flagTitle
	opts.Subtitle = flagSubtitle
	opts.Notes = flagNotes
	opts.ImageWidth = flagWidth
	opts.FrameHeight = flagHeight
	opts.FontSize = flagFontSize
	opts.FontType = flagFontType
	opts.MinWidth = flagMinWidth
	opts.Hash = flagHash
	opts.Deterministic = flagDeterministic
	opts.ColorDiffusion = flagColorDiffusion
	opts.FlameChart = flagFlameChart
	opts.Inverted = flagInverted
	opts.Reverse = flagReverse
	opts.Negate = flagNegate
	opts.NoSort = flagNoSort
	opts.PaletteMapPath = flagPaletteFile
	opts.PaletteBasePath = flagPaletteBase
	opts.Filter = flagFilter
	opts.XlsxSummaryPath = flagXlsxSummary
	opts.XlsxTopN = flagXlsxTopN

	if p, ok := color.ParsePalette(flagColors); ok {
		opts.Palette = p
	} else {
		return usageError(fmt.Sprintf("unrecognized --colors palette %q", flagColors))
	}
	if flagBGColors != "" {
		parts := strings.SplitN(flagBGColors, ",", 2)
		if len(parts) != 2 {
			return usageError("--bgcolors needs two comma-separated colors")
		}
		opts.BGColors = [2]string{parts[0], parts[1]}
	}

	input := os.Stdin
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return ioExitError(err)
		}
		defer f.Close()
		input = f
	}

	empty, total, err := flamegraph.Render(input, os.Stdout, opts)
	if err != nil {
		return renderExitError(err)
	}
	if empty {
		fmt.Fprintln(os.Stderr, "WARNING: no stack counts found")
		return nil
	}
	fmt.Fprintf(os.Stderr, "rendered %s samples\n", util.FormatCount(total))
	return nil
}

// exitError carries the process exit code spec §6 assigns to each
// failure class, alongside the human-readable message cobra prints.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func usageError(msg string) error { return &exitError{code: 64, err: fmt.Errorf("%s", msg)} }
func ioExitError(err error) error { return &exitError{code: 1, err: err} }

// renderExitError classifies a Render failure: parse/render errors exit
// 2, underlying I/O failures exit 1.
func renderExitError(err error) error { return &exitError{code: ferrors.ExitCode(err), err: err} }

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		code := 1
		if ee, ok := err.(*exitError); ok {
			code = ee.code
		}
		os.Exit(code)
	}
}
