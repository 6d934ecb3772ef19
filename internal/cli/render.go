package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/genposter/pkg/config"
	"github.com/matzehuels/genposter/pkg/export"
	"github.com/matzehuels/genposter/pkg/pipeline"
	"github.com/matzehuels/genposter/pkg/poster"
)

const defaultOutput = "poster.png"

// renderOpts holds the command-line flags for the render command that are
// not poster parameters.
type renderOpts struct {
	preset   string // built-in preset name or .toml path
	output   string // output file, or base path for several formats/posters
	formats  string // comma-separated formats
	quality  int    // JPEG quality
	count    int    // number of posters; seeds advance by layers+1 per poster
	parallel int    // concurrent renders for --count
	noCache  bool
	refresh  bool
	redis    string
}

// paramFlag exposes one poster parameter as a cobra flag. Values are kept
// as text and applied after the preset, so only flags the user actually set
// override it.
type paramFlag struct {
	field poster.Field
	value string
	set   bool
}

func (f *paramFlag) String() string { return f.value }

func (f *paramFlag) Set(s string) error {
	// Parse against a scratch copy so bad input fails at flag time.
	p := poster.DefaultParams()
	if err := f.field.Set(&p, s); err != nil {
		return err
	}
	f.value, f.set = s, true
	return nil
}

func (f *paramFlag) Type() string {
	switch f.field.Kind {
	case poster.FieldInt, poster.FieldSeed:
		return "int"
	case poster.FieldFloat:
		return "float"
	case poster.FieldBool:
		return "bool"
	}
	return "string"
}

// IsBoolFlag lets boolean parameters be given as --info-line without a value.
func (f *paramFlag) IsBoolFlag() bool { return f.field.Kind == poster.FieldBool }

// paramFlags registers every poster parameter on cmd and returns the flag
// values in field order.
func paramFlags(cmd *cobra.Command) []*paramFlag {
	defaults := poster.DefaultParams()
	fields := poster.Fields()
	flags := make([]*paramFlag, 0, len(fields))
	for _, f := range fields {
		pf := &paramFlag{field: f, value: f.Get(&defaults)}
		usage := f.Label
		switch {
		case f.Kind == poster.FieldSeed:
			usage = "random seed (0 = draw a fresh one)"
			pf.value = "0"
		case len(f.Options) > 0:
			usage += ": " + strings.Join(f.Options, ", ")
		}
		cmd.Flags().Var(pf, strings.ReplaceAll(f.Name, "_", "-"), usage)
		flags = append(flags, pf)
	}
	return flags
}

// applyParamFlags overlays the flags the user set onto p.
func applyParamFlags(p *poster.Params, flags []*paramFlag) error {
	for _, f := range flags {
		if !f.set {
			continue
		}
		if err := f.field.Set(p, f.value); err != nil {
			return err
		}
	}
	return nil
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{count: 1, parallel: pipeline.DefaultParallelism}
	var params []*paramFlag

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render posters to image files",
		Long: `Render one or more posters to PNG or JPEG files.

Parameters start from the built-in defaults, are replaced by the preset
given with --preset, and finally overridden by individual flags.

With --count N, N posters are rendered concurrently and written as
<output>-<seed>.<ext>. Seeds advance by layers+1 per poster so that no two
posters repeat each other's shapes. Without --seed every
poster draws a fresh seed, which is printed so it can be reproduced.

Seeded posters are cached locally; use --no-cache to bypass the cache or
--refresh to re-render and overwrite it.`,
		Example: `  genposter render --seed 42 -o poster.png
  genposter render --preset neon-night --layers 60 -f png,jpeg
  genposter render --palette-style ocean --shape-kind circle --count 8 --seed 100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), opts, params)
		},
	}

	cmd.Flags().StringVarP(&opts.preset, "preset", "p", "", "preset name or TOML file (see 'genposter preset list')")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `output file or base path; "-" writes to stdout (default "poster.png")`)
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): png (default), jpeg (comma-separated)")
	cmd.Flags().IntVar(&opts.quality, "quality", 0, "JPEG quality 1-100 (default 92)")
	cmd.Flags().IntVarP(&opts.count, "count", "n", opts.count, "number of posters to render")
	cmd.Flags().IntVar(&opts.parallel, "parallel", opts.parallel, "concurrent renders when --count > 1")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached posters and re-render")
	cmd.Flags().StringVar(&opts.redis, "redis", os.Getenv(envRedisURL), "redis URL for a shared cache (env "+envRedisURL+")")

	params = paramFlags(cmd)
	cmd.RegisterFlagCompletionFunc("preset", completePresets)
	for _, pf := range params {
		if len(pf.field.Options) == 0 {
			continue
		}
		options := pf.field.Options
		cmd.RegisterFlagCompletionFunc(strings.ReplaceAll(pf.field.Name, "_", "-"),
			func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
				return options, cobra.ShellCompDirectiveNoFileComp
			})
	}

	return cmd
}

// resolveOptions merges defaults, preset and flags into pipeline options.
func resolveOptions(opts renderOpts, flags []*paramFlag) (pipeline.Options, string, error) {
	params := poster.DefaultParams()
	var out config.Output
	if opts.preset != "" {
		preset, err := config.Load(opts.preset)
		if err != nil {
			return pipeline.Options{}, "", err
		}
		params, out = preset.Poster, preset.Output
	}
	if err := applyParamFlags(&params, flags); err != nil {
		return pipeline.Options{}, "", err
	}

	po := pipeline.Options{
		Params:  params,
		Formats: out.Formats,
		Quality: out.Quality,
		Refresh: opts.refresh,
	}
	if opts.formats != "" {
		po.Formats = parseFormats(opts.formats)
	}
	if opts.quality != 0 {
		po.Quality = opts.quality
	}

	output := opts.output
	if output == "" {
		output = defaultOutput
		if out.Directory != "" {
			output = filepath.Join(out.Directory, defaultOutput)
		}
	}
	return po, output, nil
}

func (c *CLI) runRender(ctx context.Context, opts renderOpts, flags []*paramFlag) error {
	po, output, err := resolveOptions(opts, flags)
	if err != nil {
		return err
	}
	po.Logger = c.Logger
	if err := po.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if output == "-" && (opts.count > 1 || len(po.Formats) > 1) {
		return fmt.Errorf("stdout output needs a single format and --count 1")
	}

	runner, err := c.newRunner(ctx, opts.noCache, opts.redis)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	msg := "Rendering poster..."
	if opts.count > 1 {
		msg = "Rendering posters..."
	}
	spinner := newSpinner(ctx, os.Stderr, msg, opts.count)
	po.OnPoster = func(*pipeline.Result) { spinner.Advance() }
	if output != "-" {
		spinner.Start()
	}

	var results []*pipeline.Result
	if opts.count > 1 {
		results, err = runner.Batch(ctx, po, opts.count, opts.parallel)
	} else {
		var res *pipeline.Result
		res, err = runner.Execute(ctx, po)
		results = []*pipeline.Result{res}
	}
	if err != nil {
		spinner.Stop()
		if output != "-" {
			printError("Render failed")
		}
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	if output == "-" {
		_, err := os.Stdout.Write(results[0].Artifacts[po.Formats[0]])
		return err
	}

	for _, res := range results {
		if err := writeResult(res, po.Formats, output, opts.count > 1); err != nil {
			return err
		}
	}
	if opts.count > 1 {
		prog.done(fmt.Sprintf("Rendered %d posters", len(results)))
	}
	return nil
}

// writeResult writes every artifact of res and prints a summary.
func writeResult(res *pipeline.Result, formats []string, output string, batch bool) error {
	base := output
	if batch {
		base = batchPath(output, res.Seed)
	}

	printSuccess("Poster %s", StyleNumber.Render(fmt.Sprintf("seed %d", res.Seed)))
	printRenderStats(res)
	for _, w := range res.Warnings {
		printWarning("%s", w)
	}
	for _, format := range formats {
		path := export.OutputPath(base, format)
		if err := export.WriteFile(path, res.Artifacts[format]); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	if !res.Seeded {
		printNextStep("Reproduce", fmt.Sprintf("genposter render --seed %d", res.Seed))
	}
	return nil
}

// batchPath inserts the seed before the extension: out/poster.png -> out/poster-42.png.
func batchPath(output string, seed int64) string {
	ext := filepath.Ext(output)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(output, ext), seed, ext)
}

func completePresets(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return config.Builtin(), cobra.ShellCompDirectiveNoFileComp
}
