package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wiring/pkg/cache"
	werrors "github.com/matzehuels/wiring/pkg/errors"
	"github.com/matzehuels/wiring/pkg/pipeline"
	"github.com/matzehuels/wiring/pkg/wiring"
)

// renderFlags holds the command-line flags shared by render and check.
type renderFlags struct {
	output        string // output directory (default: next to the input)
	formats       string // comma-separated output formats
	combine       bool   // draw every group into one diagram
	group         string // render only this group
	strict        bool   // abort at the first non-advisory diagnostic
	failOnWarning bool   // exit non-zero when warnings were reported
	noCache       bool   // bypass the artifact cache
	refresh       bool   // re-render even when cached
	palette       string // alternate color table
	show          bool   // open the results with the system viewer
}

// errWarnings is returned when --fail-on-warning is set and the build
// reported diagnostics.
var errWarnings = errors.New("warnings reported")

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render [harness.yaml]",
		Short: "Build a harness and render its diagrams",
		Long: `Build the harness described by a YAML file and render one diagram per
connection group, plus one for devices nothing connects to.

Output files are written next to the input (or into --output):
  <name>.<ext>          the default group, or the combined diagram
  <name>_<group>.<ext>  every other group
  <name>.json           the validated model with all diagnostics

Results are cached locally for faster subsequent runs.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeHarness,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.pipelineOptions(cmd, &flags)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, &flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output directory (default: input directory)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): svg (default), pdf, png, dot, json (comma-separated)")
	cmd.Flags().BoolVarP(&flags.combine, "combine", "c", false, "draw all groups into a single diagram")
	cmd.Flags().StringVarP(&flags.group, "group", "g", "", "render only this group")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached diagrams")
	cmd.Flags().BoolVarP(&flags.show, "show", "s", false, "open the rendered files")
	addValidationFlags(cmd, &flags)

	return cmd
}

func addValidationFlags(cmd *cobra.Command, flags *renderFlags) {
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "abort at the first error instead of collecting warnings")
	cmd.Flags().BoolVar(&flags.failOnWarning, "fail-on-warning", false, "exit with an error when warnings are reported")
	cmd.Flags().StringVar(&flags.palette, "palette", "", "color table file (TOML)")
}

// pipelineOptions merges flags that were set on top of the configuration.
func (c *CLI) pipelineOptions(cmd *cobra.Command, flags *renderFlags) (pipeline.Options, error) {
	opts, err := c.baseOptions()
	if err != nil {
		return opts, err
	}
	set := cmd.Flags().Changed

	if set("strict") {
		opts.Strict = flags.strict
	}
	if set("combine") {
		opts.Combine = flags.combine
	}
	if set("format") {
		opts.Formats = parseFormats(flags.formats)
	}
	if set("palette") {
		if opts.Colors, err = loadColors(flags.palette); err != nil {
			return opts, err
		}
	}
	if !set("fail-on-warning") {
		flags.failOnWarning = c.settings().FailOnWarning
	}
	opts.Group = flags.group
	opts.Refresh = flags.refresh

	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return opts, err
	}
	return opts, nil
}

// runRender builds the harness, writes every artifact and reports the
// diagnostics.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, flags *renderFlags) error {
	if err := werrors.ValidatePath(input); err != nil {
		return err
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Building harness...")
	spinner.Start()

	res, err := runner.Build(ctx, data, opts)
	if err != nil {
		spinner.Stop()
		return reportBuildError(os.Stdout, err)
	}
	diagrams, err := pipeline.SelectDiagrams(res.Document, opts)
	if err != nil {
		spinner.Stop()
		return err
	}
	spinner.Update(fmt.Sprintf("Rendering %s...", plural(len(diagrams), "diagram")))

	artifacts, info, err := runner.Render(ctx, cache.Hash(data), res, opts)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s", plural(len(artifacts), "file")))

	paths, err := writeArtifacts(artifacts, input, flags.output)
	if err != nil {
		return err
	}

	printDiagnostics(res.Diagnostics)
	printSuccess("Wrote %s", plural(len(paths), "file"))
	for _, p := range paths {
		printFile(p)
	}
	printSummary(res.Document.Stats(), len(res.Diagnostics), info.Misses == 0, !flags.noCache)

	if flags.show {
		for _, p := range paths {
			if strings.HasSuffix(p, ".json") || strings.HasSuffix(p, ".dot") {
				continue
			}
			if err := openFile(p); err != nil {
				printWarning("could not open %s: %v", p, err)
			}
		}
	}

	if flags.failOnWarning && len(res.Diagnostics) > 0 {
		return fmt.Errorf("%w: %d", errWarnings, len(res.Diagnostics))
	}
	return nil
}

// reportBuildError prints the diagnostics carried by a strict abort before
// returning the error.
func reportBuildError(w io.Writer, err error) error {
	var fatal *wiring.FatalError
	if errors.As(err, &fatal) {
		for _, d := range fatal.Prior {
			fmt.Fprintln(w, formatDiagnostic(d))
		}
		fmt.Fprintln(w, formatDiagnostic(fatal.Diagnostic))
		return fmt.Errorf("validation failed: %s", fatal.Diagnostic.Kind)
	}
	return err
}

// outputStem returns the path prefix of every output file: the input name
// without extension, inside dir when given.
func outputStem(input, dir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, base)
}

// writeArtifacts writes each artifact under its file name and returns the
// written paths.
func writeArtifacts(artifacts []pipeline.Artifact, input, dir string) ([]string, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	stem := outputStem(input, dir)
	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		name := a.FileName(filepath.Base(stem))
		if err := werrors.ValidateFileStem(name); err != nil {
			return paths, err
		}
		path := filepath.Join(filepath.Dir(stem), name)
		if err := os.WriteFile(path, a.Data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
