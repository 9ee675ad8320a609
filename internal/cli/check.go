package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	werrors "github.com/matzehuels/wiring/pkg/errors"
	wio "github.com/matzehuels/wiring/pkg/io"
	"github.com/matzehuels/wiring/pkg/pipeline"
)

// checkCommand creates the check command for validation without rendering.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		flags  renderFlags
		pinout bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "check [harness.yaml]",
		Short: "Validate a harness and report diagnostics",
		Long: `Validate a harness without rendering it.

Every inconsistency is reported as a warning. With --strict the first error
stops the build and the command fails. Use --fail-on-warning in CI to fail on
any diagnostic.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeHarness,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.pipelineOptions(cmd, &flags)
			if err != nil {
				return err
			}
			return c.runCheck(cmd, args[0], opts, &flags, pinout, asJSON)
		},
	}

	addValidationFlags(cmd, &flags)
	cmd.Flags().BoolVar(&pinout, "pinout", false, "print the pin table of every device")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write the validated model as JSON to stdout")

	return cmd
}

func (c *CLI) runCheck(cmd *cobra.Command, input string, opts pipeline.Options, flags *renderFlags, pinout, asJSON bool) error {
	if err := werrors.ValidatePath(input); err != nil {
		return err
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	runner := pipeline.NewRunner(nil, nil, c.Logger)
	defer runner.Close()

	res, err := runner.Build(cmd.Context(), data, opts)
	if err != nil {
		// Keep stdout parseable for JSON consumers.
		report := cmd.OutOrStdout()
		if asJSON {
			report = cmd.ErrOrStderr()
		}
		return reportBuildError(report, err)
	}

	if asJSON {
		if err := wio.WriteJSON(res, cmd.OutOrStdout()); err != nil {
			return err
		}
	} else {
		if pinout {
			for _, d := range res.Document.Devices() {
				fmt.Println(deviceHeader(d))
				if len(d.Pins) > 0 {
					fmt.Println(pinoutTable(d))
				}
				printNewline()
			}
		}
		printDiagnostics(res.Diagnostics)
		if len(res.Diagnostics) == 0 {
			printSuccess("%s is consistent", input)
		} else {
			printWarning("%s reported", plural(len(res.Diagnostics), "warning"))
		}
		printSummary(res.Document.Stats(), len(res.Diagnostics), false, false)
	}

	if flags.failOnWarning && len(res.Diagnostics) > 0 {
		return fmt.Errorf("%w: %d", errWarnings, len(res.Diagnostics))
	}
	return nil
}
