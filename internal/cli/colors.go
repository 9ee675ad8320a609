package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// colorsCommand lists the active color table.
func (c *CLI) colorsCommand() *cobra.Command {
	var (
		palette string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "colors",
		Short: "List the wire color codes",
		Long: `List the wire color codes accepted in device and connection declarations.

Codes are matched by short code (RD) or long name (red). Long names are
accepted but reported as deprecated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if palette == "" {
				palette = c.settings().Palette
			}
			t, err := loadColors(palette)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(t.Entries())
			}
			fmt.Println(colorTable(t))
			printDetail("%d colors", t.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&palette, "palette", "", "color table file (TOML)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the table as JSON")

	return cmd
}
