package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List known formats and their direct conversions",
	Long: `Formats prints every format in the catalog with its pricing category and
the formats it converts to in one hop. With --from it instead lists every
format reachable from the given one within --max-steps hops.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cat, err := loadCatalog()
		if err != nil {
			return err
		}
		from, _ := cmd.Flags().GetString("from")
		maxSteps, _ := cmd.Flags().GetInt("max-steps")
		asJSON, _ := cmd.Flags().GetBool("json")
		out := cmd.OutOrStdout()

		if from != "" {
			from = cat.Resolve(from)
			targets, err := cat.NewRouter().ReachableTargets(from, maxSteps)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(out, map[string]any{"format": from, "targets": targets})
			}
			for _, t := range targets {
				fmt.Fprintln(out, t)
			}
			return nil
		}

		infos := cat.Formats()
		if asJSON {
			return writeJSON(out, infos)
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "FORMAT\tCATEGORY\tCONVERTS TO")
		for _, info := range infos {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Format, info.Category, strings.Join(info.Targets, " "))
		}
		return tw.Flush()
	},
}

func init() {
	formatsCmd.Flags().String("from", "", "list formats reachable from this one")
	formatsCmd.Flags().Int("max-steps", 0, "hop limit for --from (0 uses the default of 5)")
	formatsCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(formatsCmd)
}
