package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ah-its-andy/anclora-nexus/internal/router"
)

var errNoRoute = errors.New("no conversion route")

var routeCmd = &cobra.Command{
	Use:   "route <from> <to>",
	Short: "List the conversion paths between two formats",
	Long: `Route searches the format graph breadth first and prints every path from
<from> to <to> within --max-steps hops, shortest first, then by estimated
quality. The command exits non-zero when no path exists.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cat, err := loadCatalog()
		if err != nil {
			return err
		}
		maxSteps, _ := cmd.Flags().GetInt("max-steps")
		asJSON, _ := cmd.Flags().GetBool("json")

		from, to := cat.Resolve(args[0]), cat.Resolve(args[1])
		rec, err := cat.NewRouter().Recommend(from, to, maxSteps)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if asJSON {
			if err := writeJSON(out, struct {
				router.Recommendation
				Paths []router.ConversionPath `json:"paths"`
			}{rec, rec.All}); err != nil {
				return err
			}
		} else {
			printRoutes(out, rec)
		}
		if !rec.Supported {
			return fmt.Errorf("%s -> %s: %w", from, to, errNoRoute)
		}
		return nil
	},
}

func init() {
	routeCmd.Flags().Int("max-steps", 0, "maximum hops per path (0 uses the default of 5)")
	routeCmd.Flags().Bool("json", false, "output the paths as JSON")

	rootCmd.AddCommand(routeCmd)
}

func printRoutes(out io.Writer, rec router.Recommendation) {
	if !rec.Supported {
		color.New(color.FgRed).Fprintf(out, "no conversion route from %s to %s\n", rec.Source, rec.Target)
		return
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPATH\tSTEPS\tQUALITY\tTIME\tNOTES")
	for i, p := range rec.All {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%.1fs\t%s\n", i, p, p.Steps, p.EstimatedQuality, p.EstimatedSeconds, pathNotes(p))
	}
	_ = tw.Flush()

	if rec.Warning != "" {
		color.New(color.FgYellow).Fprintf(out, "warning: %s\n", rec.Warning)
	}
}

func pathNotes(p router.ConversionPath) string {
	var notes []string
	if p.IsOptimal {
		notes = append(notes, "optimal")
	}
	if p.Lossless {
		notes = append(notes, "lossless")
	}
	if !p.IsRecommended {
		notes = append(notes, "not recommended")
	}
	return strings.Join(notes, ", ")
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
