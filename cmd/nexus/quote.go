package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ah-its-andy/anclora-nexus/internal/pricing"
)

var quoteCmd = &cobra.Command{
	Use:   "quote [category] [size]",
	Short: "Price a conversion in credits",
	Long: `Quote prices a conversion. Either pass a category and a file size, or
name the formats with --from and --to and the size with --size; the category
is then taken from the target format (falling back to the source).

Sizes are bytes, or a number with a KB, MB, GB, KiB, MiB or GiB suffix.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cat, err := loadCatalog()
		if err != nil {
			return err
		}
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		sizeFlag, _ := cmd.Flags().GetString("size")
		qualityFlag, _ := cmd.Flags().GetString("quality")
		asJSON, _ := cmd.Flags().GetBool("json")

		tier, err := pricing.ParseQualityTier(qualityFlag)
		if err != nil {
			return err
		}

		var category, rawSize string
		switch {
		case from != "" || to != "":
			if from == "" || to == "" || len(args) > 0 {
				return errors.New("--from and --to go together and replace the category argument")
			}
			category = cat.ConversionCategory(from, to)
			rawSize = sizeFlag
		case len(args) == 0:
			return errors.New("a category or --from/--to is required")
		default:
			category = args[0]
			rawSize = sizeFlag
			if len(args) == 2 {
				rawSize = args[1]
			}
		}

		size, err := parseSize(rawSize)
		if err != nil {
			return err
		}

		quote := cat.NewEstimator(cfg.Logger()).Quote(category, size, tier)
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), quote)
		}
		printQuote(cmd.OutOrStdout(), quote)
		return nil
	},
}

func init() {
	quoteCmd.Flags().String("from", "", "source format")
	quoteCmd.Flags().String("to", "", "target format")
	quoteCmd.Flags().String("size", "0", "file size")
	quoteCmd.Flags().String("quality", "standard", "quality tier: standard, high or maximum")
	quoteCmd.Flags().Bool("json", false, "output the quote as JSON")

	rootCmd.AddCommand(quoteCmd)
}

func printQuote(out io.Writer, q pricing.CostQuote) {
	category := q.Category
	if category == "" {
		category = "(none)"
	}
	fmt.Fprintf(out, "category:  %s\n", category)
	fmt.Fprintf(out, "size:      %d bytes (%s, x%.2g)\n", q.FileSizeBytes, q.SizeTier, q.SizeMultiplier)
	fmt.Fprintf(out, "quality:   %s (x%.2g)\n", q.QualityTier, q.QualityMultiplier)
	fmt.Fprintf(out, "base cost: %d\n", q.BaseCost)
	color.New(color.Bold).Fprintf(out, "credits:   %d\n", q.CreditsRequired)
	if q.DefaultedCategory {
		color.New(color.FgYellow).Fprintln(out, "warning: unknown category, priced at the default cost")
	}
}

var sizeUnits = []struct {
	suffix string
	factor int64
}{
	{"kib", 1 << 10},
	{"mib", 1 << 20},
	{"gib", 1 << 30},
	{"kb", 1000},
	{"mb", 1000 * 1000},
	{"gb", 1000 * 1000 * 1000},
	{"b", 1},
}

// parseSize reads a byte count with an optional unit suffix.
func parseSize(s string) (int64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, nil
	}
	factor := int64(1)
	for _, u := range sizeUnits {
		if strings.HasSuffix(s, u.suffix) {
			factor = u.factor
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			break
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	bytes := v * float64(factor)
	if bytes >= math.MaxInt64 {
		return 0, fmt.Errorf("size %q is too large", s)
	}
	return int64(bytes), nil
}
