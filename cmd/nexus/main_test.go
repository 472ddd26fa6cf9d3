package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	resetFlags(rootCmd)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRouteCommand(t *testing.T) {
	out, err := run(t, "route", "TXT", "png")
	require.NoError(t, err)
	assert.Contains(t, out, "txt -> pdf -> png")
	assert.Contains(t, out, "QUALITY")
}

func TestRouteCommandJSON(t *testing.T) {
	out, err := run(t, "route", "txt", "pdf", "--json")
	require.NoError(t, err)

	var body struct {
		Supported bool `json:"supported"`
		Primary   struct {
			Path      []string `json:"path"`
			IsOptimal bool     `json:"is_optimal"`
		} `json:"primary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.True(t, body.Supported)
	assert.Equal(t, []string{"txt", "pdf"}, body.Primary.Path)
	assert.True(t, body.Primary.IsOptimal)
}

func TestRouteCommandNoRoute(t *testing.T) {
	out, err := run(t, "route", "txt", "flac")
	assert.ErrorIs(t, err, errNoRoute)
	assert.Contains(t, out, "no conversion route from txt to flac")
}

func TestQuoteCommand(t *testing.T) {
	out, err := run(t, "quote", "video", "150MiB")
	require.NoError(t, err)
	assert.Contains(t, out, "credits:   10")
	assert.Contains(t, out, "large")

	out, err = run(t, "quote", "--from", "avi", "--to", "mp4", "--size", "150MiB", "--json")
	require.NoError(t, err)
	var quote struct {
		Category        string `json:"category"`
		CreditsRequired int    `json:"credits_required"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &quote))
	assert.Equal(t, "video", quote.Category)
	assert.Equal(t, 10, quote.CreditsRequired)

	out, err = run(t, "quote", "hologram")
	require.NoError(t, err)
	assert.Contains(t, out, "credits:   2")
	assert.Contains(t, out, "unknown category")
}

func TestQuoteCommandErrors(t *testing.T) {
	_, err := run(t, "quote")
	assert.Error(t, err)

	_, err = run(t, "quote", "--from", "avi")
	assert.Error(t, err)

	_, err = run(t, "quote", "video", "lots")
	assert.ErrorContains(t, err, "invalid size")

	_, err = run(t, "quote", "video", "--quality", "cinematic")
	assert.Error(t, err)
}

func TestFormatsCommand(t *testing.T) {
	out, err := run(t, "formats")
	require.NoError(t, err)
	assert.Contains(t, out, "CONVERTS TO")
	assert.Contains(t, out, "pdf docx html md")

	out, err = run(t, "formats", "--from", "txt", "--max-steps", "1")
	require.NoError(t, err)
	assert.Equal(t, "docx\nhtml\nmd\npdf\n", out)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"0", 0},
		{"1024", 1024},
		{"150MiB", 150 << 20},
		{"1.5 GiB", 3 << 29},
		{"10kb", 10000},
		{"2MB", 2000000},
		{"7b", 7},
	}
	for _, tt := range tests {
		got, err := parseSize(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"-1", "abc", "MiB", "nan", "NaN", "inf", "+Inf", "-inf", "1e30gb", "9223372036854775808", "8GiB0"} {
		_, err := parseSize(bad)
		assert.Error(t, err, bad)
	}
}
