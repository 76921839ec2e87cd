package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"fortio.org/safecast"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"originhash/internal/batch"
	"originhash/internal/config"
)

type resultView struct {
	RunID   string
	Scheme  batch.Scheme
	Results []batch.Result
}

type jsonResult struct {
	Path      string `json:"path"`
	Kind      string `json:"kind"`
	Scheme    string `json:"scheme"`
	Digest    string `json:"digest,omitempty"`
	Entries   int    `json:"entries"`
	Bytes     int64  `json:"bytes"`
	ElapsedMS int64  `json:"elapsed_ms"`
	Error     string `json:"error,omitempty"`
}

type jsonReport struct {
	RunID   string       `json:"run_id"`
	Scheme  string       `json:"scheme"`
	Results []jsonResult `json:"results"`
}

func renderResults(cmd *cobra.Command, cfg *config.Config, view resultView) error {
	switch cfg.Output.Format {
	case "json":
		return writeJSON(cmd, toJSONReport(view))
	case "table":
		colorize := colorEnabled(cfg.Output.Color, cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), renderResultTable(view.Results, colorize))
		return nil
	default:
		renderText(cmd, view.Results, colorEnabled(cfg.Output.Color, cmd.ErrOrStderr()))
		return nil
	}
}

// renderText prints "DIGEST  path" lines to stdout and failures to stderr.
func renderText(cmd *cobra.Command, results []batch.Result, colorizeErrors bool) {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	failed := color.New(color.FgRed)
	setColor(failed, colorizeErrors)
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintln(errOut, failed.Sprint(failureLine(res)))
			continue
		}
		fmt.Fprintf(out, "%s  %s\n", res.Digest, res.Path)
	}
}

func renderResultTable(results []batch.Result, colorize bool) string {
	ok := color.New(color.FgGreen)
	failed := color.New(color.FgRed)
	setColor(ok, colorize)
	setColor(failed, colorize)

	headers := []string{"Source", "Kind", "Scheme", "Digest", "Entries", "Size", "Elapsed", "Status"}
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		status := ok.Sprint("ok")
		digest := res.Digest
		if res.Err != nil {
			status = failed.Sprint(res.Err.Error())
			digest = "-"
		}
		rows = append(rows, []string{
			res.Path,
			string(res.Kind),
			string(res.Scheme),
			digest,
			strconv.Itoa(res.Entries),
			humanBytes(res.Bytes),
			res.Elapsed.Round(time.Millisecond).String(),
			status,
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft}
	return renderTable(headers, rows, aligns)
}

func toJSONReport(view resultView) jsonReport {
	report := jsonReport{
		RunID:   view.RunID,
		Scheme:  string(view.Scheme),
		Results: make([]jsonResult, 0, len(view.Results)),
	}
	for _, res := range view.Results {
		item := jsonResult{
			Path:      res.Path,
			Kind:      string(res.Kind),
			Scheme:    string(res.Scheme),
			Digest:    res.Digest,
			Entries:   res.Entries,
			Bytes:     res.Bytes,
			ElapsedMS: res.Elapsed.Milliseconds(),
		}
		if res.Err != nil {
			item.Error = res.Err.Error()
		}
		report.Results = append(report.Results, item)
	}
	return report
}

func humanBytes(n int64) string {
	u, err := safecast.Conv[uint64](n)
	if err != nil {
		return "?"
	}
	return humanize.IBytes(u)
}

func setColor(c *color.Color, enabled bool) {
	if enabled {
		c.EnableColor()
		return
	}
	c.DisableColor()
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
