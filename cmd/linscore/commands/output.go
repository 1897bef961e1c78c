package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ScoreResult is the output of the score command. Scores has one row per
// model and one column per statistics object.
type ScoreResult struct {
	Models     []string    `yaml:"models" json:"models"`
	Stats      []string    `yaml:"stats" json:"stats"`
	Normalized bool        `yaml:"normalized" json:"normalized"`
	Scores     [][]float64 `yaml:"scores" json:"scores"`
}

// StatsResult is the output of the stats command, shaped so that it can be
// pasted into a score request.
type StatsResult struct {
	Stats []StatsDoc `yaml:"stats" json:"stats"`
}

func nameOr(name, kind string, i int) string {
	if name != "" {
		return name
	}
	return kind + strconv.Itoa(i)
}

// openOutput returns w, or a created file when path is set.
func openOutput(w io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" {
		return w, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "create output file")
	}
	return f, f.Close, nil
}

func writeEncoded(w io.Writer, v any, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "table", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.Errorf("unknown format %q", format)
	}
}

func writeScores(w io.Writer, r *ScoreResult, format string) error {
	if format != "table" {
		return writeEncoded(w, r, format)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "\t")
	for _, s := range r.Stats {
		fmt.Fprintf(tw, "%s\t", s)
	}
	fmt.Fprintln(tw)
	for i, m := range r.Models {
		fmt.Fprintf(tw, "%s\t", m)
		for _, v := range r.Scores[i] {
			fmt.Fprintf(tw, "%s\t", strconv.FormatFloat(v, 'f', 6, 64))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
