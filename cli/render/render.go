// Package render provides centralized output rendering for the atelier CLI.
//
// Format selection rules:
//   - text is the default (the result is prose, not a record)
//   - --format json or yaml emits a machine-readable document
//   - Invalid formats are errors
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/pithecene-io/atelier/iox"
	"github.com/pithecene-io/atelier/metrics"
	"github.com/pithecene-io/atelier/types"
)

// Format represents an output format.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format string, returning an error for invalid formats.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid format: %q (must be text, json, or yaml)", s)
	}
}

// Renderer handles output formatting.
type Renderer struct {
	format Format
	out    io.Writer
}

// New creates a renderer writing to out.
func New(format Format, out io.Writer) *Renderer {
	return &Renderer{format: format, out: out}
}

// resultDocument is the machine-readable shape of a run result.
type resultDocument struct {
	Text      string   `json:"text" yaml:"text"`
	SessionID string   `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	RunID     string   `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Members   []string `json:"members,omitempty" yaml:"members,omitempty"`
}

// Result renders one run result in the configured format.
func (r *Renderer) Result(result *types.RunResult) error {
	doc := resultDocument{
		Text:      result.Text,
		SessionID: result.SessionID,
		RunID:     result.RunID,
		Members:   result.Members,
	}

	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(r.out)
		defer iox.DiscardErr(enc.Close)
		return enc.Encode(doc)
	default:
		if _, err := fmt.Fprintln(r.out, result.Text); err != nil {
			return err
		}
		if result.SessionID != "" {
			if _, err := fmt.Fprintf(r.out, "\nsession: %s\n", result.SessionID); err != nil {
				return err
			}
		}
		return nil
	}
}

// Stats renders a metrics snapshot. Text format uses an aligned table.
func (r *Renderer) Stats(snap metrics.Snapshot) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case FormatYAML:
		enc := yaml.NewEncoder(r.out)
		defer iox.DiscardErr(enc.Close)
		return enc.Encode(snap)
	default:
		tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
		rows := [][2]string{
			{"requests started", fmt.Sprintf("%d", snap.RequestsStarted)},
			{"requests completed", fmt.Sprintf("%d", snap.RequestsCompleted)},
			{"requests failed", fmt.Sprintf("%d", snap.RequestsFailed)},
			{"frames decoded", fmt.Sprintf("%d", snap.FramesDecoded)},
			{"decode errors", fmt.Sprintf("%d", snap.DecodeErrors)},
			{"events consumed", fmt.Sprintf("%d", snap.EventsConsumed)},
			{"members resolved", fmt.Sprintf("%d", snap.MembersResolved)},
		}
		for _, row := range rows {
			if _, err := fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1]); err != nil {
				return err
			}
		}
		return tw.Flush()
	}
}
