package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/islomar/rostersearch/internal/config"
	"github.com/islomar/rostersearch/internal/criteria"
	"github.com/islomar/rostersearch/internal/runtime"
	"github.com/islomar/rostersearch/pkg/roster"
)

// OutputOptions configures CLI output behavior.
type OutputOptions struct {
	Verbose bool
	Quiet   bool
}

// PrintSearchSummary displays the outcome of a search.
func PrintSearchSummary(w io.Writer, result *runtime.Result, opts OutputOptions) {
	if result == nil || opts.Quiet {
		return
	}

	fmt.Fprintf(w, "✓ %d of %d matched %s\n", result.Matched, result.Scanned, result.Criterion)
	if opts.Verbose {
		fmt.Fprintf(w, "  Mapper: %s\n", result.Mapper)
		fmt.Fprintf(w, "  Duration: %v\n", result.Duration())
	}
}

// PrintCriteria lists criteria as an aligned name/description table.
func PrintCriteria(w io.Writer, entries []criteria.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDESCRIPTION")
	for _, e := range entries {
		desc := e.Description
		if desc == "" {
			desc = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\n", e.Name, desc)
	}
	return tw.Flush()
}

// PrintMappers lists mapper names on one line.
func PrintMappers(w io.Writer, names []string) {
	fmt.Fprintf(w, "Mappers: %s\n", strings.Join(names, ", "))
}

// WriteRoster encodes people as a roster document in the given format
// (json or yaml). The output is accepted by config.LoadRosterFile.
func WriteRoster(w io.Writer, people []roster.Person, format string) error {
	if people == nil {
		people = []roster.Person{}
	}
	doc := config.RosterFile{People: people}

	switch format {
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding roster as yaml: %w", err)
		}
		return enc.Close()
	case config.FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding roster as json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (expected json or yaml)", format)
	}
}

// PrintValidResult prints the success line of the validate command.
func PrintValidResult(w io.Writer, result *config.Result, verbose bool) {
	fmt.Fprintf(w, "✓ %s file is valid (format: %s)\n", kindLabel(result.Kind), result.Format)
	if !verbose || result.Data == nil {
		return
	}
	switch result.Kind {
	case config.KindCriteria:
		if items, ok := result.Data["criteria"].([]interface{}); ok {
			fmt.Fprintf(w, "  Criteria: %d\n", len(items))
		}
	case config.KindRoster:
		if items, ok := result.Data["people"].([]interface{}); ok {
			fmt.Fprintf(w, "  People: %d\n", len(items))
		}
	}
}

func kindLabel(k config.Kind) string {
	switch k {
	case config.KindCriteria:
		return "Criteria"
	case config.KindRoster:
		return "Roster"
	default:
		return "Configuration"
	}
}
