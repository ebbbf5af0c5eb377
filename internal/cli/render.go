package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/garyjia/caseflow/internal/config"
	"github.com/garyjia/caseflow/internal/domain/event"
	"github.com/garyjia/caseflow/internal/domain/flow"
)

// renderOutcome prints a bounded wait result
func renderOutcome(w io.Writer, caseID string, outcome flow.Outcome, noColor bool) {
	switch outcome.Kind() {
	case flow.OutcomeNextItems:
		items := outcome.Items()
		fmt.Fprintf(w, "%s %s: %d item(s)\n", paint(color.FgGreen, "NEXT", noColor), caseID, len(items))
		for _, id := range items {
			fmt.Fprintf(w, "  - %s\n", id)
		}
	case flow.OutcomeEnded:
		fmt.Fprintf(w, "%s %s: case tree completed\n", paint(color.FgBlue, "ENDED", noColor), caseID)
	default:
		fmt.Fprintf(w, "%s %s: no next item before the deadline\n", paint(color.FgYellow, "TIMEOUT", noColor), caseID)
	}
}

// renderSnapshot prints a single hierarchy search
func renderSnapshot(w io.Writer, caseID string, snapshot flow.Snapshot, noColor bool) {
	fmt.Fprintf(w, "Case:      %s\n", caseID)
	fmt.Fprintf(w, "Ancestors: %s\n", strings.Join(snapshot.Ancestors, " -> "))

	ended := paint(color.FgYellow, "no", noColor)
	if snapshot.RootEnded {
		ended = paint(color.FgBlue, "yes", noColor)
	}
	fmt.Fprintf(w, "Root:      %s (completed: %s)\n", snapshot.Root(), ended)

	if len(snapshot.Items) == 0 {
		fmt.Fprintln(w, "Items:     (none)")
		return
	}
	fmt.Fprintf(w, "Items:     %d\n", len(snapshot.Items))
	for _, id := range snapshot.Items {
		fmt.Fprintf(w, "  - %s\n", id)
	}
}

// renderLocalItems prints the active items owned by a single case
func renderLocalItems(w io.Writer, caseID string, items []string) {
	if len(items) == 0 {
		fmt.Fprintf(w, "Case %s: no active items\n", caseID)
		return
	}
	fmt.Fprintf(w, "Case %s: %d active item(s)\n", caseID, len(items))
	for _, id := range items {
		fmt.Fprintf(w, "  - %s\n", id)
	}
}

// renderEvents prints one line per event with its attributes sorted by key
func renderEvents(w io.Writer, events []*event.Event, noColor bool) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events recorded")
		return
	}
	for _, evt := range events {
		keys := make([]string, 0, len(evt.Attributes))
		for k := range evt.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		attrs := make([]string, 0, len(keys))
		for _, k := range keys {
			attrs = append(attrs, k+"="+evt.Attributes[k])
		}

		fmt.Fprintf(w, "%s  %-18s %s\n",
			evt.Timestamp.UTC().Format(time.RFC3339),
			paint(color.FgCyan, evt.Type.String(), noColor),
			strings.Join(attrs, " "))
	}
}

// renderConfig prints the configuration as YAML using the same keys and
// duration notation the configuration file accepts
func renderConfig(w io.Writer, cfg *config.Config) error {
	doc := map[string]map[string]any{
		"server": {
			"host":          cfg.Server.Host,
			"port":          cfg.Server.Port,
			"read_timeout":  cfg.Server.ReadTimeout.String(),
			"write_timeout": cfg.Server.WriteTimeout.String(),
		},
		"database": {
			"path":              cfg.Database.Path,
			"max_open_conns":    cfg.Database.MaxOpenConns,
			"max_idle_conns":    cfg.Database.MaxIdleConns,
			"conn_max_lifetime": cfg.Database.ConnMaxLifetime.String(),
		},
		"flow_to_next": {
			"interval":        cfg.FlowToNext.Interval.String(),
			"default_timeout": cfg.FlowToNext.DefaultTimeout.String(),
			"max_timeout":     cfg.FlowToNext.MaxTimeout.String(),
			"max_depth":       cfg.FlowToNext.MaxDepth,
		},
		"events": {
			"retention":      cfg.Events.Retention.String(),
			"prune_interval": cfg.Events.PruneInterval.String(),
		},
		"logger": {
			"level":       cfg.Logger.Level,
			"output_path": cfg.Logger.OutputPath,
			"format":      cfg.Logger.Format,
		},
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return enc.Close()
}

func paint(attr color.Attribute, s string, noColor bool) string {
	if noColor {
		return s
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(s)
}
