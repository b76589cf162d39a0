package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lydakis/hostbridge/internal/tools"
)

type toolListEntry struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ReadOnly    bool   `json:"readOnly"`
}

func toolListEntries(verbose bool) []toolListEntry {
	names := tools.Names()
	entries := make([]toolListEntry, 0, len(names))
	for _, name := range names {
		tool, _ := tools.Lookup(name)
		entry := toolListEntry{Name: tool.Name, ReadOnly: tools.ReadOnly(tool)}
		if verbose {
			entry.Description = tool.Description
		} else {
			entry.Description = firstSentence(tool.Description)
		}
		entries = append(entries, entry)
	}
	return entries
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ". "); i >= 0 {
		return s[:i+1]
	}
	return s
}

func writeToolListText(w io.Writer, entries []toolListEntry) error {
	for _, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			continue
		}
		line := name
		if desc := strings.TrimSpace(entry.Description); desc != "" {
			line += "\t" + desc
		}
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return fmt.Errorf("writing tool list output: %w", err)
		}
	}
	return nil
}

func (a *app) toolsCommand() *cobra.Command {
	var verbose, asJSON bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools hostbridge exposes",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries := toolListEntries(verbose)
			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			return writeToolListText(a.stdout, entries)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show full tool descriptions")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the list as JSON")
	return cmd
}
