package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jordieb/bpsr-labs-go/internal/apperr"
	"github.com/jordieb/bpsr-labs-go/internal/catalog"
)

const defaultItemMappingOutput = "data/game-data/item_name_map.json"

func newUpdateItemsCmd() *cobra.Command {
	var sources []string
	var output string
	var indent int

	cmd := &cobra.Command{
		Use:   "update-items",
		Short: "Regenerate the item id -> name mapping from Star Resonance data dumps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdateItems(sources, output, indent)
		},
	}

	cmd.Flags().StringSliceVarP(&sources, "source", "s", nil, "directory or file to scan for item tables (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", defaultItemMappingOutput, "destination path for the generated mapping")
	cmd.Flags().IntVar(&indent, "indent", 2, "indentation level for the JSON output")

	return cmd
}

func runUpdateItems(sources []string, output string, indent int) error {
	candidates := sources
	if len(candidates) == 0 {
		candidates = catalog.DefaultSearchLocations
	}

	existing := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			existing = append(existing, c)
		}
	}
	if len(existing) == 0 {
		return fmt.Errorf("%w: checked %v", apperr.ErrNoItemSources, candidates)
	}
	log.Infof("discovered %d candidate file(s)", len(existing))

	mapping := catalog.BuildMappingFromSources(existing, baseLogger)
	if len(mapping) == 0 {
		return fmt.Errorf("%w: no entries parsed from %v", apperr.ErrNoItemSources, existing)
	}
	log.Infof("compiled %d unique item entries", len(mapping))

	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return fmt.Errorf("%w: %s", apperr.ErrOutputIsDirectory, output)
	}

	simplified := make(map[string]string, len(mapping))
	for id, rec := range mapping {
		simplified[strconv.FormatInt(id, 10)] = rec.Name
	}

	prefix := ""
	indentStr := ""
	for i := 0; i < indent; i++ {
		indentStr += " "
	}
	payload, err := json.MarshalIndent(simplified, prefix, indentStr)
	if err != nil {
		return fmt.Errorf("update-items: serializing mapping: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("update-items: creating output directory: %w", err)
	}
	if err := os.WriteFile(output, payload, 0o644); err != nil {
		return fmt.Errorf("update-items: writing mapping: %w", err)
	}

	log.Infof("wrote mapping to %s", output)
	return nil
}
