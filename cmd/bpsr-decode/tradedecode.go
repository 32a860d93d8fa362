package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jordieb/bpsr-labs-go/internal/apperr"
	"github.com/jordieb/bpsr-labs-go/internal/catalog"
	"github.com/jordieb/bpsr-labs-go/internal/trading"
)

func newTradeDecodeCmd() *cobra.Command {
	var noItemNames bool
	var itemSources []string

	cmd := &cobra.Command{
		Use:   "trade-decode <capture> <output.json>",
		Short: "Decode BPSR trading center packets from a binary capture file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTradeDecode(args[0], args[1], noItemNames, itemSources)
		},
	}

	cmd.Flags().BoolVar(&noItemNames, "no-item-names", false, "skip item name resolution even if a mapping is discoverable")
	cmd.Flags().StringSliceVar(&itemSources, "item-source", nil, "additional item-mapping source file (repeatable)")

	return cmd
}

func runTradeDecode(capturePath, outputPath string, noItemNames bool, itemSources []string) error {
	raw, err := readCaptureFile(capturePath, maxCaptureSize)
	if err != nil {
		return err
	}

	listings := trading.ExtractListings(raw)
	if len(listings) == 0 {
		return apperr.ErrListingsEmpty
	}

	var resolve trading.ItemResolver
	if !noItemNames {
		sources := itemSources
		if len(sources) == 0 {
			sources = catalog.DefaultSearchLocations
		}
		mapping := catalog.BuildMappingFromSources(sources, baseLogger)
		if len(mapping) == 0 {
			log.Warn("item name mapping not found; output will include item ids only")
		} else {
			resolver := catalog.NewResolver(mapping)
			resolve = resolver.Resolve
		}
	}

	consolidated := trading.Consolidate(listings, resolve)

	payload, err := json.MarshalIndent(consolidated, "", "  ")
	if err != nil {
		return fmt.Errorf("trade-decode: serializing listings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("trade-decode: creating output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, payload, 0o644); err != nil {
		return fmt.Errorf("trade-decode: writing output: %w", err)
	}

	log.Infof("decoded %d listings, %d unique entries", len(listings), len(consolidated))
	return nil
}
