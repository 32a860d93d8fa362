package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Display information about the available subcommands",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("bpsr-decode - Blue Protocol Star Resonance capture-parsing toolkit")
			fmt.Println()
			fmt.Println("Available subcommands:")
			fmt.Println("  decode         Decode combat packets from a binary capture into JSONL")
			fmt.Println("  dps            Reduce decoded combat JSONL into a DPS summary")
			fmt.Println("  trade-decode   Decode trading-house listings from a binary capture")
			fmt.Println("  update-items   Rebuild the item id -> name mapping from data dumps")
			fmt.Println()
			fmt.Println("Quick start:")
			fmt.Println("  bpsr-decode decode --descriptor-set schema.pb input.bin output.jsonl")
			fmt.Println("  bpsr-decode dps output.jsonl summary.json")
			fmt.Println("  bpsr-decode trade-decode input.bin listings.json")
			fmt.Println("  bpsr-decode update-items")
		},
	}
}
