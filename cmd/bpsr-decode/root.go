// Command bpsr-decode is the thin CLI front-end over the capture-parsing
// pipeline: it hands the core a byte slice and a set of output sinks, and
// otherwise stays out of the way (spec.md §1's explicit framing of the CLI
// as external to the core).
package main

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	maxCaptureSize = 100 * 1024 * 1024 // 100 MiB, decode/trade-decode inputs
	maxJSONLSize   = 50 * 1024 * 1024  // 50 MiB, dps JSONL input
)

var (
	quiet      bool
	baseLogger = logrus.New()
	log        = logrus.NewEntry(baseLogger)
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bpsr-decode",
		Short:         "Blue Protocol Star Resonance capture-parsing toolkit",
		Long:          "bpsr-decode parses BPSR network captures into combat DPS summaries and trading-house listings.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress informational logging")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if quiet {
			baseLogger.SetLevel(logrus.WarnLevel)
		} else {
			baseLogger.SetLevel(logrus.InfoLevel)
		}
		log = baseLogger.WithField("run_id", uuid.NewString())
	}

	root.AddCommand(newDecodeCmd())
	root.AddCommand(newDPSCmd())
	root.AddCommand(newTradeDecodeCmd())
	root.AddCommand(newUpdateItemsCmd())
	root.AddCommand(newInfoCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		exitWithError(err)
	}
}
