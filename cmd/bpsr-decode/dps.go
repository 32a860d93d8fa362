package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jordieb/bpsr-labs-go/internal/apperr"
	"github.com/jordieb/bpsr-labs-go/internal/reduce"
)

var recognizedJSONLExtensions = map[string]bool{".jsonl": true, ".json": true}

func newDPSCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dps <decoded.jsonl> <summary.json>",
		Short: "Reduce decoded combat JSONL into a DPS summary",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDPS(args[0], args[1])
		},
	}
	return cmd
}

func runDPS(inputPath, outputPath string) error {
	info, err := os.Stat(inputPath)
	if err != nil {
		return fmt.Errorf("%w: %s", apperr.ErrInputNotFound, inputPath)
	}
	ext := strings.ToLower(filepath.Ext(inputPath))
	if !recognizedJSONLExtensions[ext] {
		log.Warnf("input extension %q may not be a JSONL file", ext)
	}
	if info.Size() > maxJSONLSize {
		return fmt.Errorf("%w: %s is %d bytes, max %d", apperr.ErrInputTooLarge, inputPath, info.Size(), maxJSONLSize)
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("dps: opening input: %w", err)
	}
	defer in.Close()

	reducer := reduce.NewReducer()
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := reducer.ProcessLine(line); err != nil {
			return fmt.Errorf("%w: %v", apperr.ErrReducerParse, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("dps: reading input: %w", err)
	}

	summary := reducer.Summary()
	payload, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("dps: serializing summary: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("dps: creating output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, payload, 0o644); err != nil {
		return fmt.Errorf("dps: writing summary: %w", err)
	}

	fmt.Println(string(payload))
	return nil
}
