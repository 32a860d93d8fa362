package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jordieb/bpsr-labs-go/internal/apperr"
	"github.com/jordieb/bpsr-labs-go/internal/combat"
	"github.com/jordieb/bpsr-labs-go/internal/framing"
)

var recognizedCaptureExtensions = map[string]bool{".bin": true, ".dat": true, ".raw": true}

func newDecodeCmd() *cobra.Command {
	var statsOut string
	var descriptorSet string
	var decoderVersion string

	cmd := &cobra.Command{
		Use:   "decode <capture> <output.jsonl>",
		Short: "Decode BPSR combat packets from a binary capture file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(args[0], args[1], statsOut, descriptorSet, decoderVersion)
		},
	}

	cmd.Flags().StringVar(&statsOut, "stats-out", "", "output file for parsing statistics (default: stdout)")
	cmd.Flags().StringVar(&descriptorSet, "descriptor-set", "", "path to a serialized protobuf FileDescriptorSet (required)")
	cmd.Flags().StringVar(&decoderVersion, "decoder", "v1", "combat decoder implementation (v1 or v2, both use the same dynamicpb path)")
	cmd.MarkFlagRequired("descriptor-set")

	return cmd
}

func runDecode(capturePath, outputPath, statsOutPath, descriptorSetPath, decoderVersion string) error {
	decoderVersion = strings.ToLower(decoderVersion)
	if decoderVersion != "v1" && decoderVersion != "v2" {
		return fmt.Errorf("decode: unrecognized --decoder value %q (want v1 or v2)", decoderVersion)
	}

	raw, err := readCaptureFile(capturePath, maxCaptureSize)
	if err != nil {
		return err
	}

	decoder, err := combat.NewDecoderFromFile(descriptorSetPath)
	if err != nil {
		return fmt.Errorf("decode: constructing decoder: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("decode: creating output directory: %w", err)
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("decode: creating output file: %w", err)
	}
	defer out.Close()

	writer := bufio.NewWriter(out)
	defer writer.Flush()

	reader := framing.NewFrameReader(raw)
	methodHistogram := make(map[uint32]int)

	for {
		nf, ok := reader.Next()
		if !ok {
			break
		}
		record, ok := decoder.Decode(nf)
		if !ok {
			continue
		}
		methodHistogram[nf.MethodID]++

		line, err := json.Marshal(record)
		if err != nil {
			log.WithError(err).WithField("offset", nf.Offset).Warn("decode: skipping record that failed to serialize")
			continue
		}
		writer.Write(line)
		writer.WriteByte('\n')
	}

	stats := reader.Stats()
	statsPayload := buildStatsPayload(stats, methodHistogram, decoderVersion)

	statsJSON, err := json.MarshalIndent(statsPayload, "", "  ")
	if err != nil {
		return fmt.Errorf("decode: serializing stats: %w", err)
	}

	if statsOutPath != "" {
		if err := os.MkdirAll(filepath.Dir(statsOutPath), 0o755); err != nil {
			return fmt.Errorf("decode: creating stats directory: %w", err)
		}
		if err := os.WriteFile(statsOutPath, statsJSON, 0o644); err != nil {
			return fmt.Errorf("decode: writing stats: %w", err)
		}
	} else {
		fmt.Println(string(statsJSON))
	}

	return nil
}

func buildStatsPayload(stats framing.FramerStats, methodHistogram map[uint32]int, decoderVersion string) map[string]interface{} {
	methodKeys := make([]uint32, 0, len(methodHistogram))
	for k := range methodHistogram {
		methodKeys = append(methodKeys, k)
	}
	sort.Slice(methodKeys, func(i, j int) bool { return methodKeys[i] < methodKeys[j] })

	methodHist := make(map[string]int, len(methodKeys))
	for _, k := range methodKeys {
		methodHist[fmt.Sprintf("0x%08x", k)] = methodHistogram[k]
	}

	fragmentHist := make(map[string]int, len(stats.FragmentHistogram))
	for ft, count := range stats.FragmentHistogram {
		fragmentHist[fmt.Sprintf("0x%04x", uint16(ft))] = count
	}

	return map[string]interface{}{
		"bytes_scanned":            stats.BytesScanned,
		"frames_parsed":            stats.FramesParsed,
		"notify_frames":            stats.NotifyFrames,
		"resync_events":            stats.ResyncEvents,
		"zstd_flag_without_magic":  stats.ZstdFlagWithoutMagic,
		"fragment_histogram":       fragmentHist,
		"method_histogram":         methodHist,
		"decoder_version":          decoderVersion,
		"sync_to_me_delta_info":    methodHistogram[0x0000002E],
	}
}

// readCaptureFile loads a capture file, warning (not failing) on an
// unexpected extension and enforcing maxSize.
func readCaptureFile(path string, maxSize int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrInputNotFound, path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !recognizedCaptureExtensions[ext] {
		log.Warnf("capture file extension %q may not be a binary capture file", ext)
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, max %d", apperr.ErrInputTooLarge, path, info.Size(), maxSize)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("decode: reading capture file: %w", err)
	}
	return raw, nil
}
