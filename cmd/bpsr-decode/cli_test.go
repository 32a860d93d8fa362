package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordieb/bpsr-labs-go/internal/apperr"
)

func TestRunDPS_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "combat.jsonl")
	output := filepath.Join(dir, "dps.json")

	lines := `{"message_type":"blueprotobuf_package.SyncServerTime","data":{"server_milliseconds":1000}}
{"message_type":"blueprotobuf_package.SyncToMeDeltaInfo","data":{"delta_info":{"uuid":7,"base_delta":{"uuid":7,"skill_effects":{"damages":[{"attacker_uuid":7,"actual_value":100,"is_crit":true,"owner_id":42}]}}}}}
{"message_type":"blueprotobuf_package.SyncServerTime","data":{"server_milliseconds":2000}}
`
	require.NoError(t, os.WriteFile(input, []byte(lines), 0o644))

	require.NoError(t, runDPS(input, output))

	raw, err := os.ReadFile(output)
	require.NoError(t, err)

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &summary))
	assert.Equal(t, float64(100), summary["total_damage"])
	assert.Equal(t, float64(1), summary["hits"])
}

func TestRunDPS_MissingInputIsNotFound(t *testing.T) {
	err := runDPS(filepath.Join(t.TempDir(), "missing.jsonl"), filepath.Join(t.TempDir(), "out.json"))
	assert.ErrorIs(t, err, apperr.ErrInputNotFound)
}

func TestRunDPS_MalformedLineAborts(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "combat.jsonl")
	output := filepath.Join(dir, "dps.json")
	require.NoError(t, os.WriteFile(input, []byte("not json\n"), 0o644))

	err := runDPS(input, output)
	assert.Error(t, err)
}

func TestRunTradeDecode_NoListingsIsAnError(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "capture.bin")
	output := filepath.Join(dir, "listings.json")
	require.NoError(t, os.WriteFile(input, []byte{0x00, 0x00, 0x00, 0x08, 0x00, 0x06, 'a', 'b'}, 0o644))

	err := runTradeDecode(input, output, true, nil)
	assert.Error(t, err)
}

func TestRunTradeDecode_MissingInputIsNotFound(t *testing.T) {
	err := runTradeDecode(filepath.Join(t.TempDir(), "missing.bin"), filepath.Join(t.TempDir(), "out.json"), true, nil)
	assert.ErrorIs(t, err, apperr.ErrInputNotFound)
}

func TestRunUpdateItems_NoSourcesFound(t *testing.T) {
	dir := t.TempDir()
	err := runUpdateItems([]string{filepath.Join(dir, "nope.json")}, filepath.Join(dir, "out.json"), 2)
	assert.Error(t, err)
}

func TestRunUpdateItems_WritesMergedMapping(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "items.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"1":"Iron Sword"}`), 0o644))
	output := filepath.Join(dir, "out.json")

	require.NoError(t, runUpdateItems([]string{src}, output, 2))

	raw, err := os.ReadFile(output)
	require.NoError(t, err)
	var mapping map[string]string
	require.NoError(t, json.Unmarshal(raw, &mapping))
	assert.Equal(t, "Iron Sword", mapping["1"])
}

func TestRunUpdateItems_OutputIsDirectory(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "items.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"1":"Iron Sword"}`), 0o644))
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(outDir, 0o755))

	err := runUpdateItems([]string{src}, outDir, 2)
	assert.Error(t, err)
}
