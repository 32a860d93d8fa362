package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	return log
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBuildMappingFromSources_FlatMapShapes(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "item_name_map.json", `{
		"1": "Iron Sword",
		"2": {"name": "Wooden Shield", "icon": "shield.png"},
		"notanumber": "ignored"
	}`)

	mapping := BuildMappingFromSources([]string{path}, testLogger())

	require.Len(t, mapping, 2)
	assert.Equal(t, ItemRecord{ItemID: 1, Name: "Iron Sword"}, mapping[1])
	assert.Equal(t, ItemRecord{ItemID: 2, Name: "Wooden Shield", Icon: "shield.png"}, mapping[2])
}

func TestBuildMappingFromSources_ItemTableShape(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ItemTable.json", `{
		"100": {"Id": 100, "Name": "Crystal Orb", "Icon": "orb.png"},
		"200": {"Name": "Falls back to key"}
	}`)

	mapping := BuildMappingFromSources([]string{path}, testLogger())

	require.Len(t, mapping, 2)
	assert.Equal(t, "Crystal Orb", mapping[100].Name)
	assert.Equal(t, "Falls back to key", mapping[200].Name)
}

func TestBuildMappingFromSources_LaterSourceWins(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a.json", `{"1": "Old Name"}`)
	second := writeFile(t, dir, "b.json", `{"1": "New Name"}`)

	mapping := BuildMappingFromSources([]string{first, second}, testLogger())

	assert.Equal(t, "New Name", mapping[1].Name)
}

func TestBuildMappingFromSources_SkipsUnreadableAndMalformed(t *testing.T) {
	dir := t.TempDir()
	malformed := writeFile(t, dir, "bad.json", `not json at all`)
	good := writeFile(t, dir, "good.json", `{"1": "Iron Sword"}`)
	missing := filepath.Join(dir, "missing.json")

	mapping := BuildMappingFromSources([]string{malformed, missing, good}, testLogger())

	require.Len(t, mapping, 1)
	assert.Equal(t, "Iron Sword", mapping[1].Name)
}

func TestBuildMappingFromSources_SkipsNonObjectShape(t *testing.T) {
	dir := t.TempDir()
	arr := writeFile(t, dir, "array.json", `["not", "an", "object"]`)

	mapping := BuildMappingFromSources([]string{arr}, testLogger())

	assert.Empty(t, mapping)
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(map[int64]ItemRecord{5: {ItemID: 5, Name: "Iron Sword", Icon: "sword.png"}})

	name, icon, ok := r.Resolve(5)
	require.True(t, ok)
	assert.Equal(t, "Iron Sword", name)
	assert.Equal(t, "sword.png", icon)

	_, _, ok = r.Resolve(999)
	assert.False(t, ok)
}

func TestResolver_NilIsSafe(t *testing.T) {
	var r *Resolver
	_, _, ok := r.Resolve(1)
	assert.False(t, ok)
}
