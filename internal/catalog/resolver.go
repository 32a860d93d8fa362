// Package catalog loads an item id -> (name, icon) mapping used to attach
// human-readable labels to trading-house listings. It is explicitly out of
// the core parsing pipeline's scope (spec.md treats it as an opaque
// ItemResolver capability the trading decoder may call) but still needs a
// concrete implementation for a complete repository; this one is recovered
// from the original Python's item_catalog.py.
package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"
)

// ItemRecord is one resolved item: its id, display name, and optional icon.
type ItemRecord struct {
	ItemID int64
	Name   string
	Icon   string
}

// DefaultSearchLocations are probed by the update-items command when the
// caller supplies no explicit -s sources, mirroring item_catalog.py's
// _DEFAULT_SEARCH_LOCATIONS.
var DefaultSearchLocations = []string{
	"data/game-data/item_name_map.json",
	"ref/StarResonanceData/item_name_map.json",
	"ref/StarResonanceData/ztable/item_name_map.json",
	"ref/StarResonanceData/ztable/ItemTable.json",
}

// sourceSchema loosely validates that a candidate file is a JSON object
// (either mapping shape the loaders accept is a top-level object); this
// catches files that are a JSON array, scalar, or simply not JSON at all
// before the per-shape loaders run, matching the "skip what can't be parsed"
// tolerance of the Python original with a single validation point instead of
// scattering type assertions through both loaders.
var sourceSchema = gojsonschema.NewStringLoader(`{
	"type": "object"
}`)

// BuildMappingFromSources loads and merges every readable, schema-valid
// source in paths, in order; later sources overwrite earlier ones for the
// same item id. Unreadable, malformed, or schema-invalid files are skipped,
// not fatal - a single bad catalog file must not abort the whole load.
func BuildMappingFromSources(paths []string, log *logrus.Logger) map[int64]ItemRecord {
	merged := make(map[int64]ItemRecord)
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			log.WithError(err).WithField("path", path).Debug("catalog: skipping unreadable source")
			continue
		}
		if !validSourceShape(raw) {
			log.WithField("path", path).Debug("catalog: skipping source that fails the shape schema")
			continue
		}

		var mapping map[int64]ItemRecord
		if strings.EqualFold(filepath.Base(path), "itemtable.json") {
			mapping, err = loadFromItemTable(raw)
		} else {
			mapping, err = loadRawMapping(raw)
		}
		if err != nil || len(mapping) == 0 {
			continue
		}
		for id, rec := range mapping {
			merged[id] = rec
		}
	}
	return merged
}

func validSourceShape(raw []byte) bool {
	result, err := gojsonschema.Validate(sourceSchema, gojsonschema.NewBytesLoader(raw))
	return err == nil && result.Valid()
}

// loadRawMapping handles the flat-map shape: decimal-string id -> either a
// bare string name or an object carrying name/Name and optional icon/Icon.
func loadRawMapping(raw []byte) (map[int64]ItemRecord, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}

	mapping := make(map[int64]ItemRecord)
	for rawKey, value := range payload {
		id, err := strconv.ParseInt(rawKey, 10, 64)
		if err != nil {
			continue
		}

		var name, icon string
		switch v := value.(type) {
		case string:
			name = v
		case map[string]interface{}:
			name = stringField(v, "name", "Name")
			icon = stringField(v, "icon", "Icon")
		default:
			continue
		}
		if name == "" {
			continue
		}
		mapping[id] = ItemRecord{ItemID: id, Name: name, Icon: icon}
	}
	return mapping, nil
}

// loadFromItemTable handles the ItemTable.json shape: each value carries its
// own Id/Name/Icon, falling back to the outer key as id when Id is absent.
func loadFromItemTable(raw []byte) (map[int64]ItemRecord, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}

	mapping := make(map[int64]ItemRecord)
	for rawKey, value := range payload {
		entry, ok := value.(map[string]interface{})
		if !ok {
			continue
		}
		name := stringField(entry, "Name")
		if name == "" {
			continue
		}

		id, ok := intField(entry, "Id")
		if !ok {
			parsed, err := strconv.ParseInt(rawKey, 10, 64)
			if err != nil {
				continue
			}
			id = parsed
		}

		mapping[id] = ItemRecord{ItemID: id, Name: name, Icon: stringField(entry, "Icon")}
	}
	return mapping, nil
}

func stringField(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func intField(m map[string]interface{}, key string) (int64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// Resolver wraps a loaded mapping behind the func(int64) (name, icon, ok)
// shape internal/trading's Consolidate expects. Constructed once and passed
// in explicitly, per spec.md §9's steer away from global-lazy-init.
type Resolver struct {
	mapping map[int64]ItemRecord
}

// NewResolver wraps an already-built mapping.
func NewResolver(mapping map[int64]ItemRecord) *Resolver {
	return &Resolver{mapping: mapping}
}

// Resolve implements trading.ItemResolver.
func (r *Resolver) Resolve(itemID int64) (name string, icon string, ok bool) {
	if r == nil {
		return "", "", false
	}
	rec, found := r.mapping[itemID]
	if !found {
		return "", "", false
	}
	return rec.Name, rec.Icon, true
}
