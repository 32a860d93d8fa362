package reduce

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const (
	typeServerTime     = "blueprotobuf_package.SyncServerTime"
	typeToMeDeltaInfo  = "blueprotobuf_package.SyncToMeDeltaInfo"
	typeNearDeltaInfo  = "blueprotobuf_package.SyncNearDeltaInfo"
	damageTypeHeal     = "E_DAMAGE_TYPE_HEAL"
)

// Record is the subset of a decoded combat JSONL line the reducer needs.
// It mirrors combat.DecodedRecord's JSON shape without importing the combat
// package, since the reducer's input is serialized JSON, not an in-process
// value - the two stages communicate only through the JSONL file per the
// spec's pull-based, single-consumer pipeline.
type Record struct {
	MessageType string                 `json:"message_type"`
	Data        map[string]interface{} `json:"data"`
}

// Reducer folds a sequence of decoded combat records into a running DPS
// state. A zero-value Reducer is ready to use.
type Reducer struct {
	totalDamage        int64
	hits               int64
	crits              int64
	playerUUID         *int64
	currentServerTime  *int64
	startTimeMs        *int64
	endTimeMs          *int64
	skillBuckets       map[string]*Bucket
	targetBuckets      map[string]*Bucket
}

// NewReducer returns a ready-to-use Reducer.
func NewReducer() *Reducer {
	return &Reducer{
		skillBuckets:  make(map[string]*Bucket),
		targetBuckets: make(map[string]*Bucket),
	}
}

// ProcessLine parses one JSONL line and routes it by message_type. A blank
// line (after trimming) is ignored. A malformed line returns an error: per
// spec §7, ReducerParseError is global and aborts the run rather than being
// silently skipped, to avoid masking upstream bugs in the decoded feed.
func (r *Reducer) ProcessLine(line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	var rec Record
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		return fmt.Errorf("reduce: parsing decoded record: %w", err)
	}
	r.ProcessRecord(rec)
	return nil
}

// ProcessRecord applies one already-parsed record to the running state.
func (r *Reducer) ProcessRecord(rec Record) {
	switch rec.MessageType {
	case typeServerTime:
		r.updateServerTime(rec.Data)
	case typeToMeDeltaInfo:
		r.updatePlayerUUID(rec.Data)
		deltaInfo, _ := rec.Data["delta_info"].(map[string]interface{})
		baseDelta, _ := deltaInfo["base_delta"].(map[string]interface{})
		r.processDelta(baseDelta)
	case typeNearDeltaInfo:
		deltas, _ := rec.Data["delta_infos"].([]interface{})
		for _, d := range deltas {
			if delta, ok := d.(map[string]interface{}); ok {
				r.processDelta(delta)
			}
		}
	}
}

func (r *Reducer) updateServerTime(data map[string]interface{}) {
	serverMs, ok := parseInt(data["server_milliseconds"])
	if !ok {
		serverMs, ok = parseInt(data["client_milliseconds"])
	}
	if ok {
		r.currentServerTime = &serverMs
	}
}

// updatePlayerUUID prefers delta_info.uuid, falling back to the nested
// delta_info.base_delta.uuid some message shapes carry instead.
func (r *Reducer) updatePlayerUUID(data map[string]interface{}) {
	deltaInfo, ok := data["delta_info"].(map[string]interface{})
	if !ok {
		return
	}
	if uuid, ok := parseInt(deltaInfo["uuid"]); ok {
		r.playerUUID = &uuid
		return
	}
	baseDelta, ok := deltaInfo["base_delta"].(map[string]interface{})
	if !ok {
		return
	}
	if uuid, ok := parseInt(baseDelta["uuid"]); ok {
		r.playerUUID = &uuid
	}
}

func (r *Reducer) processDelta(delta map[string]interface{}) {
	if delta == nil {
		return
	}
	skillEffects, ok := delta["skill_effects"].(map[string]interface{})
	if !ok {
		return
	}
	damages, _ := skillEffects["damages"].([]interface{})
	targetUUID, hasTarget := parseInt(delta["uuid"])

	for _, d := range damages {
		damage, ok := d.(map[string]interface{})
		if !ok {
			continue
		}
		r.processDamage(damage, targetUUID, hasTarget)
	}
}

func (r *Reducer) processDamage(damage map[string]interface{}, targetUUID int64, hasTarget bool) {
	if damage["type"] == damageTypeHeal {
		return
	}
	if truthy(damage["is_miss"]) {
		return
	}

	attackerUUID, hasAttacker := parseInt(damage["attacker_uuid"])
	if r.playerUUID != nil && hasAttacker && attackerUUID != *r.playerUUID {
		return
	}

	value, ok := firstPositive(damage, "actual_value", "value", "hp_lessen_value", "lucky_value")
	if !ok {
		return
	}

	isCrit := truthy(damage["is_crit"])
	r.totalDamage += value
	r.hits++
	if isCrit {
		r.crits++
	}

	if r.currentServerTime != nil {
		if r.startTimeMs == nil {
			t := *r.currentServerTime
			r.startTimeMs = &t
		}
		t := *r.currentServerTime
		r.endTimeMs = &t
	}

	if r.skillBuckets == nil {
		r.skillBuckets = make(map[string]*Bucket)
	}
	if r.targetBuckets == nil {
		r.targetBuckets = make(map[string]*Bucket)
	}
	if skillID, ok := firstPresent(damage, "owner_id", "hit_event_id"); ok {
		r.bucketFor(r.skillBuckets, fmt.Sprintf("%d", skillID)).credit(value, isCrit)
	}
	if hasTarget {
		r.bucketFor(r.targetBuckets, fmt.Sprintf("%d", targetUUID)).credit(value, isCrit)
	}
}

func (r *Reducer) bucketFor(buckets map[string]*Bucket, key string) *Bucket {
	b, ok := buckets[key]
	if !ok {
		b = &Bucket{}
		buckets[key] = b
	}
	return b
}

// firstPositive returns the first field among keys that parses to a strictly
// positive integer, matching the Python original's `or`-chaining (where 0 and
// missing both fall through to the next candidate).
func firstPositive(data map[string]interface{}, keys ...string) (int64, bool) {
	for _, k := range keys {
		if v, ok := parseInt(data[k]); ok && v > 0 {
			return v, true
		}
	}
	return 0, false
}

// firstPresent returns the first field among keys that parses to any integer
// (positive, negative, or zero), used for bucket keys where 0 is a valid id.
func firstPresent(data map[string]interface{}, keys ...string) (int64, bool) {
	for _, k := range keys {
		if v, ok := parseInt(data[k]); ok {
			return v, true
		}
	}
	return 0, false
}

func truthy(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case nil:
		return false
	default:
		n, ok := parseInt(v)
		return ok && n != 0
	}
}

// Summary is the final DPS report: totals plus sorted per-skill and
// per-target breakdowns.
type Summary struct {
	TotalDamage     int64             `json:"total_damage"`
	Hits            int64             `json:"hits"`
	Crits           int64             `json:"crits"`
	ActiveDurationS float64           `json:"active_duration_s"`
	DPS             float64           `json:"dps"`
	Skills          map[string]Bucket `json:"skills"`
	Targets         map[string]Bucket `json:"targets"`
}

// Summary computes the final report from accumulated state. Bucket maps are
// returned in full; callers that need a stable iteration order (e.g. when
// re-serializing outside of encoding/json's own sorted-key map marshaling)
// should use SortedKeys.
func (r *Reducer) Summary() Summary {
	var durationS float64
	if r.startTimeMs != nil && r.endTimeMs != nil {
		deltaMs := *r.endTimeMs - *r.startTimeMs
		if deltaMs < 0 {
			deltaMs = 0
		}
		durationS = float64(deltaMs) / 1000.0
	}

	var dps float64
	if durationS > 0 {
		dps = float64(r.totalDamage) / durationS
	}

	return Summary{
		TotalDamage:     r.totalDamage,
		Hits:            r.hits,
		Crits:           r.crits,
		ActiveDurationS: durationS,
		DPS:             dps,
		Skills:          copyBuckets(r.skillBuckets),
		Targets:         copyBuckets(r.targetBuckets),
	}
}

func copyBuckets(src map[string]*Bucket) map[string]Bucket {
	out := make(map[string]Bucket, len(src))
	for k, v := range src {
		out[k] = *v
	}
	return out
}

// SortedKeys returns a bucket map's keys in ascending string order, matching
// the Python original's `sorted(self.skill_buckets.items())` (encoding/json
// already sorts map[string]... keys when marshaling, so this is mainly for
// callers that want to iterate deterministically before serialization).
func SortedKeys(buckets map[string]Bucket) []string {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
