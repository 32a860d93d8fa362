package reduce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	serverTimeLine1 = `{"message_type":"blueprotobuf_package.SyncServerTime","data":{"server_milliseconds":1000}}`
	toMeDeltaLine   = `{"message_type":"blueprotobuf_package.SyncToMeDeltaInfo","data":{"delta_info":{"uuid":7,"base_delta":{"uuid":7,"skill_effects":{"damages":[{"attacker_uuid":7,"actual_value":100,"is_crit":true,"owner_id":42}]}}}}}`
	serverTimeLine2 = `{"message_type":"blueprotobuf_package.SyncServerTime","data":{"server_milliseconds":3000}}`
	otherAttacker   = `{"message_type":"blueprotobuf_package.SyncToMeDeltaInfo","data":{"delta_info":{"uuid":7,"base_delta":{"uuid":7,"skill_effects":{"damages":[{"attacker_uuid":9,"actual_value":55}]}}}}}`
)

// scenario 4 from spec §8.
func TestReducer_SpecScenario4(t *testing.T) {
	r := NewReducer()
	for _, line := range []string{serverTimeLine1, toMeDeltaLine, serverTimeLine2, toMeDeltaLine} {
		require.NoError(t, r.ProcessLine(line))
	}

	sum := r.Summary()
	assert.Equal(t, int64(200), sum.TotalDamage)
	assert.Equal(t, int64(2), sum.Hits)
	assert.Equal(t, int64(2), sum.Crits)
	assert.Equal(t, 2.0, sum.ActiveDurationS)
	assert.Equal(t, 100.0, sum.DPS)
	require.Contains(t, sum.Skills, "42")
	assert.Equal(t, Bucket{Damage: 200, Hits: 2, Crits: 2}, sum.Skills["42"])
}

// scenario 5: damage attributed to a different attacker never contributes.
func TestReducer_SpecScenario5_AttackerMismatchSkipped(t *testing.T) {
	r := NewReducer()
	require.NoError(t, r.ProcessLine(toMeDeltaLine)) // establishes player_uuid=7
	require.NoError(t, r.ProcessLine(otherAttacker))

	sum := r.Summary()
	assert.Equal(t, int64(100), sum.TotalDamage)
	assert.Equal(t, int64(1), sum.Hits)
}

func TestReducer_Idempotent(t *testing.T) {
	lines := []string{serverTimeLine1, toMeDeltaLine, serverTimeLine2}

	r1 := NewReducer()
	for _, l := range lines {
		require.NoError(t, r1.ProcessLine(l))
	}
	single := r1.Summary().TotalDamage

	r2 := NewReducer()
	for _, l := range append(append([]string{}, lines...), lines...) {
		require.NoError(t, r2.ProcessLine(l))
	}
	double := r2.Summary().TotalDamage

	assert.Equal(t, single*2, double)
}

func TestReducer_HealAndMissNeverContribute(t *testing.T) {
	heal := `{"message_type":"blueprotobuf_package.SyncNearDeltaInfo","data":{"delta_infos":[{"uuid":1,"skill_effects":{"damages":[{"type":"E_DAMAGE_TYPE_HEAL","actual_value":500}]}}]}}`
	miss := `{"message_type":"blueprotobuf_package.SyncNearDeltaInfo","data":{"delta_infos":[{"uuid":1,"skill_effects":{"damages":[{"is_miss":true,"actual_value":500}]}}]}}`

	r := NewReducer()
	require.NoError(t, r.ProcessLine(heal))
	require.NoError(t, r.ProcessLine(miss))

	sum := r.Summary()
	assert.Equal(t, int64(0), sum.TotalDamage)
	assert.Equal(t, int64(0), sum.Hits)
}

func TestReducer_ZeroDurationYieldsZeroDPS(t *testing.T) {
	r := NewReducer()
	require.NoError(t, r.ProcessLine(toMeDeltaLine))
	sum := r.Summary()
	assert.Equal(t, 0.0, sum.ActiveDurationS)
	assert.Equal(t, 0.0, sum.DPS)
}

func TestReducer_ValueSelectionShortCircuit(t *testing.T) {
	// actual_value is 0 (falsy), falls through to value, which is positive.
	line := `{"message_type":"blueprotobuf_package.SyncNearDeltaInfo","data":{"delta_infos":[{"uuid":3,"skill_effects":{"damages":[{"actual_value":0,"value":40,"hp_lessen_value":999}]}}]}}`
	r := NewReducer()
	require.NoError(t, r.ProcessLine(line))
	assert.Equal(t, int64(40), r.Summary().TotalDamage)
}

func TestReducer_MalformedLineIsAnError(t *testing.T) {
	r := NewReducer()
	err := r.ProcessLine("{not json")
	assert.Error(t, err)
}

func TestReducer_BlankLineIsNotAnError(t *testing.T) {
	r := NewReducer()
	assert.NoError(t, r.ProcessLine("   "))
	assert.NoError(t, r.ProcessLine(`{"message_type":"","data":{}}`))
}
