package settings_test

import (
	"testing"

	"github.com/nightkernel/sentinel/pkg/domain/settings"
	"github.com/nightkernel/sentinel/pkg/domain/threat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_DestructiveRulesOff(t *testing.T) {
	s := settings.Default()
	assert.False(t, s.Rules.ZipBombOnBlock)
	assert.False(t, s.Rules.ZipBombOnHoneytoken)
	assert.False(t, s.Rules.SQLBackfire)
	assert.False(t, s.Rules.LogPoisoning)
	assert.True(t, s.Rules.AutoBlock)
	assert.True(t, s.Enabled)
}

func TestMerge_PartialKeepsBaseValues(t *testing.T) {
	base := settings.Default()
	merged, err := settings.Merge(base, map[string]interface{}{
		"thresholds": map[string]interface{}{"block": 20},
		"rules":      map[string]interface{}{"sqlBackfire": true},
	})
	require.NoError(t, err)

	assert.Equal(t, 20, merged.Thresholds.Block)
	assert.Equal(t, base.Thresholds.Warn, merged.Thresholds.Warn)
	assert.True(t, merged.Rules.SQLBackfire)
	assert.Equal(t, base.Rules.TarpitOnWarn, merged.Rules.TarpitOnWarn)
	assert.Equal(t, base.Tarpit, merged.Tarpit)
}

func TestMerge_BadInputReturnsBase(t *testing.T) {
	base := settings.Default()
	merged, err := settings.Merge(base, map[string]interface{}{
		"thresholds": "not-an-object",
	})
	assert.Error(t, err)
	assert.Equal(t, base, merged)
}

func TestEffectiveThresholds_FallsBackOnZeroes(t *testing.T) {
	s := settings.Settings{Thresholds: threat.Thresholds{Warn: 0, Tarpit: 0, Block: 15}}
	eff := s.EffectiveThresholds()
	assert.Equal(t, threat.DefaultThresholds().Warn, eff.Warn)
	assert.Equal(t, threat.DefaultThresholds().Tarpit, eff.Tarpit)
	assert.Equal(t, 15, eff.Block)
}

func TestEffectiveReasonPoints_OverridesAndDefaults(t *testing.T) {
	s := settings.Settings{ReasonPoints: map[string]int{
		"suspicious_ua": 9,
		"bogus_reason":  3,
	}}
	points := s.EffectiveReasonPoints()
	assert.Equal(t, 9, points[threat.ReasonSuspiciousUA])
	assert.Equal(t, threat.DefaultReasonPoints()[threat.ReasonHoneytokenAccess], points[threat.ReasonHoneytokenAccess])
}
