package profilestore_test

import (
	"context"
	"testing"
	"time"

	"github.com/nightkernel/sentinel/pkg/domain/profile"
	"github.com/nightkernel/sentinel/pkg/domain/threat"
	"github.com/nightkernel/sentinel/pkg/infra/profilestore"
	"github.com/nightkernel/sentinel/pkg/infra/storage"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func makeIncident(incType string, score int, ts time.Time) profile.Incident {
	return profile.Incident{
		ID:          "inc",
		Type:        incType,
		Key:         "/some/path",
		Method:      "GET",
		UserAgent:   "curl/8.0",
		ThreatScore: score,
		ThreatLevel: threat.Classify(score, threat.DefaultThresholds()),
		Timestamp:   ts,
	}
}

func TestRecordIncident_CreatesAndMerges(t *testing.T) {
	mem := storage.NewMemory()
	s := profilestore.NewStore(mem, testLogger())
	ctx := context.Background()
	now := time.Now().UTC()

	p, err := s.RecordIncident(ctx, "hash-a", makeIncident("suspicious_ua", 3, now))
	require.NoError(t, err)
	assert.Equal(t, 1, p.TotalIncidents)
	assert.Equal(t, now, p.FirstSeen)

	p, err = s.RecordIncident(ctx, "hash-a", makeIncident("robots_violation", 7, now.Add(time.Second)))
	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalIncidents)
	assert.Equal(t, 1, p.AttackTypes["suspicious_ua"])
	assert.Equal(t, 1, p.AttackTypes["robots_violation"])
	assert.Equal(t, 7, p.CurrentScore())
}

func TestRecordIncident_CapsHistory(t *testing.T) {
	mem := storage.NewMemory()
	s := profilestore.NewStore(mem, testLogger())
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 110; i++ {
		_, err := s.RecordIncident(ctx, "hash-a", makeIncident("suspicious_ua", i, now.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
	}

	p, err := s.Get(ctx, "hash-a")
	require.NoError(t, err)
	assert.Len(t, p.ThreatScoreHistory, profile.MaxScoreHistory)
	assert.Equal(t, 109, p.CurrentScore(), "newest entry must be last")
	assert.Equal(t, 110, p.TotalIncidents)
}

func TestGet_ComputesPatternsOnRead(t *testing.T) {
	mem := storage.NewMemory()
	s := profilestore.NewStore(mem, testLogger())
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := s.RecordIncident(ctx, "hash-a", makeIncident("honeytoken_access", 10, now))
	require.NoError(t, err)

	p, err := s.Get(ctx, "hash-a")
	require.NoError(t, err)
	types := make([]string, 0, len(p.Patterns))
	for _, pat := range p.Patterns {
		types = append(types, pat.Type)
	}
	assert.Contains(t, types, profile.PatternRapidEscalation)
}

func TestGet_UnknownIdentityReturnsNil(t *testing.T) {
	mem := storage.NewMemory()
	s := profilestore.NewStore(mem, testLogger())

	p, err := s.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestAll_SortedByLastSeenAndPruned(t *testing.T) {
	mem := storage.NewMemory()
	now := time.Now().UTC()
	mem.SetClock(func() time.Time { return now })
	s := profilestore.NewStore(mem, testLogger())
	ctx := context.Background()

	_, err := s.RecordIncident(ctx, "hash-old", makeIncident("suspicious_ua", 3, now.Add(-time.Hour)))
	require.NoError(t, err)
	_, err = s.RecordIncident(ctx, "hash-new", makeIncident("suspicious_ua", 3, now))
	require.NoError(t, err)

	// Simulate an expired profile left dangling in the index.
	require.NoError(t, mem.SAdd(ctx, "nk-profile-list", "hash-gone"))

	profiles, err := s.All(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "hash-new", profiles[0].HashedIP)
	assert.Equal(t, "hash-old", profiles[1].HashedIP)

	members, err := mem.SMembers(ctx, "nk-profile-list")
	require.NoError(t, err)
	assert.NotContains(t, members, "hash-gone", "stale index entries must be pruned")
}

func TestDelete(t *testing.T) {
	mem := storage.NewMemory()
	s := profilestore.NewStore(mem, testLogger())
	ctx := context.Background()

	_, err := s.RecordIncident(ctx, "hash-a", makeIncident("suspicious_ua", 3, time.Now()))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "hash-a"))

	p, err := s.Get(ctx, "hash-a")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestCurrentScore_ZeroForUnknownOrUnreachable(t *testing.T) {
	mem := storage.NewMemory()
	s := profilestore.NewStore(mem, testLogger())
	assert.Equal(t, 0, s.CurrentScore(context.Background(), "nobody"))

	mem.Fail(true)
	assert.Equal(t, 0, s.CurrentScore(context.Background(), "nobody"))
}
