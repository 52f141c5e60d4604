package incidentlog_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nightkernel/sentinel/pkg/domain/profile"
	"github.com/nightkernel/sentinel/pkg/infra/incidentlog"
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

func TestAppendAndRecent_MostRecentFirst(t *testing.T) {
	mem := storage.NewMemory()
	log := incidentlog.NewLog(mem, testLogger(), 100)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		log.Append(ctx, profile.Incident{
			ID:        fmt.Sprintf("inc-%d", i),
			Type:      "suspicious_ua",
			Timestamp: time.Now(),
		})
	}

	incidents, err := log.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, incidents, 3)
	assert.Equal(t, "inc-2", incidents[0].ID)
	assert.Equal(t, "inc-0", incidents[2].ID)
}

func TestAppend_BoundedLength(t *testing.T) {
	mem := storage.NewMemory()
	log := incidentlog.NewLog(mem, testLogger(), 5)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		log.Append(ctx, profile.Incident{ID: fmt.Sprintf("inc-%d", i)})
	}

	incidents, err := log.Recent(ctx, 100)
	require.NoError(t, err)
	require.Len(t, incidents, 5)
	assert.Equal(t, "inc-11", incidents[0].ID, "newest entry kept")
}

func TestAppend_StoreFailureDoesNotPanic(t *testing.T) {
	mem := storage.NewMemory()
	mem.Fail(true)
	log := incidentlog.NewLog(mem, testLogger(), 5)

	assert.NotPanics(t, func() {
		log.Append(context.Background(), profile.Incident{ID: "inc"})
	})
}

func TestClassify(t *testing.T) {
	assert.Equal(t, incidentlog.LabelHoneytokenAccess,
		incidentlog.Classify(profile.Incident{Type: "honeytoken_access"}))
	assert.Equal(t, incidentlog.LabelRobotsViolation,
		incidentlog.Classify(profile.Incident{Type: "robots_violation"}))
	assert.Equal(t, incidentlog.LabelHardBlock,
		incidentlog.Classify(profile.Incident{Type: "hard_block"}))
	assert.Equal(t, incidentlog.LabelHardBlock,
		incidentlog.Classify(profile.Incident{Type: "other", Countermeasure: "block"}))
	assert.Equal(t, incidentlog.LabelThreatEscalation,
		incidentlog.Classify(profile.Incident{Type: "suspicious_ua", ThreatScore: 4}))
	assert.Equal(t, incidentlog.LabelSecurityEvent,
		incidentlog.Classify(profile.Incident{Type: "misc"}))
}
