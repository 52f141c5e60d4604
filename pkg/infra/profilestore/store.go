package profilestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/nightkernel/sentinel/pkg/common"
	"github.com/nightkernel/sentinel/pkg/domain/profile"
	"github.com/nightkernel/sentinel/pkg/domain/threat"
	"github.com/nightkernel/sentinel/pkg/infra/storage"
	"github.com/sirupsen/logrus"
)

//go:generate mockery --name=Store --dir=. --output=./mocks --filename=profile_store_mock.go --case=underscore --with-expecter
type Store interface {
	// RecordIncident merges one incident into the identity's profile,
	// creating it on first observation. Read-modify-write; a lost update
	// under true concurrency is accepted since scores only ratchet upward.
	RecordIncident(ctx context.Context, hashedIP string, inc profile.Incident) (*profile.Profile, error)
	// Get returns the profile with behavioral patterns computed on read,
	// or nil when the identity has no profile.
	Get(ctx context.Context, hashedIP string) (*profile.Profile, error)
	All(ctx context.Context, limit, offset int) ([]*profile.Profile, error)
	Delete(ctx context.Context, hashedIP string) error
	// CurrentScore returns the identity's accumulated score, zero for an
	// unknown identity. Never errors; scoring must not depend on store health.
	CurrentScore(ctx context.Context, hashedIP string) int
}

type store struct {
	storage storage.Client
	logger  *logrus.Logger
}

func NewStore(storageClient storage.Client, logger *logrus.Logger) Store {
	return &store{storage: storageClient, logger: logger}
}

func (s *store) RecordIncident(ctx context.Context, hashedIP string, inc profile.Incident) (*profile.Profile, error) {
	p, err := s.load(ctx, hashedIP)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = profile.New(hashedIP, inc.Timestamp)
	}

	p.Merge(inc, threat.ScoreEntry{
		Score:     inc.ThreatScore,
		Level:     inc.ThreatLevel,
		Timestamp: inc.Timestamp,
	})

	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	if err := s.storage.SAdd(ctx, common.ProfileIndexKey, hashedIP); err != nil {
		s.logger.WithError(err).Warn("failed to index attacker profile")
	}
	return p, nil
}

func (s *store) Get(ctx context.Context, hashedIP string) (*profile.Profile, error) {
	p, err := s.load(ctx, hashedIP)
	if err != nil || p == nil {
		return nil, err
	}
	p.Patterns = profile.DetectPatterns(p)
	return p, nil
}

// All lists profiles sorted by last activity, newest first, pruning index
// entries whose profile data has expired.
func (s *store) All(ctx context.Context, limit, offset int) ([]*profile.Profile, error) {
	hashes, err := s.storage.SMembers(ctx, common.ProfileIndexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile index: %w", err)
	}

	profiles := make([]*profile.Profile, 0, len(hashes))
	for _, hash := range hashes {
		p, err := s.load(ctx, hash)
		if err != nil {
			return nil, err
		}
		if p == nil {
			if remErr := s.storage.SRem(ctx, common.ProfileIndexKey, hash); remErr != nil {
				s.logger.WithError(remErr).Warn("failed to prune stale profile index entry")
			}
			continue
		}
		p.Patterns = profile.DetectPatterns(p)
		profiles = append(profiles, p)
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].LastSeen.After(profiles[j].LastSeen)
	})

	if offset >= len(profiles) {
		return []*profile.Profile{}, nil
	}
	profiles = profiles[offset:]
	if limit > 0 && limit < len(profiles) {
		profiles = profiles[:limit]
	}
	return profiles, nil
}

func (s *store) Delete(ctx context.Context, hashedIP string) error {
	key := fmt.Sprintf(common.ProfileKeyPattern, hashedIP)
	if err := s.storage.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if err := s.storage.SRem(ctx, common.ProfileIndexKey, hashedIP); err != nil {
		s.logger.WithError(err).Warn("failed to unindex profile")
	}
	return nil
}

func (s *store) CurrentScore(ctx context.Context, hashedIP string) int {
	p, err := s.load(ctx, hashedIP)
	if err != nil {
		s.logger.WithError(err).Warn("failed to read profile for scoring, assuming zero")
		return 0
	}
	if p == nil {
		return 0
	}
	return p.CurrentScore()
}

func (s *store) load(ctx context.Context, hashedIP string) (*profile.Profile, error) {
	key := fmt.Sprintf(common.ProfileKeyPattern, hashedIP)
	data, err := s.storage.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	var p profile.Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("corrupt profile data: %w", err)
	}
	return &p, nil
}

func (s *store) save(ctx context.Context, p *profile.Profile) error {
	// Patterns are derived on read, never stored.
	p.Patterns = nil
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	key := fmt.Sprintf(common.ProfileKeyPattern, p.HashedIP)
	if err := s.storage.Set(ctx, key, string(data), common.ProfileTTL); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}
