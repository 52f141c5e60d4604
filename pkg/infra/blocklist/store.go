package blocklist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nightkernel/sentinel/pkg/common"
	"github.com/nightkernel/sentinel/pkg/infra/storage"
	"github.com/sirupsen/logrus"
)

// Entry is one hard-blocked identity. TTL expiry is enforced by the
// backing store's native key expiry.
type Entry struct {
	HashedIP    string    `json:"hashedIp"`
	Reason      string    `json:"reason"`
	BlockedAt   time.Time `json:"blockedAt"`
	AutoBlocked bool      `json:"autoBlocked"`
	TTLSeconds  int       `json:"ttlSeconds"`
}

//go:generate mockery --name=Store --dir=. --output=./mocks --filename=blocklist_store_mock.go --case=underscore --with-expecter
type Store interface {
	Block(ctx context.Context, hashedIP, reason string, ttl time.Duration, autoBlocked bool) error
	Unblock(ctx context.Context, hashedIP string) error
	// IsBlocked errors when the backing store is unreachable; callers must
	// treat that as blocked.
	IsBlocked(ctx context.Context, hashedIP string) (bool, error)
	// BlockCount reports how many times the identity has ever been
	// blocked. The counter outlives entry expiry and unblocking, so
	// repeat offenders stay visible to the countermeasure rules.
	BlockCount(ctx context.Context, hashedIP string) int
	All(ctx context.Context) ([]Entry, error)
}

type store struct {
	storage storage.Client
	logger  *logrus.Logger
}

func NewStore(storageClient storage.Client, logger *logrus.Logger) Store {
	return &store{storage: storageClient, logger: logger}
}

func (s *store) Block(ctx context.Context, hashedIP, reason string, ttl time.Duration, autoBlocked bool) error {
	entry := Entry{
		HashedIP:    hashedIP,
		Reason:      reason,
		BlockedAt:   time.Now().UTC(),
		AutoBlocked: autoBlocked,
		TTLSeconds:  int(ttl.Seconds()),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal blocklist entry: %w", err)
	}

	key := fmt.Sprintf(common.BlockedKeyPattern, hashedIP)
	if err := s.storage.Set(ctx, key, string(data), ttl); err != nil {
		return fmt.Errorf("failed to write blocklist entry: %w", err)
	}
	if err := s.storage.SAdd(ctx, common.BlocklistIndexKey, hashedIP); err != nil {
		s.logger.WithError(err).Warn("failed to index blocklist entry")
	}

	countKey := fmt.Sprintf(common.BlockCountKeyPattern, hashedIP)
	if _, err := s.storage.Incr(ctx, countKey); err != nil {
		s.logger.WithError(err).Warn("failed to bump block count")
	} else if err := s.storage.Expire(ctx, countKey, common.ProfileTTL); err != nil {
		s.logger.WithError(err).Warn("failed to refresh block count ttl")
	}

	s.logger.WithFields(logrus.Fields{
		"hashed_ip": hashedIP,
		"reason":    reason,
		"auto":      autoBlocked,
		"ttl":       ttl.String(),
	}).Warn("identity blocked")
	return nil
}

func (s *store) Unblock(ctx context.Context, hashedIP string) error {
	key := fmt.Sprintf(common.BlockedKeyPattern, hashedIP)
	if err := s.storage.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete blocklist entry: %w", err)
	}
	if err := s.storage.SRem(ctx, common.BlocklistIndexKey, hashedIP); err != nil {
		s.logger.WithError(err).Warn("failed to unindex blocklist entry")
	}
	return nil
}

func (s *store) IsBlocked(ctx context.Context, hashedIP string) (bool, error) {
	key := fmt.Sprintf(common.BlockedKeyPattern, hashedIP)
	exists, err := s.storage.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("blocklist check failed: %w", err)
	}
	return exists, nil
}

func (s *store) BlockCount(ctx context.Context, hashedIP string) int {
	key := fmt.Sprintf(common.BlockCountKeyPattern, hashedIP)
	value, err := s.storage.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return 0
	}
	if err != nil {
		s.logger.WithError(err).Warn("block count unavailable, assuming zero")
		return 0
	}
	count, err := strconv.Atoi(value)
	if err != nil {
		s.logger.WithField("value", value).Warn("corrupt block counter, assuming zero")
		return 0
	}
	return count
}

// All lists current block entries, pruning index members whose entry has
// since expired.
func (s *store) All(ctx context.Context) ([]Entry, error) {
	hashes, err := s.storage.SMembers(ctx, common.BlocklistIndexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read blocklist index: %w", err)
	}

	entries := make([]Entry, 0, len(hashes))
	for _, hash := range hashes {
		key := fmt.Sprintf(common.BlockedKeyPattern, hash)
		data, err := s.storage.Get(ctx, key)
		if errors.Is(err, storage.ErrNotFound) {
			if remErr := s.storage.SRem(ctx, common.BlocklistIndexKey, hash); remErr != nil {
				s.logger.WithError(remErr).Warn("failed to prune expired blocklist index entry")
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read blocklist entry: %w", err)
		}
		var entry Entry
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			s.logger.WithError(err).WithField("hashed_ip", hash).Warn("corrupt blocklist entry skipped")
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
