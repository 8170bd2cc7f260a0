// Package blacklist implements the Blacklist Store (C5): a thin
// repository-backed lookup and idempotent writer for forbidden patterns.
package blacklist

import (
	"context"
	"errors"

	"github.com/contentforge/conditioncore/internal/domain/repository"
	"github.com/contentforge/conditioncore/pkg/models"
)

// Store wraps a BlacklistRepository with the C5 contract: idempotent inserts
// and subreddit-or-global lookups.
type Store struct {
	repo repository.BlacklistRepository
}

// New builds a Store.
func New(repo repository.BlacklistRepository) *Store {
	return &Store{repo: repo}
}

// LoadFor returns the global and subreddit-scoped entries for subreddit; when
// campaignID is set, only those with no campaign or with that campaign are
// kept. Campaign-scoped entries for other subreddits are not returned, and
// is_system_detected is not used as a filter.
func (s *Store) LoadFor(ctx context.Context, subreddit, campaignID string) ([]*models.BlacklistEntry, error) {
	return s.repo.LoadFor(ctx, subreddit, campaignID)
}

// Insert writes a forbidden pattern. A conflicting insert on
// (subreddit?, forbidden_pattern) is not surfaced as AlreadyExists here —
// the repository already folds it into a confidence raise, so C12's "treat
// AlreadyExists as success" contract holds trivially: Insert never errors on
// duplicate.
func (s *Store) Insert(ctx context.Context, entry *models.BlacklistEntry) error {
	err := s.repo.Insert(ctx, entry)
	if err != nil && errors.Is(err, models.ErrAlreadyExists) {
		return nil
	}
	return err
}
