package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/financefusion/api/internal/models"
)

type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) (*models.Tag, error)
	Get(ctx context.Context, id int64) (*models.Tag, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Tag, error)
	Update(ctx context.Context, tag *models.Tag) (*models.Tag, error)
	Delete(ctx context.Context, id, userID int64) error
	CountOwned(ctx context.Context, userID int64, ids []int64) (int, error)
	ListForAccount(ctx context.Context, accountID int64) ([]*models.Tag, error)
	ListForTransaction(ctx context.Context, transactionID int64) ([]*models.Tag, error)
	ListForAccounts(ctx context.Context, accountIDs []int64) (map[int64][]*models.Tag, error)
	ListForTransactions(ctx context.Context, transactionIDs []int64) (map[int64][]*models.Tag, error)
	ReplaceAccountTags(ctx context.Context, accountID int64, tagIDs []int64) error
	ReplaceTransactionTags(ctx context.Context, transactionID int64, tagIDs []int64) error
}

type TagService struct {
	tags   TagRepository
	logger *slog.Logger
}

func NewTagService(tags TagRepository, logger *slog.Logger) *TagService {
	return &TagService{tags: tags, logger: logger}
}

func (s *TagService) Create(ctx context.Context, userID int64, name, icon string) (*models.Tag, error) {
	name, err := cleanName("tag name", name)
	if err != nil {
		return nil, err
	}
	if err := checkIcon(icon); err != nil {
		return nil, err
	}

	tag, err := s.tags.Create(ctx, &models.Tag{UserID: userID, Name: name, Icon: strings.TrimSpace(icon)})
	if err != nil {
		return nil, storageError(s.logger, "failed to create tag", err, slog.Int64("user_id", userID))
	}
	return tag, nil
}

func (s *TagService) List(ctx context.Context, userID int64) ([]*models.Tag, error) {
	tags, err := s.tags.ListByUser(ctx, userID)
	if err != nil {
		return nil, storageError(s.logger, "failed to list tags", err, slog.Int64("user_id", userID))
	}
	return tags, nil
}

// Get returns the tag if userID owns it.
func (s *TagService) Get(ctx context.Context, userID, id int64) (*models.Tag, error) {
	tag, err := s.tags.Get(ctx, id)
	if err != nil {
		return nil, storageError(s.logger, "failed to get tag", err, slog.Int64("tag_id", id))
	}
	if tag.UserID != userID {
		return nil, models.ErrNotFound
	}
	return tag, nil
}

func (s *TagService) Update(ctx context.Context, userID, id int64, name, icon string) (*models.Tag, error) {
	tag, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if tag.Name, err = cleanName("tag name", name); err != nil {
		return nil, err
	}
	if err := checkIcon(icon); err != nil {
		return nil, err
	}
	tag.Icon = strings.TrimSpace(icon)

	updated, err := s.tags.Update(ctx, tag)
	if err != nil {
		return nil, storageError(s.logger, "failed to update tag", err, slog.Int64("tag_id", id))
	}
	return updated, nil
}

func (s *TagService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.tags.Delete(ctx, id, userID); err != nil {
		return storageError(s.logger, "failed to delete tag", err, slog.Int64("tag_id", id))
	}
	return nil
}

func checkIcon(icon string) error {
	if utf8.RuneCountInString(strings.TrimSpace(icon)) > maxNameLen {
		return fmt.Errorf("%w: icon must be at most %d characters", models.ErrBadRequest, maxNameLen)
	}
	return nil
}

// ownedTagIDs deduplicates ids and checks that every one belongs to userID.
func ownedTagIDs(ctx context.Context, tags TagRepository, logger *slog.Logger, userID int64, ids []int64) ([]int64, error) {
	unique := slices.Clone(ids)
	slices.Sort(unique)
	unique = slices.Compact(unique)
	if len(unique) == 0 {
		return unique, nil
	}

	owned, err := tags.CountOwned(ctx, userID, unique)
	if err != nil {
		return nil, storageError(logger, "failed to check tag ownership", err, slog.Int64("user_id", userID))
	}
	if owned != len(unique) {
		return nil, fmt.Errorf("%w: unknown tag", models.ErrBadRequest)
	}
	return unique, nil
}

func notFoundAsBadRequest(err error, what string) error {
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%w: %s does not exist in this plan", models.ErrBadRequest, what)
	}
	return err
}
