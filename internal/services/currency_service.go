package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/financefusion/api/internal/models"
)

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

type CurrencyRepository interface {
	Create(ctx context.Context, c *models.Currency) (*models.Currency, error)
	Get(ctx context.Context, code string) (*models.Currency, error)
	List(ctx context.Context) ([]*models.Currency, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Currency, error)
	Delete(ctx context.Context, code string, userID int64) error
}

// CurrencyService manages the shared currency table. Any user may reference
// any currency, only the creator may delete it.
type CurrencyService struct {
	currencies CurrencyRepository
	logger     *slog.Logger
}

func NewCurrencyService(currencies CurrencyRepository, logger *slog.Logger) *CurrencyService {
	return &CurrencyService{currencies: currencies, logger: logger}
}

// NormalizeCurrencyCode upper-cases and validates a three-letter code.
func NormalizeCurrencyCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !currencyCodePattern.MatchString(code) {
		return "", fmt.Errorf("%w: currency code must be three letters", models.ErrBadRequest)
	}
	return code, nil
}

func (s *CurrencyService) Create(ctx context.Context, userID int64, code, name string) (*models.Currency, error) {
	code, err := NormalizeCurrencyCode(code)
	if err != nil {
		return nil, err
	}
	name, err = cleanName("currency name", name)
	if err != nil {
		return nil, err
	}

	currency, err := s.currencies.Create(ctx, &models.Currency{Code: code, Name: name, UserID: userID})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("%w: currency %s already exists", models.ErrConflict, code)
		}
		return nil, storageError(s.logger, "failed to create currency", err, slog.String("code", code))
	}
	return currency, nil
}

func (s *CurrencyService) Get(ctx context.Context, code string) (*models.Currency, error) {
	code, err := NormalizeCurrencyCode(code)
	if err != nil {
		return nil, err
	}
	currency, err := s.currencies.Get(ctx, code)
	if err != nil {
		return nil, storageError(s.logger, "failed to get currency", err, slog.String("code", code))
	}
	return currency, nil
}

// List returns every currency, or only those created by userID when mine is set.
func (s *CurrencyService) List(ctx context.Context, userID int64, mine bool) ([]*models.Currency, error) {
	var (
		currencies []*models.Currency
		err        error
	)
	if mine {
		currencies, err = s.currencies.ListByUser(ctx, userID)
	} else {
		currencies, err = s.currencies.List(ctx)
	}
	if err != nil {
		return nil, storageError(s.logger, "failed to list currencies", err)
	}
	return currencies, nil
}

func (s *CurrencyService) Delete(ctx context.Context, userID int64, code string) error {
	code, err := NormalizeCurrencyCode(code)
	if err != nil {
		return err
	}
	if err := s.currencies.Delete(ctx, code, userID); err != nil {
		if errors.Is(err, models.ErrForeignKeyViolation) {
			return fmt.Errorf("%w: currency %s is still in use", models.ErrConflict, code)
		}
		return storageError(s.logger, "failed to delete currency", err, slog.String("code", code))
	}
	return nil
}
