// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"
	"time"

	"github.com/go-petr/micro-bank/internal/domain"
	"github.com/go-petr/micro-bank/pkg/refpkg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, accountNumber, owner string, accType domain.AccountType, currency string) (domain.Account, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Account, error)
	GetByNumber(ctx context.Context, accountNumber string) (domain.Account, error)
	List(ctx context.Context, owner string, limit, offset int32) ([]domain.Account, error)
	AddBalance(ctx context.Context, amount string, id uuid.UUID) (domain.Account, error)
	DebitBalance(ctx context.Context, amount string, id uuid.UUID) (domain.Account, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo Repo
}

// New returns account service struct to manage account bussines logic.
func New(ar Repo) *Service {
	return &Service{repo: ar}
}

// Create creates and returns account for the given owner, type and currency.
func (s *Service) Create(ctx context.Context, owner string, accType domain.AccountType, currency string) (domain.Account, error) {
	accountNumber := refpkg.AccountNumber(time.Now())

	account, err := s.repo.Create(ctx, accountNumber, owner, accType, currency)
	if err != nil {
		return account, err
	}

	return account, nil
}

// Get returns account for the given account ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	return s.repo.Get(ctx, id)
}

// GetByNumber returns account for the given account number.
func (s *Service) GetByNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	return s.repo.GetByNumber(ctx, accountNumber)
}

// List returns accounts that are owned by the given user.
func (s *Service) List(ctx context.Context, owner string, pageSize, pageID int32) ([]domain.Account, error) {
	limit := pageSize
	offset := (pageID - 1) * pageSize

	return s.repo.List(ctx, owner, limit, offset)
}

// Deposit credits the account with the given positive amount.
//
// The mutation is applied atomically by the repository. It must not apply a
// partial amount.
func (s *Service) Deposit(ctx context.Context, id uuid.UUID, amount string) (domain.Account, error) {
	if err := validAmount(ctx, amount); err != nil {
		return domain.Account{}, err
	}

	return s.repo.AddBalance(ctx, amount, id)
}

// Withdraw debits the account with the given positive amount only if the
// balance is sufficient, as a single atomic mutation.
func (s *Service) Withdraw(ctx context.Context, id uuid.UUID, amount string) (domain.Account, error) {
	if err := validAmount(ctx, amount); err != nil {
		return domain.Account{}, err
	}

	return s.repo.DebitBalance(ctx, amount, id)
}

func validAmount(ctx context.Context, amount string) error {
	l := zerolog.Ctx(ctx)

	amountDecimal, err := decimal.NewFromString(amount)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.ErrNonPositiveAmount
	}

	if amountDecimal.LessThanOrEqual(decimal.Zero) {
		return domain.ErrNonPositiveAmount
	}

	return nil
}
