// Package transactionservice implements the settlement engine. A settlement
// request is validated, applied to account balances through the account
// service, and persisted exactly once as a terminal Completed or Failed
// record.
package transactionservice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/micro-bank/internal/domain"
	"github.com/go-petr/micro-bank/pkg/errorspkg"
	"github.com/go-petr/micro-bank/pkg/metricspkg"
	"github.com/go-petr/micro-bank/pkg/refpkg"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=transactionservice

// Repo provides durable storage for settled transactions.
type Repo interface {
	Create(ctx context.Context, t domain.Transaction) (domain.Transaction, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Transaction, error)
	GetByReference(ctx context.Context, referenceNumber string) (domain.Transaction, error)
	GetByIdempotencyKey(ctx context.Context, key string) (domain.Transaction, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int32) ([]domain.Transaction, error)
	List(ctx context.Context, limit, offset int32) ([]domain.Transaction, error)
}

// AccountGateway reads accounts and mutates balances in the account service.
type AccountGateway interface {
	Get(ctx context.Context, id uuid.UUID) (domain.Account, error)
	ApplyDelta(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error
}

// IdempotencyCache is a fast lookaside from idempotency key to the settled
// transaction id. Misses fall through to the repo.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) (uuid.UUID, bool, error)
	Save(ctx context.Context, key string, id uuid.UUID) error
}

// EventPublisher emits settlement events for downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event interface{}) error
}

// Auditor records the settlement trail.
type Auditor interface {
	Record(ctx context.Context, entry domain.SettlementAudit) error
}

// SettledRoutingKey is the routing key for settlement outcome events.
const SettledRoutingKey = "transaction.settled"

// SettledEvent is the message published after every settlement.
type SettledEvent struct {
	TransactionID            uuid.UUID                `json:"transaction_id"`
	ReferenceNumber          string                   `json:"reference_number"`
	Type                     domain.TransactionType   `json:"type"`
	Status                   domain.TransactionStatus `json:"status"`
	Amount                   string                   `json:"amount"`
	Currency                 string                   `json:"currency"`
	SourceAccountNumber      string                   `json:"source_account_number"`
	DestinationAccountNumber string                   `json:"destination_account_number,omitempty"`
	Owner                    string                   `json:"owner"`
	FailureReason            string                   `json:"failure_reason,omitempty"`
	SettledAt                time.Time                `json:"settled_at"`
}

// Options carries the optional collaborators of the settlement engine.
// Nil fields disable the corresponding side effect.
type Options struct {
	Cache   IdempotencyCache
	Events  EventPublisher
	Auditor Auditor
	Metrics *metricspkg.Settlement

	// CompensateTransfers re-credits the source account when the credit
	// leg of a transfer fails after the debit leg was applied. When false
	// the debit is left in place and the transfer is flagged unreconciled.
	CompensateTransfers bool
}

// Service settles transactions.
type Service struct {
	repo     Repo
	accounts AccountGateway
	opts     Options
}

// New returns a settlement service.
func New(repo Repo, accounts AccountGateway, opts Options) *Service {
	return &Service{
		repo:     repo,
		accounts: accounts,
		opts:     opts,
	}
}

// outcome accumulates the result of the balance mutation phase.
type outcome struct {
	failureReason string
	unreconciled  bool
}

func (o *outcome) fail(reason string) {
	o.failureReason = reason
}

// Settle validates arg, applies the balance mutations for its type and
// persists the terminal record. Validation failures return an error and leave
// no record; mutation failures return a persisted transaction with status
// Failed and a nil error.
func (s *Service) Settle(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)
	started := time.Now()

	if arg.IdempotencyKey != "" {
		if t, ok := s.replay(ctx, arg.IdempotencyKey); ok {
			l.Info().Str("idempotency_key", arg.IdempotencyKey).
				Str("reference_number", t.ReferenceNumber).
				Msg("settlement replayed")
			return t, nil
		}
	}

	amount, err := parseAmount(arg.Amount)
	if err != nil {
		return domain.Transaction{}, err
	}

	source, err := s.resolveSource(ctx, arg)
	if err != nil {
		return domain.Transaction{}, err
	}

	var destination domain.Account
	if arg.Type == domain.TypeTransfer {
		destination, err = s.resolveDestination(ctx, arg, source)
		if err != nil {
			return domain.Transaction{}, err
		}
	}

	t := domain.Transaction{
		ID:                  uuid.New(),
		Type:                arg.Type,
		Amount:              amount.String(),
		Currency:            source.Currency,
		SourceAccountID:     source.ID,
		SourceAccountNumber: source.AccountNumber,
		Status:              domain.StatusPending,
		Description:         arg.Description,
		IdempotencyKey:      arg.IdempotencyKey,
		CreatedAt:           time.Now().UTC(),
	}
	t.ReferenceNumber = refpkg.TransactionNumber(t.CreatedAt)
	if arg.Type == domain.TypeTransfer {
		t.DestinationAccountID = &destination.ID
		t.DestinationAccountNumber = destination.AccountNumber
	}

	var out outcome
	switch arg.Type {
	case domain.TypeDeposit:
		s.settleDeposit(ctx, &out, source, amount)
	case domain.TypeWithdrawal:
		s.settleWithdrawal(ctx, &out, source, amount)
	case domain.TypeTransfer:
		s.settleTransfer(ctx, &out, source, destination, amount)
	default:
		out.fail(domain.FailureUnsupportedType(arg.Type))
	}

	if out.failureReason != "" {
		t.Status = domain.StatusFailed
		t.FailureReason = out.failureReason
	} else {
		t.Status = domain.StatusCompleted
	}

	created, err := s.repo.Create(ctx, t)
	if errors.Is(err, domain.ErrDuplicateIdempotencyKey) {
		// Lost the race against a concurrent request carrying the same
		// key. The winner's record is the settlement outcome.
		return s.repo.GetByIdempotencyKey(ctx, arg.IdempotencyKey)
	}
	if err != nil {
		l.Error().Err(err).Str("reference_number", t.ReferenceNumber).Msg("transaction persist failed")
		return domain.Transaction{}, errorspkg.ErrInternal
	}

	s.record(ctx, created, source, out.unreconciled)
	if s.opts.Metrics != nil {
		s.opts.Metrics.ObserveSettlement(string(created.Type), string(created.Status), time.Since(started))
	}

	l.Info().
		Str("reference_number", created.ReferenceNumber).
		Str("type", string(created.Type)).
		Str("status", string(created.Status)).
		Msg("transaction settled")

	return created, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil || !amount.IsPositive() {
		return decimal.Decimal{}, domain.ErrNonPositiveAmount
	}
	return amount, nil
}

func (s *Service) resolveSource(ctx context.Context, arg domain.CreateTransactionParams) (domain.Account, error) {
	source, err := s.accounts.Get(ctx, arg.SourceAccountID)
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return domain.Account{}, domain.ErrSourceAccountNotFound
	case err != nil:
		return domain.Account{}, err
	}
	if !source.IsActive {
		return domain.Account{}, domain.ErrSourceAccountInactive
	}
	if arg.Currency != "" && arg.Currency != source.Currency {
		return domain.Account{}, domain.ErrCurrencyMismatch
	}
	return source, nil
}

func (s *Service) resolveDestination(ctx context.Context, arg domain.CreateTransactionParams, source domain.Account) (domain.Account, error) {
	if arg.DestinationAccountID == nil {
		return domain.Account{}, domain.ErrDestinationAccountRequired
	}
	destination, err := s.accounts.Get(ctx, *arg.DestinationAccountID)
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return domain.Account{}, domain.ErrDestinationAccountNotFound
	case err != nil:
		return domain.Account{}, err
	}
	if !destination.IsActive {
		return domain.Account{}, domain.ErrDestinationAccountInactive
	}
	if source.Currency != destination.Currency {
		return domain.Account{}, domain.ErrCurrencyMismatch
	}
	return destination, nil
}

func (s *Service) settleDeposit(ctx context.Context, out *outcome, source domain.Account, amount decimal.Decimal) {
	if err := s.accounts.ApplyDelta(ctx, source.ID, amount); err != nil {
		out.fail(domain.FailureBalanceUpdate)
	}
}

func (s *Service) settleWithdrawal(ctx context.Context, out *outcome, source domain.Account, amount decimal.Decimal) {
	if !s.hasFunds(ctx, source, amount) {
		out.fail(domain.FailureInsufficientFunds)
		return
	}
	if err := s.accounts.ApplyDelta(ctx, source.ID, amount.Neg()); err != nil {
		if errors.Is(err, domain.ErrBalanceUpdateRejected) {
			out.fail(domain.FailureInsufficientFunds)
			return
		}
		out.fail(domain.FailureBalanceUpdate)
	}
}

func (s *Service) settleTransfer(ctx context.Context, out *outcome, source, destination domain.Account, amount decimal.Decimal) {
	l := zerolog.Ctx(ctx)

	if !s.hasFunds(ctx, source, amount) {
		out.fail(domain.FailureInsufficientFunds)
		return
	}
	if err := s.accounts.ApplyDelta(ctx, source.ID, amount.Neg()); err != nil {
		if errors.Is(err, domain.ErrBalanceUpdateRejected) {
			out.fail(domain.FailureInsufficientFunds)
			return
		}
		out.fail(domain.FailureTransfer)
		return
	}
	if err := s.accounts.ApplyDelta(ctx, destination.ID, amount); err != nil {
		out.fail(domain.FailureTransfer)
		if !s.opts.CompensateTransfers {
			out.unreconciled = true
			s.alertUnreconciled(ctx, source, destination, amount)
			return
		}
		if err := s.accounts.ApplyDelta(ctx, source.ID, amount); err != nil {
			out.unreconciled = true
			s.alertUnreconciled(ctx, source, destination, amount)
			return
		}
		l.Warn().
			Str("source_account", source.AccountNumber).
			Str("destination_account", destination.AccountNumber).
			Str("amount", amount.String()).
			Msg("transfer credit leg failed, debit compensated")
	}
}

// hasFunds checks the balance read at validation time. The account service
// enforces the same check atomically on debit; this pre-check preserves the
// distinct insufficient-funds reason without a balance mutation attempt.
func (s *Service) hasFunds(ctx context.Context, source domain.Account, amount decimal.Decimal) bool {
	balance, err := decimal.NewFromString(source.Balance)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).
			Str("account_id", source.ID.String()).
			Msg("unparsable account balance")
		return false
	}
	return balance.GreaterThanOrEqual(amount)
}

func (s *Service) alertUnreconciled(ctx context.Context, source, destination domain.Account, amount decimal.Decimal) {
	zerolog.Ctx(ctx).Error().
		Str("source_account", source.AccountNumber).
		Str("destination_account", destination.AccountNumber).
		Str("amount", amount.String()).
		Msg("transfer debit applied without credit, manual reconciliation required")
	if s.opts.Metrics != nil {
		s.opts.Metrics.ObserveUnreconciledTransfer()
	}
}

// replay returns the previously settled transaction for key, if any.
func (s *Service) replay(ctx context.Context, key string) (domain.Transaction, bool) {
	l := zerolog.Ctx(ctx)

	if s.opts.Cache != nil {
		id, ok, err := s.opts.Cache.Get(ctx, key)
		if err != nil {
			l.Warn().Err(err).Msg("idempotency cache read failed")
		} else if ok {
			if t, err := s.repo.Get(ctx, id); err == nil {
				return t, true
			}
		}
	}

	t, err := s.repo.GetByIdempotencyKey(ctx, key)
	if err == nil {
		return t, true
	}
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		l.Warn().Err(err).Msg("idempotency lookup failed")
	}
	return domain.Transaction{}, false
}

// record performs the best-effort post-persist side effects. Failures are
// logged and never affect the settlement outcome.
func (s *Service) record(ctx context.Context, t domain.Transaction, source domain.Account, unreconciled bool) {
	l := zerolog.Ctx(ctx)

	if s.opts.Cache != nil && t.IdempotencyKey != "" {
		if err := s.opts.Cache.Save(ctx, t.IdempotencyKey, t.ID); err != nil {
			l.Warn().Err(err).Msg("idempotency cache write failed")
		}
	}

	if s.opts.Auditor != nil {
		entry := domain.SettlementAudit{
			TransactionID:   t.ID,
			ReferenceNumber: t.ReferenceNumber,
			Type:            t.Type,
			Status:          t.Status,
			FailureReason:   t.FailureReason,
			Unreconciled:    unreconciled,
			SettledAt:       t.CreatedAt,
		}
		if err := s.opts.Auditor.Record(ctx, entry); err != nil {
			l.Warn().Err(err).Str("reference_number", t.ReferenceNumber).Msg("audit record failed")
		}
	}

	if s.opts.Events != nil {
		event := SettledEvent{
			TransactionID:            t.ID,
			ReferenceNumber:          t.ReferenceNumber,
			Type:                     t.Type,
			Status:                   t.Status,
			Amount:                   t.Amount,
			Currency:                 t.Currency,
			SourceAccountNumber:      t.SourceAccountNumber,
			DestinationAccountNumber: t.DestinationAccountNumber,
			Owner:                    source.Owner,
			FailureReason:            t.FailureReason,
			SettledAt:                t.CreatedAt,
		}
		if err := s.opts.Events.Publish(ctx, SettledRoutingKey, event); err != nil {
			l.Warn().Err(err).Str("reference_number", t.ReferenceNumber).Msg("settlement event publish failed")
		}
	}
}

// Get returns the transaction with the given id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Transaction, error) {
	return s.repo.Get(ctx, id)
}

// GetByReference returns the transaction with the given reference number.
func (s *Service) GetByReference(ctx context.Context, referenceNumber string) (domain.Transaction, error) {
	return s.repo.GetByReference(ctx, referenceNumber)
}

// ListByAccount returns transactions where the account is either side.
func (s *Service) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int32) ([]domain.Transaction, error) {
	return s.repo.ListByAccount(ctx, accountID, limit, offset)
}

// List returns transactions ordered by creation time descending.
func (s *Service) List(ctx context.Context, limit, offset int32) ([]domain.Transaction, error) {
	return s.repo.List(ctx, limit, offset)
}
