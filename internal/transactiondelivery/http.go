// Package transactiondelivery manages delivery layer of transactions.
package transactiondelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/micro-bank/internal/domain"
	"github.com/go-petr/micro-bank/pkg/errorspkg"
	"github.com/go-petr/micro-bank/pkg/web"
)

// IdempotencyKeyHeader carries the idempotency key when the request body
// does not.
const IdempotencyKeyHeader = "Idempotency-Key"

// Service provides service layer interface needed by transaction delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Service interface {
	Settle(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Transaction, error)
	GetByReference(ctx context.Context, referenceNumber string) (domain.Transaction, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int32) ([]domain.Transaction, error)
	List(ctx context.Context, limit, offset int32) ([]domain.Transaction, error)
}

// Handler facilitates transaction delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transaction handler.
func NewHandler(ts Service) Handler {
	return Handler{service: ts}
}

type data struct {
	Transaction domain.Transaction `json:"transaction"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

type dataTransactions struct {
	Transactions []domain.Transaction `json:"transactions"`
}
type responseTransactions struct {
	Data dataTransactions `json:"data,omitempty"`
}

func bindError(gctx *gin.Context, err error) {
	l := zerolog.Ctx(gctx.Request.Context())

	var (
		ve     validator.ValidationErrors
		errMsg string
	)

	if errors.As(err, &ve) {
		field := ve[0]
		errMsg = field.Field() + web.GetErrorMsg(field)
	} else {
		errMsg = err.Error()
	}

	l.Info().Err(err).Send()
	gctx.JSON(http.StatusBadRequest, web.ErrorMsg(errMsg))
}

type createRequest struct {
	Type                 domain.TransactionType `json:"type" binding:"required,oneof=DEPOSIT WITHDRAWAL TRANSFER PAYMENT FEE INTEREST"`
	Amount               string                 `json:"amount" binding:"required"`
	Currency             string                 `json:"currency" binding:"omitempty,currency"`
	SourceAccountID      string                 `json:"source_account_id" binding:"required,uuid"`
	DestinationAccountID string                 `json:"destination_account_id" binding:"omitempty,uuid"`
	Description          string                 `json:"description" binding:"max=500"`
	IdempotencyKey       string                 `json:"idempotency_key" binding:"omitempty,max=128"`
}

// Create handles http request to settle a transaction.
//
// A settled transaction is returned with status 201 whether it Completed or
// Failed; only validation errors are reported without a persisted record.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	arg := domain.CreateTransactionParams{
		Type:            req.Type,
		Amount:          req.Amount,
		Currency:        req.Currency,
		SourceAccountID: uuid.MustParse(req.SourceAccountID),
		Description:     req.Description,
		IdempotencyKey:  req.IdempotencyKey,
	}
	if req.DestinationAccountID != "" {
		id := uuid.MustParse(req.DestinationAccountID)
		arg.DestinationAccountID = &id
	}
	if arg.IdempotencyKey == "" {
		arg.IdempotencyKey = gctx.GetHeader(IdempotencyKeyHeader)
	}

	settled, err := h.service.Settle(ctx, arg)
	if err != nil {
		l.Info().Err(err).Send()

		switch {
		case isValidationError(err):
			gctx.JSON(http.StatusBadRequest, web.Error(err))
		case errors.Is(err, domain.ErrAccountServiceUnavailable):
			gctx.JSON(http.StatusBadGateway, web.Error(err))
		default:
			gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		}

		return
	}

	gctx.JSON(http.StatusCreated, response{Data: data{settled}})
}

func isValidationError(err error) bool {
	for _, target := range []error{
		domain.ErrNonPositiveAmount,
		domain.ErrSourceAccountNotFound,
		domain.ErrSourceAccountInactive,
		domain.ErrDestinationAccountNotFound,
		domain.ErrDestinationAccountInactive,
		domain.ErrDestinationAccountRequired,
		domain.ErrCurrencyMismatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

type getRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// Get handles http request to get transaction by id.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindError(gctx, err)
		return
	}

	t, err := h.service.Get(ctx, uuid.MustParse(req.ID))
	if err != nil {
		if err == domain.ErrTransactionNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{t}})
}

type getByReferenceRequest struct {
	Reference string `uri:"reference" binding:"required"`
}

// GetByReference handles http request to get transaction by reference number.
func (h *Handler) GetByReference(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req getByReferenceRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindError(gctx, err)
		return
	}

	t, err := h.service.GetByReference(ctx, req.Reference)
	if err != nil {
		if err == domain.ErrTransactionNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{t}})
}

type listRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=100"`
}

// ListByAccount handles http request to list transactions where the account
// is either the source or the destination.
func (h *Handler) ListByAccount(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri getRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		bindError(gctx, err)
		return
	}

	transactions, err := h.service.ListByAccount(ctx, uuid.MustParse(uri.ID), req.PageSize, (req.PageID-1)*req.PageSize)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, responseTransactions{Data: dataTransactions{transactions}})
}

// List handles http request to list transactions ordered by creation time
// descending.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		bindError(gctx, err)
		return
	}

	transactions, err := h.service.List(ctx, req.PageSize, (req.PageID-1)*req.PageSize)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, responseTransactions{Data: dataTransactions{transactions}})
}
