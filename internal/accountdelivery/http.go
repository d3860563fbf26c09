// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/micro-bank/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/micro-bank/internal/domain"
	"github.com/go-petr/micro-bank/pkg/errorspkg"
	"github.com/go-petr/micro-bank/pkg/tokenpkg"
	"github.com/go-petr/micro-bank/pkg/web"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Create(ctx context.Context, owner string, accType domain.AccountType, currency string) (domain.Account, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Account, error)
	GetByNumber(ctx context.Context, accountNumber string) (domain.Account, error)
	List(ctx context.Context, owner string, pageSize, pageID int32) ([]domain.Account, error)
	Deposit(ctx context.Context, id uuid.UUID, amount string) (domain.Account, error)
	Withdraw(ctx context.Context, id uuid.UUID, amount string) (domain.Account, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) Handler {
	return Handler{service: as}
}

type data struct {
	Account domain.Account `json:"account"`
}
type response struct {
	Data data `json:"data,omitempty"`
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
	Type     domain.AccountType `json:"type" binding:"required,oneof=CHECKING SAVINGS INVESTMENT"`
	Currency string             `json:"currency" binding:"required,currency"`
}

// Create handles http request to create account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	createdAccount, err := h.service.Create(ctx, authPayload.Username, req.Type, req.Currency)
	if err != nil {
		if err == domain.ErrOwnerNotFound {
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusCreated, response{Data: data{createdAccount}})
}

type getRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// Get handles http request to get account by id.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindError(gctx, err)
		return
	}

	acc, err := h.service.Get(ctx, uuid.MustParse(req.ID))
	if err != nil {
		if err == domain.ErrAccountNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{acc}})
}

type getByNumberRequest struct {
	AccountNumber string `uri:"number" binding:"required"`
}

// GetByNumber handles http request to get account by account number.
func (h *Handler) GetByNumber(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req getByNumberRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindError(gctx, err)
		return
	}

	acc, err := h.service.GetByNumber(ctx, req.AccountNumber)
	if err != nil {
		if err == domain.ErrAccountNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{acc}})
}

type listRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=100"`
}

type dataAccounts struct {
	Accounts []domain.Account `json:"accounts"`
}
type responseAccounts struct {
	Data dataAccounts `json:"data,omitempty"`
}

// List handles http request to list accounts of the authorized owner.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		bindError(gctx, err)
		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	accounts, err := h.service.List(ctx, authPayload.Username, req.PageSize, req.PageID)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, responseAccounts{Data: dataAccounts{accounts}})
}

type mutateBalanceRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// Deposit handles http request to credit the account balance.
//
// The endpoint applies the whole amount atomically or nothing at all.
func (h *Handler) Deposit(gctx *gin.Context) {
	h.mutateBalance(gctx, h.service.Deposit)
}

// Withdraw handles http request to debit the account balance. The debit is
// conditional on sufficient funds and is refused otherwise.
func (h *Handler) Withdraw(gctx *gin.Context) {
	h.mutateBalance(gctx, h.service.Withdraw)
}

func (h *Handler) mutateBalance(gctx *gin.Context, mutate func(context.Context, uuid.UUID, string) (domain.Account, error)) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri getRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	var req mutateBalanceRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	acc, err := mutate(ctx, uuid.MustParse(uri.ID), req.Amount)
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrNonPositiveAmount:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		case domain.ErrInsufficientBalance, domain.ErrAccountInactive:
			gctx.JSON(http.StatusUnprocessableEntity, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{acc}})
}
