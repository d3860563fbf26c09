// Package notificationdelivery manages delivery layer of notifications.
package notificationdelivery

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

// Service provides service layer interface needed by notification delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package notificationdelivery
type Service interface {
	Create(ctx context.Context, arg domain.CreateNotificationParams) (domain.Notification, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Notification, error)
	ListByRecipient(ctx context.Context, recipient string, limit, offset int32) ([]domain.Notification, error)
	Resend(ctx context.Context, id uuid.UUID) (domain.Notification, error)
}

// Handler facilitates notification delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns notification handler.
func NewHandler(ns Service) Handler {
	return Handler{service: ns}
}

type data struct {
	Notification domain.Notification `json:"notification"`
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
	Recipient string                  `json:"recipient" binding:"required,email"`
	Type      domain.NotificationType `json:"type" binding:"required,oneof=ACCOUNT_CREATED TRANSACTION_COMPLETED TRANSACTION_FAILED SECURITY_ALERT GENERAL_INFORMATION"`
	Subject   string                  `json:"subject" binding:"required,max=200"`
	Message   string                  `json:"message" binding:"required,max=2000"`
}

// Create handles http request to create and deliver a notification.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	n, err := h.service.Create(ctx, domain.CreateNotificationParams{
		Recipient: req.Recipient,
		Type:      req.Type,
		Subject:   req.Subject,
		Message:   req.Message,
	})
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusCreated, response{Data: data{n}})
}

type getRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// Get handles http request to get notification by id.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindError(gctx, err)
		return
	}

	n, err := h.service.Get(ctx, uuid.MustParse(req.ID))
	if err != nil {
		if err == domain.ErrNotificationNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{n}})
}

type listByRecipientURI struct {
	Recipient string `uri:"recipient" binding:"required,email"`
}

type listRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=100"`
}

type dataNotifications struct {
	Notifications []domain.Notification `json:"notifications"`
}
type responseNotifications struct {
	Data dataNotifications `json:"data,omitempty"`
}

// ListByRecipient handles http request to list a recipient's notifications.
func (h *Handler) ListByRecipient(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri listByRecipientURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		bindError(gctx, err)
		return
	}

	notifications, err := h.service.ListByRecipient(ctx, uri.Recipient, req.PageSize, (req.PageID-1)*req.PageSize)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, responseNotifications{Data: dataNotifications{notifications}})
}

// Resend handles http request to re-deliver a failed notification.
func (h *Handler) Resend(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindError(gctx, err)
		return
	}

	n, err := h.service.Resend(ctx, uuid.MustParse(req.ID))
	if err != nil {
		switch err {
		case domain.ErrNotificationNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrNotificationNotFailed:
			gctx.JSON(http.StatusUnprocessableEntity, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{n}})
}
