package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/travelbook/internal/domain"
	"github.com/Domenick1991/travelbook/internal/service/cancellation"
	"github.com/Domenick1991/travelbook/internal/service/presenter"
	"github.com/gin-gonic/gin"
)

type CancellationHandler struct {
	service cancellation.CancellationUseCase
}

type openDialogRequest struct {
	BookingID        int64  `json:"booking_id"`
	BookingReference string `json:"booking_reference"`
	UserID           string `json:"user_id"`
	Email            string `json:"email"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type confirmRequest struct {
	Reason *string `json:"reason"`
}

type confirmResponse struct {
	Dialog presenter.DialogView `json:"dialog"`
	Refund *domain.Refund       `json:"refund,omitempty"`
}

func NewCancellationHandler(service cancellation.CancellationUseCase) *CancellationHandler {
	return &CancellationHandler{service: service}
}

func (h *CancellationHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.open)
	router.GET("/history/:bookingID", h.history)
	router.GET("/:id", h.get)
	router.POST("/:id/calculate", h.calculate)
	router.PUT("/:id/reason", h.setReason)
	router.POST("/:id/confirm", h.confirm)
	router.DELETE("/:id", h.close)
}

func (h *CancellationHandler) open(c *gin.Context) {
	var req openDialogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.UserID == "" {
		req.UserID = currentUser(c)
	}

	dialog, err := h.service.Open(c.Request.Context(), cancellation.OpenInput{
		BookingID:        req.BookingID,
		BookingReference: req.BookingReference,
		UserID:           req.UserID,
		Email:            req.Email,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, presenter.PresentDialog(*dialog))
}

func (h *CancellationHandler) get(c *gin.Context) {
	dialog, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, presenter.PresentDialog(*dialog))
}

func (h *CancellationHandler) calculate(c *gin.Context) {
	dialog, err := h.service.RequestCalculation(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, presenter.PresentDialog(*dialog))
}

func (h *CancellationHandler) setReason(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dialog, err := h.service.SetReason(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, presenter.PresentDialog(*dialog))
}

func (h *CancellationHandler) confirm(c *gin.Context) {
	var req confirmRequest
	// The body is optional.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.service.ConfirmCancellation(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusOK
	if result.Refund == nil {
		// The travel API refused the request; the dialog carries its message.
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, confirmResponse{
		Dialog: presenter.PresentDialog(result.Dialog),
		Refund: result.Refund,
	})
}

func (h *CancellationHandler) close(c *gin.Context) {
	if err := h.service.Close(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CancellationHandler) history(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("bookingID"), 10, 64)
	if err != nil || bookingID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	records, err := h.service.History(c.Request.Context(), bookingID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}
