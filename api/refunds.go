package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Domenick1991/travelbook/internal/domain"
	"github.com/gin-gonic/gin"
)

// RefundReader lists refunds and policies straight from the travel API.
type RefundReader interface {
	GetUserRefunds(ctx context.Context, userID string) ([]domain.Refund, error)
	GetBookingRefunds(ctx context.Context, bookingID int64) ([]domain.Refund, error)
	GetActivePolicies(ctx context.Context) ([]domain.CancellationPolicy, error)
}

type RefundHandler struct {
	refunds RefundReader
}

func NewRefundHandler(refunds RefundReader) *RefundHandler {
	return &RefundHandler{refunds: refunds}
}

func (h *RefundHandler) Register(router *gin.RouterGroup) {
	router.GET("/user/:userID", h.listByUser)
	router.GET("/booking/:bookingID", h.listByBooking)
	router.GET("/policies", h.policies)
}

func (h *RefundHandler) listByUser(c *gin.Context) {
	userID := c.Param("userID")
	if !authorizeUser(c, userID) {
		return
	}

	refunds, err := h.refunds.GetUserRefunds(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, refunds)
}

func (h *RefundHandler) listByBooking(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("bookingID"), 10, 64)
	if err != nil || bookingID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	refunds, err := h.refunds.GetBookingRefunds(c.Request.Context(), bookingID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, refunds)
}

func (h *RefundHandler) policies(c *gin.Context) {
	policies, err := h.refunds.GetActivePolicies(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, policies)
}
