package api

import (
	"net/http"

	"github.com/Domenick1991/travelbook/internal/domain"
	"github.com/Domenick1991/travelbook/internal/service/reservation"
	"github.com/gin-gonic/gin"
)

type ServiceBookingHandler struct {
	service reservation.ReservationUseCase
}

type createServiceBookingRequest struct {
	UserID      string `json:"user_id"`
	ServiceType string `json:"service_type"`
	ServiceID   int64  `json:"service_id"`
	ListingID   int64  `json:"listing_id"`
	Name        string `json:"name"`
}

func NewServiceBookingHandler(service reservation.ReservationUseCase) *ServiceBookingHandler {
	return &ServiceBookingHandler{service: service}
}

func (h *ServiceBookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/pending/:userID", h.pending)
}

func (h *ServiceBookingHandler) create(c *gin.Context) {
	var req createServiceBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.UserID == "" {
		req.UserID = currentUser(c)
	}
	if !authorizeUser(c, req.UserID) {
		return
	}

	result, err := h.service.BookService(c.Request.Context(), reservation.BookServiceInput{
		UserID:      req.UserID,
		ServiceType: domain.ServiceType(req.ServiceType),
		ServiceID:   req.ServiceID,
		ListingID:   req.ListingID,
		Name:        req.Name,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *ServiceBookingHandler) pending(c *gin.Context) {
	userID := c.Param("userID")
	if !authorizeUser(c, userID) {
		return
	}

	ids, err := h.service.FindPendingServiceBookings(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	c.JSON(http.StatusOK, gin.H{"pending_booking_ids": ids, "redirect": reservation.PendingBookingsPath})
}
