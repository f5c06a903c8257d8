package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/travelbook/internal/service/bookings"
	"github.com/Domenick1991/travelbook/internal/service/presenter"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service bookings.BookingsUseCase
}

func NewBookingHandler(service bookings.BookingsUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("/user/:userID", h.listByUser)
	router.GET("/:id", h.get)
}

func (h *BookingHandler) listByUser(c *gin.Context) {
	userID := c.Param("userID")
	if !authorizeUser(c, userID) {
		return
	}

	filter, err := presenter.ParseFilter(c.Query("filter"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	views, err := h.service.ListUserBookings(c.Request.Context(), userID, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *BookingHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	view, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
