package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/Domenick1991/travelbook/internal/auth"
	"github.com/Domenick1991/travelbook/internal/service/bookings"
	"github.com/Domenick1991/travelbook/internal/service/cancellation"
	"github.com/Domenick1991/travelbook/internal/service/reservation"
	"github.com/Domenick1991/travelbook/internal/travelapi"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const userIDKey = "user_id"

// Authenticate requires a bearer token, forwards it to the travel API and
// records its subject.
func Authenticate(subjects *auth.SubjectReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		subject, err := subjects.Subject(token)
		if err != nil && subjects.Verifies() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if err == nil {
			c.Set(userIDKey, subject)
		}

		c.Request = c.Request.WithContext(auth.WithToken(c.Request.Context(), token))
		c.Next()
	}
}

func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// currentUser is the token subject, empty when it could not be read.
func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// authorizeUser rejects access to another user's data when the caller is
// known.
func authorizeUser(c *gin.Context, userID string) bool {
	if subject := currentUser(c); subject != "" && subject != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "access to another user's data is not allowed"})
		return false
	}
	return true
}

func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	var (
		validationErrs validator.ValidationErrors
		apiErr         *travelapi.APIError
		pendingErr     *reservation.PendingError
	)

	switch {
	case errors.As(err, &pendingErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":               err.Error(),
			"redirect":            pendingErr.Redirect(),
			"pending_booking_ids": pendingErr.BookingIDs,
		})
	case errors.Is(err, cancellation.ErrDialogNotFound), errors.Is(err, bookings.ErrIncompleteBooking):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, cancellation.ErrDialogBusy),
		errors.Is(err, cancellation.ErrNotEligible),
		errors.Is(err, cancellation.ErrBlocked),
		errors.Is(err, cancellation.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr):
		status := apiErr.StatusCode
		if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": apiErr.Message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
