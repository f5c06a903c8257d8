package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/Domenick1991/travelbook/internal/domain"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is the single-instance dialog store.
type MemoryStore struct {
	dialogs *gocache.Cache
	locks   *gocache.Cache
}

func NewMemoryStore(dialogTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		dialogs: gocache.New(dialogTTL, 10*time.Minute),
		locks:   gocache.New(time.Minute, time.Minute),
	}
}

func (s *MemoryStore) SaveDialog(_ context.Context, dialog domain.Dialog) error {
	s.dialogs.Set(dialog.ID, dialog, gocache.DefaultExpiration)
	return nil
}

func (s *MemoryStore) LoadDialog(_ context.Context, dialogID string) (*domain.Dialog, error) {
	x, found := s.dialogs.Get(dialogID)
	if !found {
		return nil, nil
	}
	dialog := x.(domain.Dialog)
	return &dialog, nil
}

func (s *MemoryStore) AcquireDialogLock(_ context.Context, dialogID string, ttl time.Duration) (bool, error) {
	// Add fails while an unexpired item exists under the key.
	return s.locks.Add(dialogID, struct{}{}, ttl) == nil, nil
}

func (s *MemoryStore) ReleaseDialogLock(_ context.Context, dialogID string) error {
	s.locks.Delete(dialogID)
	return nil
}

// ViewCache holds the loaded booking aggregates per user and caller token for
// a short time. A list loaded with one token is never served to another.
type ViewCache struct {
	items *gocache.Cache
}

func NewViewCache(ttl time.Duration) *ViewCache {
	return &ViewCache{items: gocache.New(ttl, 2*ttl)}
}

func (c *ViewCache) GetUserBookings(userID, token string) ([]domain.BookingDetails, bool) {
	x, found := c.items.Get(userBookingsKey(userID, token))
	if !found {
		return nil, false
	}
	return x.([]domain.BookingDetails), true
}

func (c *ViewCache) SetUserBookings(userID, token string, details []domain.BookingDetails) {
	c.items.Set(userBookingsKey(userID, token), details, gocache.DefaultExpiration)
}

// InvalidateUser drops the lists of userID cached under every token.
func (c *ViewCache) InvalidateUser(userID string) {
	prefix := userBookingsPrefix(userID)
	for key := range c.items.Items() {
		if strings.HasPrefix(key, prefix) {
			c.items.Delete(key)
		}
	}
}

func userBookingsPrefix(userID string) string {
	return "bookings:user:" + userID + ":"
}

func userBookingsKey(userID, token string) string {
	sum := sha256.Sum256([]byte(token))
	return userBookingsPrefix(userID) + hex.EncodeToString(sum[:])
}
