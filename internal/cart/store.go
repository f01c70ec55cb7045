package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/rcastillo/storefront-backend/pkg/config"
	"github.com/rcastillo/storefront-backend/pkg/db/models"
	pkgerrors "github.com/rcastillo/storefront-backend/pkg/errors"
	redisclient "github.com/rcastillo/storefront-backend/pkg/redis"
)

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	DelIfEquals(ctx context.Context, key, expected string) (bool, error)
}

type cartKeyer interface {
	CartKey(sessionID string) string
	CartLockKey(sessionID string) string
}

type productLoader interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Store keeps each session's cart as a JSON blob in Redis. Every mutation
// runs under a per-session lock so concurrent requests serialize instead of
// overwriting each other.
type Store struct {
	kv       kvStore
	keyer    cartKeyer
	products productLoader
	cfg      config.CartConfig
}

// NewStore validates dependencies and returns a cart store.
func NewStore(client *redisclient.Client, products productLoader, cfg config.CartConfig) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader is required")
	}
	if cfg.SessionTTL <= 0 || cfg.LockTTL <= 0 {
		return nil, fmt.Errorf("cart TTLs must be positive")
	}
	return &Store{
		kv:       client,
		keyer:    client,
		products: products,
		cfg:      cfg,
	}, nil
}

// Add puts quantity units of a product into the session cart. The unit price
// is captured on the first add for that product; repeat adds only accumulate
// quantity.
func (s *Store) Add(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}

	var view View
	err := s.WithSessionLock(ctx, sessionID, func(ctx context.Context) error {
		current, err := s.load(ctx, sessionID)
		if err != nil {
			return err
		}

		line, exists := current.Lines[productID]
		if !exists {
			product, err := s.products.FindProductByID(ctx, productID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
			}
			if !product.Availability.Purchasable() {
				return pkgerrors.New(pkgerrors.CodeValidation, "product is not available for purchase")
			}
			line = Line{
				ProductID: productID,
				Name:      product.Name,
				UnitPrice: product.Price,
			}
		}
		line.Quantity += quantity
		current.Lines[productID] = line

		if err := s.save(ctx, sessionID, current); err != nil {
			return err
		}
		view = Price(current)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Remove deletes a product line entirely and reports whether the line was
// present. Removing a product that is not in the cart is a no-op, not an
// error.
func (s *Store) Remove(ctx context.Context, sessionID string, productID uuid.UUID) (*View, bool, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, false, err
	}

	var view View
	removed := false
	err := s.WithSessionLock(ctx, sessionID, func(ctx context.Context) error {
		current, err := s.load(ctx, sessionID)
		if err != nil {
			return err
		}

		if _, exists := current.Lines[productID]; exists {
			delete(current.Lines, productID)
			if err := s.save(ctx, sessionID, current); err != nil {
				return err
			}
			removed = true
		}
		view = Price(current)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &view, removed, nil
}

// Get returns the priced view of the session cart. Reads are a single GET so
// they skip the mutation lock.
func (s *Store) Get(ctx context.Context, sessionID string) (*View, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}
	current, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	view := Price(current)
	return &view, nil
}

// Snapshot returns a deep copy of the raw cart. Callers that need a stable
// read-modify-write cycle must hold the session lock themselves.
func (s *Store) Snapshot(ctx context.Context, sessionID string) (Cart, error) {
	if err := validateSessionID(sessionID); err != nil {
		return Cart{}, err
	}
	current, err := s.load(ctx, sessionID)
	if err != nil {
		return Cart{}, err
	}
	return current.Clone(), nil
}

// Clear drops the whole cart blob.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}
	if err := s.kv.Del(ctx, s.keyer.CartKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart")
	}
	return nil
}

// WithSessionLock runs fn while holding the per-session cart lock. The lock
// is acquired with SetNX and expires after LockTTL, so a crashed holder can
// never block the session forever.
func (s *Store) WithSessionLock(ctx context.Context, sessionID string, fn func(ctx context.Context) error) error {
	lockKey := s.keyer.CartLockKey(sessionID)
	token := uuid.NewString()

	acquired := false
	attempts := s.cfg.LockRetries
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		ok, err := s.kv.SetNX(ctx, lockKey, token, s.cfg.LockTTL)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquiring cart lock")
		}
		if ok {
			acquired = true
			break
		}
		select {
		case <-ctx.Done():
			return pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "waiting for cart lock")
		case <-time.After(s.cfg.LockRetryWait):
		}
	}
	if !acquired {
		return pkgerrors.New(pkgerrors.CodeConflict, "cart is busy, retry shortly")
	}

	defer func() {
		// Release only if we still hold the lock. If it expired mid-fn
		// and another request took it over, the key is theirs now.
		_, _ = s.kv.DelIfEquals(context.WithoutCancel(ctx), lockKey, token)
	}()

	return fn(ctx)
}

func (s *Store) load(ctx context.Context, sessionID string) (Cart, error) {
	raw, err := s.kv.Get(ctx, s.keyer.CartKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return NewCart(), nil
		}
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}

	var current Cart
	if err := json.Unmarshal([]byte(raw), &current); err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding cart")
	}
	if current.Lines == nil {
		current.Lines = map[uuid.UUID]Line{}
	}
	return current, nil
}

func (s *Store) save(ctx context.Context, sessionID string, current Cart) error {
	payload, err := json.Marshal(current)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding cart")
	}
	if err := s.kv.Set(ctx, s.keyer.CartKey(sessionID), payload, s.cfg.SessionTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart")
	}
	return nil
}

func validateSessionID(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return nil
}
