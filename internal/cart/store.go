package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/veracare/marketplace-api/internal/model"
)

// Store keeps session carts in redis. Carts are keyed by an opaque
// session token carried in the X-Cart-Session header and expire after
// the configured TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// NewSessionToken returns a fresh cart session token.
func NewSessionToken() string {
	return uuid.New().String()
}

func (s *Store) key(token string) string {
	return "cart:" + token
}

type storedCart struct {
	Items     []*model.CartItem `json:"items"`
	PromoCode string            `json:"promo_code,omitempty"`
}

func (s *Store) load(ctx context.Context, token string) (*storedCart, error) {
	data, err := s.client.Get(ctx, s.key(token)).Bytes()
	if err == redis.Nil {
		return &storedCart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var cart storedCart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return &cart, nil
}

func (s *Store) save(ctx context.Context, token string, cart *storedCart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.client.Set(ctx, s.key(token), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Get returns the cart's items and applied promo code.
func (s *Store) Get(ctx context.Context, token string) ([]*model.CartItem, string, error) {
	cart, err := s.load(ctx, token)
	if err != nil {
		return nil, "", err
	}
	return cart.Items, cart.PromoCode, nil
}

// AddItem inserts a line item or bumps the quantity of an existing one.
func (s *Store) AddItem(ctx context.Context, token string, item *model.CartItem) error {
	cart, err := s.load(ctx, token)
	if err != nil {
		return err
	}

	found := false
	for _, existing := range cart.Items {
		if existing.ProductID == item.ProductID {
			existing.Quantity += item.Quantity
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, item)
	}

	return s.save(ctx, token, cart)
}

// SetQuantity adjusts a line item's quantity by delta. Quantity never
// drops below one through a decrement; decrementing a single-unit line
// removes it instead.
func (s *Store) SetQuantity(ctx context.Context, token string, productID uuid.UUID, delta int) error {
	cart, err := s.load(ctx, token)
	if err != nil {
		return err
	}

	for i, item := range cart.Items {
		if item.ProductID != productID.String() {
			continue
		}
		if delta < 0 && item.Quantity == 1 {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		} else {
			item.Quantity += delta
			if item.Quantity < 1 {
				item.Quantity = 1
			}
		}
		break
	}

	return s.save(ctx, token, cart)
}

// RemoveItem deletes a line item regardless of quantity.
func (s *Store) RemoveItem(ctx context.Context, token string, productID uuid.UUID) error {
	cart, err := s.load(ctx, token)
	if err != nil {
		return err
	}

	for i, item := range cart.Items {
		if item.ProductID == productID.String() {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			break
		}
	}

	return s.save(ctx, token, cart)
}

// SetPromoCode stores the promo code without validating it; validation
// happens when totals are computed.
func (s *Store) SetPromoCode(ctx context.Context, token, code string) error {
	cart, err := s.load(ctx, token)
	if err != nil {
		return err
	}
	cart.PromoCode = code
	return s.save(ctx, token, cart)
}

// Clear drops the cart, used after a successful checkout handoff.
func (s *Store) Clear(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
