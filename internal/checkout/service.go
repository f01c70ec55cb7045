package checkout

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rcastillo/storefront-backend/internal/cart"
	"github.com/rcastillo/storefront-backend/internal/catalog"
	"github.com/rcastillo/storefront-backend/internal/orders"
	"github.com/rcastillo/storefront-backend/pkg/db/models"
	"github.com/rcastillo/storefront-backend/pkg/enums"
	pkgerrors "github.com/rcastillo/storefront-backend/pkg/errors"
	"github.com/rcastillo/storefront-backend/pkg/logger"
)

// Service converts a session cart into a persisted order.
type Service interface {
	Convert(ctx context.Context, userID uuid.UUID, sessionID string) (*models.Order, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartStore interface {
	WithSessionLock(ctx context.Context, sessionID string, fn func(ctx context.Context) error) error
	Snapshot(ctx context.Context, sessionID string) (cart.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

type service struct {
	tx       txRunner
	cart     cartStore
	products catalog.Repository
	orders   orders.Repository
	logg     *logger.Logger
}

// NewService validates dependencies and returns a checkout service.
func NewService(tx txRunner, cartSt cartStore, products catalog.Repository, orderRepo orders.Repository, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if cartSt == nil {
		return nil, fmt.Errorf("cart store is required")
	}
	if products == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		tx:       tx,
		cart:     cartSt,
		products: products,
		orders:   orderRepo,
		logg:     logg,
	}, nil
}

// Convert creates an order from the session cart as one atomic unit: the
// order header, its items, and the stock decrements commit together or not
// at all. The cart is only cleared after a successful commit, so any failure
// leaves it untouched. The whole conversion runs under the session cart lock
// to keep concurrent cart mutations out.
func (s *service) Convert(ctx context.Context, userID uuid.UUID, sessionID string) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	var created *models.Order
	err := s.cart.WithSessionLock(ctx, sessionID, func(ctx context.Context) error {
		snapshot, err := s.cart.Snapshot(ctx, sessionID)
		if err != nil {
			return err
		}
		if snapshot.IsEmpty() {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		priced := cart.Price(snapshot)

		txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			productRepo := s.products.WithTx(tx)
			orderRepo := s.orders.WithTx(tx)

			items := make([]models.OrderItem, 0, len(priced.Items))
			for _, line := range orderedLines(snapshot) {
				product, err := productRepo.FindProductByID(ctx, line.ProductID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return pkgerrors.New(pkgerrors.CodeConflict, "product no longer available").
							WithDetails(map[string]string{"productId": line.ProductID.String()})
					}
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
				}
				if !product.Availability.Purchasable() {
					return pkgerrors.New(pkgerrors.CodeConflict, "product no longer available").
						WithDetails(map[string]string{"productId": line.ProductID.String()})
				}

				decremented, err := productRepo.DecrementStock(ctx, line.ProductID, line.Quantity)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserving stock")
				}
				if !decremented {
					return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
						WithDetails(map[string]string{"productId": line.ProductID.String()})
				}

				items = append(items, models.OrderItem{
					ProductID:       line.ProductID,
					ProductName:     line.Name,
					Quantity:        line.Quantity,
					PriceAtPurchase: line.UnitPrice,
				})
			}

			order, err := orderRepo.Create(ctx, &models.Order{
				UserID:      userID,
				Status:      enums.OrderStatusPending,
				TotalAmount: priced.GrandTotal,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating order")
			}

			for i := range items {
				items[i].OrderID = order.ID
			}
			if err := orderRepo.CreateItems(ctx, items); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating order items")
			}

			order.Items = items
			created = order
			return nil
		})
		if txErr != nil {
			return txErr
		}

		// The order is committed at this point. A failed cart clear must not
		// surface as a checkout failure or the client would retry and order
		// twice; the blob expires with its TTL anyway.
		if err := s.cart.Clear(ctx, sessionID); err != nil {
			s.logg.Error(s.logg.WithSessionID(ctx, sessionID), "clearing cart after checkout", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// orderedLines returns cart lines sorted by product ID so stock rows are
// always touched in the same order across concurrent checkouts.
func orderedLines(c cart.Cart) []cart.Line {
	lines := make([]cart.Line, 0, len(c.Lines))
	for _, line := range c.Lines {
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ProductID.String() < lines[j].ProductID.String()
	})
	return lines
}
