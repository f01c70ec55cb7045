package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rcastillo/storefront-backend/pkg/db/models"
	"github.com/rcastillo/storefront-backend/pkg/enums"
	pkgerrors "github.com/rcastillo/storefront-backend/pkg/errors"
	"github.com/rcastillo/storefront-backend/pkg/pagination"
)

// Service exposes order reads and status management.
type Service interface {
	ListMyOrders(ctx context.Context, userID uuid.UUID, page pagination.Params) (*pagination.Page[models.Order], error)
	GetOrder(ctx context.Context, id, requesterID uuid.UUID, requesterRole enums.UserRole) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, target enums.OrderStatus) (*models.Order, error)
	Cancel(ctx context.Context, id, requesterID uuid.UUID) (*models.Order, error)
}

type service struct {
	repo Repository
}

// NewService validates dependencies and returns an orders service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListMyOrders(ctx context.Context, userID uuid.UUID, page pagination.Params) (*pagination.Page[models.Order], error) {
	items, total, err := s.repo.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing orders")
	}
	page = page.Normalize()
	return &pagination.Page[models.Order]{
		Items:  items,
		Total:  total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}, nil
}

// GetOrder returns the order when the requester owns it or holds a staff role.
// Non-owners get the same not-found as a missing order so IDs cannot be probed.
func (s *service) GetOrder(ctx context.Context, id, requesterID uuid.UUID, requesterRole enums.UserRole) (*models.Order, error) {
	order, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != requesterID && !requesterRole.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// UpdateStatus moves an order along the fulfilment state machine. Illegal
// transitions are rejected; legal ones are applied with a compare-and-set so
// two staff members racing each other cannot both win.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, target enums.OrderStatus) (*models.Order, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	order, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status transition not allowed").
			WithDetails(map[string]string{
				"from": order.Status.String(),
				"to":   target.String(),
			})
	}

	updated, err := s.repo.UpdateStatus(ctx, id, order.Status, target)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating order status")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently")
	}

	order.Status = target
	return order, nil
}

// Cancel lets the owner cancel an order that has not shipped yet.
func (s *service) Cancel(ctx context.Context, id, requesterID uuid.UUID) (*models.Order, error) {
	order, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != requesterID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	if !order.Status.CanTransitionTo(enums.OrderStatusCancelled) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled").
			WithDetails(map[string]string{"from": order.Status.String()})
	}

	updated, err := s.repo.UpdateStatus(ctx, id, order.Status, enums.OrderStatusCancelled)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancelling order")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently")
	}

	order.Status = enums.OrderStatusCancelled
	return order, nil
}

func (s *service) findOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}
	return order, nil
}
