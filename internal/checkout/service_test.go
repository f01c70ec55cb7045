package checkout

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rcastillo/storefront-backend/internal/cart"
	"github.com/rcastillo/storefront-backend/internal/catalog"
	"github.com/rcastillo/storefront-backend/internal/orders"
	"github.com/rcastillo/storefront-backend/pkg/db/models"
	"github.com/rcastillo/storefront-backend/pkg/enums"
	pkgerrors "github.com/rcastillo/storefront-backend/pkg/errors"
	"github.com/rcastillo/storefront-backend/pkg/logger"
	"github.com/rcastillo/storefront-backend/pkg/pagination"
)

// fakeTx invokes fn directly; "rollback" is observed through repo state that
// the stubs only mutate on success paths the test inspects.
type fakeTx struct {
	calls int
	fail  error
}

func (f *fakeTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	f.calls++
	if f.fail != nil {
		return f.fail
	}
	return fn(nil)
}

type fakeCartStore struct {
	carts      map[string]cart.Cart
	cleared    map[string]bool
	clearErr   error
	lockHeld   bool
	lockCalled int
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{
		carts:   map[string]cart.Cart{},
		cleared: map[string]bool{},
	}
}

func (f *fakeCartStore) WithSessionLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	f.lockCalled++
	f.lockHeld = true
	defer func() { f.lockHeld = false }()
	return fn(ctx)
}

func (f *fakeCartStore) Snapshot(_ context.Context, sessionID string) (cart.Cart, error) {
	if bag, ok := f.carts[sessionID]; ok {
		return bag.Clone(), nil
	}
	return cart.NewCart(), nil
}

func (f *fakeCartStore) Clear(_ context.Context, sessionID string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared[sessionID] = true
	delete(f.carts, sessionID)
	return nil
}

type fakeProductRepo struct {
	products map[uuid.UUID]*models.Product
}

func (f *fakeProductRepo) WithTx(*gorm.DB) catalog.Repository { return f }

func (f *fakeProductRepo) FindProductByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *product
	return &clone, nil
}

func (f *fakeProductRepo) DecrementStock(_ context.Context, id uuid.UUID, quantity int) (bool, error) {
	product, ok := f.products[id]
	if !ok || product.Stock < quantity {
		return false, nil
	}
	product.Stock -= quantity
	return true, nil
}

func (f *fakeProductRepo) CreateProduct(_ context.Context, p *models.Product) (*models.Product, error) {
	return p, nil
}
func (f *fakeProductRepo) UpdateProduct(_ context.Context, p *models.Product) (*models.Product, error) {
	return p, nil
}
func (f *fakeProductRepo) DeleteProduct(context.Context, uuid.UUID) error { return nil }
func (f *fakeProductRepo) ListProducts(context.Context, catalog.ProductFilter) ([]models.Product, int64, error) {
	return nil, 0, nil
}
func (f *fakeProductRepo) CountOrderItems(context.Context, uuid.UUID) (int64, error) { return 0, nil }
func (f *fakeProductRepo) CreateCategory(_ context.Context, c *models.Category) (*models.Category, error) {
	return c, nil
}
func (f *fakeProductRepo) FindCategoryByID(context.Context, uuid.UUID) (*models.Category, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeProductRepo) ListCategories(context.Context) ([]models.Category, error) {
	return nil, nil
}

type fakeOrderRepo struct {
	created      *models.Order
	createdItems []models.OrderItem
	itemsErr     error
}

func (f *fakeOrderRepo) WithTx(*gorm.DB) orders.Repository { return f }

func (f *fakeOrderRepo) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	order.ID = uuid.New()
	f.created = order
	return order, nil
}

func (f *fakeOrderRepo) CreateItems(_ context.Context, items []models.OrderItem) error {
	if f.itemsErr != nil {
		return f.itemsErr
	}
	f.createdItems = items
	return nil
}

func (f *fakeOrderRepo) FindByID(context.Context, uuid.UUID) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeOrderRepo) ListByUser(context.Context, uuid.UUID, pagination.Params) ([]models.Order, int64, error) {
	return nil, 0, nil
}
func (f *fakeOrderRepo) UpdateStatus(context.Context, uuid.UUID, enums.OrderStatus, enums.OrderStatus) (bool, error) {
	return false, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func seedCart(store *fakeCartStore, sessionID string, lines ...cart.Line) {
	bag := cart.NewCart()
	for _, line := range lines {
		bag.Lines[line.ProductID] = line
	}
	store.carts[sessionID] = bag
}

func line(id uuid.UUID, name, price string, qty int) cart.Line {
	return cart.Line{
		ProductID: id,
		Name:      name,
		UnitPrice: decimal.RequireFromString(price),
		Quantity:  qty,
	}
}

func product(id uuid.UUID, name, price string, stock int) *models.Product {
	return &models.Product{
		ID:           id,
		Name:         name,
		Price:        decimal.RequireFromString(price),
		Stock:        stock,
		Availability: enums.ProductAvailabilityInStock,
	}
}

func TestConvertHappyPath(t *testing.T) {
	userID := uuid.New()
	productA := uuid.New()
	productB := uuid.New()

	cartStore := newFakeCartStore()
	seedCart(cartStore, "sess-1",
		line(productA, "Widget", "10.00", 2),
		line(productB, "Gadget", "5.00", 1),
	)
	productRepo := &fakeProductRepo{products: map[uuid.UUID]*models.Product{
		productA: product(productA, "Widget", "10.00", 10),
		productB: product(productB, "Gadget", "5.00", 10),
	}}
	orderRepo := &fakeOrderRepo{}

	svc, err := NewService(&fakeTx{}, cartStore, productRepo, orderRepo, testLogger())
	require.NoError(t, err)

	order, err := svc.Convert(context.Background(), userID, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, userID, order.UserID)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("25.00")),
		"expected total 25.00, got %s", order.TotalAmount)

	require.Len(t, orderRepo.createdItems, 2)
	for _, item := range orderRepo.createdItems {
		assert.Equal(t, order.ID, item.OrderID)
	}

	assert.Equal(t, 8, productRepo.products[productA].Stock)
	assert.Equal(t, 9, productRepo.products[productB].Stock)
	assert.True(t, cartStore.cleared["sess-1"], "cart must be cleared after a successful conversion")
}

func TestConvertEmptyCart(t *testing.T) {
	cartStore := newFakeCartStore()
	orderRepo := &fakeOrderRepo{}
	tx := &fakeTx{}

	svc, err := NewService(tx, cartStore, &fakeProductRepo{products: map[uuid.UUID]*models.Product{}}, orderRepo, testLogger())
	require.NoError(t, err)

	_, err = svc.Convert(context.Background(), uuid.New(), "sess-1")

	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, 0, tx.calls, "an empty cart must not open a transaction")
	assert.Nil(t, orderRepo.created)
}

func TestConvertProductVanished(t *testing.T) {
	userID := uuid.New()
	gone := uuid.New()

	cartStore := newFakeCartStore()
	seedCart(cartStore, "sess-1", line(gone, "Ghost", "10.00", 1))
	orderRepo := &fakeOrderRepo{}

	svc, err := NewService(&fakeTx{}, cartStore, &fakeProductRepo{products: map[uuid.UUID]*models.Product{}}, orderRepo, testLogger())
	require.NoError(t, err)

	_, err = svc.Convert(context.Background(), userID, "sess-1")

	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.Nil(t, orderRepo.created)
	assert.False(t, cartStore.cleared["sess-1"], "a failed conversion must leave the cart untouched")
}

func TestConvertProductNoLongerPurchasable(t *testing.T) {
	userID := uuid.New()
	productA := uuid.New()

	cartStore := newFakeCartStore()
	seedCart(cartStore, "sess-1", line(productA, "Widget", "10.00", 1))
	halted := product(productA, "Widget", "10.00", 10)
	halted.Availability = enums.ProductAvailabilityOutOfStock
	productRepo := &fakeProductRepo{products: map[uuid.UUID]*models.Product{productA: halted}}

	svc, err := NewService(&fakeTx{}, cartStore, productRepo, &fakeOrderRepo{}, testLogger())
	require.NoError(t, err)

	_, err = svc.Convert(context.Background(), userID, "sess-1")

	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.False(t, cartStore.cleared["sess-1"])
}

func TestConvertInsufficientStock(t *testing.T) {
	userID := uuid.New()
	productA := uuid.New()

	cartStore := newFakeCartStore()
	seedCart(cartStore, "sess-1", line(productA, "Widget", "10.00", 5))
	productRepo := &fakeProductRepo{products: map[uuid.UUID]*models.Product{
		productA: product(productA, "Widget", "10.00", 2),
	}}
	orderRepo := &fakeOrderRepo{}

	svc, err := NewService(&fakeTx{}, cartStore, productRepo, orderRepo, testLogger())
	require.NoError(t, err)

	_, err = svc.Convert(context.Background(), userID, "sess-1")

	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.Nil(t, orderRepo.created)
	assert.False(t, cartStore.cleared["sess-1"])
}

func TestConvertRequiresAuthenticatedUser(t *testing.T) {
	svc, err := NewService(&fakeTx{}, newFakeCartStore(), &fakeProductRepo{products: map[uuid.UUID]*models.Product{}}, &fakeOrderRepo{}, testLogger())
	require.NoError(t, err)

	_, err = svc.Convert(context.Background(), uuid.Nil, "sess-1")

	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestConvertSucceedsEvenIfCartClearFails(t *testing.T) {
	userID := uuid.New()
	productA := uuid.New()

	cartStore := newFakeCartStore()
	cartStore.clearErr = errors.New("redis down")
	seedCart(cartStore, "sess-1", line(productA, "Widget", "10.00", 1))
	productRepo := &fakeProductRepo{products: map[uuid.UUID]*models.Product{
		productA: product(productA, "Widget", "10.00", 10),
	}}

	svc, err := NewService(&fakeTx{}, cartStore, productRepo, &fakeOrderRepo{}, testLogger())
	require.NoError(t, err)

	order, err := svc.Convert(context.Background(), userID, "sess-1")

	require.NoError(t, err, "the committed order must be returned even when the cart clear fails")
	require.NotNil(t, order)
}

func TestConvertRunsUnderSessionLock(t *testing.T) {
	userID := uuid.New()
	productA := uuid.New()

	cartStore := newFakeCartStore()
	seedCart(cartStore, "sess-1", line(productA, "Widget", "10.00", 1))
	productRepo := &fakeProductRepo{products: map[uuid.UUID]*models.Product{
		productA: product(productA, "Widget", "10.00", 10),
	}}

	svc, err := NewService(&fakeTx{}, cartStore, productRepo, &fakeOrderRepo{}, testLogger())
	require.NoError(t, err)

	_, err = svc.Convert(context.Background(), userID, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 1, cartStore.lockCalled)
}
