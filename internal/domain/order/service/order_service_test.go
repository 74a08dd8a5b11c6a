package service

import (
	"testing"
	"time"

	inventoryModel "order_trade_core/internal/domain/inventory/model"
	"order_trade_core/internal/domain/order/model"
	pointModel "order_trade_core/internal/domain/point/model"
	"order_trade_core/internal/pkg/config"
	"order_trade_core/pkg/errs"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockOrderRepository is a mock of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(tx *gorm.DB, order *model.Order) error {
	args := m.Called(tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(db *gorm.DB, orderID string) (*model.Order, error) {
	args := m.Called(db, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByTradeNo(db *gorm.DB, tradeNo string) (*model.Order, error) {
	args := m.Called(db, tradeNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) LockByID(tx *gorm.DB, orderID string) (*model.Order, error) {
	args := m.Called(tx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(tx *gorm.DB, orderID, status string) error {
	args := m.Called(tx, orderID, status)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateCancelStatus(tx *gorm.DB, orderID, cancelStatus string) error {
	args := m.Called(tx, orderID, cancelStatus)
	return args.Error(0)
}

func (m *MockOrderRepository) StampPointSave(tx *gorm.DB, orderID string, reward int64) (bool, error) {
	args := m.Called(tx, orderID, reward)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) ListExpiredPending(db *gorm.DB, now time.Time, limit int) ([]model.Order, error) {
	args := m.Called(db, now, limit)
	return args.Get(0).([]model.Order), args.Error(1)
}

// MockInventoryService is a mock of inventory service.InventoryService
type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) Reserve(tx *gorm.DB, itemID string, qty int) (*inventoryModel.ProductItem, error) {
	args := m.Called(tx, itemID, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryModel.ProductItem), args.Error(1)
}

func (m *MockInventoryService) Release(tx *gorm.DB, itemID string, qty int) error {
	args := m.Called(tx, itemID, qty)
	return args.Error(0)
}

func (m *MockInventoryService) GetItem(db *gorm.DB, itemID string) (*inventoryModel.ProductItem, error) {
	args := m.Called(db, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryModel.ProductItem), args.Error(1)
}

// MockPointService is a mock of point service.PointService
type MockPointService struct {
	mock.Mock
}

func (m *MockPointService) GetAccount(db *gorm.DB, userID string) (*pointModel.UserAccount, error) {
	args := m.Called(db, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pointModel.UserAccount), args.Error(1)
}

func (m *MockPointService) Debit(tx *gorm.DB, userID, orderID string, amount int64) error {
	args := m.Called(tx, userID, orderID, amount)
	return args.Error(0)
}

func (m *MockPointService) Refund(tx *gorm.DB, userID, orderID string, amount int64) error {
	args := m.Called(tx, userID, orderID, amount)
	return args.Error(0)
}

func (m *MockPointService) CreditReward(tx *gorm.DB, userID, orderID string, paymentAmount int64) (int64, bool, error) {
	args := m.Called(tx, userID, orderID, paymentAmount)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mockDB, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	assert.NoError(t, err)
	return db, mockDB
}

func testItem(id string, price int64, qty int) *inventoryModel.ProductItem {
	item := &inventoryModel.ProductItem{
		ProductName: "Air Max 97",
		Price:       price,
		Quantity:    qty,
	}
	item.ID = id
	return item
}

func testAccount(id string, point int64) *pointModel.UserAccount {
	account := &pointModel.UserAccount{Point: point}
	account.ID = id
	return account
}

func TestCreateOrder(t *testing.T) {
	config.GlobalConfig.Trade.OrderTTLMinutes = 10

	t.Run("Create reserves stock and computes amounts", func(t *testing.T) {
		db, mockDB := newTestDB(t)
		mockRepo := new(MockOrderRepository)
		mockInv := new(MockInventoryService)
		mockPoints := new(MockPointService)
		service := NewOrderService(db, mockRepo, mockInv, mockPoints)

		mockPoints.On("GetAccount", mock.Anything, "user-1").Return(testAccount("user-1", 30000), nil)
		mockInv.On("Reserve", mock.Anything, "item-1", 2).Return(testItem("item-1", 50000, 8), nil)
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Order")).Return(nil)

		mockDB.ExpectBegin()
		mockDB.ExpectCommit()

		order, err := service.Create("user-1", []LineInput{{ItemID: "item-1", Size: "270", Qty: 2}}, 5000, Recipient{
			Name: "Kim", Phone: "010-1111-2222", Address: "Seoul",
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(100000), order.ItemTotal)
		assert.Equal(t, int64(5000), order.PointUsage)
		assert.Equal(t, int64(95000), order.Amount)
		assert.Equal(t, model.OrderStatusPending, order.Status)
		assert.NotEmpty(t, order.TradeNo)
		assert.Len(t, order.Items, 1)
		assert.Equal(t, int64(50000), order.Items[0].UnitPrice)
		assert.True(t, order.ExpiresAt.After(order.OrderedAt))
		assert.NoError(t, mockDB.ExpectationsWereMet())
		mockRepo.AssertExpectations(t)
	})

	t.Run("Out of stock rolls the whole order back", func(t *testing.T) {
		db, mockDB := newTestDB(t)
		mockRepo := new(MockOrderRepository)
		mockInv := new(MockInventoryService)
		mockPoints := new(MockPointService)
		service := NewOrderService(db, mockRepo, mockInv, mockPoints)

		mockPoints.On("GetAccount", mock.Anything, "user-1").Return(testAccount("user-1", 0), nil)
		mockInv.On("Reserve", mock.Anything, "item-1", 1).Return(testItem("item-1", 50000, 9), nil)
		mockInv.On("Reserve", mock.Anything, "item-2", 1).
			Return(nil, errs.New(errs.KindConflict, errs.ErrOutOfStock))

		mockDB.ExpectBegin()
		mockDB.ExpectRollback()

		_, err := service.Create("user-1", []LineInput{
			{ItemID: "item-1", Qty: 1},
			{ItemID: "item-2", Qty: 1},
		}, 0, Recipient{})

		assert.ErrorIs(t, err, errs.ErrOutOfStock)
		assert.NoError(t, mockDB.ExpectationsWereMet())
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Point usage above balance rejected before reservation", func(t *testing.T) {
		db, _ := newTestDB(t)
		mockRepo := new(MockOrderRepository)
		mockInv := new(MockInventoryService)
		mockPoints := new(MockPointService)
		service := NewOrderService(db, mockRepo, mockInv, mockPoints)

		mockPoints.On("GetAccount", mock.Anything, "user-1").Return(testAccount("user-1", 1000), nil)

		_, err := service.Create("user-1", []LineInput{{ItemID: "item-1", Qty: 1}}, 5000, Recipient{})

		assert.ErrorIs(t, err, errs.ErrInsufficientPoints)
		mockInv.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Point usage above order total rejected", func(t *testing.T) {
		db, mockDB := newTestDB(t)
		mockRepo := new(MockOrderRepository)
		mockInv := new(MockInventoryService)
		mockPoints := new(MockPointService)
		service := NewOrderService(db, mockRepo, mockInv, mockPoints)

		mockPoints.On("GetAccount", mock.Anything, "user-1").Return(testAccount("user-1", 999999), nil)
		mockInv.On("Reserve", mock.Anything, "item-1", 1).Return(testItem("item-1", 10000, 9), nil)

		mockDB.ExpectBegin()
		mockDB.ExpectRollback()

		_, err := service.Create("user-1", []LineInput{{ItemID: "item-1", Qty: 1}}, 50000, Recipient{})

		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Empty order rejected", func(t *testing.T) {
		db, _ := newTestDB(t)
		service := NewOrderService(db, new(MockOrderRepository), new(MockInventoryService), new(MockPointService))

		_, err := service.Create("user-1", nil, 0, Recipient{})

		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	})
}

func TestFailAndRelease(t *testing.T) {
	t.Run("Pending order fails and stock is returned", func(t *testing.T) {
		db, _ := newTestDB(t)
		mockRepo := new(MockOrderRepository)
		mockInv := new(MockInventoryService)
		service := NewOrderService(db, mockRepo, mockInv, new(MockPointService))

		order := &model.Order{
			Status: model.OrderStatusPending,
			Items: []model.OrderItem{
				{ItemID: "item-1", Qty: 2},
				{ItemID: "item-2", Qty: 1},
			},
		}
		order.ID = "order-1"

		mockRepo.On("LockByID", mock.Anything, "order-1").Return(order, nil)
		mockInv.On("Release", mock.Anything, "item-1", 2).Return(nil)
		mockInv.On("Release", mock.Anything, "item-2", 1).Return(nil)
		mockRepo.On("UpdateStatus", mock.Anything, "order-1", model.OrderStatusFailed).Return(nil)

		err := service.FailAndRelease(nil, "order-1")

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
		mockInv.AssertExpectations(t)
	})

	t.Run("Non pending order is left untouched", func(t *testing.T) {
		db, _ := newTestDB(t)
		mockRepo := new(MockOrderRepository)
		mockInv := new(MockInventoryService)
		service := NewOrderService(db, mockRepo, mockInv, new(MockPointService))

		order := &model.Order{Status: model.OrderStatusSucceeded}
		order.ID = "order-1"

		mockRepo.On("LockByID", mock.Anything, "order-1").Return(order, nil)

		err := service.FailAndRelease(nil, "order-1")

		assert.ErrorIs(t, err, errs.ErrOrderAlreadyProcessed)
		mockInv.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCancelOrder(t *testing.T) {
	t.Run("Cancel pending order releases stock", func(t *testing.T) {
		db, mockDB := newTestDB(t)
		mockRepo := new(MockOrderRepository)
		mockInv := new(MockInventoryService)
		service := NewOrderService(db, mockRepo, mockInv, new(MockPointService))

		order := &model.Order{
			Status: model.OrderStatusPending,
			Items:  []model.OrderItem{{ItemID: "item-1", Qty: 1}},
		}
		order.ID = "order-1"

		mockRepo.On("LockByID", mock.Anything, "order-1").Return(order, nil)
		mockInv.On("Release", mock.Anything, "item-1", 1).Return(nil)
		mockRepo.On("UpdateStatus", mock.Anything, "order-1", model.OrderStatusCanceled).Return(nil)
		mockRepo.On("UpdateCancelStatus", mock.Anything, "order-1", model.CancelStatusRequested).Return(nil)

		mockDB.ExpectBegin()
		mockDB.ExpectCommit()

		err := service.Cancel("order-1")

		assert.NoError(t, err)
		assert.NoError(t, mockDB.ExpectationsWereMet())
		mockRepo.AssertExpectations(t)
	})
}

func TestReclaimExpired(t *testing.T) {
	t.Run("Expired pending orders are failed in separate transactions", func(t *testing.T) {
		db, mockDB := newTestDB(t)
		mockRepo := new(MockOrderRepository)
		mockInv := new(MockInventoryService)
		service := NewOrderService(db, mockRepo, mockInv, new(MockPointService))

		expired := model.Order{Status: model.OrderStatusPending}
		expired.ID = "order-1"

		mockRepo.On("ListExpiredPending", mock.Anything, mock.AnythingOfType("time.Time"), 100).
			Return([]model.Order{expired}, nil)
		mockRepo.On("LockByID", mock.Anything, "order-1").Return(&expired, nil)
		mockRepo.On("UpdateStatus", mock.Anything, "order-1", model.OrderStatusFailed).Return(nil)

		mockDB.ExpectBegin()
		mockDB.ExpectCommit()

		reclaimed, err := service.ReclaimExpired(100)

		assert.NoError(t, err)
		assert.Equal(t, 1, reclaimed)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})
}
