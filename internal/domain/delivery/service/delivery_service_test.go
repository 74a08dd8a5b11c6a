package service

import (
	"testing"
	"time"

	"order_trade_core/internal/domain/delivery/model"
	orderModel "order_trade_core/internal/domain/order/model"
	pointModel "order_trade_core/internal/domain/point/model"
	"order_trade_core/pkg/errs"
	"order_trade_core/pkg/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockDeliveryRepository is a mock of DeliveryRepository
type MockDeliveryRepository struct {
	mock.Mock
}

func (m *MockDeliveryRepository) Create(tx *gorm.DB, delivery *model.Delivery) error {
	args := m.Called(tx, delivery)
	return args.Error(0)
}

func (m *MockDeliveryRepository) GetByOrderID(db *gorm.DB, orderID string) (*model.Delivery, error) {
	args := m.Called(db, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) LockByOrderID(tx *gorm.DB, orderID string) (*model.Delivery, error) {
	args := m.Called(tx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) UpdateStatus(tx *gorm.DB, deliveryID, status string) error {
	args := m.Called(tx, deliveryID, status)
	return args.Error(0)
}

// MockOrderRepository is a mock of order repository.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(tx *gorm.DB, order *orderModel.Order) error {
	args := m.Called(tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(db *gorm.DB, orderID string) (*orderModel.Order, error) {
	args := m.Called(db, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderModel.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByTradeNo(db *gorm.DB, tradeNo string) (*orderModel.Order, error) {
	args := m.Called(db, tradeNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderModel.Order), args.Error(1)
}

func (m *MockOrderRepository) LockByID(tx *gorm.DB, orderID string) (*orderModel.Order, error) {
	args := m.Called(tx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderModel.Order), args.Error(1)
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

func (m *MockOrderRepository) ListExpiredPending(db *gorm.DB, now time.Time, limit int) ([]orderModel.Order, error) {
	args := m.Called(db, now, limit)
	return args.Get(0).([]orderModel.Order), args.Error(1)
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

type deliveryFixture struct {
	svc    DeliveryService
	mockDB sqlmock.Sqlmock
	repo   *MockDeliveryRepository
	orders *MockOrderRepository
	points *MockPointService
}

func newDeliveryFixture(t *testing.T) *deliveryFixture {
	t.Helper()
	logger.Log = zap.NewNop()

	sqlDB, mockDB, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	assert.NoError(t, err)

	f := &deliveryFixture{
		mockDB: mockDB,
		repo:   new(MockDeliveryRepository),
		orders: new(MockOrderRepository),
		points: new(MockPointService),
	}
	f.svc = NewDeliveryService(db, f.repo, f.orders, f.points)
	return f
}

func testDelivery(orderID, status string) *model.Delivery {
	d := &model.Delivery{OrderID: orderID, Status: status}
	d.ID = "delivery-1"
	return d
}

func succeededOrder(id string, amount int64) *orderModel.Order {
	order := &orderModel.Order{
		TradeNo: "trade-1",
		UserID:  "user-1",
		Amount:  amount,
		Status:  orderModel.OrderStatusSucceeded,
	}
	order.ID = id
	return order
}

func TestTransition(t *testing.T) {
	t.Run("Ship moves ready delivery to shipping", func(t *testing.T) {
		f := newDeliveryFixture(t)

		f.mockDB.ExpectBegin()
		f.mockDB.ExpectCommit()
		f.repo.On("LockByOrderID", mock.Anything, "order-1").Return(testDelivery("order-1", model.StatusReady), nil)
		f.repo.On("UpdateStatus", mock.Anything, "delivery-1", model.StatusShipping).Return(nil)

		result, err := f.svc.Transition("order-1", model.StatusShipping)

		assert.NoError(t, err)
		assert.Equal(t, model.StatusShipping, result.Status)
		assert.NoError(t, f.mockDB.ExpectationsWereMet())
		f.points.AssertNotCalled(t, "CreditReward", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Arrival credits reward and stamps order", func(t *testing.T) {
		f := newDeliveryFixture(t)
		order := succeededOrder("order-1", 100000)

		f.mockDB.ExpectBegin()
		f.mockDB.ExpectCommit()
		f.repo.On("LockByOrderID", mock.Anything, "order-1").Return(testDelivery("order-1", model.StatusShipping), nil)
		f.orders.On("LockByID", mock.Anything, "order-1").Return(order, nil)
		f.points.On("CreditReward", mock.Anything, "user-1", "order-1", int64(100000)).
			Return(int64(10000), true, nil)
		f.orders.On("StampPointSave", mock.Anything, "order-1", int64(10000)).Return(true, nil)
		f.repo.On("UpdateStatus", mock.Anything, "delivery-1", model.StatusArrived).Return(nil)

		result, err := f.svc.Transition("order-1", model.StatusArrived)

		assert.NoError(t, err)
		assert.Equal(t, model.StatusArrived, result.Status)
		f.points.AssertExpectations(t)
		f.orders.AssertExpectations(t)
	})

	t.Run("Repeated arrival is a no-op success", func(t *testing.T) {
		f := newDeliveryFixture(t)

		f.mockDB.ExpectBegin()
		f.mockDB.ExpectCommit()
		f.repo.On("LockByOrderID", mock.Anything, "order-1").Return(testDelivery("order-1", model.StatusArrived), nil)

		result, err := f.svc.Transition("order-1", model.StatusArrived)

		assert.NoError(t, err)
		assert.Equal(t, model.StatusArrived, result.Status)
		f.points.AssertNotCalled(t, "CreditReward", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Arrival with suppressed reward does not stamp again", func(t *testing.T) {
		f := newDeliveryFixture(t)
		order := succeededOrder("order-1", 100000)

		f.mockDB.ExpectBegin()
		f.mockDB.ExpectCommit()
		f.repo.On("LockByOrderID", mock.Anything, "order-1").Return(testDelivery("order-1", model.StatusShipping), nil)
		f.orders.On("LockByID", mock.Anything, "order-1").Return(order, nil)
		f.points.On("CreditReward", mock.Anything, "user-1", "order-1", int64(100000)).
			Return(int64(0), false, nil)
		f.repo.On("UpdateStatus", mock.Anything, "delivery-1", model.StatusArrived).Return(nil)

		_, err := f.svc.Transition("order-1", model.StatusArrived)

		assert.NoError(t, err)
		f.orders.AssertNotCalled(t, "StampPointSave", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Illegal transition is rejected with context", func(t *testing.T) {
		f := newDeliveryFixture(t)

		f.mockDB.ExpectBegin()
		f.mockDB.ExpectRollback()
		f.repo.On("LockByOrderID", mock.Anything, "order-1").Return(testDelivery("order-1", model.StatusReady), nil)

		_, err := f.svc.Transition("order-1", model.StatusArrived)

		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, errs.KindInvalidTransition, errs.KindOf(err))
		assert.Contains(t, err.Error(), "READY->ARRIVED")
		f.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Missing delivery is not found", func(t *testing.T) {
		f := newDeliveryFixture(t)

		f.mockDB.ExpectBegin()
		f.mockDB.ExpectRollback()
		f.repo.On("LockByOrderID", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound)

		_, err := f.svc.Transition("missing", model.StatusShipping)

		assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	})
}
