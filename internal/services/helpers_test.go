package services

import (
	"context"
	"testing"
	"time"

	"purchase-order-service/internal/domain"
	"purchase-order-service/internal/mocks"
	"purchase-order-service/internal/repository"
	"purchase-order-service/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	TestProductName = "100GB Mailbox"
	TestServiceName = "Email"
)

var (
	TestUnitCost  = decimal.RequireFromString("0.8")
	TestUnitPrice = decimal.RequireFromString("0.9")
	TestNow       = time.Date(2025, time.July, 15, 10, 0, 0, 0, time.UTC)
)

type fixture struct {
	store     *memory.Store
	publisher *mocks.MockPublisher
	service   *OrderService

	statusIDs map[domain.StatusCode]uuid.UUID
	serviceID uuid.UUID
	productID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, domain.AllStatusCodes)
}

// newFixtureWith seeds only the given statuses.
func newFixtureWith(t *testing.T, statuses []domain.StatusCode) *fixture {
	t.Helper()

	f := &fixture{
		store:     memory.NewStore(),
		publisher: new(mocks.MockPublisher),
		statusIDs: make(map[domain.StatusCode]uuid.UUID),
		serviceID: uuid.New(),
		productID: uuid.New(),
	}
	for _, c := range statuses {
		id := uuid.New()
		f.statusIDs[c] = id
		f.store.AddStatus(repository.OrderStatusRecord{ID: domain.EncodeID(id), Name: c.String()})
	}
	f.store.AddService(repository.OrderServiceRecord{ID: domain.EncodeID(f.serviceID), Name: TestServiceName})
	f.store.AddProduct(repository.OrderProductRecord{
		ID:        domain.EncodeID(f.productID),
		Name:      TestProductName,
		UnitCost:  TestUnitCost,
		UnitPrice: TestUnitPrice,
		ServiceID: domain.EncodeID(f.serviceID),
	})

	f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.service = NewOrderService(f.store, f.publisher)
	f.service.SetClock(func() time.Time { return TestNow })
	return f
}

// addOrder writes an order with one item directly to the store.
func (f *fixture) addOrder(t *testing.T, quantity int, status domain.StatusCode, created time.Time) uuid.UUID {
	t.Helper()

	id := uuid.New()
	row := &repository.OrderRecord{
		ID:          domain.EncodeID(id),
		ResellerID:  domain.EncodeID(uuid.New()),
		CustomerID:  domain.EncodeID(uuid.New()),
		StatusID:    domain.EncodeID(f.statusIDs[status]),
		CreatedDate: created,
	}
	item := repository.OrderItemRecord{
		ID:        domain.EncodeID(uuid.New()),
		OrderID:   row.ID,
		ProductID: domain.EncodeID(f.productID),
		ServiceID: domain.EncodeID(f.serviceID),
		Quantity:  &quantity,
	}
	require.NoError(t, f.store.InsertOrder(context.Background(), row, []repository.OrderItemRecord{item}))
	return id
}

func (f *fixture) newOrder(quantity int) *domain.NewOrder {
	return &domain.NewOrder{
		ResellerID: uuid.New(),
		CustomerID: uuid.New(),
		StatusID:   f.statusIDs[domain.StatusCreated],
		Items: []domain.NewOrderItem{
			{ProductID: f.productID, ServiceID: f.serviceID, Quantity: quantity},
		},
	}
}

func (f *fixture) orderCount(t *testing.T) int {
	t.Helper()
	rows, err := f.store.ListOrders(context.Background(), repository.OrderFilter{})
	require.NoError(t, err)
	return len(rows)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

// faultyStore fails the named operation with err.
type faultyStore struct {
	*memory.Store
	failOn string
	err    error
	armed  bool
}

func (s *faultyStore) fail(op string) error {
	if s.armed && s.failOn == op {
		return s.err
	}
	return nil
}

func (s *faultyStore) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]repository.OrderRecord, error) {
	if err := s.fail("ListOrders"); err != nil {
		return nil, err
	}
	return s.Store.ListOrders(ctx, filter)
}

func (s *faultyStore) FindOrder(ctx context.Context, id []byte) (*repository.OrderRecord, error) {
	if err := s.fail("FindOrder"); err != nil {
		return nil, err
	}
	return s.Store.FindOrder(ctx, id)
}

func (s *faultyStore) FindStatusByID(ctx context.Context, id []byte) (*repository.OrderStatusRecord, error) {
	if err := s.fail("FindStatusByID"); err != nil {
		return nil, err
	}
	return s.Store.FindStatusByID(ctx, id)
}

func (s *faultyStore) InsertOrder(ctx context.Context, order *repository.OrderRecord, items []repository.OrderItemRecord) error {
	if err := s.fail("InsertOrder"); err != nil {
		return err
	}
	// arm FindOrder failures only after the write went through
	if s.failOn == "FindOrderAfterInsert" {
		s.failOn = "FindOrder"
		defer func() { s.armed = true }()
	}
	return s.Store.InsertOrder(ctx, order, items)
}

func (s *faultyStore) UpdateOrderStatus(ctx context.Context, id, statusID []byte) error {
	if err := s.fail("UpdateOrderStatus"); err != nil {
		return err
	}
	return s.Store.UpdateOrderStatus(ctx, id, statusID)
}

func (f *fixture) withFaults(failOn string, err error) *faultyStore {
	fs := &faultyStore{Store: f.store, failOn: failOn, err: err, armed: failOn != "FindOrderAfterInsert"}
	f.service = NewOrderService(fs, f.publisher)
	f.service.SetClock(func() time.Time { return TestNow })
	return fs
}
