package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"purchase-order-service/internal/domain"
	"purchase-order-service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newID() []byte {
	return domain.EncodeID(domain.NewID())
}

func order(statusID []byte, created time.Time) repository.OrderRecord {
	return repository.OrderRecord{
		ID:          newID(),
		ResellerID:  newID(),
		CustomerID:  newID(),
		StatusID:    statusID,
		CreatedDate: created,
	}
}

func TestStore_SeedStatusesIsIdempotent(t *testing.T) {
	s := NewStore()
	s.SeedStatuses()
	s.SeedStatuses()

	statuses, err := s.ListStatuses(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 4)
	assert.Equal(t, "Completed", statuses[0].Name)

	st, err := s.FindStatusByName(context.Background(), "InProgress")
	require.NoError(t, err)
	require.NotNil(t, st)

	byID, err := s.FindStatusByID(context.Background(), st.ID)
	require.NoError(t, err)
	assert.Equal(t, "InProgress", byID.Name)
}

func TestStore_LookupsReturnNilWhenAbsent(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	st, err := s.FindStatusByName(ctx, "Completed")
	assert.NoError(t, err)
	assert.Nil(t, st)

	p, err := s.FindProductByID(ctx, newID())
	assert.NoError(t, err)
	assert.Nil(t, p)

	svc, err := s.FindServiceByID(ctx, newID())
	assert.NoError(t, err)
	assert.Nil(t, svc)

	o, err := s.FindOrder(ctx, newID())
	assert.NoError(t, err)
	assert.Nil(t, o)
}

func TestStore_ListOrdersFiltersAndSorts(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a, b := newID(), newID()
	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	older := order(a, base)
	newer := order(a, base.AddDate(0, 1, 0))
	other := order(b, base.AddDate(0, 0, 1))
	for _, o := range []repository.OrderRecord{older, newer, other} {
		require.NoError(t, s.InsertOrder(ctx, &o, nil))
	}

	all, err := s.ListOrders(ctx, repository.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, newer.ID, all[0].ID)
	assert.Equal(t, older.ID, all[2].ID)

	byStatus, err := s.ListOrders(ctx, repository.OrderFilter{StatusID: a})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	july, err := s.ListOrders(ctx, repository.OrderFilter{
		CreatedFrom: base,
		CreatedTo:   base.AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	assert.Len(t, july, 2)
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	o := order(newID(), time.Now())
	require.NoError(t, s.InsertOrder(ctx, &o, nil))

	got, err := s.FindOrder(ctx, o.ID)
	require.NoError(t, err)
	got.StatusID[0] ^= 0xff

	again, err := s.FindOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.StatusID, again.StatusID)
}

func TestStore_TransactionRollsBack(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	o := order(newID(), time.Now())
	qty := 1
	item := repository.OrderItemRecord{ID: newID(), OrderID: o.ID, ProductID: newID(), ServiceID: newID(), Quantity: &qty}

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(ctx context.Context) error {
		if err := s.InsertOrder(ctx, &o, []repository.OrderItemRecord{item}); err != nil {
			return err
		}
		// nested calls join the outer transaction
		return s.Transaction(ctx, func(context.Context) error { return boom })
	})
	assert.ErrorIs(t, err, boom)

	all, err := s.ListOrders(ctx, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
	items, err := s.ListItems(ctx, [][]byte{o.ID})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStore_RollbackKeepsConcurrentWrites(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	existing := order(newID(), time.Now())
	require.NoError(t, s.InsertOrder(ctx, &existing, nil))

	inTx := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	boom := errors.New("boom")
	go func() {
		txDone <- s.Transaction(ctx, func(ctx context.Context) error {
			close(inTx)
			<-release
			return boom
		})
	}()
	<-inTx

	other := order(newID(), time.Now())
	statusID := newID()
	writesDone := make(chan error, 2)
	go func() { writesDone <- s.InsertOrder(ctx, &other, nil) }()
	go func() { writesDone <- s.UpdateOrderStatus(ctx, existing.ID, statusID) }()

	time.Sleep(20 * time.Millisecond)
	close(release)
	assert.ErrorIs(t, <-txDone, boom)
	require.NoError(t, <-writesDone)
	require.NoError(t, <-writesDone)

	got, err := s.FindOrder(ctx, other.ID)
	require.NoError(t, err)
	assert.NotNil(t, got, "order written outside the failed transaction survives its rollback")

	updated, err := s.FindOrder(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, statusID, updated.StatusID)
}

func TestStore_UpdateOrderStatus(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	o := order(newID(), time.Now())
	require.NoError(t, s.InsertOrder(ctx, &o, nil))

	next := newID()
	require.NoError(t, s.UpdateOrderStatus(ctx, o.ID, next))
	got, err := s.FindOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, next, got.StatusID)

	assert.ErrorIs(t, s.UpdateOrderStatus(ctx, newID(), next), repository.ErrNotFound)
}

func TestStore_InsertOrderRejectsDuplicateID(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	o := order(newID(), time.Now())
	require.NoError(t, s.InsertOrder(ctx, &o, nil))
	assert.Error(t, s.InsertOrder(ctx, &o, nil))
}
