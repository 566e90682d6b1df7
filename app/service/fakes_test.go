package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/vibast-solutions/ms-go-comgate/app/comgate"
	"github.com/vibast-solutions/ms-go-comgate/app/entity"
	"github.com/vibast-solutions/ms-go-comgate/app/repository"
	"github.com/vibast-solutions/ms-go-comgate/config"
)

type fakeStore struct {
	orders       map[string]*entity.Order
	payments     map[uint64]*entity.Payment
	transactions []*entity.PaymentTransaction
	events       []*entity.OrderEvent
	deliveries   []*entity.WebhookDelivery
	nextID       uint64
	locks        int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:   map[string]*entity.Order{},
		payments: map[uint64]*entity.Payment{},
		nextID:   1,
	}
}

func (s *fakeStore) id() uint64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *fakeStore) addOrder(token string, id uint64) *entity.Order {
	order := &entity.Order{
		ID:            id,
		Token:         token,
		CustomerEmail: "buyer@example.com",
		TotalCents:    1000,
		Currency:      "EUR",
		PaymentStatus: entity.OrderPaymentStatusAwaitingConfirmation,
		Metadata:      map[string]string{},
	}
	s.orders[token] = order
	return order
}

func (s *fakeStore) activePayments(orderID uint64) []*entity.Payment {
	items := make([]*entity.Payment, 0)
	for _, item := range s.payments {
		if item.OrderID == orderID && item.IsActive {
			items = append(items, item)
		}
	}
	return items
}

func (s *fakeStore) transactionsOfKind(kind string) []*entity.PaymentTransaction {
	items := make([]*entity.PaymentTransaction, 0)
	for _, item := range s.transactions {
		if item.Kind == kind {
			items = append(items, item)
		}
	}
	return items
}

func cloneOrder(order *entity.Order) *entity.Order {
	copyItem := *order
	copyItem.Metadata = map[string]string{}
	for key, value := range order.Metadata {
		copyItem.Metadata[key] = value
	}
	return &copyItem
}

type fakeOrderRepo struct {
	store *fakeStore
	err   error
}

func (r *fakeOrderRepo) FindByToken(_ context.Context, token string) (*entity.Order, error) {
	if r.err != nil {
		return nil, r.err
	}
	order, ok := r.store.orders[token]
	if !ok {
		return nil, nil
	}
	return cloneOrder(order), nil
}

func (r *fakeOrderRepo) FindByTokenForUpdate(ctx context.Context, token string) (*entity.Order, error) {
	r.store.locks++
	return r.FindByToken(ctx, token)
}

func (r *fakeOrderRepo) UpdatePaymentState(_ context.Context, order *entity.Order) error {
	if _, ok := r.store.orders[order.Token]; !ok {
		return repository.ErrOrderNotFound
	}
	r.store.orders[order.Token] = cloneOrder(order)
	return nil
}

type fakePaymentRepo struct {
	store *fakeStore
}

func (r *fakePaymentRepo) Create(_ context.Context, payment *entity.Payment) error {
	payment.ID = r.store.id()
	copyItem := *payment
	r.store.payments[payment.ID] = &copyItem
	return nil
}

func (r *fakePaymentRepo) Update(_ context.Context, payment *entity.Payment) error {
	if _, ok := r.store.payments[payment.ID]; !ok {
		return repository.ErrPaymentNotFound
	}
	copyItem := *payment
	r.store.payments[payment.ID] = &copyItem
	return nil
}

func (r *fakePaymentRepo) FindActiveByOrderID(_ context.Context, orderID uint64) (*entity.Payment, error) {
	items := r.store.activePayments(orderID)
	if len(items) == 0 {
		return nil, nil
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	copyItem := *items[0]
	return &copyItem, nil
}

func (r *fakePaymentRepo) FindByPSPReference(_ context.Context, orderID uint64, pspReference string) (*entity.Payment, error) {
	for _, item := range r.store.payments {
		if item.OrderID == orderID && item.PSPReference != nil && *item.PSPReference == pspReference {
			copyItem := *item
			return &copyItem, nil
		}
	}
	return nil, nil
}

type fakeTransactionRepo struct {
	store *fakeStore
}

func (r *fakeTransactionRepo) Create(_ context.Context, item *entity.PaymentTransaction) error {
	for _, existing := range r.store.transactions {
		if existing.PaymentID == item.PaymentID && existing.Kind == item.Kind && existing.TransactionID == item.TransactionID {
			return repository.ErrTransactionAlreadyRecorded
		}
	}
	item.ID = r.store.id()
	copyItem := *item
	r.store.transactions = append(r.store.transactions, &copyItem)
	return nil
}

func (r *fakeTransactionRepo) ListByPaymentID(_ context.Context, paymentID uint64) ([]*entity.PaymentTransaction, error) {
	items := make([]*entity.PaymentTransaction, 0)
	for _, item := range r.store.transactions {
		if item.PaymentID == paymentID {
			copyItem := *item
			items = append(items, &copyItem)
		}
	}
	return items, nil
}

type fakeEventRepo struct {
	store *fakeStore
}

func (r *fakeEventRepo) Create(_ context.Context, event *entity.OrderEvent) error {
	event.ID = r.store.id()
	copyItem := *event
	r.store.events = append(r.store.events, &copyItem)
	return nil
}

type fakeDeliveryRepo struct {
	store *fakeStore
}

func (r *fakeDeliveryRepo) Create(_ context.Context, delivery *entity.WebhookDelivery) error {
	delivery.ID = r.store.id()
	copyItem := *delivery
	r.store.deliveries = append(r.store.deliveries, &copyItem)
	return nil
}

// fakeTx snapshots the store and restores it when fn fails.
type fakeTx struct {
	store *fakeStore
	calls int
}

func (t *fakeTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	snapshot := t.snapshot()
	if err := fn(ctx); err != nil {
		t.restore(snapshot)
		return err
	}
	return nil
}

func (t *fakeTx) snapshot() *fakeStore {
	copyStore := &fakeStore{
		orders:       map[string]*entity.Order{},
		payments:     map[uint64]*entity.Payment{},
		transactions: append([]*entity.PaymentTransaction(nil), t.store.transactions...),
		events:       append([]*entity.OrderEvent(nil), t.store.events...),
		deliveries:   t.store.deliveries,
		nextID:       t.store.nextID,
	}
	for key, value := range t.store.orders {
		copyStore.orders[key] = cloneOrder(value)
	}
	for key, value := range t.store.payments {
		copyItem := *value
		copyStore.payments[key] = &copyItem
	}
	return copyStore
}

func (t *fakeTx) restore(snapshot *fakeStore) {
	t.store.orders = snapshot.orders
	t.store.payments = snapshot.payments
	t.store.transactions = snapshot.transactions
	t.store.events = snapshot.events
	t.store.nextID = snapshot.nextID
}

type fakeGateway struct {
	requests []*comgate.TransactionRequest
	result   *comgate.CreateResult
	err      error
}

func (g *fakeGateway) CreateTransaction(_ context.Context, req *comgate.TransactionRequest) (*comgate.CreateResult, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

type stringPayload string

func (p stringPayload) GetPayload() string { return string(p) }

type serviceFixture struct {
	store   *fakeStore
	tx      *fakeTx
	orders  *fakeOrderRepo
	gateway *fakeGateway
	service *PaymentService
}

func testComgateConfig() config.ComgateConfig {
	return config.ComgateConfig{
		Merchant:       "eshop-1",
		Secret:         "abc",
		PaymentMethods: "ALL",
		Currency:       "EUR,CZK",
		Country:        "SK",
	}
}

func newServiceFixture() *serviceFixture {
	store := newFakeStore()
	tx := &fakeTx{store: store}
	orders := &fakeOrderRepo{store: store}
	gateway := &fakeGateway{result: &comgate.CreateResult{TransID: "X1", Redirect: "https://pay/X1"}}
	svc := NewPaymentService(
		tx,
		orders,
		&fakePaymentRepo{store: store},
		&fakeTransactionRepo{store: store},
		&fakeEventRepo{store: store},
		&fakeDeliveryRepo{store: store},
		gateway,
		testComgateConfig(),
	)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	return &serviceFixture{store: store, tx: tx, orders: orders, gateway: gateway, service: svc}
}

var errDatabaseDown = errors.New("database down")
