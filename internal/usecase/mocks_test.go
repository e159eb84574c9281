package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders    repo.OrderRepository
	products  repo.ProductRepository
	statuses  repo.StatusRepository
	sequences repo.SequenceRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository       { return r.orders }
func (r *TxReposMock) Products() repo.ProductRepository   { return r.products }
func (r *TxReposMock) Statuses() repo.StatusRepository    { return r.statuses }
func (r *TxReposMock) Sequences() repo.SequenceRepository { return r.sequences }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindOpenByEmail(ctx context.Context, email string) (model.Order, error) {
	args := m.Called(ctx, email)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindOpenByEmailForUpdate(ctx context.Context, email string) (model.Order, error) {
	args := m.Called(ctx, email)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *OrderRepoMock) Commit(ctx context.Context, orderID string, opt model.ShippingOption, note string, deadline *time.Time, committedAt time.Time) error {
	args := m.Called(ctx, orderID, opt, note, deadline, committedAt)
	return args.Error(0)
}

func (m *OrderRepoMock) UpdatePaymentStatus(ctx context.Context, orderID string, status model.PaymentStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) UpdateReceipt(ctx context.Context, orderID string, receiptKey string, status model.PaymentStatus) error {
	args := m.Called(ctx, orderID, receiptKey, status)
	return args.Error(0)
}

func (m *OrderRepoMock) UpdateTrackingNumber(ctx context.Context, orderID string, trackingNumber string) error {
	args := m.Called(ctx, orderID, trackingNumber)
	return args.Error(0)
}

func (m *OrderRepoMock) ListByEmail(ctx context.Context, email string) ([]model.Order, error) {
	args := m.Called(ctx, email)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Delete(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, productID string) (model.Product, error) {
	args := m.Called(ctx, productID)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByFolderPath(ctx context.Context, folderPath string) (model.Product, error) {
	args := m.Called(ctx, folderPath)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) ListByOrderID(ctx context.Context, orderID string) ([]model.Product, error) {
	args := m.Called(ctx, orderID)
	products, _ := args.Get(0).([]model.Product)
	return products, args.Error(1)
}

func (m *ProductRepoMock) CountByOrderID(ctx context.Context, orderID string) (int64, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ProductRepoMock) DeleteByID(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *ProductRepoMock) DeleteByOrderID(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type StatusRepoMock struct{ mock.Mock }

func (m *StatusRepoMock) Create(ctx context.Context, ev model.StatusEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *StatusRepoMock) CreateBulk(ctx context.Context, events []model.StatusEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *StatusRepoMock) ListByOrderID(ctx context.Context, orderID string) ([]model.StatusEvent, error) {
	args := m.Called(ctx, orderID)
	events, _ := args.Get(0).([]model.StatusEvent)
	return events, args.Error(1)
}

func (m *StatusRepoMock) MarkCompleted(ctx context.Context, statusID string, at time.Time) error {
	args := m.Called(ctx, statusID, at)
	return args.Error(0)
}

func (m *StatusRepoMock) DeleteByOrderID(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type SequenceRepoMock struct{ mock.Mock }

func (m *SequenceRepoMock) Next(ctx context.Context, domain string) (string, error) {
	args := m.Called(ctx, domain)
	return args.String(0), args.Error(1)
}

type NotificationRepoMock struct{ mock.Mock }

func (m *NotificationRepoMock) Create(ctx context.Context, msg model.NotificationMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *NotificationRepoMock) ListByRecipient(ctx context.Context, email string) ([]model.NotificationMessage, error) {
	args := m.Called(ctx, email)
	msgs, _ := args.Get(0).([]model.NotificationMessage)
	return msgs, args.Error(1)
}

func (m *NotificationRepoMock) MarkAllRead(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *NotificationRepoMock) CountUnread(ctx context.Context, email string) (int64, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(int64), args.Error(1)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) Notify(ctx context.Context, orderID string, recipientEmail string, kind usecase.NotificationKind, detail string) (string, error) {
	args := m.Called(ctx, orderID, recipientEmail, kind, detail)
	return args.String(0), args.Error(1)
}

// =====================
// ObjectStore fake（ストリーミングが絡むのでtestify mockより素のfakeの方が素直）
// =====================

type fakeObjectStore struct {
	objects map[string][]byte
	//このキーのGetだけ失敗させる
	failGetKey string

	deleted []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (s *fakeObjectStore) List(ctx context.Context, prefix string) ([]repo.ObjectInfo, error) {
	infos := []repo.ObjectInfo{}
	for k, v := range s.objects {
		if strings.HasPrefix(k, prefix) {
			infos = append(infos, repo.ObjectInfo{Key: k, Size: int64(len(v))})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (s *fakeObjectStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == s.failGetKey {
		return nil, errors.New("storage read failed")
	}
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("no such object")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *fakeObjectStore) Delete(ctx context.Context, key string) error {
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

// =====================
// Helper: error contains（HTTPErrorの実装詳細に依存しない）
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}
