package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func validSpec() usecase.ProductSpec {
	return usecase.ProductSpec{
		AlbumName:   "summer-trip",
		Size:        "A4",
		PaperType:   "glossy",
		PrintFormat: "borderless",
		Quantity:    2,
		UnitPrice:   1500,
	}
}

func TestCartUsecase_AddToCart_Unauthorized(t *testing.T) {
	tx := new(TxManagerMock)
	uc := usecase.NewCartUsecase(tx)

	_, err := uc.AddToCart(context.Background(), "", validSpec())
	assertErrContains(t, err, "unauthorized")
}

func TestCartUsecase_AddToCart_MissingFields(t *testing.T) {
	tx := new(TxManagerMock)
	uc := usecase.NewCartUsecase(tx)

	spec := validSpec()
	spec.PaperType = ""

	_, err := uc.AddToCart(context.Background(), "a@example.com", spec)
	assertErrContains(t, err, "missing product fields")
}

func TestCartUsecase_AddToCart_InvalidQuantity(t *testing.T) {
	tx := new(TxManagerMock)
	uc := usecase.NewCartUsecase(tx)

	spec := validSpec()
	spec.Quantity = 0

	_, err := uc.AddToCart(context.Background(), "a@example.com", spec)
	assertErrContains(t, err, "invalid quantity")
}

// オープンカートが既にあるときは新しい注文を作らない
func TestCartUsecase_AddToCart_ReusesOpenCart(t *testing.T) {
	ctx := context.Background()
	email := "a@example.com"

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	productsRepo := new(ProductRepoMock)
	seqRepo := new(SequenceRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, products: productsRepo, sequences: seqRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	open := model.Order{
		ID:            "ord00003",
		CustomerEmail: email,
		PaymentStatus: model.PaymentStatusNotApproved,
	}
	ordersRepo.On("FindOpenByEmailForUpdate", mock.Anything, email).Return(open, nil)

	seqRepo.On("Next", mock.Anything, repo.SeqProduct).Return("prd00007", nil)

	productsRepo.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.ID == "prd00007" &&
			p.OrderID == "ord00003" &&
			p.FolderPath == "products/prd00007/"
	})).Return(nil)

	uc := usecase.NewCartUsecase(tx)

	out, err := uc.AddToCart(ctx, email, validSpec())
	assert.NoError(t, err)
	assert.Equal(t, "ord00003", out.OrderID)
	assert.Equal(t, "prd00007", out.ProductID)

	// 既存カート再利用なので注文は作られない
	ordersRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	ordersRepo.AssertExpectations(t)
	productsRepo.AssertExpectations(t)
	seqRepo.AssertExpectations(t)
}

// 初回addToCartは注文＋ステータス3件＋商品を同一Txで作る
func TestCartUsecase_AddToCart_CreatesCartWithStatusPlaceholders(t *testing.T) {
	ctx := context.Background()
	email := "a@example.com"

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	productsRepo := new(ProductRepoMock)
	statusesRepo := new(StatusRepoMock)
	seqRepo := new(SequenceRepoMock)

	tx.Repos = &TxReposMock{
		orders:    ordersRepo,
		products:  productsRepo,
		statuses:  statusesRepo,
		sequences: seqRepo,
	}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindOpenByEmailForUpdate", mock.Anything, email).Return(model.Order{}, repo.ErrNotFound)

	seqRepo.On("Next", mock.Anything, repo.SeqOrder).Return("ord00001", nil).Once()
	seqRepo.On("Next", mock.Anything, repo.SeqStatus).Return("stt00001", nil).Once()
	seqRepo.On("Next", mock.Anything, repo.SeqStatus).Return("stt00002", nil).Once()
	seqRepo.On("Next", mock.Anything, repo.SeqStatus).Return("stt00003", nil).Once()
	seqRepo.On("Next", mock.Anything, repo.SeqProduct).Return("prd00001", nil).Once()

	ordersRepo.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.ID == "ord00001" &&
			o.CustomerEmail == email &&
			o.PaymentStatus == model.PaymentStatusNotApproved &&
			o.CommittedAt == nil
	})).Return(nil)

	statusesRepo.On("CreateBulk", mock.Anything, mock.MatchedBy(func(events []model.StatusEvent) bool {
		if len(events) != 3 {
			return false
		}
		// 固定順・全件未完了
		wantNames := []model.StatusName{
			model.StatusReceiveOrder,
			model.StatusOrderCompleted,
			model.StatusShipped,
		}
		for i, ev := range events {
			if ev.Name != wantNames[i] || ev.IsCompleted || ev.OrderID != "ord00001" {
				return false
			}
		}
		return true
	})).Return(nil)

	productsRepo.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.ID == "prd00001" && p.OrderID == "ord00001"
	})).Return(nil)

	uc := usecase.NewCartUsecase(tx)

	out, err := uc.AddToCart(ctx, email, validSpec())
	assert.NoError(t, err)
	assert.Equal(t, "ord00001", out.OrderID)
	assert.Equal(t, "prd00001", out.ProductID)

	ordersRepo.AssertExpectations(t)
	productsRepo.AssertExpectations(t)
	statusesRepo.AssertExpectations(t)
	seqRepo.AssertExpectations(t)
}

// 同時作成に負けたら既存のオープンカートに乗り換える
func TestCartUsecase_AddToCart_CreateRace_UsesExistingCart(t *testing.T) {
	ctx := context.Background()
	email := "a@example.com"

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	productsRepo := new(ProductRepoMock)
	statusRepo := new(StatusRepoMock)
	seqRepo := new(SequenceRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, products: productsRepo, statuses: statusRepo, sequences: seqRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	// 1回目: 見つからない → 作りにいく
	ordersRepo.On("FindOpenByEmailForUpdate", mock.Anything, email).Return(model.Order{}, repo.ErrNotFound).Once()

	seqRepo.On("Next", mock.Anything, repo.SeqOrder).Return("ord00010", nil).Once()

	// 並行したaddToCartが先に作り、uniq_open_cartに弾かれた想定
	ordersRepo.On("Create", mock.Anything, mock.Anything).Return(assert.AnError).Once()

	winner := model.Order{ID: "ord00009", CustomerEmail: email, PaymentStatus: model.PaymentStatusNotApproved}
	ordersRepo.On("FindOpenByEmailForUpdate", mock.Anything, email).Return(winner, nil).Once()

	seqRepo.On("Next", mock.Anything, repo.SeqProduct).Return("prd00020", nil).Once()
	productsRepo.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.OrderID == "ord00009"
	})).Return(nil)

	uc := usecase.NewCartUsecase(tx)

	out, err := uc.AddToCart(ctx, email, validSpec())
	assert.NoError(t, err)
	assert.Equal(t, "ord00009", out.OrderID)

	// 負けた側は勝者の注文に乗るだけ。プレースホルダを作り直さない
	statusRepo.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything)

	ordersRepo.AssertExpectations(t)
	productsRepo.AssertExpectations(t)
}

// オープンカートが無ければ空のカートを返す
func TestCartUsecase_GetCart_Empty(t *testing.T) {
	ctx := context.Background()
	email := "a@example.com"

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindOpenByEmail", mock.Anything, email).Return(model.Order{}, repo.ErrNotFound)

	uc := usecase.NewCartUsecase(tx)

	out, err := uc.GetCart(ctx, email)
	assert.NoError(t, err)
	assert.Equal(t, "", out.OrderID)
	assert.Equal(t, 0, len(out.Products))
	assert.Equal(t, int64(0), out.Total)
}

func TestCartUsecase_GetCart_SumsLineTotals(t *testing.T) {
	ctx := context.Background()
	email := "a@example.com"

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	productsRepo := new(ProductRepoMock)
	statusesRepo := new(StatusRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, products: productsRepo, statuses: statusesRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	open := model.Order{ID: "ord00001", CustomerEmail: email, PaymentStatus: model.PaymentStatusNotApproved}
	ordersRepo.On("FindOpenByEmail", mock.Anything, email).Return(open, nil)

	products := []model.Product{
		{ID: "prd00001", OrderID: "ord00001", Quantity: 2, UnitPrice: 1500},
		{ID: "prd00002", OrderID: "ord00001", Quantity: 1, UnitPrice: 800},
	}
	productsRepo.On("ListByOrderID", mock.Anything, "ord00001").Return(products, nil)
	statusesRepo.On("ListByOrderID", mock.Anything, "ord00001").Return([]model.StatusEvent{}, nil)

	uc := usecase.NewCartUsecase(tx)

	out, err := uc.GetCart(ctx, email)
	assert.NoError(t, err)
	assert.Equal(t, "ord00001", out.OrderID)
	assert.Equal(t, model.CompositePaymentNotApproved, out.Status)
	assert.Equal(t, 2, len(out.Products))
	assert.Equal(t, int64(3800), out.Total)
	assert.Equal(t, int64(3000), out.Products[0].LineTotal)
}
