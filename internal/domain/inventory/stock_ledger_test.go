package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/dropship/backend/internal/domain/catalog"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProductRepo is an in-memory ProductRepository with the same
// compare-and-swap semantics as the gorm implementation: SaveStockWithLock
// only applies when the stored version equals the incoming version minus one.
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*catalog.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*catalog.Product)}
}

func (r *fakeProductRepo) put(p *catalog.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = cloneProduct(p)
}

func cloneProduct(p *catalog.Product) *catalog.Product {
	clone := *p
	clone.Variations = make([]catalog.Variation, len(p.Variations))
	copy(clone.Variations, p.Variations)
	return &clone
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneProduct(p), nil
}

func (r *fakeProductRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		p, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeProductRepo) FindBySupplier(context.Context, uuid.UUID, shared.Filter) ([]catalog.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) Save(_ context.Context, p *catalog.Product) error {
	r.put(p)
	return nil
}

func (r *fakeProductRepo) SaveStockWithLock(_ context.Context, p *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.products[p.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != p.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.products[p.ID] = cloneProduct(p)
	return nil
}

type fakeReservationRepo struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]*StockReservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reservations: make(map[uuid.UUID]*StockReservation)}
}

func (r *fakeReservationRepo) Create(_ context.Context, res *StockReservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *res
	r.reservations[res.ID] = &clone
	return nil
}

func (r *fakeReservationRepo) FindBySubOrder(_ context.Context, subOrderID uuid.UUID) ([]StockReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []StockReservation
	for _, res := range r.reservations {
		if res.SubOrderID == subOrderID {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) Save(_ context.Context, res *StockReservation) error {
	return r.Create(context.Background(), res)
}

type fakeMovementRepo struct {
	mu        sync.Mutex
	movements []StockMovement
}

func (r *fakeMovementRepo) Create(_ context.Context, m *StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeMovementRepo) FindByProduct(_ context.Context, productID uuid.UUID) ([]StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func newTestLedger(t *testing.T) (*StockLedger, *fakeProductRepo, *fakeReservationRepo, *fakeMovementRepo) {
	t.Helper()
	products := newFakeProductRepo()
	reservations := newFakeReservationRepo()
	movements := &fakeMovementRepo{}
	// generous retry bound so contended goroutines do not give up in tests
	ledger := NewStockLedger(products, reservations, movements, 50)
	return ledger, products, reservations, movements
}

func seedProductWithVariations(t *testing.T, repo *fakeProductRepo, stocks ...int64) (*catalog.Product, []uuid.UUID) {
	t.Helper()
	product, err := catalog.NewProduct(uuid.New(), "Robe Longue", "ROB-014", 0, decimal.NewFromInt(1200))
	require.NoError(t, err)

	colors := []string{"Rouge", "Bleu", "Noir", "Blanc"}
	ids := make([]uuid.UUID, 0, len(stocks))
	for i, stock := range stocks {
		v, err := product.AddVariation(colors[i%len(colors)], "M", stock, decimal.NewFromInt(1200))
		require.NoError(t, err)
		ids = append(ids, v.ID)
	}
	repo.put(product)
	return product, ids
}

func TestStockLedger_Reserve(t *testing.T) {
	ctx := context.Background()

	t.Run("reserves and records reservation plus movement", func(t *testing.T) {
		ledger, products, _, movements := newTestLedger(t)
		product, ids := seedProductWithVariations(t, products, 5, 3)

		res, err := ledger.Reserve(ctx, ReserveCommand{
			SubOrderID:  uuid.New(),
			ProductID:   product.ID,
			VariationID: &ids[0],
			Quantity:    4,
		})
		require.NoError(t, err)
		assert.True(t, res.IsActive())

		stored, err := products.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(4), stored.Stock)
		assert.True(t, stored.StockConsistent())

		logged, err := movements.FindByProduct(ctx, product.ID)
		require.NoError(t, err)
		require.Len(t, logged, 1)
		assert.Equal(t, MovementReserve, logged[0].Kind)
	})

	t.Run("insufficient stock leaves counters untouched", func(t *testing.T) {
		ledger, products, _, _ := newTestLedger(t)
		product, ids := seedProductWithVariations(t, products, 5)

		_, err := ledger.Reserve(ctx, ReserveCommand{
			SubOrderID:  uuid.New(),
			ProductID:   product.ID,
			VariationID: &ids[0],
			Quantity:    6,
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)

		stored, err := products.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(5), stored.Stock)
	})

	t.Run("concurrent reservations never oversell", func(t *testing.T) {
		ledger, products, _, _ := newTestLedger(t)
		product, ids := seedProductWithVariations(t, products, 10)

		const workers = 8
		var wg sync.WaitGroup
		granted := make(chan int64, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := ledger.Reserve(ctx, ReserveCommand{
					SubOrderID:  uuid.New(),
					ProductID:   product.ID,
					VariationID: &ids[0],
					Quantity:    3,
				})
				if err == nil {
					granted <- 3
				}
			}()
		}
		wg.Wait()
		close(granted)

		var total int64
		for qty := range granted {
			total += qty
		}
		// 10 units available, 3 per request: at most 3 winners
		assert.Equal(t, int64(9), total)

		stored, err := products.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stored.Stock)
		assert.True(t, stored.StockConsistent())
	})

	t.Run("concurrent reservations on different variations keep the product sum consistent", func(t *testing.T) {
		ledger, products, _, _ := newTestLedger(t)
		product, ids := seedProductWithVariations(t, products, 20, 20)

		var wg sync.WaitGroup
		errs := make(chan error, 10)
		for i := 0; i < 10; i++ {
			variationID := ids[i%2]
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := ledger.Reserve(ctx, ReserveCommand{
					SubOrderID:  uuid.New(),
					ProductID:   product.ID,
					VariationID: &variationID,
					Quantity:    2,
				})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		stored, err := products.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(20), stored.Stock)
		assert.True(t, stored.StockConsistent())
	})
}

func TestStockLedger_ReleaseForSubOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("returns reserved quantities to the counters", func(t *testing.T) {
		ledger, products, _, _ := newTestLedger(t)
		product, ids := seedProductWithVariations(t, products, 5, 3)

		subOrderID := uuid.New()
		_, err := ledger.Reserve(ctx, ReserveCommand{
			SubOrderID: subOrderID, ProductID: product.ID, VariationID: &ids[0], Quantity: 4,
		})
		require.NoError(t, err)
		_, err = ledger.Reserve(ctx, ReserveCommand{
			SubOrderID: subOrderID, ProductID: product.ID, VariationID: &ids[1], Quantity: 2,
		})
		require.NoError(t, err)

		require.NoError(t, ledger.ReleaseForSubOrder(ctx, subOrderID))

		stored, err := products.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(8), stored.Stock)
		assert.True(t, stored.StockConsistent())
	})

	t.Run("double release is a no-op", func(t *testing.T) {
		ledger, products, _, _ := newTestLedger(t)
		product, ids := seedProductWithVariations(t, products, 5)

		subOrderID := uuid.New()
		_, err := ledger.Reserve(ctx, ReserveCommand{
			SubOrderID: subOrderID, ProductID: product.ID, VariationID: &ids[0], Quantity: 4,
		})
		require.NoError(t, err)

		require.NoError(t, ledger.ReleaseForSubOrder(ctx, subOrderID))
		require.NoError(t, ledger.ReleaseForSubOrder(ctx, subOrderID))

		stored, err := products.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(5), stored.Stock)
	})

	t.Run("release for unknown sub-order does nothing", func(t *testing.T) {
		ledger, _, _, _ := newTestLedger(t)
		assert.NoError(t, ledger.ReleaseForSubOrder(ctx, uuid.New()))
	})
}
