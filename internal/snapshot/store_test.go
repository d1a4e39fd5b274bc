package snapshot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/revendazap/backend/internal/auth"
	"github.com/revendazap/backend/internal/catalog"
	"github.com/revendazap/backend/internal/customers"
	"github.com/revendazap/backend/internal/sales"
)

// stubListers devolve coleções fixas na carga inicial do snapshot.
type stubListers struct {
	customers []customers.Customer
	apps      []catalog.App
	codes     []catalog.Code
	sales     []sales.Sale

	mu    sync.Mutex
	calls int
	delay time.Duration
}

func (s *stubListers) ListCustomers(ctx context.Context, sellerID string) ([]customers.Customer, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.customers, nil
}

func (s *stubListers) loadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubListers) ListApps(ctx context.Context, sellerID string) ([]catalog.App, error) {
	return s.apps, nil
}

func (s *stubListers) ListCodes(ctx context.Context, sellerID string) ([]catalog.Code, error) {
	return s.codes, nil
}

func (s *stubListers) ListSales(ctx context.Context, sellerID string) ([]sales.Sale, error) {
	return s.sales, nil
}

func newTestStore(listers *stubListers) *Store {
	return NewStore(listers, listers, listers, listers, zap.NewNop())
}

func sellerContext(sellerID string) context.Context {
	return auth.WithSeller(context.Background(), sellerID)
}

func TestGetInitializesOnce(t *testing.T) {
	listers := &stubListers{
		customers: []customers.Customer{{ID: "customer-1", SellerID: "seller-1", Name: "João"}},
		apps:      []catalog.App{{ID: "app-1", SellerID: "seller-1", Name: "Netflix", CodesAvailable: 2}},
	}
	store := newTestStore(listers)
	ctx := sellerContext("seller-1")

	first, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Len(t, first.Customers, 1)
	assert.Len(t, first.Apps, 1)

	_, err = store.Get(ctx)
	require.NoError(t, err)
	// A carga do banco acontece uma única vez por vendedor.
	assert.Equal(t, 1, listers.loadCount())
}

func TestConcurrentGetInitializesOnce(t *testing.T) {
	listers := &stubListers{
		customers: []customers.Customer{{ID: "customer-1", SellerID: "seller-1"}},
		delay:     20 * time.Millisecond,
	}
	store := newTestStore(listers)
	ctx := sellerContext("seller-1")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, err := store.Get(ctx)
			assert.NoError(t, err)
			assert.Len(t, state.Customers, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, listers.loadCount())
}

func TestGetWithoutSession(t *testing.T) {
	store := newTestStore(&stubListers{})

	state, err := store.Get(context.Background())

	assert.Nil(t, state)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestCustomerPatches(t *testing.T) {
	store := newTestStore(&stubListers{})
	ctx := sellerContext("seller-1")
	_, err := store.Get(ctx)
	require.NoError(t, err)

	customer := &customers.Customer{ID: "customer-1", SellerID: "seller-1", Name: "João"}
	store.CustomerSaved(customer)

	state, _ := store.Get(ctx)
	require.Len(t, state.Customers, 1)
	assert.Equal(t, "João", state.Customers[0].Name)

	customer.Name = "João Silva"
	store.CustomerSaved(customer)

	state, _ = store.Get(ctx)
	require.Len(t, state.Customers, 1)
	assert.Equal(t, "João Silva", state.Customers[0].Name)

	store.CustomerDeleted("seller-1", "customer-1")
	state, _ = store.Get(ctx)
	assert.Empty(t, state.Customers)
}

func TestPatchIgnoredBeforeInitialization(t *testing.T) {
	listers := &stubListers{}
	store := newTestStore(listers)

	// Sem snapshot carregado não há o que remendar.
	store.CustomerSaved(&customers.Customer{ID: "customer-1", SellerID: "seller-1"})

	state, err := store.Get(sellerContext("seller-1"))
	require.NoError(t, err)
	assert.Empty(t, state.Customers)
}

func TestCodesAddedIncrementsCounter(t *testing.T) {
	listers := &stubListers{
		apps: []catalog.App{{ID: "app-1", SellerID: "seller-1", Name: "Netflix", CodesAvailable: 1}},
	}
	store := newTestStore(listers)
	ctx := sellerContext("seller-1")
	_, err := store.Get(ctx)
	require.NoError(t, err)

	store.CodesAdded("seller-1", "app-1", []*catalog.Code{
		{ID: "code-1", AppID: "app-1", Code: "NETF-0001"},
		{ID: "code-2", AppID: "app-1", Code: "NETF-0002"},
	})

	state, _ := store.Get(ctx)
	assert.Equal(t, 3, state.Apps[0].CodesAvailable)
	assert.Len(t, state.Codes, 2)
}

func TestAppDeletedRemovesCodes(t *testing.T) {
	listers := &stubListers{
		apps: []catalog.App{{ID: "app-1", SellerID: "seller-1"}, {ID: "app-2", SellerID: "seller-1"}},
		codes: []catalog.Code{
			{ID: "code-1", AppID: "app-1", Code: "NETF-0001"},
			{ID: "code-2", AppID: "app-2", Code: "SPOT-0001"},
		},
	}
	store := newTestStore(listers)
	ctx := sellerContext("seller-1")
	_, err := store.Get(ctx)
	require.NoError(t, err)

	store.AppDeleted("seller-1", "app-1")

	state, _ := store.Get(ctx)
	require.Len(t, state.Apps, 1)
	assert.Equal(t, "app-2", state.Apps[0].ID)
	require.Len(t, state.Codes, 1)
	assert.Equal(t, "SPOT-0001", state.Codes[0].Code)
}

func TestSaleConfirmedSyncsInventory(t *testing.T) {
	listers := &stubListers{
		apps: []catalog.App{{ID: "app-1", SellerID: "seller-1", CodesAvailable: 3}},
		codes: []catalog.Code{
			{ID: "code-1", AppID: "app-1", Code: "NETF-0001"},
			{ID: "code-2", AppID: "app-1", Code: "NETF-0002"},
			{ID: "code-3", AppID: "app-1", Code: "NETF-0003"},
		},
		sales: []sales.Sale{{
			ID: "sale-1", SellerID: "seller-1", Status: sales.StatusPending,
			Items: []sales.SaleItem{{AppID: "app-1", Quantity: 2}},
		}},
	}
	store := newTestStore(listers)
	ctx := sellerContext("seller-1")
	_, err := store.Get(ctx)
	require.NoError(t, err)

	confirmed := &sales.Sale{
		ID: "sale-1", SellerID: "seller-1", Status: sales.StatusConfirmed,
		TotalPrice: decimal.NewFromFloat(59.80),
		Items: []sales.SaleItem{
			{AppID: "app-1", Quantity: 2, Codes: []string{"NETF-0001", "NETF-0002"}},
		},
	}
	store.SaleConfirmed(confirmed)

	state, _ := store.Get(ctx)
	assert.Equal(t, sales.StatusConfirmed, state.Sales[0].Status)
	assert.Equal(t, 1, state.Apps[0].CodesAvailable)

	used := map[string]bool{}
	for _, code := range state.Codes {
		used[code.Code] = code.Used
	}
	assert.True(t, used["NETF-0001"])
	assert.True(t, used["NETF-0002"])
	assert.False(t, used["NETF-0003"])
}

func TestSaleSavedPrependsNewSale(t *testing.T) {
	listers := &stubListers{
		sales: []sales.Sale{{ID: "sale-1", SellerID: "seller-1"}},
	}
	store := newTestStore(listers)
	ctx := sellerContext("seller-1")
	_, err := store.Get(ctx)
	require.NoError(t, err)

	store.SaleSaved(&sales.Sale{ID: "sale-2", SellerID: "seller-1"})

	state, _ := store.Get(ctx)
	require.Len(t, state.Sales, 2)
	assert.Equal(t, "sale-2", state.Sales[0].ID)

	store.SaleDeleted("seller-1", "sale-2")
	state, _ = store.Get(ctx)
	require.Len(t, state.Sales, 1)
	assert.Equal(t, "sale-1", state.Sales[0].ID)
}
