package snapshot

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/revendazap/backend/internal/auth"
	"github.com/revendazap/backend/internal/catalog"
	"github.com/revendazap/backend/internal/customers"
	"github.com/revendazap/backend/internal/sales"
)

// State é o espelho em memória consumido pela camada de interface: todos os
// clientes, aplicativos, códigos e vendas do vendedor.
type State struct {
	Customers []customers.Customer `json:"customers"`
	Apps      []catalog.App        `json:"apps"`
	Codes     []catalog.Code       `json:"codes"`
	Sales     []sales.Sale         `json:"sales"`
}

// CustomerLister carrega os clientes do vendedor no bootstrap do cache.
type CustomerLister interface {
	ListCustomers(ctx context.Context, sellerID string) ([]customers.Customer, error)
}

// AppLister carrega os aplicativos do vendedor no bootstrap do cache.
type AppLister interface {
	ListApps(ctx context.Context, sellerID string) ([]catalog.App, error)
}

// CodeLister carrega os códigos do vendedor no bootstrap do cache.
type CodeLister interface {
	ListCodes(ctx context.Context, sellerID string) ([]catalog.Code, error)
}

// SaleLister carrega as vendas do vendedor no bootstrap do cache.
type SaleLister interface {
	ListSales(ctx context.Context, sellerID string) ([]sales.Sale, error)
}

// Store mantém um snapshot por vendedor, carregado uma única vez do banco e
// depois remendado apenas com os objetos devolvidos por cada operação — o
// cache nunca infere estado por conta própria.
type Store struct {
	mu     sync.RWMutex
	states map[string]*State

	customers CustomerLister
	apps      AppLister
	codes     CodeLister
	sales     SaleLister
	logger    *zap.Logger
}

// NewStore cria uma nova instância de Store.
func NewStore(customerLister CustomerLister, appLister AppLister, codeLister CodeLister, saleLister SaleLister, logger *zap.Logger) *Store {
	return &Store{
		states:    make(map[string]*State),
		customers: customerLister,
		apps:      appLister,
		codes:     codeLister,
		sales:     saleLister,
		logger:    logger,
	}
}

// Get devolve o snapshot do vendedor da sessão, fazendo a carga inicial das
// quatro coleções na primeira consulta.
func (s *Store) Get(ctx context.Context) (*State, error) {
	sellerID, err := auth.SellerID(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	state, ok := s.states[sellerID]
	if ok {
		out := copyState(state)
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()

	return s.initialize(ctx, sellerID)
}

// initialize faz a carga inicial segurando o lock de escrita, de modo que
// só uma carga acontece por vendedor e nenhum remendo concorrente se perde
// durante a janela de carregamento.
func (s *Store) initialize(ctx context.Context, sellerID string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.states[sellerID]; ok {
		return copyState(state), nil
	}

	customerList, err := s.customers.ListCustomers(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	appList, err := s.apps.ListApps(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	codeList, err := s.codes.ListCodes(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	saleList, err := s.sales.ListSales(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	state := &State{
		Customers: customerList,
		Apps:      appList,
		Codes:     codeList,
		Sales:     saleList,
	}

	s.states[sellerID] = state

	s.logger.Info("snapshot initialized",
		zap.String("seller_id", sellerID),
		zap.Int("customers", len(customerList)),
		zap.Int("apps", len(appList)),
		zap.Int("codes", len(codeList)),
		zap.Int("sales", len(saleList)))

	return copyState(state), nil
}

// copyState copia o snapshot. O chamador deve segurar o lock.
func copyState(state *State) *State {
	out := &State{
		Customers: make([]customers.Customer, len(state.Customers)),
		Apps:      make([]catalog.App, len(state.Apps)),
		Codes:     make([]catalog.Code, len(state.Codes)),
		Sales:     make([]sales.Sale, len(state.Sales)),
	}
	copy(out.Customers, state.Customers)
	copy(out.Apps, state.Apps)
	copy(out.Codes, state.Codes)
	copy(out.Sales, state.Sales)
	return out
}

// state devolve o snapshot do vendedor se já inicializado. Deve ser chamado
// com o lock de escrita em mãos.
func (s *Store) state(sellerID string) (*State, bool) {
	state, ok := s.states[sellerID]
	return state, ok
}

// CustomerSaved aplica um cliente criado ou editado ao snapshot.
func (s *Store) CustomerSaved(customer *customers.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.state(customer.SellerID)
	if !ok {
		return
	}
	for i := range state.Customers {
		if state.Customers[i].ID == customer.ID {
			state.Customers[i] = *customer
			return
		}
	}
	state.Customers = append(state.Customers, *customer)
}

// CustomerDeleted remove um cliente do snapshot.
func (s *Store) CustomerDeleted(sellerID, customerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.state(sellerID)
	if !ok {
		return
	}
	for i := range state.Customers {
		if state.Customers[i].ID == customerID {
			state.Customers = append(state.Customers[:i], state.Customers[i+1:]...)
			return
		}
	}
}

// AppSaved aplica um aplicativo criado ou editado ao snapshot.
func (s *Store) AppSaved(app *catalog.App) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.state(app.SellerID)
	if !ok {
		return
	}
	for i := range state.Apps {
		if state.Apps[i].ID == app.ID {
			state.Apps[i] = *app
			return
		}
	}
	state.Apps = append(state.Apps, *app)
}

// AppDeleted remove um aplicativo e seus códigos do snapshot.
func (s *Store) AppDeleted(sellerID, appID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.state(sellerID)
	if !ok {
		return
	}
	for i := range state.Apps {
		if state.Apps[i].ID == appID {
			state.Apps = append(state.Apps[:i], state.Apps[i+1:]...)
			break
		}
	}
	kept := state.Codes[:0]
	for _, code := range state.Codes {
		if code.AppID != appID {
			kept = append(kept, code)
		}
	}
	state.Codes = kept
}

// CodesAdded acrescenta os códigos recém-ingeridos e incrementa o contador
// do aplicativo pela quantidade persistida.
func (s *Store) CodesAdded(sellerID, appID string, codes []*catalog.Code) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.state(sellerID)
	if !ok {
		return
	}
	for _, code := range codes {
		state.Codes = append(state.Codes, *code)
	}
	for i := range state.Apps {
		if state.Apps[i].ID == appID {
			state.Apps[i].CodesAvailable += len(codes)
			return
		}
	}
}

// SaleSaved aplica uma venda criada ou editada ao snapshot, mais recente
// primeiro.
func (s *Store) SaleSaved(sale *sales.Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.state(sale.SellerID)
	if !ok {
		return
	}
	for i := range state.Sales {
		if state.Sales[i].ID == sale.ID {
			state.Sales[i] = *sale
			return
		}
	}
	state.Sales = append([]sales.Sale{*sale}, state.Sales...)
}

// SaleConfirmed substitui a venda confirmada e mantém o espelho de estoque
// em sincronia sem nova consulta: decrementa codesAvailable de cada
// aplicativo pela quantidade consumida e marca os códigos alocados como
// usados.
func (s *Store) SaleConfirmed(sale *sales.Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.state(sale.SellerID)
	if !ok {
		return
	}

	for i := range state.Sales {
		if state.Sales[i].ID == sale.ID {
			state.Sales[i] = *sale
			break
		}
	}

	allocated := make(map[string]bool)
	for _, item := range sale.Items {
		for i := range state.Apps {
			if state.Apps[i].ID == item.AppID {
				state.Apps[i].CodesAvailable -= item.Quantity
			}
		}
		for _, code := range item.Codes {
			allocated[code] = true
		}
	}

	for i := range state.Codes {
		if allocated[state.Codes[i].Code] {
			state.Codes[i].Used = true
		}
	}
}

// SaleDeleted remove uma venda do snapshot. O estoque não é devolvido:
// exclusão não desfaz consumo de códigos.
func (s *Store) SaleDeleted(sellerID, saleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.state(sellerID)
	if !ok {
		return
	}
	for i := range state.Sales {
		if state.Sales[i].ID == saleID {
			state.Sales = append(state.Sales[:i], state.Sales[i+1:]...)
			return
		}
	}
}
