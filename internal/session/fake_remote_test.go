package session

import (
	"context"
	"errors"
	"sync"

	"github.com/R3E-Network/tiny-trolley/internal/model"
	"github.com/R3E-Network/tiny-trolley/internal/remote"
)

var errOffline = &remote.Error{Op: "test", Err: errors.New("connection refused")}

type addCall struct {
	productID int64
	quantity  int
}

// fakeRemote is an in-memory Remote with per-operation failure switches.
type fakeRemote struct {
	mu sync.Mutex

	products    []model.Product
	productsErr error

	byID       map[int64]model.Product
	productErr error

	cart    []model.CartLine
	cartErr error
	// listCart overrides cart/cartErr when set; n is the 1-based call index.
	listCart func(n int) ([]model.CartLine, error)

	addErr    error
	removeErr error

	authResult model.AuthResult
	authErr    error

	calls   map[string]int
	added   []addCall
	removed []int64
	auths   []model.AuthKind
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		byID:  map[int64]model.Product{},
		calls: map[string]int{},
	}
}

func (f *fakeRemote) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeRemote) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeRemote) ListProducts(context.Context) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[remote.OpListProducts]++
	if f.productsErr != nil {
		return nil, f.productsErr
	}
	return append([]model.Product(nil), f.products...), nil
}

func (f *fakeRemote) GetProduct(_ context.Context, id int64) (model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[remote.OpGetProduct]++
	if f.productErr != nil {
		return model.Product{}, f.productErr
	}
	p, ok := f.byID[id]
	if !ok {
		return model.Product{}, &remote.Error{Op: remote.OpGetProduct, Err: errors.New("status 404")}
	}
	return p, nil
}

func (f *fakeRemote) ListCart(context.Context) ([]model.CartLine, error) {
	f.mu.Lock()
	f.calls[remote.OpListCart]++
	n := f.calls[remote.OpListCart]
	hook := f.listCart
	lines, err := append([]model.CartLine(nil), f.cart...), f.cartErr
	f.mu.Unlock()

	if hook != nil {
		return hook(n)
	}
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (f *fakeRemote) AddToCart(_ context.Context, productID int64, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[remote.OpAddToCart]++
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, addCall{productID: productID, quantity: quantity})
	return nil
}

func (f *fakeRemote) RemoveFromCart(_ context.Context, lineID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[remote.OpRemoveFromCart]++
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, lineID)
	return nil
}

func (f *fakeRemote) SubmitAuth(_ context.Context, kind model.AuthKind, _ model.Credentials) (model.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[remote.OpSubmitAuth]++
	f.auths = append(f.auths, kind)
	if f.authErr != nil {
		return model.AuthResult{}, f.authErr
	}
	return f.authResult, nil
}

func (f *fakeRemote) setCart(lines []model.CartLine, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cart = lines
	f.cartErr = err
}
