package session

import (
	"context"

	"github.com/R3E-Network/tiny-trolley/internal/model"
)

// Navigate switches the active view and runs the fetch the new view needs:
// the cart listing for cart and checkout, detail resolution for detail.
func (s *Session) Navigate(ctx context.Context, view model.View) {
	s.mu.Lock()
	s.view = view
	s.mu.Unlock()

	switch {
	case view.ShowsCart():
		s.RefreshCart(ctx)
	case view == model.ViewDetail:
		s.ResolveDetail(ctx)
	}
}

// View returns the active view and the selected product, if any.
func (s *Session) View() (model.View, *int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return s.view, nil
	}
	return s.view, model.Int64(*s.selected)
}
