package session

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/R3E-Network/tiny-trolley/internal/metrics"
	"github.com/R3E-Network/tiny-trolley/internal/model"
)

// RefreshCart replaces the cart with the remote listing. On failure the cart
// becomes empty rather than keeping the last known lines.
func (s *Session) RefreshCart(ctx context.Context) {
	done := s.flags.begin(CategoryCart)
	defer done()

	seq := s.seq.next(CategoryCart)
	lines, err := s.remote.ListCart(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.seq.accept(CategoryCart, seq) {
		return
	}

	if err != nil {
		s.log.WithContext(ctx).WithError(err).Warn("cart fetch failed, clearing cart")
		metrics.RecordFallback(metrics.FallbackEmptyCart)
		s.cart = []model.CartLine{}
		return
	}
	s.cart = cloneLines(lines)
}

// AddToCart adds quantity units of a product. The cart is only updated from
// the listing that follows a confirmed add; a failed add leaves it as is.
func (s *Session) AddToCart(ctx context.Context, productID int64, quantity int) {
	done := s.flags.begin(CategoryAction)
	defer done()
	s.setNotice("")

	entry := s.log.WithContext(ctx).WithFields(logrus.Fields{
		"product_id": productID,
		"quantity":   quantity,
	})
	if err := s.remote.AddToCart(ctx, productID, quantity); err != nil {
		entry.WithError(err).Warn("add to cart failed")
		s.setNotice(NoticeAddFailed)
		return
	}

	product, _ := s.FindProduct(productID)
	s.setNotice(addedNotice(product.Name))
	entry.Info("added to cart")

	s.RefreshCart(ctx)
}

// RemoveFromCart removes a line, addressed by its ID or, when that is
// absent, by its product reference. A line with neither is ignored without
// touching flags, notice or the remote.
func (s *Session) RemoveFromCart(ctx context.Context, line model.CartLine) {
	target, ok := line.TargetID()
	if !ok {
		s.log.WithContext(ctx).Debug("remove ignored: cart line has no id or product")
		return
	}

	done := s.flags.begin(CategoryAction)
	defer done()
	s.setNotice("")

	entry := s.log.WithContext(ctx).WithField("target_id", target)
	if err := s.remote.RemoveFromCart(ctx, target); err != nil {
		entry.WithError(err).Warn("remove from cart failed")
		s.setNotice(NoticeRemoveFailed)
		return
	}

	s.setNotice(NoticeRemoved)
	entry.Info("removed from cart")

	s.RefreshCart(ctx)
}

// Cart returns the current cart lines.
func (s *Session) Cart() []model.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneLines(s.cart)
}

// CartItems joins each cart line with its cached product.
func (s *Session) CartItems() []model.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cartItemsLocked()
}

// CartTotal sums price × quantity over the cart. Lines whose product is not
// in the catalog count as zero.
func (s *Session) CartTotal() model.Price {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cartTotalLocked()
}

func (s *Session) cartItemsLocked() []model.CartItem {
	items := make([]model.CartItem, 0, len(s.cart))
	for _, line := range cloneLines(s.cart) {
		item := model.CartItem{Line: line}
		if line.Product != nil {
			if p, ok := s.findProductLocked(*line.Product); ok {
				item.Product = &p
			}
		}
		items = append(items, item)
	}
	return items
}

func (s *Session) cartTotalLocked() model.Price {
	var total model.Price
	for _, line := range s.cart {
		if line.Product == nil {
			continue
		}
		if p, ok := s.findProductLocked(*line.Product); ok {
			total += p.Price * model.Price(line.Quantity)
		}
	}
	return total
}
