package session

import (
	"context"
	"strings"

	"github.com/R3E-Network/tiny-trolley/internal/metrics"
	"github.com/R3E-Network/tiny-trolley/internal/model"
)

// DefaultProducts returns the built-in catalog used when the remote catalog
// cannot be fetched.
func DefaultProducts() []model.Product {
	return []model.Product{
		{ID: 1, Name: "Bohemian Maxi Dress", Category: "Clothing", Price: 79},
		{ID: 2, Name: "Sequin Party Dress", Category: "Clothing", Price: 99},
		{ID: 3, Name: "Silk Wrap Dress", Category: "Clothing", Price: 119},
		{ID: 4, Name: "Denim Overall Dress", Category: "Clothing", Price: 69},
	}
}

// LoadCatalog fetches the catalog once. On failure the cache becomes the
// default set and the degraded-mode notice is shown. There is no retry.
func (s *Session) LoadCatalog(ctx context.Context) {
	done := s.flags.begin(CategoryProducts)
	defer done()

	seq := s.seq.next(CategoryProducts)
	products, err := s.remote.ListProducts(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.seq.accept(CategoryProducts, seq) {
		return
	}

	if err != nil {
		s.log.WithContext(ctx).WithError(err).Warn("catalog fetch failed, using default products")
		metrics.RecordFallback(metrics.FallbackDefaultCatalog)
		s.products = DefaultProducts()
		s.notice = NoticeCatalogOffline
		return
	}

	s.products = cloneProducts(products)
	s.log.WithContext(ctx).WithField("count", len(products)).Info("catalog loaded")
}

// Products returns the cached catalog.
func (s *Session) Products() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProducts(s.products)
}

// ProductsByCategory returns cached products whose category matches,
// case-insensitively. An empty category returns the whole catalog.
func (s *Session) ProductsByCategory(category string) []model.Product {
	category = strings.TrimSpace(category)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if category == "" {
		return cloneProducts(s.products)
	}
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

// FindProduct looks id up in the cached catalog.
func (s *Session) FindProduct(id int64) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findProductLocked(id)
}

func (s *Session) findProductLocked(id int64) (model.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

// ShowProduct selects a product, switches to the detail view and resolves
// the detail.
func (s *Session) ShowProduct(ctx context.Context, id int64) {
	s.mu.Lock()
	s.selected = model.Int64(id)
	s.view = model.ViewDetail
	s.mu.Unlock()

	s.ResolveDetail(ctx)
}

// ResolveDetail resolves the selected product: the remote copy first, then
// the cached catalog entry. When neither has it the detail is absent. A
// remote failure never produces a notice.
func (s *Session) ResolveDetail(ctx context.Context) {
	s.mu.Lock()
	if s.selected == nil {
		s.detail = nil
		s.mu.Unlock()
		return
	}
	id := *s.selected
	s.detail = nil
	s.mu.Unlock()

	done := s.flags.begin(CategoryDetail)
	defer done()

	seq := s.seq.next(CategoryDetail)
	product, err := s.remote.GetProduct(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.seq.accept(CategoryDetail, seq) {
		return
	}

	if err == nil {
		s.detail = &product
		return
	}

	entry := s.log.WithContext(ctx).WithError(err).WithField("product_id", id)
	if cached, ok := s.findProductLocked(id); ok {
		entry.Info("product fetch failed, showing cached product")
		metrics.RecordFallback(metrics.FallbackDetailCache)
		s.detail = &cached
		return
	}
	entry.Info("product fetch failed and product is not cached")
	metrics.RecordFallback(metrics.FallbackDetailAbsent)
	s.detail = nil
}

// Detail returns the resolved detail product, if any.
func (s *Session) Detail() (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.detail == nil {
		return model.Product{}, false
	}
	return *s.detail, true
}
