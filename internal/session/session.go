// Package session is the storefront synchronization core. A Session owns the
// catalog cache, the cart state, the operation flags, the notice and the
// view selection, and keeps them in step with the remote storefront API.
//
// Remote failures never escape a Session method. Each one becomes a local
// fallback (catalog, detail), an empty-state reset (cart listing) or a
// notice (mutations, auth). Methods block at the network boundary and may
// be called from any goroutine. Duplicate triggers of one category are not
// deduplicated: by default the last response to arrive wins.
package session

import (
	"context"
	"sync"

	"github.com/R3E-Network/tiny-trolley/internal/logging"
	"github.com/R3E-Network/tiny-trolley/internal/metrics"
	"github.com/R3E-Network/tiny-trolley/internal/model"
)

// Remote is the storefront API the session synchronizes against.
type Remote interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (model.Product, error)
	ListCart(ctx context.Context) ([]model.CartLine, error)
	AddToCart(ctx context.Context, productID int64, quantity int) error
	RemoveFromCart(ctx context.Context, lineID int64) error
	SubmitAuth(ctx context.Context, kind model.AuthKind, credentials model.Credentials) (model.AuthResult, error)
}

// Options configures a Session.
type Options struct {
	// Sequenced drops responses older than the one already applied for the
	// same category instead of letting the last arrival win.
	Sequenced bool
	// OnFlagChange observes operation flag transitions. It runs under the
	// flag lock and must not call back into the Session. Defaults to the
	// Prometheus in-flight gauge.
	OnFlagChange func(category string, active bool)
	Logger       *logging.Logger
}

// Session holds the client-side storefront state.
type Session struct {
	remote Remote
	log    *logging.Logger
	flags  *tracker
	seq    *sequencer

	mu       sync.RWMutex
	products []model.Product
	cart     []model.CartLine
	detail   *model.Product
	selected *int64
	view     model.View
	notice   string
}

// New creates a session on top of remote. The catalog starts empty until
// Start or LoadCatalog runs.
func New(remote Remote, opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = logging.NewDiscard("storefront-session")
	}
	onChange := opts.OnFlagChange
	if onChange == nil {
		onChange = metrics.SetOperationInFlight
	}
	return &Session{
		remote: remote,
		log:    log,
		flags:  newTracker(onChange),
		seq:    newSequencer(opts.Sequenced),
		view:   model.ViewHome,
	}
}

// Start performs the one-time catalog load.
func (s *Session) Start(ctx context.Context) {
	s.LoadCatalog(ctx)
}

// State is a point-in-time copy of everything the view layer renders.
type State struct {
	View            model.View       `json:"view"`
	SelectedProduct *int64           `json:"selected_product,omitempty"`
	Products        []model.Product  `json:"products"`
	Cart            []model.CartLine `json:"cart"`
	Items           []model.CartItem `json:"items"`
	Total           model.Price      `json:"total"`
	Detail          *model.Product   `json:"detail"`
	Flags           model.Flags      `json:"flags"`
	Notice          string           `json:"notice"`
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	flags := s.flags.snapshot()

	s.mu.RLock()
	defer s.mu.RUnlock()

	st := State{
		View:     s.view,
		Products: cloneProducts(s.products),
		Cart:     cloneLines(s.cart),
		Items:    s.cartItemsLocked(),
		Total:    s.cartTotalLocked(),
		Flags:    flags,
		Notice:   s.notice,
	}
	if s.selected != nil {
		st.SelectedProduct = model.Int64(*s.selected)
	}
	if s.detail != nil {
		p := *s.detail
		st.Detail = &p
	}
	return st
}

// Flags returns the operation flags.
func (s *Session) Flags() model.Flags {
	return s.flags.snapshot()
}

func cloneProducts(in []model.Product) []model.Product {
	out := make([]model.Product, len(in))
	copy(out, in)
	return out
}

func cloneLines(in []model.CartLine) []model.CartLine {
	out := make([]model.CartLine, len(in))
	for i, l := range in {
		out[i] = model.CartLine{Quantity: l.Quantity}
		if l.ID != nil {
			out[i].ID = model.Int64(*l.ID)
		}
		if l.Product != nil {
			out[i].Product = model.Int64(*l.Product)
		}
	}
	return out
}
