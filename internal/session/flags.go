package session

import (
	"fmt"
	"sync"

	"github.com/R3E-Network/tiny-trolley/internal/model"
)

// Category is one independently tracked kind of operation.
type Category int

const (
	CategoryProducts Category = iota
	CategoryDetail
	CategoryCart
	CategoryAction

	numCategories
)

var categoryNames = [numCategories]string{"products", "detail", "cart", "action"}

func (c Category) String() string {
	if c < 0 || c >= numCategories {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// tracker holds the operation flags. Flags only drive UI feedback; nothing
// in the session consults them before acting.
type tracker struct {
	mu       sync.Mutex
	active   [numCategories]bool
	onChange func(category string, active bool)
}

func newTracker(onChange func(string, bool)) *tracker {
	if onChange == nil {
		onChange = func(string, bool) {}
	}
	return &tracker{onChange: onChange}
}

// begin sets the flag for c and returns the function that clears it.
// Callers defer the returned function so every exit path releases the flag.
func (t *tracker) begin(c Category) func() {
	t.set(c, true)
	return func() { t.set(c, false) }
}

// set updates the flag and notifies onChange under the same lock, so the
// observer always ends on the flag's final value.
func (t *tracker) set(c Category, v bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active[c] = v
	t.onChange(c.String(), v)
}

func (t *tracker) snapshot() model.Flags {
	t.mu.Lock()
	defer t.mu.Unlock()
	return model.Flags{
		Products: t.active[CategoryProducts],
		Detail:   t.active[CategoryDetail],
		Cart:     t.active[CategoryCart],
		Action:   t.active[CategoryAction],
	}
}
