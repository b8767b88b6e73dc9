package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// View identifies the active screen. It is owned by the view layer.
type View int

const (
	ViewHome View = iota
	ViewProducts
	ViewDetail
	ViewCart
	ViewCheckout
	ViewAuth
)

var viewNames = [...]string{"home", "products", "detail", "cart", "checkout", "auth"}

func (v View) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return fmt.Sprintf("View(%d)", int(v))
	}
	return viewNames[v]
}

// ParseView parses a view name, case-insensitively.
func ParseView(s string) (View, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range viewNames {
		if name == s {
			return View(i), nil
		}
	}
	return ViewHome, fmt.Errorf("unknown view %q", s)
}

// ShowsCart reports whether entering v refreshes the cart.
func (v View) ShowsCart() bool {
	return v == ViewCart || v == ViewCheckout
}

// MarshalJSON implements json.Marshaler.
func (v View) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *View) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseView(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// AuthKind selects the auth endpoint.
type AuthKind string

const (
	AuthLogin  AuthKind = "login"
	AuthSignup AuthKind = "signup"
)

// ParseAuthKind validates an auth kind.
func ParseAuthKind(s string) (AuthKind, error) {
	switch k := AuthKind(strings.ToLower(strings.TrimSpace(s))); k {
	case AuthLogin, AuthSignup:
		return k, nil
	default:
		return "", fmt.Errorf("unknown auth kind %q", s)
	}
}

// Credentials holds the fields the view layer submitted for auth. Values
// are forwarded unchanged, whatever their JSON type.
type Credentials map[string]any

// AuthResult is the decoded auth response. Its shape is not fixed, so the
// raw payload is kept alongside the top-level fields.
type AuthResult struct {
	Raw    json.RawMessage `json:"raw"`
	Fields map[string]any  `json:"fields,omitempty"`
}
