package session

import (
	"fmt"

	"github.com/R3E-Network/tiny-trolley/internal/model"
)

// Notice texts.
const (
	NoticeCatalogOffline = "Could not reach the store. Showing our default collection."
	NoticeAddFailed      = "Could not add the item to your cart. Please try again."
	NoticeRemoved        = "Item removed from cart."
	NoticeRemoveFailed   = "Could not remove the item from your cart. Please try again."
	NoticeAuthFailed     = "Authentication failed. Please try again."
)

func addedNotice(name string) string {
	if name == "" {
		return "Item added to cart!"
	}
	return name + " added to cart!"
}

func authNotice(kind model.AuthKind, result model.AuthResult) string {
	label := "Login"
	if kind == model.AuthSignup {
		label = "Signup"
	}
	return fmt.Sprintf("%s successful: %s", label, string(result.Raw))
}

// setNotice overwrites the notice. An empty text clears it.
func (s *Session) setNotice(text string) {
	s.mu.Lock()
	s.notice = text
	s.mu.Unlock()
}

// Notice returns the current notice, or "" when none is set.
func (s *Session) Notice() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notice
}
