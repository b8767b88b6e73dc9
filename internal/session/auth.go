package session

import (
	"context"

	"github.com/R3E-Network/tiny-trolley/internal/model"
)

// SubmitAuth sends credentials to the login or signup endpoint. The outcome
// is reported only through the notice: no token is kept and the view does
// not change.
func (s *Session) SubmitAuth(ctx context.Context, kind model.AuthKind, credentials model.Credentials) {
	done := s.flags.begin(CategoryAction)
	defer done()

	entry := s.log.WithContext(ctx).WithField("kind", string(kind))
	result, err := s.remote.SubmitAuth(ctx, kind, credentials)
	if err != nil {
		entry.WithError(err).Warn("auth request failed")
		s.setNotice(NoticeAuthFailed)
		return
	}

	entry.Info("auth request succeeded")
	s.setNotice(authNotice(kind, result))
}
