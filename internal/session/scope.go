package session

import "context"

// Opener issues new sessions. db.Database implements it; tests may supply
// their own.
type Opener interface {
	OpenSession(ctx context.Context) (*Session, error)
}

// WithSession runs fn inside a session scope. When sess is nil a new
// session is opened, committed when fn succeeds, and closed on every exit
// path (Close rolls back anything uncommitted). A caller-supplied session
// is used as-is: the caller retains ownership and controls commit and close
// itself.
func WithSession(ctx context.Context, opener Opener, sess *Session, fn func(*Session) error) error {
	if sess != nil {
		return fn(sess)
	}

	s, err := opener.OpenSession(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := fn(s); err != nil {
		return err
	}
	return s.Commit()
}
