package bank

import (
	"context"
	"fmt"
	"strings"

	"github.com/hongminglow/bunny-bank/internal/models"
)

// Session is an authenticated actor's working copy of its account.
type Session struct {
	ID       string         `json:"id"`
	Username string         `json:"username"`
	IsAdmin  bool           `json:"isAdmin"`
	Balances models.Amounts `json:"balances"`
	Holdings models.Amounts `json:"holdings"`
}

func (s *Session) clone() *Session {
	c := *s
	c.Balances = s.Balances.Clone()
	c.Holdings = s.Holdings.Clone()
	return &c
}

// Login verifies the credential and opens a session holding a deep copy of
// the account. The new session id is returned in the event.
func (b *Bank) Login(ctx context.Context, username, secret string) (Event, error) {
	username = strings.TrimSpace(username)
	secret = strings.TrimSpace(secret)
	if username == "" || secret == "" {
		return b.apply(ctx, EventLogin, func() (Event, error) {
			return Event{}, invalid("Enter username and password")
		})
	}

	// Verify outside the state lock; bcrypt is slow.
	acc, err := b.accounts.Get(username)
	verified := err == nil && acc.Credential != nil && acc.Credential.Verify(secret)

	return b.apply(ctx, EventLogin, func() (Event, error) {
		if err != nil {
			return Event{}, notFound("User not found")
		}
		if !verified {
			return Event{}, ErrBadCredential
		}
		// Take the copy under the lock so it reflects the latest state.
		current, err := b.accounts.Get(username)
		if err != nil {
			return Event{}, notFound("User not found")
		}
		s := &Session{
			ID:       b.newID(),
			Username: username,
			IsAdmin:  username == b.admin,
			Balances: current.Balances.Clone(),
			Holdings: current.Holdings.Clone(),
		}
		b.sessions[s.ID] = s
		return Event{
			SessionID: s.ID,
			Actor:     username,
			Notice:    fmt.Sprintf("Logged in as %s", username),
		}, nil
	})
}

// Logout writes the session back into the account store and discards it.
func (b *Bank) Logout(ctx context.Context, sid string) (Event, error) {
	return b.apply(ctx, EventLogout, func() (Event, error) {
		s, err := b.session(sid)
		if err != nil {
			return Event{}, err
		}
		if err := b.commit(s); err != nil {
			return Event{}, err
		}
		delete(b.sessions, sid)
		return Event{SessionID: sid, Actor: s.Username, Notice: "Logged out"}, nil
	})
}

// Session returns a copy of the live session sid.
func (b *Bank) Session(sid string) (Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.session(sid)
	if err != nil {
		return Session{}, err
	}
	return *s.clone(), nil
}

func (b *Bank) session(sid string) (*Session, error) {
	s, ok := b.sessions[sid]
	if !ok || sid == "" {
		return nil, ErrNoSession
	}
	return s, nil
}

func (b *Bank) adminSession(sid string) (*Session, error) {
	s, err := b.session(sid)
	if err != nil {
		return nil, err
	}
	if !s.IsAdmin {
		return nil, ErrAdminOnly
	}
	return s, nil
}

// commit writes the session's working copy into its stored account, leaving
// the credential untouched, and refreshes sibling sessions of the same user.
func (b *Bank) commit(s *Session) error {
	acc, err := b.accounts.Get(s.Username)
	if err != nil {
		return fmt.Errorf("commit session %s: %w", s.ID, err)
	}
	acc.Balances = s.Balances.Clone()
	acc.Holdings = s.Holdings.Clone()
	if err := b.accounts.Put(acc); err != nil {
		return fmt.Errorf("commit session %s: %w", s.ID, err)
	}
	b.refresh(acc, s.ID)
	return nil
}

// refresh copies a stored account into every live session of that user
// except the one named by skip.
func (b *Bank) refresh(acc models.Account, skip string) {
	for id, s := range b.sessions {
		if id == skip || s.Username != acc.Username {
			continue
		}
		s.Balances = acc.Balances.Clone()
		s.Holdings = acc.Holdings.Clone()
	}
}

// put stores an account changed directly by an operation and patches any
// live sessions of that user.
func (b *Bank) put(acc models.Account) error {
	if err := b.accounts.Put(acc); err != nil {
		return fmt.Errorf("store account %s: %w", acc.Username, err)
	}
	b.refresh(acc, "")
	return nil
}
