package session

import (
	"sync"

	"github.com/joshua-hq/warroom/pkg/domain/model/lang"
	"github.com/joshua-hq/warroom/pkg/domain/types"
)

// Session holds the client-local state of one anonymous member: the
// issued identity, the display name reused across submissions and
// chat, and the locale. Activity count and rank are derived from the
// loaded chat window, not stored here.
type Session struct {
	mu          sync.RWMutex
	identity    types.IdentityID
	displayName string
	locale      lang.Lang
}

func New(identity types.IdentityID, locale lang.Lang) *Session {
	if locale == "" {
		locale = lang.Default
	}
	return &Session{
		identity: identity,
		locale:   locale,
	}
}

func (s *Session) Identity() types.IdentityID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// SetIdentity replaces the identity, e.g. when the provider re-issues
// after a sign-out.
func (s *Session) SetIdentity(id types.IdentityID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = id
}

func (s *Session) DisplayName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.displayName
}

// DisplayNameOrFallback returns the stored display name, or the
// locale's fallback literal when the member never set one.
func (s *Session) DisplayNameOrFallback() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.displayName == "" {
		return s.locale.FallbackSenderName()
	}
	return s.displayName
}

func (s *Session) SetDisplayName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name != "" {
		s.displayName = name
	}
}

func (s *Session) Locale() lang.Lang {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locale
}

func (s *Session) SetLocale(l lang.Lang) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l != "" {
		s.locale = l
	}
}
