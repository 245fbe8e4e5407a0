// Package testbrowser shares one headless browser between tests. Each test acquires its own session, an incognito
// browser context, which is closed when the test finishes.
package testbrowser

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"
)

type ManagerConfig struct {
	// Bin is the path to the browser executable. If empty the launcher finds an installed browser or downloads one.
	Bin string

	// ShowBrowser runs the browser with a visible window.
	ShowBrowser bool

	// MaxConcurrentSessions limits how many sessions may be open at once. Acquire blocks until a session is closed
	// when the limit is reached. Values less than 1 mean 1.
	MaxConcurrentSessions int
}

type Manager struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	sessions *semaphore.Weighted

	mu           sync.Mutex
	openSessions int
}

// NewManager launches a browser and connects to it.
func NewManager(config ManagerConfig) (*Manager, error) {
	l := launcher.New().Headless(!config.ShowBrowser)
	if config.Bin != "" {
		l = l.Bin(config.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	err = browser.Connect()
	if err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	maxSessions := config.MaxConcurrentSessions
	if maxSessions < 1 {
		maxSessions = 1
	}

	return &Manager{launcher: l, browser: browser, sessions: semaphore.NewWeighted(int64(maxSessions))}, nil
}

// Acquire starts a session for t, waiting for a free slot if MaxConcurrentSessions are open. It is closed by
// t.Cleanup.
func (m *Manager) Acquire(t testing.TB) *Session {
	t.Helper()

	err := m.sessions.Acquire(context.Background(), 1)
	require.NoError(t, err)

	browser, err := m.browser.Incognito()
	if err != nil {
		m.sessions.Release(1)
	}
	require.NoError(t, err)

	m.mu.Lock()
	m.openSessions++
	m.mu.Unlock()

	session := &Session{t: t, manager: m, browser: browser}
	t.Cleanup(func() {
		err := session.Close()
		if err != nil {
			t.Errorf("close browser session: %v", err)
		}
	})

	return session
}

// OpenSessions returns the number of acquired sessions that have not been closed.
func (m *Manager) OpenSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openSessions
}

// Close closes the browser. It must only be called after all tests have finished.
func (m *Manager) Close() error {
	err := m.browser.Close()
	m.launcher.Cleanup()
	return err
}

type Session struct {
	t       testing.TB
	manager *Manager
	browser *rod.Browser

	closeOnce sync.Once
	closeErr  error
	closed    bool
}

// Page opens a new blank page in the session.
func (s *Session) Page() *Page {
	s.t.Helper()

	page, err := s.browser.Page(proto.TargetCreateTarget{})
	require.NoError(s.t, err)

	return &Page{Page: page, t: s.t}
}

// Close disposes of the session's browser context. Only the first call has any effect.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.browser.Close()

		s.manager.mu.Lock()
		s.manager.openSessions--
		s.closed = true
		s.manager.mu.Unlock()

		s.manager.sessions.Release(1)
	})

	return s.closeErr
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.manager.mu.Lock()
	defer s.manager.mu.Unlock()
	return s.closed
}

// Page is a *rod.Page with assertions that fail t.
type Page struct {
	*rod.Page
	t testing.TB
}

// HasContent requires an element matching selector whose text contains content. It does not wait for the element
// to appear.
func (p *Page) HasContent(selector, content string) {
	p.t.Helper()

	found, _, err := p.HasR(selector, regexp.QuoteMeta(content))
	require.NoError(p.t, err)
	require.Truef(p.t, found, "expected %q to contain %q", selector, content)
}

// Title returns the title of the current document.
func (p *Page) Title() string {
	p.t.Helper()

	info, err := p.Info()
	require.NoError(p.t, err)
	return info.Title
}
