package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizarena/internal/screen"
)

// stubScreen is a minimal screen for testing.
type stubScreen struct {
	title   string
	initRan bool
	closed  int
	got     []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}
func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.got = append(s.got, msg)
	return s, nil
}
func (s *stubScreen) View(int, int) string { return s.title }
func (s *stubScreen) Title() string        { return s.title }
func (s *stubScreen) Close()               { s.closed++ }

func TestPush(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Push(s2)

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "second" {
		t.Errorf("expected active 'second', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run on pushed screen")
	}
}

func TestPopClosesScreen(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Push(s2)
	r.Update(PopScreenMsg{})

	if r.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", r.Depth())
	}
	if s2.closed != 1 {
		t.Errorf("expected popped screen closed once, got %d", s2.closed)
	}
	if s1.closed != 0 {
		t.Error("root screen should stay open")
	}
}

func TestPopNoopAtBottom(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after pop at bottom, got %d", r.Depth())
	}
	if s1.closed != 0 {
		t.Error("root screen should not be closed by a no-op pop")
	}
}

func TestReplaceScreenMsg(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)
	s2 := &stubScreen{title: "second"}
	r.Push(s2)

	s3 := &stubScreen{title: "third"}
	r.Update(ReplaceScreenMsg{Screen: s3})

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "third" || !s3.initRan {
		t.Errorf("expected initialised 'third' on top, got %q", r.Active().Title())
	}
	if s2.closed != 1 {
		t.Error("replaced screen should be closed")
	}
}

func TestPopToRoot(t *testing.T) {
	root := &stubScreen{title: "root"}
	r := New(root)
	a, b := &stubScreen{title: "a"}, &stubScreen{title: "b"}
	r.Push(a)
	r.Push(b)

	r.Update(PopToRootMsg{})

	if r.Depth() != 1 || r.Active() != root {
		t.Fatalf("expected only root left, depth %d", r.Depth())
	}
	if a.closed != 1 || b.closed != 1 {
		t.Errorf("closed counts a=%d b=%d, want 1 each", a.closed, b.closed)
	}
}

func TestCloseAll(t *testing.T) {
	root := &stubScreen{title: "root"}
	r := New(root)
	top := &stubScreen{title: "top"}
	r.Push(top)

	r.Close()

	if root.closed != 1 || top.closed != 1 {
		t.Errorf("closed counts root=%d top=%d", root.closed, top.closed)
	}
}

type pingMsg struct{}

func TestEnvelopeReachesCoveredScreen(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)
	s2 := &stubScreen{title: "second"}
	r.Push(s2)

	r.Update(screen.Envelope{To: s1, Msg: pingMsg{}})

	if len(s1.got) != 1 {
		t.Fatalf("expected covered screen to get the message, got %d", len(s1.got))
	}
	if _, ok := s1.got[0].(pingMsg); !ok {
		t.Errorf("expected unwrapped message, got %T", s1.got[0])
	}
	if len(s2.got) != 0 {
		t.Error("active screen should not see an envelope addressed elsewhere")
	}
}

func TestEnvelopeForPoppedScreenDropped(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)
	s2 := &stubScreen{title: "second"}
	r.Push(s2)
	r.Update(PopScreenMsg{})

	if cmd := r.Update(screen.Envelope{To: s2, Msg: pingMsg{}}); cmd != nil {
		t.Error("expected no command")
	}
	if len(s1.got) != 0 || len(s2.got) != 0 {
		t.Error("envelope for a screen off the stack should be dropped")
	}
}
