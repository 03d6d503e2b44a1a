package iox

import (
	"errors"
	"testing"
)

type closeSpy struct{ closed bool }

func (s *closeSpy) Close() error { s.closed = true; return errors.New("ignored") }

func TestDiscardClose(t *testing.T) {
	s := &closeSpy{}
	DiscardClose(s)
	if !s.closed {
		t.Fatal("Close was not invoked")
	}
}

func TestCloseFunc(t *testing.T) {
	s := &closeSpy{}
	fn := CloseFunc(s)
	if s.closed {
		t.Fatal("Close ran before the returned func was invoked")
	}
	fn()
	if !s.closed {
		t.Fatal("Close was not invoked")
	}
}

func TestDiscardErr(t *testing.T) {
	called := false
	DiscardErr(func() error {
		called = true
		return errors.New("ignored")
	})
	if !called {
		t.Fatal("fn was not invoked")
	}
}
