package domain

import (
	"errors"
	"testing"
	"time"
)

func TestActiveFilters(t *testing.T) {
	groups := DefaultFilterGroups()
	groups[1].Items[6].Value = true
	groups[0].Items[0].Value = 42

	active := ActiveFilters(groups)
	if len(active) != 2 {
		t.Fatalf("expected 2 active filters, got %v", active)
	}
	if active["diabetes"] != true {
		t.Fatalf("expected diabetes to be active, got %v", active["diabetes"])
	}

	ResetFilters(groups)
	if len(ActiveFilters(groups)) != 0 {
		t.Fatalf("expected no active filters after reset")
	}

	if DefaultFilterGroups()[1].Items[6].Value != nil {
		t.Fatalf("default catalogue must not share state")
	}
}

func TestSessionReset(t *testing.T) {
	s := NewSession("s1", time.Now())
	s.AccessToken = "token"
	s.Page = Page{Section: "catalog", Title: "Datasets"}
	s.AppForm.Files = []string{"a.mmio"}

	s.Reset()
	if s.Page != (Page{}) {
		t.Fatalf("expected empty page, got %+v", s.Page)
	}
	if len(s.AppForm.Files) != 0 || s.AppForm.Files == nil {
		t.Fatalf("expected empty file list, got %v", s.AppForm.Files)
	}
	if s.AccessToken != "token" {
		t.Fatalf("reset must keep the token")
	}
}

func TestNotFoundErrorIs(t *testing.T) {
	err := NotFoundError{Resource: "session"}
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected errors.Is to match ErrNotFound")
	}
	if err.Error() != "session not found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
