package services_test

import (
	"errors"
	"strings"
	"testing"

	"mscx/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "mscore", "render", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"mscore", "render", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestKind(t *testing.T) {
	cases := map[string]error{
		"timeout":       services.Wrap(services.ErrTimeout, "mscore", "render", "", nil),
		"not_found":     services.Wrap(services.ErrNotFound, "mscore", "lookup", "", nil),
		"configuration": services.Wrap(services.ErrConfiguration, "mscore", "", "binary", nil),
		"validation":    services.Wrap(services.ErrValidation, "", "", "bad", nil),
		"external_tool": services.Wrap(services.ErrExternalTool, "mscore", "", "", errors.New("exit 1")),
		"error":         errors.New("plain"),
		"":              nil,
	}
	for want, err := range cases {
		if got := services.Kind(err); got != want {
			t.Fatalf("Kind(%v) = %q, want %q", err, got, want)
		}
	}
}
