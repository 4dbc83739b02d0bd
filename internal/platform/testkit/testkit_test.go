package testkit

import (
	"strings"
	"testing"
)

var newToken = func() string { return "live" }

func TestSwap_RestoresAfterSubtest(t *testing.T) {
	t.Run("swapped", func(t *testing.T) {
		Swap(t, &newToken, func() string { return "fixed" })
		if got := newToken(); got != "fixed" {
			t.Fatalf("swap not applied, got %q", got)
		}
	})
	if got := newToken(); got != "live" {
		t.Fatalf("seam not restored, got %q", got)
	}
}

func TestPanicHelpers(t *testing.T) {
	MustPanic(t, func() { panic("boom") })
	MustNotPanic(t, func() {})
}

func TestMustContain(t *testing.T) {
	MustContain(t, "Visit http://x/subscriptions/confirm to confirm", "/subscriptions/confirm")
	MustContain(t, strings.Repeat("a", 600)+"needle", "needle")
}
