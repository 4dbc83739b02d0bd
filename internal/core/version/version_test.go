package version

import "testing"

func TestInfo(t *testing.T) {
	b := Info("newsletter-api")
	if b.Service != "newsletter-api" || b.Version != "dev" {
		t.Fatalf("unexpected build info %+v", b)
	}
	if got, want := b.String(), "newsletter-api dev (none, unknown)"; got != want {
		t.Fatalf("String() = %q want %q", got, want)
	}
}
