package raw

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("LOG_FORMAT", " json ")
	c := New().Prefix("LOG_")
	if got := c.Get("FORMAT", "console"); got != "json" {
		t.Fatalf("Get = %q", got)
	}
	if got := c.Get("LEVEL", "info"); got != "info" {
		t.Fatalf("Get default = %q", got)
	}
}

func TestGetBool(t *testing.T) {
	c := New().Prefix("LOG_")
	cases := map[string]bool{"1": true, "TRUE": true, "yes": true, "on": true, "0": false, "nope": false}
	for in, want := range cases {
		t.Setenv("LOG_CALLER", in)
		if got := c.GetBool("CALLER", !want); got != want {
			t.Fatalf("GetBool(%q) = %v, want %v", in, got, want)
		}
	}
	if !c.GetBool("MISSING", true) {
		t.Fatalf("GetBool default not used")
	}
}

func TestGetInt(t *testing.T) {
	c := New().Prefix("LOG_")
	t.Setenv("LOG_SAMPLE_EVERY", "10")
	if got := c.GetInt("SAMPLE_EVERY", 0); got != 10 {
		t.Fatalf("GetInt = %d", got)
	}
	t.Setenv("LOG_SAMPLE_EVERY", "-3")
	if got := c.GetInt("SAMPLE_EVERY", 1); got != 1 {
		t.Fatalf("GetInt negative = %d", got)
	}
	t.Setenv("LOG_SAMPLE_EVERY", "ten")
	if got := c.GetInt("SAMPLE_EVERY", 2); got != 2 {
		t.Fatalf("GetInt invalid = %d", got)
	}
}
