package kryoflux

import "testing"

func TestFindInfoValueBasic(t *testing.T) {
	text := "host=kryoflux-dc, sck=24027428.5714285, ick=3003428.5714285625"
	if got := findInfoValue(text, "host"); got != "kryoflux-dc" {
		t.Errorf("host = %q, want %q", got, "kryoflux-dc")
	}
	if got := findInfoValue(text, "sck"); got != "24027428.5714285" {
		t.Errorf("sck = %q, want %q", got, "24027428.5714285")
	}
	if got := findInfoValue(text, "ick"); got != "3003428.5714285625" {
		t.Errorf("ick = %q, want %q", got, "3003428.5714285625")
	}
}

func TestFindInfoValueNotFound(t *testing.T) {
	if got := findInfoValue("host=kryoflux-dc", "sck"); got != "" {
		t.Errorf("sck = %q, want empty", got)
	}
}

// TestFindInfoValueOffsetZero exercises the documented deviation from the
// reference decoder (spec §9, open question 3): a key appearing at the very
// start of the info text must still be found.
func TestFindInfoValueOffsetZero(t *testing.T) {
	text := "sck=24027428.5714285, ick=3003428.5714285625"
	if got := findInfoValue(text, "sck"); got != "24027428.5714285" {
		t.Errorf("sck at offset 0 = %q, want %q", got, "24027428.5714285")
	}
}
