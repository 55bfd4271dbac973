package catalog

import (
	"strings"
	"testing"
)

func TestRandomCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := randomCode()
		if len(code) != codeLength {
			t.Fatalf("len(randomCode()) = %d, want %d", len(code), codeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("randomCode() produced %q outside the alphabet", r)
			}
		}
		seen[code] = true
	}
	// 100 draws from 36^5 values colliding down to a handful would mean a
	// broken generator.
	if len(seen) < 90 {
		t.Errorf("only %d distinct codes in 100 draws", len(seen))
	}
}
