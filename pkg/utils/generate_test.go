package utils

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateTransactionID(t *testing.T) {
	id := GenerateTransactionID()

	prefix := "TXN-" + time.Now().Format("20060102") + "-"
	if !strings.HasPrefix(id, prefix) {
		t.Errorf("id %q missing prefix %q", id, prefix)
	}

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		next := GenerateTransactionID()
		if seen[next] {
			t.Fatalf("duplicate transaction id %q", next)
		}
		seen[next] = true
	}
}
