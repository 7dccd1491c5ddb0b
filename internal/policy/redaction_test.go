package policy

import (
	"strings"
	"testing"
)

func TestRedactPII(t *testing.T) {
	input := "Escríbeme a ana@example.com o al +52 (555) 123-9876 y paga con 4242 4242 4242 4242."
	out, changed := RedactPII(input)
	if !changed {
		t.Fatalf("changed = false, want true")
	}
	for _, marker := range []string{"[REDACTED_EMAIL]", "[REDACTED_PHONE]", "[REDACTED_CARD]"} {
		if !strings.Contains(out, marker) {
			t.Fatalf("output missing marker %q: %q", marker, out)
		}
	}
}

func TestRedactPIIMexicanRFC(t *testing.T) {
	out, changed := RedactPII("Mi RFC es GOMC900101AB1 para la factura")
	if !changed || !strings.Contains(out, "[REDACTED_RFC]") {
		t.Fatalf("RFC not redacted: %q", out)
	}
}

func TestRedactPIILeavesCleanTextAlone(t *testing.T) {
	input := "Busco un Nissan Versa 2022 por menos de 300 mil"
	out, changed := RedactPII(input)
	if changed || out != input {
		t.Fatalf("clean text altered: %q", out)
	}
}
