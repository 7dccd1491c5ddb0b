package main

import (
	"strings"
	"testing"
	"time"
)

func TestParseTexts(t *testing.T) {
	if got := parseTexts(""); len(got) != len(defaultUtterances) {
		t.Fatalf("empty input should use defaults, got %d", len(got))
	}
	got := parseTexts(" hola | | ¿qué autos tienen? ")
	if len(got) != 2 || got[0] != "hola" || got[1] != "¿qué autos tienen?" {
		t.Fatalf("parseTexts() = %v", got)
	}
}

func TestWSURLFor(t *testing.T) {
	u, err := wsURLFor("http://127.0.0.1:8080", "s1")
	if err != nil {
		t.Fatalf("wsURLFor() error = %v", err)
	}
	if u != "ws://127.0.0.1:8080/v1/chat/ws?session_id=s1" {
		t.Fatalf("wsURLFor() = %q", u)
	}

	u, err = wsURLFor("https://lucia.example.com/", "")
	if err != nil {
		t.Fatalf("wsURLFor() error = %v", err)
	}
	if u != "wss://lucia.example.com/v1/chat/ws" {
		t.Fatalf("wsURLFor() = %q", u)
	}

	if _, err := wsURLFor("ftp://x", ""); err == nil {
		t.Fatalf("unsupported scheme should fail")
	}
}

func TestSummarize(t *testing.T) {
	latencies := []time.Duration{
		300 * time.Millisecond,
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
	}
	out := summarize(latencies)
	if !strings.Contains(out, "turns=4") {
		t.Fatalf("missing turn count: %q", out)
	}
	if !strings.Contains(out, "avg=250ms") {
		t.Fatalf("wrong average: %q", out)
	}
	if !strings.Contains(out, "p50=200ms") {
		t.Fatalf("wrong p50: %q", out)
	}
	if !strings.Contains(out, "max=400ms") {
		t.Fatalf("wrong max: %q", out)
	}

	if got := summarize(nil); !strings.Contains(got, "no turns") {
		t.Fatalf("empty summary = %q", got)
	}
}
