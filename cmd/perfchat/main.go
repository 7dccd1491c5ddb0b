// Command perfchat replays synthetic conversation turns against a running
// server over the chat websocket and reports per-turn latency, for smoke
// testing and capacity checks without a real messaging channel.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type options struct {
	baseURL        string
	sessionID      string
	turns          int
	interTurnDelay time.Duration
	turnTimeout    time.Duration
	texts          []string
	verbose        bool
}

type chatMessage struct {
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text,omitempty"`
	Reply     string `json:"reply,omitempty"`
	Error     string `json:"error,omitempty"`
}

var defaultUtterances = []string{
	"Hola, busco un auto seminuevo",
	"¿Qué autos tienen por menos de 300 mil pesos?",
	"¿Cuánto pagaría al mes por uno de 250 mil con 50 mil de enganche?",
	"¿Qué garantía ofrecen?",
}

func main() {
	cfg, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "perfchat: %v\n", err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "perfchat: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var cfg options
	var textsRaw string
	var interTurnMS int
	var turnTimeoutMS int

	flag.StringVar(&cfg.baseURL, "base-url", "http://127.0.0.1:8080", "server base URL")
	flag.StringVar(&cfg.sessionID, "session-id", "", "session id to reuse (default: server-minted)")
	flag.IntVar(&cfg.turns, "turns", 10, "number of turns to replay")
	flag.IntVar(&interTurnMS, "inter-turn-ms", 200, "delay between turns in milliseconds")
	flag.IntVar(&turnTimeoutMS, "turn-timeout-ms", 30000, "timeout waiting for each reply in milliseconds")
	flag.StringVar(&textsRaw, "texts", "", "utterances separated by '|' (optional)")
	flag.BoolVar(&cfg.verbose, "verbose", true, "print replay progress")
	flag.Parse()

	cfg.baseURL = strings.TrimRight(strings.TrimSpace(cfg.baseURL), "/")
	if cfg.baseURL == "" {
		return options{}, fmt.Errorf("base-url is required")
	}
	if cfg.turns <= 0 {
		return options{}, fmt.Errorf("turns must be > 0")
	}
	if interTurnMS < 0 {
		interTurnMS = 0
	}
	if turnTimeoutMS < 1000 {
		turnTimeoutMS = 1000
	}
	cfg.interTurnDelay = time.Duration(interTurnMS) * time.Millisecond
	cfg.turnTimeout = time.Duration(turnTimeoutMS) * time.Millisecond

	cfg.texts = parseTexts(textsRaw)
	if len(cfg.texts) == 0 {
		return options{}, fmt.Errorf("texts produced no non-empty utterances")
	}
	return cfg, nil
}

func parseTexts(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return append([]string(nil), defaultUtterances...)
	}
	var out []string
	for _, part := range strings.Split(raw, "|") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func run(cfg options) error {
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Minute)
	defer cancel()

	wsURL, err := wsURLFor(cfg.baseURL, cfg.sessionID)
	if err != nil {
		return fmt.Errorf("build ws URL: %w", err)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("open websocket: %w", err)
	}
	defer conn.Close()

	var latencies []time.Duration
	for i := 0; i < cfg.turns; i++ {
		text := cfg.texts[i%len(cfg.texts)]
		if cfg.verbose {
			fmt.Printf("perfchat: turn %d/%d text=%q\n", i+1, cfg.turns, text)
		}

		started := time.Now()
		if err := conn.WriteJSON(chatMessage{SessionID: cfg.sessionID, Text: text}); err != nil {
			return fmt.Errorf("turn %d send: %w", i+1, err)
		}

		reply, err := awaitReply(conn, cfg.turnTimeout)
		if err != nil {
			return fmt.Errorf("turn %d await reply: %w", i+1, err)
		}
		elapsed := time.Since(started)
		latencies = append(latencies, elapsed)

		if cfg.sessionID == "" {
			cfg.sessionID = reply.SessionID
		}
		if cfg.verbose {
			fmt.Printf("perfchat: turn %d done in %s (%d chars)\n", i+1, elapsed.Round(time.Millisecond), len(reply.Reply))
		}
		if cfg.interTurnDelay > 0 && i < cfg.turns-1 {
			time.Sleep(cfg.interTurnDelay)
		}
	}

	fmt.Println(summarize(latencies))
	return nil
}

func awaitReply(conn *websocket.Conn, timeout time.Duration) (chatMessage, error) {
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return chatMessage{}, err
		}
		var msg chatMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Error != "" {
			return chatMessage{}, fmt.Errorf("server error: %s", msg.Error)
		}
		if msg.Reply != "" {
			return msg, nil
		}
	}
}

func wsURLFor(baseURL, sessionID string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", err
	}
	switch strings.ToLower(u.Scheme) {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported base-url scheme %q", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return "", fmt.Errorf("base-url host is required")
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/v1/chat/ws"
	if strings.TrimSpace(sessionID) != "" {
		q := u.Query()
		q.Set("session_id", sessionID)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func summarize(latencies []time.Duration) string {
	if len(latencies) == 0 {
		return "perfchat: no turns completed"
	}
	sorted := append([]time.Duration(nil), latencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}
	avg := sum / time.Duration(len(sorted))

	return fmt.Sprintf("perfchat: turns=%d avg=%s p50=%s p95=%s max=%s",
		len(sorted),
		avg.Round(time.Millisecond),
		percentile(sorted, 0.50).Round(time.Millisecond),
		percentile(sorted, 0.95).Round(time.Millisecond),
		sorted[len(sorted)-1].Round(time.Millisecond))
}

func percentile(sorted []time.Duration, q float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(q*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
