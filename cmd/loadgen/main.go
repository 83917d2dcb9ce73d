// loadgen gera eventos sintéticos contra o endpoint de ingestão: usuários e
// páginas sorteados de listas fixas, com rotação ocasional de sessão.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type event struct {
	Timestamp string `json:"timestamp"`
	UserID    string `json:"user_id"`
	EventType string `json:"event_type"`
	PageURL   string `json:"page_url"`
	SessionID string `json:"session_id"`
}

func main() {
	targetURL := getenvDefault("TARGET_URL", "http://localhost:8080/events")
	rps := getenvFloatDefault("RPS", 20)
	users := splitList(getenvDefault("USERS", "usr_101,usr_102,usr_103"))
	pages := splitList(getenvDefault("PAGES", "/,/home,/products/electronics,/cart,/checkout"))
	sessionVariance := getenvFloatDefault("SESSION_VARIANCE", 0.3)

	log.Printf("target=%s rps=%.1f users=%d pages=%d", targetURL, rps, len(users), len(pages))

	sessions := make(map[string]string, len(users))
	for _, u := range users {
		sessions[u] = newSession()
	}

	interval := 50 * time.Millisecond
	if rps > 0 {
		interval = time.Duration(float64(time.Second) / rps)
	}

	client := &http.Client{Timeout: 3 * time.Second}
	for {
		userID := users[rand.Intn(len(users))]
		if rand.Float64() < sessionVariance {
			sessions[userID] = newSession()
		}

		ev := event{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			UserID:    userID,
			EventType: "page_view",
			PageURL:   pages[rand.Intn(len(pages))],
			SessionID: sessions[userID],
		}

		if err := post(client, targetURL, ev); err != nil {
			log.Printf("post failed: %v", err)
		}
		time.Sleep(interval)
	}
}

func post(client *http.Client, url string, ev event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func newSession() string {
	return fmt.Sprintf("sess_%08x", rand.Uint32())
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
