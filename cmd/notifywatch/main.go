// Command notifywatch logs in and prints realtime notifications for a user.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	host := flag.String("host", "localhost:8375", "API server host")
	login := flag.String("login", "admin@jobboard.local", "Email or username")
	password := flag.String("password", "", "Account password")
	secure := flag.Bool("tls", false, "Use https/wss")
	flag.Parse()

	httpScheme, wsScheme := "http", "ws"
	if *secure {
		httpScheme, wsScheme = "https", "wss"
	}

	token, err := authenticate(httpScheme, *host, *login, *password)
	if err != nil {
		log.Fatalf("❌ Login failed: %v", err)
	}
	log.Printf("✅ Logged in as %s", *login)

	u := url.URL{
		Scheme:   wsScheme,
		Host:     *host,
		Path:     "/api/ws/notifications",
		RawQuery: url.Values{"token": {token}}.Encode(),
	}
	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		if resp != nil {
			log.Fatalf("❌ Dial failed with status %d: %v", resp.StatusCode, err)
		}
		log.Fatalf("❌ Dial failed: %v", err)
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = conn.Close() }()

	log.Printf("👂 Watching notifications on %s", u.Host)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					log.Printf("read error: %v", err)
				}
				return
			}
			printEvent(msg)
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
	case <-interrupt:
		log.Println("🛑 Interrupted by user")
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}

func authenticate(scheme, host, login, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"login":    login,
		"password": password,
	})

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(fmt.Sprintf("%s://%s/api/auth/login", scheme, host), "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Token, nil
}

func printEvent(msg []byte) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, msg, "", "  "); err != nil {
		log.Printf("📨 %s", msg)
		return
	}
	log.Printf("📨 %s", pretty.String())
}
