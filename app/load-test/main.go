package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fediBlack/we-budget/internal/auth"
)

type clientMessage struct {
	Type   string `json:"type"`
	RoomID int64  `json:"roomId,omitempty"`
}

type publishBody struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

func main() {
	var (
		wsURL        = flag.String("ws-url", "ws://localhost:8080/ws", "WebSocket URL (token appended per client)")
		publishURL   = flag.String("publish-url", "http://localhost:8080/publish", "Publish endpoint")
		clients      = flag.Int("clients", 200, "Number of concurrent clients")
		rooms        = flag.Int("rooms", 10, "Number of rooms to spread clients across")
		interval     = flag.Int("interval", 250, "Publish interval in ms")
		secret       = flag.String("secret", "dev-secret-change-me", "JWT secret (must match the server)")
		serviceToken = flag.String("service-token", "", "X-Service-Token for /publish")
	)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	log.Printf("Starting loadgen: clients=%d rooms=%d interval=%dms", *clients, *rooms, *interval)

	var received atomic.Uint64

	var wg sync.WaitGroup
	wg.Add(*clients)

	for i := 0; i < *clients; i++ {
		userID := int64(i + 1)
		roomID := int64(i%*rooms + 1)

		go func(userID, roomID int64) {
			defer wg.Done()
			runClient(ctx, *wsURL, *secret, userID, roomID, &received)
		}(userID, roomID)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		runPublisher(ctx, *publishURL, *serviceToken, int64(*rooms), time.Duration(*interval)*time.Millisecond)
	}()

	<-stop
	log.Println("Stopping loadgen...")
	cancel()
	wg.Wait()
	log.Printf("All clients stopped. events received: %d", received.Load())
}

func runClient(ctx context.Context, baseURL, secret string, userID, roomID int64, received *atomic.Uint64) {
	token, err := auth.GenerateToken(userID, []byte(secret), time.Hour)
	if err != nil {
		log.Printf("[user-%d] token error: %v", userID, err)
		return
	}
	url := fmt.Sprintf("%s?token=%s", baseURL, token)

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		log.Printf("[user-%d] dial error: %v", userID, err)
		return
	}
	defer conn.Close()

	join, _ := json.Marshal(clientMessage{Type: "joinRoom", RoomID: roomID})
	if err := conn.WriteMessage(websocket.TextMessage, join); err != nil {
		log.Printf("[user-%d] join error: %v", userID, err)
		return
	}

	go func() {
		<-ctx.Done()
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		_ = conn.Close()
	}()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			return
		}
		received.Add(1)
	}
}

func runPublisher(ctx context.Context, url, serviceToken string, rooms int64, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	httpClient := &http.Client{Timeout: 5 * time.Second}

	var n int64
	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			n++
			roomID := n%rooms + 1
			payload, _ := json.Marshal(map[string]any{"text": "load", "n": n})
			body, _ := json.Marshal(publishBody{
				Topic:   fmt.Sprintf("room:%d", roomID),
				Payload: payload,
			})

			req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				continue
			}
			req.Header.Set("Content-Type", "application/json")
			if serviceToken != "" {
				req.Header.Set("X-Service-Token", serviceToken)
			}

			resp, err := httpClient.Do(req)
			if err != nil {
				log.Printf("publish error: %v", err)
				continue
			}
			_ = resp.Body.Close()
		}
	}
}
