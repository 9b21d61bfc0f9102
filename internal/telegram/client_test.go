package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestBotClient_Send(t *testing.T) {
	var gotPath string
	var gotBody sendMessageRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": true})
	}))
	defer srv.Close()

	client := NewBotClient("123:abc", time.Second).WithBaseURL(srv.URL)
	if err := client.Send(context.Background(), 42, "Your password reset code: 123456"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotPath != "/bot123:abc/sendMessage" {
		t.Errorf("path = %s, want token-scoped sendMessage", gotPath)
	}
	if gotBody.ChatID != 42 {
		t.Errorf("chat_id = %d, want 42", gotBody.ChatID)
	}
	if !strings.Contains(gotBody.Text, "123456") {
		t.Errorf("message %q does not carry the code", gotBody.Text)
	}
}

func TestBotClient_SendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":          false,
			"description": "Forbidden: bot was blocked by the user",
		})
	}))
	defer srv.Close()

	client := NewBotClient("123:abc", time.Second).WithBaseURL(srv.URL)
	err := client.Send(context.Background(), 42, "hi")
	if err == nil {
		t.Fatal("rejected message should surface an error")
	}
	if !strings.Contains(err.Error(), "blocked by the user") {
		t.Errorf("error %q should carry the API description", err)
	}
}

func TestBotClient_SendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections

	client := NewBotClient("123:abc", time.Second).WithBaseURL(srv.URL)
	if err := client.Send(context.Background(), 42, "hi"); err == nil {
		t.Fatal("unreachable API should surface an error")
	}
}
