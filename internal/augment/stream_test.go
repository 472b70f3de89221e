package augment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestScanNotifications_OrderAndKinds(t *testing.T) {
	input := strings.Join([]string{
		`{"type":"thought_delta","text":"thinking "}`,
		``,
		`{"type":"message_delta","text":"hello"}`,
		`not json at all`,
		`{"type":"usage","input_tokens":12,"output_tokens":34}`,
		`{"type":"done","stop_reason":"end_turn"}`,
	}, "\n")

	var got []Notification
	err := scanNotifications(context.Background(), strings.NewReader(input), func(n Notification) error {
		got = append(got, n)
		return nil
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(got) != 4 {
		t.Fatalf("expect 4 notifications, got %d: %+v", len(got), got)
	}
	if got[0].Kind != KindThought || got[0].Text != "thinking " {
		t.Fatalf("notification #0 mismatch: %+v", got[0])
	}
	if got[1].Kind != KindMessage || got[1].Text != "hello" {
		t.Fatalf("notification #1 mismatch: %+v", got[1])
	}
	if got[2].Kind != KindUsage || got[2].InputTokens != 12 || got[2].OutputTokens != 34 {
		t.Fatalf("notification #2 mismatch: %+v", got[2])
	}
	if got[3].Kind != KindDone || got[3].StopReason != "end_turn" {
		t.Fatalf("notification #3 mismatch: %+v", got[3])
	}
}

func TestScanNotifications_CallbackErrorStops(t *testing.T) {
	input := `{"type":"message_delta","text":"a"}` + "\n" + `{"type":"message_delta","text":"b"}`

	sentinel := errors.New("stop")
	count := 0
	err := scanNotifications(context.Background(), strings.NewReader(input), func(Notification) error {
		count++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expect sentinel error, got %v", err)
	}
	if count != 1 {
		t.Fatalf("expect callback once, got %d", count)
	}
}

func TestStream_Non2xxDecodesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"session expired"}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{Name: "test", BaseURL: srv.URL, AccessToken: "tok"})
	err := c.Stream(context.Background(), []byte(`{}`), func(Notification) error { return nil })

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expect APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "session expired" {
		t.Fatalf("decoded error mismatch: %+v", apiErr)
	}
}

func TestStream_DeliversNotifications(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization header mismatch: %q", got)
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = w.Write([]byte(`{"type":"message_delta","text":"hi"}` + "\n" + `{"type":"done","stop_reason":"end_turn"}` + "\n"))
	}))
	defer srv.Close()

	c := NewClient(Config{Name: "test", BaseURL: srv.URL, AccessToken: "tok"})
	var kinds []NotificationKind
	err := c.Stream(context.Background(), []byte(`{}`), func(n Notification) error {
		kinds = append(kinds, n.Kind)
		return nil
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if len(kinds) != 2 || kinds[0] != KindMessage || kinds[1] != KindDone {
		t.Fatalf("kinds mismatch: %v", kinds)
	}
}

func TestGetClient_ReusesUntilConfigChanges(t *testing.T) {
	c1 := GetClient("m-cache", Config{Name: "m-cache", BaseURL: "https://t1/", AccessToken: "a"})
	c2 := GetClient("m-cache", Config{Name: "m-cache", BaseURL: "https://t1", AccessToken: "a"})
	if c1 != c2 {
		t.Fatal("expect cached client for same base/token")
	}

	c3 := GetClient("m-cache", Config{Name: "m-cache", BaseURL: "https://t1", AccessToken: "b"})
	if c3 == c1 {
		t.Fatal("expect rebuilt client after token change")
	}
}
