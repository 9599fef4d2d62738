package fetcher

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
)

func TestClientFetchSuccess(t *testing.T) {
	t.Parallel()

	payload := []byte{0x0a, 0x0d, 0x0a, 0x03, '2', '.', '0'}
	var gotAPIKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		gotAPIKey = r.Header.Get("x-api-key")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	client := NewClient(5*time.Second, "test-key")

	body, err := client.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	if !bytes.Equal(body, payload) {
		t.Fatalf("body = %v, want %v", body, payload)
	}
	if gotAPIKey != "test-key" {
		t.Fatalf("api key header = %q, want test-key", gotAPIKey)
	}
}

func TestClientFetchNon2xx(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		statusCode int
	}{
		{name: "not found", statusCode: http.StatusNotFound},
		{name: "server error", statusCode: http.StatusInternalServerError},
		{name: "rate limited", statusCode: http.StatusTooManyRequests},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
			}))
			defer server.Close()

			client := NewClient(5*time.Second, "")

			_, err := client.Fetch(context.Background(), server.URL)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var fetchErr *FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("error type = %T, want *FetchError", err)
			}
			if fetchErr.StatusCode != tc.statusCode {
				t.Fatalf("status code = %d, want %d", fetchErr.StatusCode, tc.statusCode)
			}
		})
	}
}

func TestClientFetchTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	restyClient := resty.New()
	restyClient.SetTimeout(50 * time.Millisecond)
	client, err := NewClientWithResty(restyClient, "")
	if err != nil {
		t.Fatalf("NewClientWithResty() error = %v", err)
	}

	_, err = client.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !IsTimeout(err) {
		t.Fatalf("IsTimeout(%v) = false, want true", err)
	}
}

func TestClientFetchInvalidEndpoint(t *testing.T) {
	t.Parallel()

	client := NewClient(time.Second, "")

	_, err := client.Fetch(context.Background(), "not a url")
	if err == nil {
		t.Fatal("expected error for invalid endpoint")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error type = %T, want *FetchError", err)
	}
}

func TestIsTimeout(t *testing.T) {
	t.Parallel()

	if IsTimeout(nil) {
		t.Fatal("IsTimeout(nil) = true, want false")
	}
	if IsTimeout(errors.New("plain")) {
		t.Fatal("IsTimeout(plain error) = true, want false")
	}
	if !IsTimeout(&FetchError{Timeout: true}) {
		t.Fatal("IsTimeout(timeout FetchError) = false, want true")
	}
	if !IsTimeout(context.DeadlineExceeded) {
		t.Fatal("IsTimeout(DeadlineExceeded) = false, want true")
	}
}
