package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

type pageResponse struct {
	Results []map[string]any `json:"results"`
	Total   *int             `json:"total,omitempty"`
}

func writeJSON(t *testing.T, w http.ResponseWriter, payload any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func newTestClient(server *httptest.Server, pageLimit int) *Client {
	return NewClientWithHTTPClient(server.URL, "alice", "s3cret", pageLimit, 0, server.Client())
}

func TestFetchAllPaginates(t *testing.T) {
	total := 5
	records := make([]map[string]any, total)
	for i := range records {
		records[i] = map[string]any{"id": fmt.Sprintf("A%d", i)}
	}

	var requests int
	var offsets []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++

		user, pass, ok := r.BasicAuth()
		if !ok || user != "alice" || pass != "s3cret" {
			t.Errorf("missing or wrong basic auth: %q %q", user, pass)
		}
		if accept := r.Header.Get("Accept"); accept != "application/json" {
			t.Errorf("unexpected Accept header: %q", accept)
		}

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit != 2 {
			t.Errorf("unexpected limit: %d", limit)
		}
		offsets = append(offsets, offset)

		end := offset + limit
		if end > total {
			end = total
		}
		writeJSON(t, w, pageResponse{Results: records[offset:end], Total: &total})
	}))
	defer server.Close()

	client := newTestClient(server, 2)
	results, err := client.FetchAll(context.Background(), "/rest/2.0/assets", nil)
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}

	// ceil(5/2) = 3 requests, records concatenated in arrival order.
	if requests != 3 {
		t.Fatalf("issued %d requests, want 3", requests)
	}
	if len(results) != total {
		t.Fatalf("got %d records, want %d", len(results), total)
	}
	for i, raw := range results {
		var record map[string]any
		if err := json.Unmarshal(raw, &record); err != nil {
			t.Fatalf("decode record %d: %v", i, err)
		}
		if want := fmt.Sprintf("A%d", i); record["id"] != want {
			t.Fatalf("record %d out of order: %v", i, record["id"])
		}
	}
	for i, offset := range offsets {
		if offset != i*2 {
			t.Fatalf("request %d used offset %d, want %d", i, offset, i*2)
		}
	}
}

func TestFetchAllTotalAbsent(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		writeJSON(t, w, pageResponse{Results: []map[string]any{{"id": "A0"}, {"id": "A1"}}})
	}))
	defer server.Close()

	client := newTestClient(server, 100)
	results, err := client.FetchAll(context.Background(), "/rest/2.0/assets", nil)
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if requests != 1 {
		t.Fatalf("issued %d requests, want 1 when total is absent", requests)
	}
	if len(results) != 2 {
		t.Fatalf("got %d records, want 2", len(results))
	}
}

func TestFetchAllErrorReturnsPartial(t *testing.T) {
	total := 4
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests > 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		writeJSON(t, w, pageResponse{Results: []map[string]any{{"id": "A0"}, {"id": "A1"}}, Total: &total})
	}))
	defer server.Close()

	client := newTestClient(server, 2)
	results, err := client.FetchAll(context.Background(), "/rest/2.0/assets", nil)
	if err == nil {
		t.Fatal("expected error from failed second page")
	}
	if len(results) != 2 {
		t.Fatalf("got %d partial records, want 2", len(results))
	}
}

func TestFetchAllShortPage(t *testing.T) {
	total := 5
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests > 1 {
			writeJSON(t, w, pageResponse{Results: nil, Total: &total})
			return
		}
		writeJSON(t, w, pageResponse{Results: []map[string]any{{"id": "A0"}, {"id": "A1"}}, Total: &total})
	}))
	defer server.Close()

	client := newTestClient(server, 2)
	results, err := client.FetchAll(context.Background(), "/rest/2.0/assets", nil)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d partial records, want 2", len(results))
	}
}

func TestFetchAllDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := newTestClient(server, 2)
	if _, err := client.FetchAll(context.Background(), "/rest/2.0/assets", nil); err == nil {
		t.Fatal("expected decode error")
	}
}
