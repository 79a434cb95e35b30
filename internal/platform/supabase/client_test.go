package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type productRow struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PriceKobo int64  `json:"price_kobo"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL, ServiceKey: "test-key"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client, server
}

func TestClientSelectBuildsPostgRESTQuery(t *testing.T) {
	var captured *http.Request
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]productRow{{ID: "p1", Name: "Rice", PriceKobo: 50000}})
	})

	var rows []productRow
	query := Query{
		Filters:    []Filter{Eq("active", "true"), In("id", []string{"p1", "p2"})},
		OrderBy:    "created_at",
		Descending: true,
		Limit:      20,
		Offset:     40,
	}
	if err := client.Select(context.Background(), "products", query, &rows); err != nil {
		t.Fatalf("Select returned error: %v", err)
	}

	if captured.URL.Path != "/rest/v1/products" {
		t.Fatalf("unexpected path %s", captured.URL.Path)
	}
	params := captured.URL.Query()
	if got := params.Get("active"); got != "eq.true" {
		t.Fatalf("expected active=eq.true, got %s", got)
	}
	if got := params.Get("id"); got != "in.(p1,p2)" {
		t.Fatalf("expected id=in.(p1,p2), got %s", got)
	}
	if got := params.Get("order"); got != "created_at.desc" {
		t.Fatalf("expected order=created_at.desc, got %s", got)
	}
	if got := params.Get("limit"); got != "20" {
		t.Fatalf("expected limit=20, got %s", got)
	}
	if got := params.Get("offset"); got != "40" {
		t.Fatalf("expected offset=40, got %s", got)
	}
	if got := captured.Header.Get("apikey"); got != "test-key" {
		t.Fatalf("expected apikey header, got %q", got)
	}
	if got := captured.Header.Get("Authorization"); got != "Bearer test-key" {
		t.Fatalf("expected bearer auth header, got %q", got)
	}

	if len(rows) != 1 || rows[0].PriceKobo != 50000 {
		t.Fatalf("unexpected rows decoded: %+v", rows)
	}
}

func TestInFilterQuotesReservedCharacters(t *testing.T) {
	cases := []struct {
		name   string
		values []string
		want   string
	}{
		{name: "plain ids", values: []string{"p1", "p2"}, want: "(p1,p2)"},
		{name: "comma in value", values: []string{"a,b", "c"}, want: `("a,b",c)`},
		{name: "paren in value", values: []string{"a)b"}, want: `("a)b")`},
		{name: "quote in value", values: []string{`a"b`}, want: `("a\"b")`},
		{name: "space in value", values: []string{"a b"}, want: `("a b")`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			filter := In("id", tc.values)
			if filter.Value != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, filter.Value)
			}
		})
	}
}

func TestClientInsertRequestsRepresentation(t *testing.T) {
	var captured *http.Request
	var capturedBody []productRow
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		_ = json.NewDecoder(r.Body).Decode(&capturedBody)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(capturedBody)
	})

	var created []productRow
	rows := []productRow{{ID: "p1", Name: "Rice", PriceKobo: 50000}}
	if err := client.Insert(context.Background(), "products", rows, &created); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	if captured.Method != http.MethodPost {
		t.Fatalf("expected POST, got %s", captured.Method)
	}
	if got := captured.Header.Get("Prefer"); got != "return=representation" {
		t.Fatalf("expected return=representation, got %q", got)
	}
	if len(capturedBody) != 1 || capturedBody[0].ID != "p1" {
		t.Fatalf("unexpected request body: %+v", capturedBody)
	}
	if len(created) != 1 || created[0].Name != "Rice" {
		t.Fatalf("unexpected created rows: %+v", created)
	}
}

func TestClientUpdateRequiresFilter(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	err := client.Update(context.Background(), "orders", nil, map[string]any{"status": "confirmed"}, nil)
	if err == nil {
		t.Fatal("expected error for filterless update")
	}
}

func TestClientDeleteSendsFilters(t *testing.T) {
	var captured *http.Request
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.Delete(context.Background(), "orders", []Filter{Eq("id", "o1")}); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if captured.Method != http.MethodDelete {
		t.Fatalf("expected DELETE, got %s", captured.Method)
	}
	if got := captured.URL.Query().Get("id"); got != "eq.o1" {
		t.Fatalf("expected id=eq.o1, got %s", got)
	}
}

func TestClientMapsStatusCodes(t *testing.T) {
	cases := []struct {
		name        string
		status      int
		body        string
		notFound    bool
		conflict    bool
		unavailable bool
	}{
		{name: "not found", status: http.StatusNotFound, notFound: true},
		{name: "no single row", status: http.StatusNotAcceptable, notFound: true},
		{name: "conflict", status: http.StatusConflict, conflict: true},
		{name: "unique violation", status: http.StatusBadRequest, body: `{"code":"23505","message":"duplicate key"}`, conflict: true},
		{name: "server error", status: http.StatusInternalServerError, unavailable: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				if tc.body != "" {
					_, _ = w.Write([]byte(tc.body))
				}
			})

			var rows []productRow
			err := client.Select(context.Background(), "products", Query{}, &rows)
			if err == nil {
				t.Fatal("expected error")
			}

			var storeErr *Error
			if !errors.As(err, &storeErr) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if storeErr.IsNotFound() != tc.notFound {
				t.Fatalf("IsNotFound = %v, want %v", storeErr.IsNotFound(), tc.notFound)
			}
			if storeErr.IsConflict() != tc.conflict {
				t.Fatalf("IsConflict = %v, want %v", storeErr.IsConflict(), tc.conflict)
			}
			if storeErr.IsUnavailable() != tc.unavailable {
				t.Fatalf("IsUnavailable = %v, want %v", storeErr.IsUnavailable(), tc.unavailable)
			}
		})
	}
}

func TestClientPassesThroughContextCancellation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var rows []productRow
	err := client.Select(ctx, "products", Query{}, &rows)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{ServiceKey: "k"}); err == nil {
		t.Fatal("expected error for missing base URL")
	}
	if _, err := NewClient(Config{BaseURL: "https://store.example.com"}); err == nil {
		t.Fatal("expected error for missing service key")
	}
	if _, err := NewClient(Config{BaseURL: "::bad::", ServiceKey: "k"}); err == nil {
		t.Fatal("expected error for malformed base URL")
	}
}
