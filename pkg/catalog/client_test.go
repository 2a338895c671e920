package catalog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid config",
			config:      Config{BaseURL: "http://localhost:8080", UserID: 42},
			expectError: false,
		},
		{
			name:        "missing base URL",
			config:      Config{UserID: 42},
			expectError: true,
			errorMsg:    "base URL is required",
		},
		{
			name:        "missing user ID",
			config:      Config{BaseURL: "http://localhost:8080"},
			expectError: true,
			errorMsg:    "user ID is required (got 0)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.config)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got nil")
					return
				}
				if tt.errorMsg != "" && err.Error() != tt.errorMsg {
					t.Errorf("Error message = %q, want %q", err.Error(), tt.errorMsg)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
					return
				}
				if client == nil {
					t.Error("Client is nil")
				}
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("http://localhost:8080", 42)

	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.UserID != 42 {
		t.Errorf("UserID = %d, want 42", cfg.UserID)
	}
	if cfg.CacheTTL <= 0 {
		t.Errorf("CacheTTL = %v, should be > 0", cfg.CacheTTL)
	}
	if cfg.Timeout <= 0 {
		t.Errorf("Timeout = %v, should be > 0", cfg.Timeout)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		err        error
		expected   ErrorClass
	}{
		{"network error", 0, io.EOF, ErrorClassNetwork},
		{"client error 404", 404, nil, ErrorClassClient},
		{"client error 400", 400, nil, ErrorClassClient},
		{"server error 500", 500, nil, ErrorClassServer},
		{"server error 503", 503, nil, ErrorClassServer},
		{"success 200", 200, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp *http.Response
			if tt.statusCode > 0 {
				resp = &http.Response{StatusCode: tt.statusCode}
			}

			if got := classifyError(resp, tt.err); got != tt.expected {
				t.Errorf("classifyError() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestQuery_CarList(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"items": [
				{"id": 1, "brand": "BMW", "model": "X5", "year": 2019, "price": 2500000, "city": "Москва", "photo": "loc_abc", "view_count": 7},
				{"id": 2, "brand": "Lada", "model": "Vesta", "year": 2021, "price": 900000, "city": "Казань", "photo": null, "view_count": 0}
			],
			"total": 2
		}`))
	}))
	defer server.Close()

	client, err := New(DefaultConfig(server.URL, 42))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	params := url.Values{}
	params.Set("offset", "0")
	params.Set("limit", "20")
	params.Set("sort", "date_new")
	params.Set("city", "Москва")

	result, err := client.Query(context.Background(), AdKindCar, params)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}

	if gotPath != "/api/cars" {
		t.Errorf("path = %q, want %q", gotPath, "/api/cars")
	}
	if gotQuery.Get("city") != "Москва" {
		t.Errorf("city param = %q", gotQuery.Get("city"))
	}
	if result.Total != 2 {
		t.Errorf("Total = %d, want 2", result.Total)
	}
	if len(result.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(result.Items))
	}

	first := result.Items[0]
	if first.Title != "BMW X5" {
		t.Errorf("Title = %q, want %q", first.Title, "BMW X5")
	}
	if first.Kind != AdKindCar {
		t.Errorf("Kind = %q, want %q", first.Kind, AdKindCar)
	}
	if first.Ref() != (AdRef{Kind: AdKindCar, ID: 1}) {
		t.Errorf("Ref() = %v", first.Ref())
	}
	if result.Items[1].Photo != "" {
		t.Errorf("null photo decoded as %q", result.Items[1].Photo)
	}
}

func TestQuery_PlateList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/plates" {
			t.Errorf("path = %q, want /api/plates", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": [{"id": 9, "plate_number": "А123ВС777", "price": 150000, "city": "Москва", "view_count": 3}], "total": 1}`))
	}))
	defer server.Close()

	client, err := New(DefaultConfig(server.URL, 42))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	result, err := client.Query(context.Background(), AdKindPlate, url.Values{})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}

	if len(result.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1", len(result.Items))
	}
	if result.Items[0].Title != "А123ВС777" {
		t.Errorf("Title = %q, want plate number", result.Items[0].Title)
	}
	if result.Items[0].Kind != AdKindPlate {
		t.Errorf("Kind = %q, want %q", result.Items[0].Kind, AdKindPlate)
	}
}

func TestQuery_UnknownKind(t *testing.T) {
	client, err := New(DefaultConfig("http://localhost:8080", 42))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if _, err := client.Query(context.Background(), AdKind("boat"), url.Values{}); err == nil {
		t.Error("Expected error for unknown kind")
	}
}

func TestQuery_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := New(DefaultConfig(server.URL, 42))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	_, err = client.Query(context.Background(), AdKindCar, url.Values{})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	var catErr *Error
	if !errors.As(err, &catErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if catErr.ErrorClass != ErrorClassServer {
		t.Errorf("ErrorClass = %q, want %q", catErr.ErrorClass, ErrorClassServer)
	}
	if catErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", catErr.StatusCode)
	}
}

func TestQuery_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // immediately, so the request fails to connect

	client, err := New(DefaultConfig(server.URL, 42))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	_, err = client.Query(context.Background(), AdKindCar, url.Values{})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	var catErr *Error
	if !errors.As(err, &catErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if catErr.ErrorClass != ErrorClassNetwork {
		t.Errorf("ErrorClass = %q, want %q", catErr.ErrorClass, ErrorClassNetwork)
	}
}

func TestQuery_NoRetry(t *testing.T) {
	// Retries are user-driven; a failing backend must see exactly one request.
	attemptCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attemptCount++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := New(DefaultConfig(server.URL, 42))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	_, _ = client.Query(context.Background(), AdKindCar, url.Values{})
	if attemptCount != 1 {
		t.Errorf("attempts = %d, want 1", attemptCount)
	}
}

func TestAddRemoveFavorite(t *testing.T) {
	type call struct {
		method string
		params url.Values
	}
	var calls []call
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/favorites" {
			t.Errorf("path = %q, want /api/favorites", r.URL.Path)
		}
		calls = append(calls, call{method: r.Method, params: r.URL.Query()})
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	client, err := New(DefaultConfig(server.URL, 42))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	ref := AdRef{Kind: AdKindCar, ID: 7}
	if err := client.AddFavorite(context.Background(), ref); err != nil {
		t.Fatalf("AddFavorite() failed: %v", err)
	}
	if err := client.RemoveFavorite(context.Background(), ref); err != nil {
		t.Fatalf("RemoveFavorite() failed: %v", err)
	}

	if len(calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(calls))
	}
	if calls[0].method != http.MethodPost {
		t.Errorf("add method = %q, want POST", calls[0].method)
	}
	if calls[1].method != http.MethodDelete {
		t.Errorf("remove method = %q, want DELETE", calls[1].method)
	}
	for i, c := range calls {
		if c.params.Get("user_id") != "42" {
			t.Errorf("call %d user_id = %q, want 42", i, c.params.Get("user_id"))
		}
		if c.params.Get("ad_type") != "car" {
			t.Errorf("call %d ad_type = %q, want car", i, c.params.Get("ad_type"))
		}
		if c.params.Get("ad_id") != "7" {
			t.Errorf("call %d ad_id = %q, want 7", i, c.params.Get("ad_id"))
		}
	}
}

func TestAddFavorite_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := New(DefaultConfig(server.URL, 42))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	err = client.AddFavorite(context.Background(), AdRef{Kind: AdKindPlate, ID: 3})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	var catErr *Error
	if !errors.As(err, &catErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if catErr.ErrorClass != ErrorClassServer {
		t.Errorf("ErrorClass = %q, want %q", catErr.ErrorClass, ErrorClassServer)
	}
}

func TestFavoritesList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("user_id"); got != "42" {
			t.Errorf("user_id = %q, want 42", got)
		}
		w.Write([]byte(`{"items": [
			{"ad_type": "car", "id": 1, "title": "BMW X5 (2019)", "price": 2500000, "city": "Москва", "view_count": 7},
			{"ad_type": "plate", "id": 9, "title": "А123ВС777", "price": 150000, "city": "Москва", "view_count": 3}
		]}`))
	}))
	defer server.Close()

	client, err := New(DefaultConfig(server.URL, 42))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	items, err := client.Favorites(context.Background())
	if err != nil {
		t.Fatalf("Favorites() failed: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].Kind != AdKindCar || items[1].Kind != AdKindPlate {
		t.Errorf("kinds = %q, %q", items[0].Kind, items[1].Kind)
	}
}
