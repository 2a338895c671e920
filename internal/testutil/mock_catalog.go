// Package testutil provides testing utilities for the catalog client.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockAd is one seeded listing in the mock catalog.
type MockAd struct {
	ID          int64  `json:"id"`
	Brand       string `json:"brand,omitempty"`
	Model       string `json:"model,omitempty"`
	Year        int    `json:"year,omitempty"`
	PlateNumber string `json:"plate_number,omitempty"`
	Price       int    `json:"price"`
	City        string `json:"city"`
	Photo       string `json:"photo,omitempty"`
	ViewCount   int    `json:"view_count"`
	CreatedAt   int64  `json:"-"`
}

// MockResponse overrides the behavior of one mock endpoint.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

type favoriteKey struct {
	adType string
	adID   int64
}

// MockCatalog is a configurable in-memory catalog backend for testing.
// It serves the list endpoints with real offset, limit, filter, search,
// and sort semantics plus the favorites endpoints, so tests exercise the
// same pagination and interleaving behavior the production service shows.
type MockCatalog struct {
	server *httptest.Server

	mu        sync.RWMutex
	cars      []MockAd
	plates    []MockAd
	favorites map[int64]map[favoriteKey]struct{}
	handlers  map[string]http.HandlerFunc
	delays    map[string]time.Duration

	requestCount int
	lastQuery    map[string]string
}

// NewMockCatalog creates a mock catalog server with no seeded ads.
func NewMockCatalog() *MockCatalog {
	mock := &MockCatalog{
		favorites: make(map[int64]map[favoriteKey]struct{}),
		handlers:  make(map[string]http.HandlerFunc),
		delays:    make(map[string]time.Duration),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.lastQuery = flattenQuery(r)
		handler := mock.handlers[r.URL.Path]
		delay := mock.delays[r.URL.Path]
		mock.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		if handler != nil {
			handler(w, r)
			return
		}

		switch r.URL.Path {
		case "/api/cars":
			mock.serveList(w, r, "car")
		case "/api/plates":
			mock.serveList(w, r, "plate")
		case "/api/favorites":
			mock.serveFavorites(w, r)
		default:
			http.NotFound(w, r)
		}
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockCatalog) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockCatalog) Close() {
	m.server.Close()
}

// SeedCars replaces the car listings.
func (m *MockCatalog) SeedCars(ads ...MockAd) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cars = append([]MockAd(nil), ads...)
}

// SeedPlates replaces the plate listings.
func (m *MockCatalog) SeedPlates(ads ...MockAd) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plates = append([]MockAd(nil), ads...)
}

// SetHandler overrides one path with a custom handler.
func (m *MockCatalog) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockCatalog) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetDelay makes one path respond slowly. Used to provoke the
// interleavings where an older response arrives after a newer one.
func (m *MockCatalog) SetDelay(path string, delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[path] = delay
}

// RequestCount returns the number of requests the server received.
func (m *MockCatalog) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// LastQuery returns the query parameters of the most recent request.
func (m *MockCatalog) LastQuery() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastQuery
}

// Reset clears tracking counters and handler overrides.
func (m *MockCatalog) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.lastQuery = nil
	m.handlers = make(map[string]http.HandlerFunc)
	m.delays = make(map[string]time.Duration)
}

// FavoriteSet returns a copy of the favorite refs stored for a user.
func (m *MockCatalog) FavoriteSet(userID int64) map[string]struct{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]struct{}, len(m.favorites[userID]))
	for key := range m.favorites[userID] {
		out[key.adType+"/"+strconv.FormatInt(key.adID, 10)] = struct{}{}
	}
	return out
}

// AddFavorite seeds one favorite for a user.
func (m *MockCatalog) AddFavorite(userID int64, adType string, adID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.favorites[userID] == nil {
		m.favorites[userID] = make(map[favoriteKey]struct{})
	}
	m.favorites[userID][favoriteKey{adType: adType, adID: adID}] = struct{}{}
}

func (m *MockCatalog) serveList(w http.ResponseWriter, r *http.Request, kind string) {
	m.mu.RLock()
	source := m.cars
	if kind == "plate" {
		source = m.plates
	}
	ads := append([]MockAd(nil), source...)
	m.mu.RUnlock()

	q := r.URL.Query()
	ads = filterAds(ads, q)
	sortAds(ads, q.Get("sort"))

	offset := parseInt(q.Get("offset"), 0)
	limit := parseInt(q.Get("limit"), 20)
	if limit > 50 {
		limit = 50
	}

	total := len(ads)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	items := ads[offset:end]
	if items == nil {
		items = []MockAd{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": total,
	})
}

func (m *MockCatalog) serveFavorites(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := int64(parseInt(q.Get("user_id"), 0))

	switch r.Method {
	case http.MethodGet:
		m.serveFavoriteList(w, userID)
	case http.MethodPost, http.MethodDelete:
		adType := q.Get("ad_type")
		adID := int64(parseInt(q.Get("ad_id"), 0))
		if adType == "" || adID == 0 || userID == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "missing parameters"})
			return
		}

		m.mu.Lock()
		if m.favorites[userID] == nil {
			m.favorites[userID] = make(map[favoriteKey]struct{})
		}
		key := favoriteKey{adType: adType, adID: adID}
		if r.Method == http.MethodPost {
			m.favorites[userID][key] = struct{}{}
		} else {
			delete(m.favorites[userID], key)
		}
		m.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
	}
}

func (m *MockCatalog) serveFavoriteList(w http.ResponseWriter, userID int64) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]map[string]any, 0)
	for key := range m.favorites[userID] {
		source := m.cars
		if key.adType == "plate" {
			source = m.plates
		}
		for _, ad := range source {
			if ad.ID != key.adID {
				continue
			}
			title := ad.PlateNumber
			if key.adType == "car" {
				title = strings.TrimSpace(ad.Brand + " " + ad.Model)
			}
			items = append(items, map[string]any{
				"ad_type":    key.adType,
				"id":         ad.ID,
				"title":      title,
				"price":      ad.Price,
				"city":       ad.City,
				"photo":      ad.Photo,
				"view_count": ad.ViewCount,
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func filterAds(ads []MockAd, q map[string][]string) []MockAd {
	city := first(q, "city")
	text := strings.ToLower(first(q, "q"))
	priceMin := parseInt(first(q, "price_min"), 0)
	priceMax := parseInt(first(q, "price_max"), 0)

	out := ads[:0]
	for _, ad := range ads {
		if city != "" && ad.City != city {
			continue
		}
		if text != "" && !matchesText(ad, text) {
			continue
		}
		if priceMin > 0 && ad.Price < priceMin {
			continue
		}
		if priceMax > 0 && ad.Price > priceMax {
			continue
		}
		out = append(out, ad)
	}
	return out
}

func matchesText(ad MockAd, text string) bool {
	haystack := strings.ToLower(ad.Brand + " " + ad.Model + " " + ad.PlateNumber)
	return strings.Contains(haystack, text)
}

func sortAds(ads []MockAd, order string) {
	switch order {
	case "price_asc":
		sort.SliceStable(ads, func(i, j int) bool { return ads[i].Price < ads[j].Price })
	case "price_desc":
		sort.SliceStable(ads, func(i, j int) bool { return ads[i].Price > ads[j].Price })
	case "date_old":
		sort.SliceStable(ads, func(i, j int) bool { return ads[i].CreatedAt < ads[j].CreatedAt })
	default:
		sort.SliceStable(ads, func(i, j int) bool { return ads[i].CreatedAt > ads[j].CreatedAt })
	}
}

func first(q map[string][]string, key string) string {
	if v := q[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func parseInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func flattenQuery(r *http.Request) map[string]string {
	out := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			out[key] = values[0]
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
