package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// AddFavorite marks an ad as the session user's favorite.
// The endpoint is idempotent: adding an existing favorite succeeds.
func (c *Client) AddFavorite(ctx context.Context, ref AdRef) error {
	return c.favoriteRequest(ctx, http.MethodPost, ref)
}

// RemoveFavorite removes an ad from the session user's favorites.
// Removing a non-member is not an error.
func (c *Client) RemoveFavorite(ctx context.Context, ref AdRef) error {
	return c.favoriteRequest(ctx, http.MethodDelete, ref)
}

func (c *Client) favoriteRequest(ctx context.Context, method string, ref AdRef) error {
	if !ref.Kind.Valid() {
		return fmt.Errorf("unknown ad kind %q", ref.Kind)
	}

	const endpoint = "/api/favorites"
	startTime := time.Now()
	defer func() {
		catalogRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	params := url.Values{}
	params.Set("user_id", strconv.FormatInt(c.userID, 10))
	params.Set("ad_type", string(ref.Kind))
	params.Set("ad_id", strconv.FormatInt(ref.ID, 10))

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Stringer("ad", ref).Msg("Favorite request failed")
		catalogErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		catalogRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return &Error{ErrorClass: ErrorClassNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	catalogRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		errClass := classifyError(resp, nil)
		catalogErrorsTotal.WithLabelValues(string(errClass)).Inc()

		c.logger.Warn().
			Stringer("ad", ref).
			Str("method", method).
			Int("status", resp.StatusCode).
			Msg("Favorite request error")

		return &Error{
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    resp.Status,
		}
	}

	return nil
}

// Favorites fetches the session user's full favorites list.
// Used once per session to warm the membership store; membership checks
// afterwards are point queries against that store.
func (c *Client) Favorites(ctx context.Context) ([]AdSummary, error) {
	params := url.Values{}
	params.Set("user_id", strconv.FormatInt(c.userID, 10))

	body, err := c.getFavorites(ctx, params)
	if err != nil {
		return nil, err
	}

	var wire struct {
		Items []struct {
			AdType    string `json:"ad_type"`
			ID        int64  `json:"id"`
			Title     string `json:"title"`
			Price     int    `json:"price"`
			City      string `json:"city"`
			Photo     string `json:"photo"`
			ViewCount int    `json:"view_count"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decode favorites response: %w", err)
	}

	items := make([]AdSummary, 0, len(wire.Items))
	for _, w := range wire.Items {
		items = append(items, AdSummary{
			ID:        w.ID,
			Kind:      AdKind(w.AdType),
			Title:     w.Title,
			Price:     w.Price,
			City:      w.City,
			Photo:     w.Photo,
			ViewCount: w.ViewCount,
		})
	}

	return items, nil
}

func (c *Client) getFavorites(ctx context.Context, params url.Values) ([]byte, error) {
	const endpoint = "/api/favorites"
	startTime := time.Now()
	defer func() {
		catalogRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		catalogErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		catalogRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, &Error{ErrorClass: ErrorClassNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	catalogRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		errClass := classifyError(resp, nil)
		catalogErrorsTotal.WithLabelValues(string(errClass)).Inc()
		return nil, &Error{
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    resp.Status,
		}
	}

	return io.ReadAll(resp.Body)
}
