// Command catalog-proxy exposes the catalog client as a small HTTP
// service: list queries pass through the shared Redis response cache,
// and /metrics exports the Prometheus metrics of every component.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/avtoline/catalog-client/pkg/catalog"
	"github.com/avtoline/catalog-client/pkg/logging"
	"github.com/avtoline/catalog-client/pkg/query"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	catalogURL := getEnv("CATALOG_URL", "http://localhost:8000")
	redisURL := getEnv("REDIS_URL", "localhost:6379")
	port := getEnv("PORT", "8080")
	userID, _ := strconv.ParseInt(getEnv("USER_ID", "1"), 10, 64)

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnv("LOG_PRETTY", "") != "",
	})

	redisClient := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", redisURL).Msg("Failed to connect to Redis")
	}
	log.Info().Str("addr", redisURL).Msg("Connected to Redis")

	cfg := catalog.DefaultConfig(catalogURL, userID)
	cfg.Redis = redisClient
	client, err := catalog.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create catalog client")
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/ready", readyHandler(redisClient))
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/api/cars", listHandler(client, catalog.AdKindCar))
	http.HandleFunc("/api/plates", listHandler(client, catalog.AdKindPlate))

	addr := ":" + port
	log.Info().Str("addr", addr).Str("catalog", catalogURL).Msg("Starting catalog proxy")

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			http.Error(w, "Redis unavailable", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}

// listHandler forwards a list request through the catalog client. The
// incoming parameters are re-normalized, so limit caps and the sort
// fallback apply at the proxy boundary too.
func listHandler(client *catalog.Client, kind catalog.AdKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := query.Filter{
			City:       q.Get("city"),
			SearchText: q.Get("q"),
			Sort:       query.Sort(q.Get("sort")),
			PriceMin:   atoiOrZero(q.Get("price_min")),
			PriceMax:   atoiOrZero(q.Get("price_max")),
		}
		offset := atoiOrZero(q.Get("offset"))
		limit := atoiOrZero(q.Get("limit"))
		if limit == 0 {
			limit = query.DefaultLimit
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		result, err := client.Query(ctx, kind, query.Build(filter, offset, limit))
		if err != nil {
			log.Warn().Err(err).Str("kind", string(kind)).Msg("Catalog request failed")
			http.Error(w, "catalog request failed", http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		json.NewEncoder(w).Encode(map[string]any{
			"items": result.Items,
			"total": result.Total,
		})
	}
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
