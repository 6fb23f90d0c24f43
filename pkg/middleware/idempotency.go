package middleware

import (
	"bytes"
	"net/http"
	"time"

	"stayhub/pkg/cache"
)

// DefaultIdempotencyMaxEntries bounds the replay store.
const DefaultIdempotencyMaxEntries = 10000

type IdempotencyStore interface {
	Get(key string) (*CachedResponse, bool)
	Set(key string, response *CachedResponse)
}

type CachedResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// InMemoryIdempotencyStore replays previous successful responses for
// repeated Idempotency-Key values. Entries expire by TTL and are bounded by
// LRU eviction.
type InMemoryIdempotencyStore struct {
	responses *cache.Cache[string, *CachedResponse]
}

func NewInMemoryIdempotencyStore(ttl time.Duration, maxEntries int) *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{
		responses: cache.New[string, *CachedResponse](ttl, maxEntries),
	}
}

func (s *InMemoryIdempotencyStore) Get(key string) (*CachedResponse, bool) {
	return s.responses.Get(key)
}

func (s *InMemoryIdempotencyStore) Set(key string, response *CachedResponse) {
	s.responses.Put(key, response)
}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

func Idempotency(store IdempotencyStore, headerName string) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = "Idempotency-Key"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(headerName)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			if cached, found := store.Get(key); found {
				replayCachedResponse(w, cached)
				return
			}

			capture := &responseCapture{
				ResponseWriter: w,
				statusCode:     200,
				body:           &bytes.Buffer{},
			}
			next.ServeHTTP(capture, r)

			// Only successful outcomes are replayable; rejections (429/503)
			// must stay retryable.
			if capture.statusCode >= 200 && capture.statusCode < 300 {
				store.Set(key, &CachedResponse{
					StatusCode: capture.statusCode,
					Headers:    w.Header().Clone(),
					Body:       capture.body.Bytes(),
				})
			}
		})
	}
}

func replayCachedResponse(w http.ResponseWriter, cached *CachedResponse) {
	for key, values := range cached.Headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}
