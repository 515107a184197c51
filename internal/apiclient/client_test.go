package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newTestClient wires a client against srv with instant, recorded sleeps.
func newTestClient(t *testing.T, srv *httptest.Server, opts Options) (*Client, *[]time.Duration) {
	t.Helper()
	opts.BaseURL = srv.URL
	if opts.HTTPClient == nil {
		opts.HTTPClient = srv.Client()
	}
	c := New(opts)

	delays := &[]time.Duration{}
	c.sleep = func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return c, delays
}

func writeEnvelope(w http.ResponseWriter, payload any) {
	env, _ := NewEnvelope(payload)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(env)
}

func TestGetDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/articles", r.URL.Path)
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeEnvelope(w, []map[string]string{{"id": "1"}})
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv, Options{})
	env, err := c.Get(context.Background(), "/articles")
	require.NoError(t, err)
	require.True(t, env.Success)

	var items []map[string]string
	require.NoError(t, env.Decode(&items))
	require.Len(t, items, 1)
	require.Equal(t, "1", items[0]["id"])
}

func Test429IsAlwaysRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 5 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeEnvelope(w, map[string]string{"ok": "yes"})
	}))
	defer srv.Close()

	// MaxRetries=1 must not cap 429 retries: the server asked for backoff.
	c, delays := newTestClient(t, srv, Options{MaxRetries: 1})
	env, err := c.Get(context.Background(), "/articles")
	require.NoError(t, err)
	require.True(t, env.Success)
	require.Equal(t, 6, calls)

	require.Len(t, *delays, 5)
	for _, d := range *delays {
		require.Equal(t, 2*time.Second, d, "server-supplied Retry-After honored")
	}
}

func Test429FallsBackToDefaultDelay(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeEnvelope(w, map[string]string{})
	}))
	defer srv.Close()

	c, delays := newTestClient(t, srv, Options{})
	_, err := c.Get(context.Background(), "/articles")
	require.NoError(t, err)
	require.Equal(t, []time.Duration{DefaultRetryAfter}, *delays)
}

func Test5xxRetriedUpToCeilingThenExhausted(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, delays := newTestClient(t, srv, Options{MaxRetries: 3})
	_, err := c.Get(context.Background(), "/articles")
	require.Error(t, err)
	require.Equal(t, KindExhausted, KindOf(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, KindServerUnavailable, KindOf(apiErr.Err))

	require.Equal(t, 4, calls, "initial attempt plus three retries")
	require.Len(t, *delays, 3)
	for i := 1; i < len(*delays); i++ {
		require.GreaterOrEqual(t, (*delays)[i], (*delays)[i-1], "monotonic backoff")
	}
}

func TestNetworkErrorsRetriedThenSuccess(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 3 {
			// Kill the connection so the client sees a transport error.
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			_ = conn.Close()
			return
		}
		writeEnvelope(w, map[string]string{})
	}))
	defer srv.Close()

	c, delays := newTestClient(t, srv, Options{MaxRetries: 3})
	env, err := c.Get(context.Background(), "/articles")
	require.NoError(t, err)
	require.True(t, env.Success)
	require.Equal(t, 4, calls)

	require.Len(t, *delays, 3)
	for i := 1; i < len(*delays); i++ {
		require.GreaterOrEqual(t, (*delays)[i], (*delays)[i-1], "three increasing delays")
	}
}

func TestNetworkErrorExhaustionSurfacesAsNetworkFailure(t *testing.T) {
	c := New(Options{BaseURL: "http://127.0.0.1:1", MaxRetries: 2})
	c.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	_, err := c.Get(context.Background(), "/articles")
	require.Error(t, err)
	require.Equal(t, KindExhausted, KindOf(err))
	require.True(t, IsNetworkFailure(err))
}

func Test401TriggersRefreshAndRetryOnce(t *testing.T) {
	var apiCalls, refreshCalls int
	var retriedAuth string

	mux := http.NewServeMux()
	mux.HandleFunc("/articles", func(w http.ResponseWriter, r *http.Request) {
		apiCalls++
		if apiCalls == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		retriedAuth = r.Header.Get("Authorization")
		writeEnvelope(w, map[string]string{})
	})
	mux.HandleFunc(PathRefresh, func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		writeEnvelope(w, map[string]string{"token": "minty-fresh"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := NewMemorySessionStore()
	require.NoError(t, store.Set(KeyAuthToken, "stale-token"))

	c, _ := newTestClient(t, srv, Options{Store: store})
	env, err := c.Get(context.Background(), "/articles")
	require.NoError(t, err)
	require.True(t, env.Success)

	require.Equal(t, 2, apiCalls)
	require.Equal(t, 1, refreshCalls)
	require.Equal(t, "Bearer minty-fresh", retriedAuth)
}

func TestSecond401IsTerminalSessionExpired(t *testing.T) {
	var expired int
	mux := http.NewServeMux()
	mux.HandleFunc("/articles", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc(PathRefresh, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, map[string]string{"token": "does-not-help"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := NewMemorySessionStore()
	require.NoError(t, store.Set(KeyAuthToken, "stale"))

	c, _ := newTestClient(t, srv, Options{
		Store:            store,
		OnSessionExpired: func() { expired++ },
	})
	_, err := c.Get(context.Background(), "/articles")
	require.Error(t, err)
	require.Equal(t, KindSessionExpired, KindOf(err))

	// The refresh itself succeeded, but the session is still terminally
	// expired: the redirect hook fires once and the credential is dropped.
	require.Equal(t, 1, expired)
	_, hasToken := store.Get(KeyAuthToken)
	require.False(t, hasToken)
}

func TestRefreshFailureSurfacesSessionExpiredAndFiresHookOnce(t *testing.T) {
	var expired int
	mux := http.NewServeMux()
	mux.HandleFunc("/articles", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc(PathRefresh, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := NewMemorySessionStore()
	require.NoError(t, store.Set(KeyAuthToken, "stale"))

	c, _ := newTestClient(t, srv, Options{
		Store:            store,
		OnSessionExpired: func() { expired++ },
	})

	_, err := c.Get(context.Background(), "/articles")
	require.Error(t, err)
	require.Equal(t, KindSessionExpired, KindOf(err))

	// Another call hits the same wall; the redirect hook stays debounced.
	_, err = c.Get(context.Background(), "/articles")
	require.Error(t, err)
	require.Equal(t, 1, expired)
}

func Test403SurfacesImmediately(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(Envelope{Success: false, Message: "admins only"})
	}))
	defer srv.Close()

	c, delays := newTestClient(t, srv, Options{})
	_, err := c.Get(context.Background(), "/admin/articles")
	require.Error(t, err)
	require.Equal(t, KindForbidden, KindOf(err))
	require.Contains(t, err.Error(), "admins only")
	require.Equal(t, 1, calls, "never retried")
	require.Empty(t, *delays)
}

func Test404FallbackEligibility(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv, Options{})

	_, err := c.Get(context.Background(), "/articles")
	require.Error(t, err)
	require.Equal(t, KindNotFound, KindOf(err))
	require.True(t, IsFallbackEligible(err))

	_, err = c.Get(context.Background(), "/settings")
	require.Error(t, err)
	require.Equal(t, KindNotFound, KindOf(err))
	require.False(t, IsFallbackEligible(err))
}

func TestLocalRateLimitDenialIsTerminal(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeEnvelope(w, map[string]string{})
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv, Options{RateLimitCeiling: 2})

	_, err := c.Get(context.Background(), "/articles")
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "/articles")
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "/articles")
	require.Error(t, err)
	require.Equal(t, KindRateLimited, KindOf(err))
	require.Equal(t, 2, calls, "denied call never reaches the network")
}

func TestUnsuccessfulEnvelopeSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Envelope{Success: false, Message: "title is required"})
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv, Options{})
	_, err := c.Post(context.Background(), "/admin/articles", map[string]string{})
	require.Error(t, err)
	require.Equal(t, KindRequestFailed, KindOf(err))
	require.Contains(t, err.Error(), "title is required")
}

func TestProactiveRefreshBeforeCall(t *testing.T) {
	var seenAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/articles", func(w http.ResponseWriter, r *http.Request) {
		seenAuth = r.Header.Get("Authorization")
		writeEnvelope(w, map[string]string{})
	})
	mux.HandleFunc(PathRefresh, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, map[string]string{"token": "proactively-fresh"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := NewMemorySessionStore()
	// exp 200s out, threshold 300s: must refresh before the call proceeds.
	require.NoError(t, store.Set(KeyAuthToken, mintTestToken(t, 200*time.Second)))

	c, _ := newTestClient(t, srv, Options{
		Store:            store,
		RefreshThreshold: 300 * time.Second,
	})
	_, err := c.Get(context.Background(), "/articles")
	require.NoError(t, err)
	require.Equal(t, "Bearer proactively-fresh", seenAuth)
}

func TestCancelledContextStopsRetrying(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c, _ := newTestClient(t, srv, Options{MaxRetries: 5})
	c.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := c.Get(ctx, "/articles")
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled))
}
