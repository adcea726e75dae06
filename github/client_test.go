package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"devconnector/apperror"
	"devconnector/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reposJSON = `[{"id":1,"name":"hello-world","html_url":"https://github.com/octocat/hello-world"}]`

func TestReposRequest(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reposJSON))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, Token: "ghp_test"})
	body, err := c.Repos(context.Background(), "octocat")
	require.NoError(t, err)
	assert.JSONEq(t, reposJSON, string(body))

	require.NotNil(t, got)
	assert.Equal(t, "/users/octocat/repos", got.URL.Path)
	assert.Equal(t, "5", got.URL.Query().Get("per_page"))
	assert.Equal(t, "created:asc", got.URL.Query().Get("sort"))
	assert.Equal(t, "Bearer ghp_test", got.Header.Get("Authorization"))
	assert.NotEmpty(t, got.Header.Get("User-Agent"))
}

func TestReposAnonymous(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewClient(Options{BaseURL: srv.URL}).Repos(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestReposUpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
		}},
		{"rate limited", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}},
		{"garbage body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewClient(Options{BaseURL: srv.URL}).Repos(context.Background(), "ghost")
			require.ErrorIs(t, err, apperror.ErrUpstream)
			assert.Equal(t, "No Github profile found", apperror.Fields(err)[0].Msg)
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewClient(Options{BaseURL: url, Timeout: time.Second}).Repos(context.Background(), "ghost")
		assert.ErrorIs(t, err, apperror.ErrUpstream)
	})
}

func TestReposCached(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := cache.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer rc.Close()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(reposJSON))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, Cache: rc, CacheTTL: time.Minute})
	ctx := context.Background()

	_, err := c.Repos(ctx, "OctoCat")
	require.NoError(t, err)
	body, err := c.Repos(ctx, "octocat")
	require.NoError(t, err)

	assert.JSONEq(t, reposJSON, string(body))
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, mr.Exists("github:repos:octocat"))

	mr.FastForward(2 * time.Minute)
	_, err = c.Repos(ctx, "octocat")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestReposFailuresNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := cache.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer rc.Close()

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, Cache: rc, CacheTTL: time.Minute})
	_, err := c.Repos(context.Background(), "ghost")
	require.Error(t, err)
	assert.False(t, mr.Exists("github:repos:ghost"))
}

func TestReposCoalescesConcurrentLookups(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		_, _ = w.Write([]byte(reposJSON))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})

	const n = 5
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Repos(context.Background(), "octocat")
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestReposCancelledCallerDoesNotFailOthers(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		_, _ = w.Write([]byte(reposJSON))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Repos(firstCtx, "octocat")
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	type result struct {
		body []byte
		err  error
	}
	second := make(chan result, 1)
	go func() {
		body, err := c.Repos(context.Background(), "octocat")
		second <- result{body, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, apperror.ErrUpstream)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting on the shared lookup")
	}

	close(release)
	res := <-second
	require.NoError(t, res.err)
	assert.JSONEq(t, reposJSON, string(res.body))
	assert.Equal(t, int32(1), calls.Load())
}
