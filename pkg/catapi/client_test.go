package catapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catalogServer answers every request with the body returned by respond and
// counts the requests it served.
type catalogServer struct {
	*httptest.Server
	hits atomic.Int64
}

func newCatalogServer(t *testing.T, respond func(r *http.Request) (int, string)) *catalogServer {
	t.Helper()
	cs := &catalogServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.hits.Add(1)
		status, body := respond(r)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(cs.Close)
	return cs
}

func newTestClient(t *testing.T, base string, opts ...Option) (*Client, *FileStore) {
	t.Helper()
	store, err := NewFileStore(afero.NewMemMapFs(), "/cache")
	require.NoError(t, err)
	c, err := New(base, append([]Option{WithStore(store)}, opts...)...)
	require.NoError(t, err)
	return c, store
}

func TestNewRejectsMalformedBase(t *testing.T) {
	for _, base := range []string{
		"https://cat.example/API.php?lang=en",
		"https://cat.example/API.php#top",
		"/user/API.php",
		"://",
	} {
		t.Run(base, func(t *testing.T) {
			_, err := New(base, WithStore(&FileStore{}))
			assert.ErrorIs(t, err, ErrMalformedBaseURL)
		})
	}
}

func TestExecuteCachesAnswers(t *testing.T) {
	srv := newCatalogServer(t, func(*http.Request) (int, string) {
		return http.StatusOK, `{"status":1,"data":[]}`
	})
	c, _ := newTestClient(t, srv.URL+"/API.php")
	ctx := context.Background()
	q := NewQuery("listProfiles", "idp", "1")

	first, err := c.Execute(ctx, q, "en", AcceptJSON, 0)
	require.NoError(t, err)
	second, err := c.Execute(ctx, q, "en", AcceptJSON, 0)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), srv.hits.Load())

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Requests)
	assert.Equal(t, int64(1), stats.NetworkRequests)
	assert.Equal(t, int64(1), stats.CacheHits())
}

func TestExecuteSendsQueryAndAccept(t *testing.T) {
	var gotQuery, gotAccept string
	srv := newCatalogServer(t, func(r *http.Request) (int, string) {
		gotQuery = r.URL.RawQuery
		gotAccept = r.Header.Get("Accept")
		return http.StatusOK, "<html></html>"
	})
	c, _ := newTestClient(t, srv.URL+"/API.php")

	_, err := c.Execute(context.Background(), NewQuery("deviceInfo", "device", "w10", "profile", "3"), "nl", AcceptHTML, 0)
	require.NoError(t, err)

	assert.Equal(t, "action=deviceInfo&device=w10&lang=nl&profile=3", gotQuery)
	assert.Equal(t, AcceptHTML, gotAccept)
}

func TestExecuteRefetchesExpiredEntries(t *testing.T) {
	srv := newCatalogServer(t, func(*http.Request) (int, string) {
		return http.StatusOK, `{"status":1,"data":[]}`
	})
	now := time.Now()
	c, _ := newTestClient(t, srv.URL+"/API.php", WithTTL(time.Hour), WithNowFunc(func() time.Time { return now }))
	ctx := context.Background()
	q := NewQuery("listAllCountries")

	_, err := c.Execute(ctx, q, "", AcceptJSON, 0)
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = c.Execute(ctx, q, "", AcceptJSON, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), srv.hits.Load())

	// A per-call lifetime longer than the age keeps the entry fresh.
	_, err = c.Execute(ctx, q, "", AcceptJSON, 3*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), srv.hits.Load())
}

func TestExecuteEmptyBodyEvicts(t *testing.T) {
	srv := newCatalogServer(t, func(*http.Request) (int, string) {
		return http.StatusOK, ""
	})
	c, store := newTestClient(t, srv.URL+"/API.php")
	ctx := context.Background()
	q := NewQuery("listAllCountries")
	name := EntryName(q, CacheKey(q, c.Base(), "", AcceptJSON))

	// Seed a stale entry to prove that it is removed.
	require.NoError(t, store.Put(ctx, name, []byte("old")))
	require.NoError(t, store.fs.Chtimes(store.Path(name), time.Unix(0, 0), time.Unix(0, 0)))

	_, err := c.Execute(ctx, q, "", AcceptJSON, 0)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, _, err = store.Get(ctx, name)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExecuteCachedEmptyEntryEvicts(t *testing.T) {
	srv := newCatalogServer(t, func(*http.Request) (int, string) {
		return http.StatusOK, "fresh"
	})
	c, store := newTestClient(t, srv.URL+"/API.php")
	ctx := context.Background()
	q := NewQuery("listAllCountries")
	name := EntryName(q, CacheKey(q, c.Base(), "", AcceptJSON))
	require.NoError(t, store.Put(ctx, name, nil))

	_, err := c.Execute(ctx, q, "", AcceptJSON, 0)
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.Equal(t, int64(0), srv.hits.Load())

	body, err := c.Execute(ctx, q, "", AcceptJSON, 0)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(body))
}

func TestExecuteHTTPErrorIsFetchError(t *testing.T) {
	srv := newCatalogServer(t, func(*http.Request) (int, string) {
		return http.StatusInternalServerError, "boom"
	})
	c, _ := newTestClient(t, srv.URL+"/API.php")

	_, err := c.Execute(context.Background(), NewQuery("listAllCountries"), "", AcceptJSON, 0)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe.URL, "action=listAllCountries")
}

func TestURL(t *testing.T) {
	c, _ := newTestClient(t, "https://cat.example/user/API.php")

	assert.Equal(t,
		"https://cat.example/user/API.php?action=listProfiles&idp=5&lang=de",
		c.URL(NewQuery("listProfiles", "idp", "5"), "de"))
	assert.Equal(t,
		"https://cat.example/user/API.php?action=listAllCountries",
		c.URL(NewQuery("listAllCountries"), ""))
}
