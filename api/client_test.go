package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(time.Second, "travis-bott-test", Endpoints{
		Kanye:      srv.URL + "/kanye",
		Fact:       srv.URL + "/fact",
		Dog:        srv.URL + "/img/dog",
		Cat:        srv.URL + "/img/cat",
		Reddit:     srv.URL,
		RandomUser: srv.URL + "/randomuser",
		Ejected:    srv.URL + "/ejected",
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestKanyeQuote(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "travis-bott-test", r.Header.Get("User-Agent"))
		writeJSON(w, map[string]string{"quote": "I am a god"})
	})

	quote, err := c.KanyeQuote(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "I am a god", quote)
}

func TestStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.RandomFact(context.Background())
	var status *StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, http.StatusServiceUnavailable, status.Code)
}

func TestFloofHitsDogOrCat(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"link": "https://img.example" + r.URL.Path})
	})

	link, err := c.Floof(context.Background())
	require.NoError(t, err)
	assert.Contains(t, []string{"https://img.example/img/dog", "https://img.example/img/cat"}, link)
}

func TestRandomFirstName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"name":{"first":"Mathilde","last":"Moulin"}}]}`))
	})

	name, err := c.RandomFirstName(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Mathilde", name)
}

func TestRandomSubmission(t *testing.T) {
	post := `{"data":{"children":[{"data":{"title":"Cute","author":"u1","ups":10,"downs":1,"score":9,"over_18":false,"url":"https://i.redd.it/x.png","permalink":"/r/aww/comments/1/cute/","subreddit_subscribers":1000,"created_utc":1600000000}}]}}`

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/r/aww/random.json":
			_, _ = w.Write([]byte("[" + post + "]"))
		case "/r/single/random.json":
			_, _ = w.Write([]byte(post))
		case "/r/empty/random.json":
			_, _ = w.Write([]byte(`{"data":{"children":[]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	sub, err := c.RandomSubmission(ctx, "r/aww")
	require.NoError(t, err)
	assert.Equal(t, "Cute", sub.Title)
	assert.Equal(t, "https://www.reddit.com/r/aww/comments/1/cute/", sub.Link())
	assert.Equal(t, int64(1600000000), sub.CreatedAt().Unix())
	assert.False(t, sub.Over18)

	sub, err = c.RandomSubmission(ctx, "single")
	require.NoError(t, err)
	assert.Equal(t, 1000, sub.Subscribers)

	_, err = c.RandomSubmission(ctx, "empty")
	assert.ErrorIs(t, err, ErrSubredditNotFound)

	_, err = c.RandomSubmission(ctx, "missing")
	assert.ErrorIs(t, err, ErrSubredditNotFound)
}

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestEjected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ejected", r.URL.Path)
		assert.Equal(t, "kal was not An Impostor", r.URL.Query().Get("name"))
		assert.Equal(t, "false", r.URL.Query().Get("impostor"))
		assert.Equal(t, "darkgreen", r.URL.Query().Get("crewmate"))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngMagic)
	})

	image, err := c.Ejected(context.Background(), "kal was not An Impostor", " DarkGreen ", false)
	require.NoError(t, err)
	assert.Equal(t, pngMagic, image)
}

func TestEjectedRejectsUnknownColourLocally(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := c.Ejected(context.Background(), "kal", "magenta", true)
	assert.ErrorIs(t, err, ErrBadColour)
	assert.False(t, called)
}

func TestEjectedBadRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid crewmate"}`, http.StatusBadRequest)
	})

	_, err := c.Ejected(context.Background(), "kal", "random", true)
	assert.ErrorIs(t, err, ErrBadColour)
}

func TestEjectedUpstreamFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Ejected(context.Background(), "kal", "red", true)
	var status *StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, http.StatusBadGateway, status.Code)
}

func TestValidColour(t *testing.T) {
	assert.True(t, ValidColour("red"))
	assert.True(t, ValidColour("Cyan"))
	assert.False(t, ValidColour("magenta"))
	assert.False(t, ValidColour(""))
	assert.Len(t, EjectColours, 13)
}
