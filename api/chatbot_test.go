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

func TestConversationCarriesContext(t *testing.T) {
	var seen []askRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("Authorization"))
		var req askRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		seen = append(seen, req)
		_ = json.NewEncoder(w).Encode(askResponse{Response: "echo " + req.Text})
	}))
	defer srv.Close()

	cv := NewChatbot(time.Second, srv.URL, "secret").Start("Happy")
	ctx := context.Background()

	reply, err := cv.Ask(ctx, "hi")
	require.NoError(t, err)
	assert.Equal(t, "echo hi", reply)

	_, err = cv.Ask(ctx, "how are you")
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Empty(t, seen[0].Context)
	assert.Equal(t, []string{"hi", "echo hi"}, seen[1].Context)
	assert.Equal(t, "happy", seen[1].Emotion)
}

func TestConversationHistoryIsBounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(askResponse{Response: "ok"})
	}))
	defer srv.Close()

	cv := NewChatbot(time.Second, srv.URL, "k").Start("")
	for i := 0; i < 10; i++ {
		_, err := cv.Ask(context.Background(), "again")
		require.NoError(t, err)
	}
	assert.Len(t, cv.history, maxHistory)
	assert.Equal(t, "neutral", cv.Emotion())
}

func TestChatbotWithoutKey(t *testing.T) {
	cv := NewChatbot(time.Second, "http://127.0.0.1:1", "").Start("sad")

	_, err := cv.Ask(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrNoChatbotKey)
}
