package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sync"
	"testing"

	"travis-bott/games"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var apiPrefix = regexp.MustCompile(`^/api/v\d+`)

// rewriteTransport sends every Discord API request to a local server
type rewriteTransport struct {
	target *url.URL
}

func (rt rewriteTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.URL.Scheme = rt.target.Scheme
	r.URL.Host = rt.target.Host
	r.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

type fakeDiscord struct {
	mu       sync.Mutex
	requests []string
}

func (f *fakeDiscord) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeDiscord) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := apiPrefix.ReplaceAllString(r.URL.Path, "")
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+path)
	f.mu.Unlock()

	writeMessage := func(id string) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": id, "channel_id": "chan-1"})
	}

	switch {
	case r.Method == http.MethodPost && path == "/interactions/int-1/tok-1/callback":
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodPatch && path == "/webhooks/app-1/tok-1/messages/@original":
		writeMessage("msg-1")
	case r.Method == http.MethodPost && path == "/channels/chan-1/messages":
		writeMessage("msg-2")
	case r.Method == http.MethodPatch && path == "/channels/chan-1/messages/msg-1":
		writeMessage("msg-1")
	case r.Method == http.MethodDelete && path == "/channels/chan-1/messages/msg-1/reactions":
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, `{"message": "unexpected route", "code": 0}`, http.StatusNotFound)
	}
}

func newTestMessenger(t *testing.T) (*InteractionMessenger, *fakeDiscord) {
	fake := &fakeDiscord{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	target, err := url.Parse(srv.URL)
	require.NoError(t, err)

	s, err := discordgo.New("Bot test-token")
	require.NoError(t, err)
	s.Client = &http.Client{Transport: rewriteTransport{target: target}}

	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:        "int-1",
		AppID:     "app-1",
		Token:     "tok-1",
		ChannelID: "chan-1",
		Type:      discordgo.InteractionApplicationCommand,
	}}
	return NewInteractionMessenger(s, i, "Rock Paper Scissors"), fake
}

func TestInteractionMessengerFirstSendAnswersInteraction(t *testing.T) {
	m, fake := newTestMessenger(t)
	ctx := context.Background()

	msg, err := m.Send(ctx, "chan-1", "first")
	require.NoError(t, err)
	assert.Equal(t, games.Message{ChannelID: "chan-1", ID: "msg-1"}, msg)
	assert.Equal(t, []string{
		"POST /interactions/int-1/tok-1/callback",
		"PATCH /webhooks/app-1/tok-1/messages/@original",
	}, fake.calls())

	msg, err = m.Send(ctx, "chan-1", "second")
	require.NoError(t, err)
	assert.Equal(t, games.Message{ChannelID: "chan-1", ID: "msg-2"}, msg)

	calls := fake.calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "POST /channels/chan-1/messages", calls[2])
}

func TestInteractionMessengerEditAndClearUseChannelRoutes(t *testing.T) {
	m, fake := newTestMessenger(t)
	ctx := context.Background()
	msg := games.Message{ChannelID: "chan-1", ID: "msg-1"}

	require.NoError(t, m.Edit(ctx, msg, "edited"))
	require.NoError(t, m.ClearReactions(ctx, msg))

	assert.Equal(t, []string{
		"PATCH /channels/chan-1/messages/msg-1",
		"DELETE /channels/chan-1/messages/msg-1/reactions",
	}, fake.calls())
}

func TestInteractionMessengerWithoutInteractionSendsToChannel(t *testing.T) {
	m, fake := newTestMessenger(t)
	m.Interaction = nil

	msg, err := m.Send(context.Background(), "chan-1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "msg-2", msg.ID)
	assert.Equal(t, []string{"POST /channels/chan-1/messages"}, fake.calls())
}
