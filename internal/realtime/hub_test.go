package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// fakeToggler flips an in-memory selection set the way the database
// path does.
type fakeToggler struct {
	mu       sync.Mutex
	selected map[string]bool
	err      error
}

func (f *fakeToggler) Toggle(ctx context.Context, photoID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if f.selected == nil {
		f.selected = make(map[string]bool)
	}
	key := photoID + "/" + userID
	f.selected[key] = !f.selected[key]
	return f.selected[key], nil
}

func newTestClient(userID, workspaceID string) *Client {
	return NewClient(nil, userID, "User "+userID, "#FF0000", workspaceID)
}

func startHub(t *testing.T, toggler SelectionToggler) *Hub {
	t.Helper()
	hub := NewHub(toggler, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func waitEnvelope(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case env, ok := <-c.Receive():
		require.True(t, ok, "client channel closed")
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for envelope")
		return Envelope{}
	}
}

func TestHubAnnouncesPresence(t *testing.T) {
	hub := startHub(t, &fakeToggler{})

	first := newTestClient("u1", "ws1")
	hub.Join(first)

	second := newTestClient("u2", "ws1")
	hub.Join(second)

	env := waitEnvelope(t, first)
	require.Equal(t, EventUserConnected, env.Event)

	var payload PresencePayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.Equal(t, "u2", payload.UserID)

	hub.Leave(second)
	env = waitEnvelope(t, first)
	require.Equal(t, EventUserDisconnected, env.Event)
}

func TestHubBroadcastExcludesSender(t *testing.T) {
	hub := startHub(t, &fakeToggler{})

	sender := newTestClient("u1", "ws1")
	receiver := newTestClient("u2", "ws1")
	hub.Join(sender)
	hub.Join(receiver)
	waitEnvelope(t, sender) // u2 connected

	frame, _ := json.Marshal(Envelope{
		Event: EventSelectPhoto,
		Data:  json.RawMessage(`{"photoId":"p1"}`),
	})
	hub.HandleEvent(context.Background(), sender, frame)

	env := waitEnvelope(t, receiver)
	require.Equal(t, EventPhotoSelected, env.Event)

	var payload PhotoSelectedPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.Equal(t, "p1", payload.PhotoID)
	require.True(t, payload.Selected)
	require.Equal(t, "u1", payload.UserID)

	select {
	case env := <-sender.Receive():
		t.Fatalf("sender should not receive its own event, got %s", env.Event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubToggleFlipsSelection(t *testing.T) {
	hub := startHub(t, &fakeToggler{})

	sender := newTestClient("u1", "ws1")
	receiver := newTestClient("u2", "ws1")
	hub.Join(sender)
	hub.Join(receiver)
	waitEnvelope(t, sender)

	frame, _ := json.Marshal(Envelope{
		Event: EventSelectPhoto,
		Data:  json.RawMessage(`{"photoId":"p1"}`),
	})

	hub.HandleEvent(context.Background(), sender, frame)
	env := waitEnvelope(t, receiver)
	var payload PhotoSelectedPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.True(t, payload.Selected)

	hub.HandleEvent(context.Background(), sender, frame)
	env = waitEnvelope(t, receiver)
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.False(t, payload.Selected)
}

func TestHubRoomsAreIsolated(t *testing.T) {
	hub := startHub(t, &fakeToggler{})

	a := newTestClient("u1", "ws1")
	b := newTestClient("u2", "ws2")
	hub.Join(a)
	hub.Join(b)

	hub.Broadcast("ws1", NewEnvelope(EventPhotoUploaded, PhotoUploadedPayload{UserID: "u1"}), nil)

	env := waitEnvelope(t, a)
	require.Equal(t, EventPhotoUploaded, env.Event)

	select {
	case env := <-b.Receive():
		t.Fatalf("event leaked across workspaces: %s", env.Event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubIgnoresMalformedFrames(t *testing.T) {
	toggler := &fakeToggler{}
	hub := startHub(t, toggler)

	sender := newTestClient("u1", "ws1")
	hub.Join(sender)

	hub.HandleEvent(context.Background(), sender, []byte("not json"))
	hub.HandleEvent(context.Background(), sender, []byte(`{"event":"selectPhoto","data":{}}`))
	hub.HandleEvent(context.Background(), sender, []byte(`{"event":"unknown"}`))

	toggler.mu.Lock()
	defer toggler.mu.Unlock()
	require.Empty(t, toggler.selected)
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := startHub(t, &fakeToggler{})

	slow := newTestClient("slow", "ws1")
	fast := newTestClient("fast", "ws1")
	hub.Join(slow)
	hub.Join(fast)
	waitEnvelope(t, slow) // fast connected

	// Fill the slow client's buffer without draining it, then one more
	// to trigger the drop.
	for i := 0; i < sendBuffer+1; i++ {
		hub.Broadcast("ws1", NewEnvelope(EventPhotoUploaded, PhotoUploadedPayload{UserID: "fast"}), fast)
	}

	// The slow client's channel is eventually closed by the hub.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-slow.Receive():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("slow client was never dropped")
		}
	}
}

func TestHubLeaveAfterShutdownReturns(t *testing.T) {
	hub := NewHub(&fakeToggler{}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	client := newTestClient("u1", "ws1")
	hub.Join(client)

	cancel()

	// The hub closes every client channel on the way out.
	deadline := time.After(2 * time.Second)
	for open := true; open; {
		select {
		case _, ok := <-client.Receive():
			open = ok
		case <-deadline:
			t.Fatal("hub never shut down")
		}
	}

	// A read pump exiting after shutdown must not hang on Leave, and a
	// late REST broadcast must not hang either.
	returned := make(chan struct{})
	go func() {
		hub.Leave(client)
		hub.Broadcast("ws1", NewEnvelope(EventPhotoUploaded, PhotoUploadedPayload{UserID: "u1"}), nil)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("leave blocked after hub shutdown")
	}
}
