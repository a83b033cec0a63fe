package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guessparty/guessparty-go/internal/model"
	"github.com/guessparty/guessparty-go/internal/testutil"
)

// testClient builds a client without a socket; messages land in the
// send channel where the test reads them
func testClient(playerID model.PlayerID) *Client {
	client := NewClient(nil, testutil.NopLogger())
	client.setPlayerID(playerID)
	return client
}

func receive(t *testing.T, client *Client) []byte {
	t.Helper()
	select {
	case msg := <-client.send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func assertNoMessage(t *testing.T, client *Client) {
	t.Helper()
	select {
	case msg := <-client.send:
		t.Fatalf("unexpected message: %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub("abcde", testutil.NopLogger())
	go hub.Run()
	t.Cleanup(hub.Close)
	return hub
}

func waitForClientCount(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("client count never reached %d, have %d", want, hub.ClientCount())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := startHub(t)
	alice := testClient("player-1")
	bob := testClient("player-2")

	hub.Register(alice)
	hub.Register(bob)
	waitForClientCount(t, hub, 2)

	hub.Broadcast([]byte(`{"event":"ping"}`))

	assert.Equal(t, `{"event":"ping"}`, string(receive(t, alice)))
	assert.Equal(t, `{"event":"ping"}`, string(receive(t, bob)))
}

func TestBroadcastEvent(t *testing.T) {
	hub := startHub(t)
	alice := testClient("player-1")

	hub.Register(alice)
	waitForClientCount(t, hub, 1)

	hub.BroadcastEvent(EventGameFinished, MessagePayload{Message: "done"})

	var env Envelope
	require.NoError(t, json.Unmarshal(receive(t, alice), &env))
	assert.Equal(t, EventGameFinished, env.Event)
}

func TestUnregisteredClientStopsReceiving(t *testing.T) {
	hub := startHub(t)
	alice := testClient("player-1")
	bob := testClient("player-2")

	hub.Register(alice)
	hub.Register(bob)
	waitForClientCount(t, hub, 2)

	hub.Unregister(bob)
	waitForClientCount(t, hub, 1)

	hub.Broadcast([]byte(`{"event":"ping"}`))

	receive(t, alice)
	assertNoMessage(t, bob)
}

func TestBroadcastEachRendersPerViewer(t *testing.T) {
	hub := startHub(t)
	alice := testClient("player-1")
	bob := testClient("player-2")

	hub.Register(alice)
	hub.Register(bob)
	waitForClientCount(t, hub, 2)

	hub.BroadcastEach(func(viewer model.PlayerID) []byte {
		if viewer == "player-1" {
			return nil
		}
		return []byte(`{"event":"for-` + string(viewer) + `"}`)
	})

	assert.Equal(t, `{"event":"for-player-2"}`, string(receive(t, bob)))
	assertNoMessage(t, alice)
}

func TestClosedClientDropsMessages(t *testing.T) {
	hub := startHub(t)
	alice := testClient("player-1")

	hub.Register(alice)
	waitForClientCount(t, hub, 1)

	alice.Close()
	hub.Broadcast([]byte(`{"event":"ping"}`))

	// enqueue refuses after close; nothing to assert beyond no panic
	waitForClientCount(t, hub, 1)
}

func TestGetOrCreateHubReturnsSameHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())

	first := manager.GetOrCreateHub("abcde")
	second := manager.GetOrCreateHub("abcde")
	assert.Same(t, first, second)

	other := manager.GetOrCreateHub("fghij")
	assert.NotSame(t, first, other)

	manager.RemoveHub("abcde")
	manager.RemoveHub("fghij")
}

func TestGetHubMissing(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	assert.Nil(t, manager.GetHub("abcde"))
}

func TestRemoveHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	manager.GetOrCreateHub("abcde")

	manager.RemoveHub("abcde")
	assert.Nil(t, manager.GetHub("abcde"))
}

func TestCleanupEmptyHubs(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	manager.GetOrCreateHub("abcde")
	busy := manager.GetOrCreateHub("fghij")

	alice := testClient("player-1")
	busy.Register(alice)
	waitForClientCount(t, busy, 1)

	manager.CleanupEmptyHubs()

	assert.Nil(t, manager.GetHub("abcde"))
	assert.Same(t, busy, manager.GetHub("fghij"))

	manager.RemoveHub("fghij")
}
