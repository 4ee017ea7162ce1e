package anki

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TF338/upload-anki-tts/internal/testutil"
)

func TestClientPing(t *testing.T) {
	stub := testutil.NewAnkiStub(t)
	client := NewClient(stub.URL())

	require.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, 1, stub.CallCount("version"))
}

func TestClientPingUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")

	err := client.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not reachable")
}

func TestClientStoreMediaFile(t *testing.T) {
	stub := testutil.NewAnkiStub(t)
	client := NewClient(stub.URL())

	data := testutil.AudioData()
	require.NoError(t, client.StoreMediaFile(context.Background(), "tts_test.mp3", data))

	// The stub decodes the base64 payload back into the original bytes
	assert.Equal(t, data, stub.Media["tts_test.mp3"])
}

func TestClientAddFindUpdateNote(t *testing.T) {
	stub := testutil.NewAnkiStub(t)
	client := NewClient(stub.URL())
	ctx := context.Background()

	id, err := client.AddNote(ctx, Note{
		DeckName:  "Chinese",
		ModelName: "Sentence",
		Fields:    map[string]string{"ID": "001", "Hanzi": "你好"},
		Tags:      []string{"generated"},
	})
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	ids, err := client.FindNotes(ctx, `"ID:001"`)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, id, ids[0])

	ids, err = client.FindNotes(ctx, `"ID:missing"`)
	require.NoError(t, err)
	assert.Empty(t, ids)

	err = client.UpdateNote(ctx, id, map[string]string{"Hanzi": "你们好"}, []string{"updated"})
	require.NoError(t, err)

	note := stub.NoteByID("001")
	require.NotNil(t, note)
	assert.Equal(t, "你们好", note.Fields["Hanzi"])
	assert.Equal(t, []string{"updated"}, note.Tags)
}

func TestClientRPCError(t *testing.T) {
	stub := testutil.NewAnkiStub(t)
	stub.FailActions["addNote"] = "cannot create note because it is a duplicate"
	client := NewClient(stub.URL())

	_, err := client.AddNote(context.Background(), Note{DeckName: "d", ModelName: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AnkiConnect error")
	assert.Contains(t, err.Error(), "duplicate")
}

func TestClientHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Invoke(context.Background(), "version", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestClientCircuitBreakerOpens(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	ctx := context.Background()

	// Burn through the allowed consecutive failures
	var err error
	for i := 0; i < consecutiveFailureLimit; i++ {
		_, err = client.Invoke(ctx, "version", nil)
		require.Error(t, err)
		assert.False(t, IsCircuitOpen(err), "breaker should still be closed on attempt %d", i+1)
	}

	// The next call is rejected by the open breaker without touching the network
	_, err = client.Invoke(ctx, "version", nil)
	require.Error(t, err)
	assert.True(t, IsCircuitOpen(err))
}

func TestClientDefaultURL(t *testing.T) {
	client := NewClient("")
	assert.Equal(t, DefaultURL, client.url)
}
