package network

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amalg/go-battlecity/internal/game"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, MsgIntent, IntentMsg{ActionType: game.ActionMove, Direction: game.DirLeft}))
	require.NoError(t, WriteFrame(&buf, MsgStart, struct{}{}))

	env, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, MsgIntent, env.Type)
	intent, err := Payload[IntentMsg](env)
	require.NoError(t, err)
	assert.Equal(t, game.ActionMove, intent.ActionType)
	assert.Equal(t, game.DirLeft, intent.Direction)

	// Frames are read back one at a time.
	env, err = ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, MsgStart, env.Type)
	assert.Zero(t, buf.Len())
}

func TestReadFrameRejectsOversizedHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, uint32(maxMessageSize+1)))
	_, err := ReadFrame(&buf)
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestReadFrameTruncatedBody(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, MsgJoin, JoinMsg{Name: "Alice"}))
	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-3])
	_, err := ReadFrame(truncated)
	assert.ErrorContains(t, err, "read body")
}

func TestPayloadTypeMismatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, MsgJoin, "Alice"))
	env, err := ReadFrame(&buf)
	require.NoError(t, err)
	_, err = Payload[IntentMsg](env)
	assert.ErrorContains(t, err, "decode join payload")
}

func TestStateMsgCarriesSnapshot(t *testing.T) {
	g, err := game.NewEngine(game.DefaultConfig())
	require.NoError(t, err)
	snap := g.Snapshot()

	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, MsgState, StateMsg{State: snap}))
	env, err := ReadFrame(&buf)
	require.NoError(t, err)
	got, err := Payload[StateMsg](env)
	require.NoError(t, err)

	assert.Equal(t, snap.Level, got.State.Level)
	assert.Equal(t, snap.Checksum, got.State.Checksum)
	assert.Equal(t, len(snap.Entities), len(got.State.Entities))
}

func TestPushLatestDropsOldest(t *testing.T) {
	ch := make(chan int, 2)
	for i := range 5 {
		pushLatest(ch, i)
	}
	assert.Equal(t, 3, <-ch)
	assert.Equal(t, 4, <-ch)
}
