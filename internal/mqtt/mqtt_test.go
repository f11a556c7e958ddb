package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ts = time.Date(2026, 1, 3, 14, 30, 0, 0, time.UTC)

func TestFormatPayloadExactJSON(t *testing.T) {
	payload, err := FormatPayload(TransitionEvent{Timestamp: ts, From: "idle", To: "alarm", Event: 2})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"transition":{"timestamp":"2026-01-03T14:30:00Z","from":"idle","to":"alarm","event":2}}`,
		string(payload))
}

func TestFormatPayloadDirect(t *testing.T) {
	payload, err := FormatPayload(TransitionEvent{Timestamp: ts, From: "a", To: "b", Direct: true})
	require.NoError(t, err)

	var p Payload
	require.NoError(t, json.Unmarshal(payload, &p))
	assert.True(t, p.Transition.Direct)
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	payload, err := FormatPayload(TransitionEvent{Timestamp: ts.In(loc)})
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"2026-01-03T14:30:00Z"`)
}

func TestFormatSystemPayload(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{Timestamp: ts, Event: "SHUTDOWN", Reason: "SIGTERM"})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"system":{"timestamp":"2026-01-03T14:30:00Z","event":"SHUTDOWN","reason":"SIGTERM"}}`,
		string(payload))
}

func TestFormatSystemPayloadOmitsReason(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{Timestamp: ts, Event: "RECONNECTED"})
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "reason")
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "HEARTBEAT", RawPayload: raw})
	require.NoError(t, err)
	assert.Equal(t, raw, payload)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
		wantErr bool
	}{
		{"plain", "alarm", "alarm", false},
		{"padded", "  calm\n", "calm", false},
		{"code", "7", "7", false},
		{"json", `{"event":"button"}`, "button", false},
		{"empty", "", "", true},
		{"json empty", `{"event":""}`, "", true},
		{"bad json", `{"event":`, "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCommand([]byte(tc.payload))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseCommandEmptyIsSentinel(t *testing.T) {
	_, err := ParseCommand([]byte("   "))
	assert.ErrorIs(t, err, ErrEmptyCommand)
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()
	require.NoError(t, f.Publish(TransitionEvent{Timestamp: ts, From: "idle", To: "heart", Event: 1}))
	require.NoError(t, f.PublishSystem(SystemEvent{Timestamp: ts, Event: "STARTUP"}))

	require.Len(t, f.Transitions, 1)
	require.Len(t, f.Payloads, 1)
	assert.Contains(t, string(f.Payloads[0]), `"to":"heart"`)
	require.Len(t, f.SystemEvents, 1)
	assert.Contains(t, string(f.SystemPayloads[0]), "STARTUP")
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	boom := errors.New("boom")
	f.PublishError = boom
	f.PublishSystemError = boom

	assert.ErrorIs(t, f.Publish(TransitionEvent{}), boom)
	assert.ErrorIs(t, f.PublishSystem(SystemEvent{}), boom)
	assert.Empty(t, f.Transitions)
	assert.Empty(t, f.SystemEvents)
}

func TestFakePublisherCommandsAndReset(t *testing.T) {
	f := NewFakePublisher()
	f.CommandCh <- "alarm"
	assert.Equal(t, "alarm", <-f.Commands())

	f.Connected = true
	f.Pending = 2
	assert.Equal(t, 2, f.Buffered())
	_ = f.Publish(TransitionEvent{})
	require.NoError(t, f.Close())
	assert.True(t, f.Closed)

	f.Reset()
	assert.Empty(t, f.Transitions)
	assert.False(t, f.Closed)
	assert.False(t, f.IsConnected())
	assert.Zero(t, f.Buffered())
}

func TestInterfaces(t *testing.T) {
	var _ Publisher = (*FakePublisher)(nil)
	var _ ConnectionStatus = (*FakePublisher)(nil)
	var _ CommandSource = (*FakePublisher)(nil)
	var _ Publisher = (*RealPublisher)(nil)
	var _ ConnectionStatus = (*RealPublisher)(nil)
	var _ CommandSource = (*RealPublisher)(nil)
}
