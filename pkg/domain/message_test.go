package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/hostbridge/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_TypedMessages(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want domain.Message
	}{
		{"open dialog", `{"channel":"openDialog","payload":"settings"}`, domain.OpenDialog{DomID: "settings"}},
		{"close dialog", `{"channel":"closeDialog","payload":"settings"}`, domain.CloseDialog{DomID: "settings"}},
		{"download svg", `{"channel":"downloadSvg","payload":{"domId":"chart","fileName":"badge"}}`, domain.DownloadSvg{DomID: "chart", FileName: "badge"}},
		{"list presets without payload", `{"channel":"listPresets"}`, domain.ListPresets{}},
		{"list presets with null", `{"channel":"listPresets","payload":null}`, domain.ListPresets{}},
		{"load preset", `{"channel":"loadPreset","payload":"a"}`, domain.LoadPreset{Key: "a"}},
		{"delete preset", `{"channel":"deletePreset","payload":"a"}`, domain.DeletePreset{Key: "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var env domain.Envelope
			require.NoError(t, json.Unmarshal([]byte(tt.env), &env))

			msg, err := domain.Decode(env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, msg)
			assert.Equal(t, env.Channel, msg.Channel())
		})
	}
}

func TestDecode_SavePresetKeepsPayload(t *testing.T) {
	var env domain.Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"channel":"savePreset","payload":{"key":"k","payload":{"size":3,"tags":["x"]}}}`), &env))

	msg, err := domain.Decode(env)
	require.NoError(t, err)

	save, ok := msg.(domain.SavePreset)
	require.True(t, ok)
	assert.Equal(t, "k", save.Key)
	assert.JSONEq(t, `{"size":3,"tags":["x"]}`, string(save.Payload))
}

func TestDecode_LogPassesPayloadThrough(t *testing.T) {
	msg, err := domain.Decode(domain.Envelope{Channel: domain.ChannelLog, Payload: json.RawMessage(`[1,"two",{"three":3}]`)})
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`[1,"two",{"three":3}]`), msg.(domain.Log).Payload)
}

func TestDecode_Errors(t *testing.T) {
	_, err := domain.Decode(domain.Envelope{Channel: "paint"})
	assert.ErrorIs(t, err, domain.ErrUnknownChannel)

	_, err = domain.Decode(domain.Envelope{Channel: domain.ChannelLoadPreset, Payload: json.RawMessage(`42`)})
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)

	_, err = domain.Decode(domain.Envelope{Channel: domain.ChannelDownloadSvg, Payload: json.RawMessage(`"chart"`)})
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}

func TestEncode_DecodeAgrees(t *testing.T) {
	msgs := []domain.Message{
		domain.OpenDialog{DomID: "d1"},
		domain.CloseDialog{DomID: "d1"},
		domain.DownloadSvg{DomID: "svg", FileName: "out"},
		domain.SavePreset{Key: "k", Payload: json.RawMessage(`{"a":1}`)},
		domain.ListPresets{},
		domain.LoadPreset{Key: "k"},
		domain.DeletePreset{Key: "k"},
	}
	for _, msg := range msgs {
		env, err := domain.Encode(msg)
		require.NoError(t, err)
		decoded, err := domain.Decode(env)
		require.NoError(t, err)
		assert.Equal(t, msg.Channel(), decoded.Channel())
	}
}

func TestResponseChannel_Pairs(t *testing.T) {
	resp, ok := domain.ResponseChannel(domain.ChannelSavePreset)
	assert.True(t, ok)
	assert.Equal(t, domain.ChannelSavePresetResponse, resp)
	assert.True(t, resp.IsResponse())

	_, ok = domain.ResponseChannel(domain.ChannelOpenDialog)
	assert.False(t, ok)
	assert.False(t, domain.ChannelOpenDialog.IsResponse())

	for _, c := range domain.OutboundChannels() {
		assert.True(t, domain.IsOutbound(c))
	}
	assert.False(t, domain.IsOutbound(domain.ChannelLoadPresetResponse))
}
