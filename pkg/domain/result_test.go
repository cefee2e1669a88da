package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/hostbridge/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_WireShape(t *testing.T) {
	ok, err := json.Marshal(domain.Ok("preset-1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":"preset-1"}`, string(ok))

	fail, err := json.Marshal(domain.Fail[string](domain.MsgKeyNotFound))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Key was not found"}`, string(fail))

	// An empty success value is still a success.
	empty, err := json.Marshal(domain.Ok([]string{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[]}`, string(empty))
}

func TestResult_Unmarshal(t *testing.T) {
	var r domain.Result[domain.Preset]
	require.NoError(t, json.Unmarshal([]byte(`{"data":{"key":"k","payload":{"x":1}}}`), &r))
	v, ok := r.Value()
	require.True(t, ok)
	assert.Equal(t, "k", v.Key)
	assert.JSONEq(t, `{"x":1}`, string(v.Payload))
	assert.Empty(t, r.Error())

	var f domain.Result[string]
	require.NoError(t, json.Unmarshal([]byte(`{"error":"Localstorage not available"}`), &f))
	assert.False(t, f.IsOk())
	assert.Equal(t, domain.MsgStorageUnavailable, f.Error())

	var bad domain.Result[string]
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"data":"a","error":"b"}`), &bad), domain.ErrMalformedPayload)
	assert.ErrorIs(t, json.Unmarshal([]byte(`{}`), &bad), domain.ErrMalformedPayload)
}

func TestResponse_Envelope(t *testing.T) {
	raw, err := json.Marshal(domain.Response{
		Channel: domain.ChannelDeletePresetResponse,
		Result:  domain.Ok("k"),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"channel":"deletePresetResponse","payload":{"data":"k"}}`, string(raw))
}
