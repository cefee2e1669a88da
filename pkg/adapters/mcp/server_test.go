package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/hostbridge/pkg/domain"
	"github.com/aretw0/hostbridge/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBridge struct {
	got     []domain.Message
	bound   map[domain.Channel]bool
	replies map[domain.Channel]domain.Response
}

func newFakeBridge() *fakeBridge {
	bound := map[domain.Channel]bool{}
	for _, c := range domain.OutboundChannels() {
		bound[c] = true
	}
	return &fakeBridge{bound: bound, replies: map[domain.Channel]domain.Response{}}
}

func (b *fakeBridge) Call(ctx context.Context, msg domain.Message, reply ports.Outbox) error {
	b.got = append(b.got, msg)
	if resp, ok := b.replies[msg.Channel()]; ok {
		return reply.Send(ctx, resp)
	}
	return nil
}

func (b *fakeBridge) Boot(ctx context.Context) domain.Boot {
	return domain.Boot{StorageAvailable: true, PresetKeys: []string{"k"}}
}

func (b *fakeBridge) Bound(ch domain.Channel) bool { return b.bound[ch] }

func specFor(t *testing.T, ch domain.Channel) toolSpec {
	t.Helper()
	for _, s := range toolSpecs() {
		if s.channel == ch {
			return s
		}
	}
	t.Fatalf("no tool for %s", ch)
	return toolSpec{}
}

func callTool(t *testing.T, s *Server, ch domain.Channel, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = string(ch)
	req.Params.Arguments = args
	res, err := s.toolHandler(specFor(t, ch))(context.Background(), req)
	require.NoError(t, err)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestToolSpecs_CoverEveryOutboundChannel(t *testing.T) {
	var channels []domain.Channel
	for _, s := range toolSpecs() {
		channels = append(channels, s.channel)
	}
	assert.ElementsMatch(t, domain.OutboundChannels(), channels)
}

func TestServer_ListsOnlyBoundTools(t *testing.T) {
	bridge := newFakeBridge()
	bridge.bound[domain.ChannelDeletePreset] = false
	s := NewServer(bridge)

	resp := s.MCPServer().HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	var names []string
	for _, tool := range decoded.Result.Tools {
		names = append(names, tool.Name)
	}
	assert.Contains(t, names, "savePreset")
	assert.Contains(t, names, "openDialog")
	assert.NotContains(t, names, "deletePreset")
}

func TestServer_FireAndForgetTool(t *testing.T) {
	bridge := newFakeBridge()
	s := NewServer(bridge)

	res := callTool(t, s, domain.ChannelDownloadSvg, map[string]any{"domId": "chart", "fileName": "badge"})
	assert.False(t, res.IsError)
	assert.Equal(t, "ok", resultText(t, res))
	assert.Equal(t, []domain.Message{domain.DownloadSvg{DomID: "chart", FileName: "badge"}}, bridge.got)
}

func TestServer_SavePresetMarshalsPayload(t *testing.T) {
	bridge := newFakeBridge()
	bridge.replies[domain.ChannelSavePreset] = domain.Response{
		Channel: domain.ChannelSavePresetResponse,
		Result:  domain.Ok("k"),
	}
	s := NewServer(bridge)

	res := callTool(t, s, domain.ChannelSavePreset, map[string]any{
		"key":     "k",
		"payload": map[string]any{"size": 3},
	})
	assert.False(t, res.IsError)
	assert.JSONEq(t, `{"channel":"savePresetResponse","payload":{"data":"k"}}`, resultText(t, res))

	require.Len(t, bridge.got, 1)
	save := bridge.got[0].(domain.SavePreset)
	assert.Equal(t, "k", save.Key)
	assert.JSONEq(t, `{"size":3}`, string(save.Payload))
}

func TestServer_FailureResultIsToolError(t *testing.T) {
	bridge := newFakeBridge()
	bridge.replies[domain.ChannelLoadPreset] = domain.Response{
		Channel: domain.ChannelLoadPresetResponse,
		Result:  domain.Fail[domain.Preset](domain.MsgKeyNotFound),
	}
	s := NewServer(bridge)

	res := callTool(t, s, domain.ChannelLoadPreset, map[string]any{"key": "missing"})
	assert.True(t, res.IsError)
	assert.JSONEq(t, `{"channel":"loadPresetResponse","payload":{"error":"Key was not found"}}`, resultText(t, res))
}

func TestServer_InvalidArguments(t *testing.T) {
	bridge := newFakeBridge()
	s := NewServer(bridge)

	res := callTool(t, s, domain.ChannelLoadPreset, map[string]any{"key": []int{1}})
	assert.True(t, res.IsError)
	assert.Empty(t, bridge.got)
}
