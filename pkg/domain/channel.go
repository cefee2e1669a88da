package domain

// Channel is the name of a one-directional conduit between the UI core and the host.
type Channel string

// Outbound channels (UI -> host).
const (
	ChannelOpenDialog   Channel = "openDialog"
	ChannelCloseDialog  Channel = "closeDialog"
	ChannelDownloadSvg  Channel = "downloadSvg"
	ChannelLog          Channel = "log"
	ChannelSavePreset   Channel = "savePreset"
	ChannelListPresets  Channel = "listPresets"
	ChannelLoadPreset   Channel = "loadPreset"
	ChannelDeletePreset Channel = "deletePreset"
)

// Inbound channels (host -> UI).
const (
	ChannelSavePresetResponse   Channel = "savePresetResponse"
	ChannelListPresetsResponse  Channel = "listPresetsResponse"
	ChannelLoadPresetResponse   Channel = "loadPresetResponse"
	ChannelDeletePresetResponse Channel = "deletePresetResponse"

	// ChannelBoot carries the startup snapshot. It is emitted by transports
	// once per connection and is never bound in the router.
	ChannelBoot Channel = "boot"
)

// responseSuffix pairs an operation channel with its response channel.
const responseSuffix = "Response"

var outbound = []Channel{
	ChannelOpenDialog,
	ChannelCloseDialog,
	ChannelDownloadSvg,
	ChannelLog,
	ChannelSavePreset,
	ChannelListPresets,
	ChannelLoadPreset,
	ChannelDeletePreset,
}

var requestResponse = map[Channel]Channel{
	ChannelSavePreset:   ChannelSavePresetResponse,
	ChannelListPresets:  ChannelListPresetsResponse,
	ChannelLoadPreset:   ChannelLoadPresetResponse,
	ChannelDeletePreset: ChannelDeletePresetResponse,
}

// OutboundChannels returns every outbound channel in protocol order.
func OutboundChannels() []Channel {
	out := make([]Channel, len(outbound))
	copy(out, outbound)
	return out
}

// IsOutbound reports whether c names a known outbound channel.
func IsOutbound(c Channel) bool {
	for _, o := range outbound {
		if o == c {
			return true
		}
	}
	return false
}

// ResponseChannel returns the inbound counterpart of a request/response channel.
// The second return value is false for fire-and-forget channels.
func ResponseChannel(c Channel) (Channel, bool) {
	r, ok := requestResponse[c]
	return r, ok
}

// HasResponse reports whether c expects exactly one response per request.
func HasResponse(c Channel) bool {
	_, ok := requestResponse[c]
	return ok
}

func (c Channel) String() string {
	return string(c)
}

// IsResponse reports whether c follows the response naming convention.
func (c Channel) IsResponse() bool {
	s := string(c)
	return len(s) > len(responseSuffix) && s[len(s)-len(responseSuffix):] == responseSuffix
}
