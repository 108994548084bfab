package model

// ConnectionClass mirrors the effective connection type reported by clients.
type ConnectionClass string

const (
	ConnectionSlow2G  ConnectionClass = "slow-2g"
	Connection2G      ConnectionClass = "2g"
	Connection3G      ConnectionClass = "3g"
	Connection4G      ConnectionClass = "4g"
	ConnectionUnknown ConnectionClass = "unknown"
)

// ParseConnectionClass maps a reported effective type to a ConnectionClass,
// defaulting to unknown for anything unrecognized.
func ParseConnectionClass(s string) ConnectionClass {
	switch ConnectionClass(s) {
	case ConnectionSlow2G, Connection2G, Connection3G, Connection4G:
		return ConnectionClass(s)
	default:
		return ConnectionUnknown
	}
}

// Fast reports whether the connection supports aggressive speculative loading.
func (c ConnectionClass) Fast() bool {
	return c == Connection4G
}

// Moderate reports whether the connection supports conservative speculative
// loading.
func (c ConnectionClass) Moderate() bool {
	return c == Connection3G
}

// DeviceClass buckets clients by viewport width.
type DeviceClass string

const (
	DeviceMobile  DeviceClass = "mobile"
	DeviceTablet  DeviceClass = "tablet"
	DeviceDesktop DeviceClass = "desktop"
)

// Width boundaries for the device class heuristic.
const (
	mobileMaxWidth = 768
	tabletMaxWidth = 1024
)

// DeviceClassFor derives the device class from viewport width.
func DeviceClassFor(width int) DeviceClass {
	switch {
	case width < mobileMaxWidth:
		return DeviceMobile
	case width < tabletMaxWidth:
		return DeviceTablet
	default:
		return DeviceDesktop
	}
}

// Viewport describes the client viewport at observation time.
type Viewport struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	PixelRatio float64 `json:"pixel_ratio"`
}

// PageContext is the ambient client context attached to metrics during
// enrichment. Read-only once constructed.
type PageContext struct {
	URL          string          `json:"url"`
	Connection   ConnectionClass `json:"connection_class"`
	Viewport     Viewport        `json:"viewport"`
	Device       DeviceClass     `json:"device_class"`
	SessionID    string          `json:"session_id"`
	UserID       string          `json:"user_id,omitempty"`
	BuildVersion string          `json:"build_version,omitempty"`
}

// EnrichedMetric is a Metric plus its page context. Each consumer receives
// its own reference and must not mutate it.
type EnrichedMetric struct {
	Metric
	Context PageContext
}
