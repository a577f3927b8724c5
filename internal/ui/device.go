package ui

import "sync"

// Width breakpoints in pixels.
const (
	TabletMinWidth  = 768
	DesktopMinWidth = 1024
)

type DeviceKind string

const (
	DeviceMobile  DeviceKind = "mobile"
	DeviceTablet  DeviceKind = "tablet"
	DeviceDesktop DeviceKind = "desktop"
)

// DeviceInfo classifies a viewport. Exactly one of the Is* flags is set.
type DeviceInfo struct {
	IsMobile     bool `json:"is_mobile"`
	IsTablet     bool `json:"is_tablet"`
	IsDesktop    bool `json:"is_desktop"`
	ScreenWidth  int  `json:"screen_width"`
	ScreenHeight int  `json:"screen_height"`
}

func (d DeviceInfo) Kind() DeviceKind {
	switch {
	case d.IsMobile:
		return DeviceMobile
	case d.IsTablet:
		return DeviceTablet
	default:
		return DeviceDesktop
	}
}

func DeviceFromSize(width, height int) DeviceInfo {
	return DeviceInfo{
		IsMobile:     width < TabletMinWidth,
		IsTablet:     width >= TabletMinWidth && width < DesktopMinWidth,
		IsDesktop:    width >= DesktopMinWidth,
		ScreenWidth:  width,
		ScreenHeight: height,
	}
}

// Device tracks the current viewport. It starts as a 1024x768 desktop until
// the first Resize.
type Device struct {
	mu   sync.RWMutex
	info DeviceInfo
}

func NewDevice() *Device {
	return &Device{info: DeviceFromSize(DesktopMinWidth, 768)}
}

func (d *Device) Current() DeviceInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.info
}

// Resize reclassifies the viewport and reports whether the kind changed.
func (d *Device) Resize(width, height int) bool {
	next := DeviceFromSize(width, height)
	d.mu.Lock()
	defer d.mu.Unlock()
	changed := d.info.Kind() != next.Kind()
	d.info = next
	return changed
}
