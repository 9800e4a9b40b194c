// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides device access from the host application.
//
// The compositor RECEIVES the device from the host, it does NOT create
// one. One handle backs the single shared Context that every virtual
// canvas is drawn through.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider so any host in
// the gpucontext ecosystem can supply it.
type DeviceHandle = gpucontext.DeviceProvider

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used for CPU-only rendering where no GPU is available.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

var _ DeviceHandle = NullDeviceHandle{}

// IsNull reports whether h provides no device.
func IsNull(h DeviceHandle) bool {
	return h == nil || h.Device() == nil
}

// preferredFormat returns the host surface format, or RGBA8 when the host
// does not specify one.
func preferredFormat(h DeviceHandle) gputypes.TextureFormat {
	if h == nil {
		return gputypes.TextureFormatRGBA8Unorm
	}
	if f := h.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		return f
	}
	return gputypes.TextureFormatRGBA8Unorm
}
