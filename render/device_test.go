// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestNullDeviceHandle(t *testing.T) {
	var handle DeviceHandle = NullDeviceHandle{}

	if handle.Device() != nil {
		t.Error("NullDeviceHandle.Device() should return nil")
	}
	if handle.Queue() != nil {
		t.Error("NullDeviceHandle.Queue() should return nil")
	}
	if handle.Adapter() != nil {
		t.Error("NullDeviceHandle.Adapter() should return nil")
	}
	if handle.SurfaceFormat() != gputypes.TextureFormatUndefined {
		t.Error("NullDeviceHandle.SurfaceFormat() should return Undefined")
	}
}

func TestHalFromHandleWithoutHALAccess(t *testing.T) {
	if _, _, ok := halFromHandle(NullDeviceHandle{}); ok {
		t.Error("halFromHandle should reject a handle without HAL accessors")
	}
}

// nilHALHandle exposes the HAL accessor methods but returns nothing,
// like a host running on a backend without raw device access.
type nilHALHandle struct {
	NullDeviceHandle
}

func (nilHALHandle) HalDevice() any { return nil }
func (nilHALHandle) HalQueue() any  { return nil }

func TestHalFromHandleWithNilHALTypes(t *testing.T) {
	if _, _, ok := halFromHandle(nilHALHandle{}); ok {
		t.Error("halFromHandle should reject nil HAL device and queue")
	}
}
