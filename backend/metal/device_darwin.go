// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build darwin

// Package metal implements the graphics device contract on top of
// Apple's Metal via cgo, grounded on the corpus's own Metal backend
// (gioui's internal/metal): Objective-C objects cross the cgo
// boundary as CFTypeRef, retained with CFBridgingRetain and released
// with CFRelease, with every Objective-C message send wrapped in a
// small static C helper compiled from an Objective-C preamble rather
// than driven through a separate cgo-objc binding library.
package metal

import "github.com/novaengine/gbal/gerr"

/*
#cgo CFLAGS: -Werror -xobjective-c -fmodules -fobjc-arc
#cgo LDFLAGS: -framework Metal -framework QuartzCore -framework CoreGraphics

@import Metal;

#include <CoreFoundation/CoreFoundation.h>
#include <Metal/Metal.h>

static CFTypeRef createSystemDevice(void) {
	@autoreleasepool {
		id<MTLDevice> dev = MTLCreateSystemDefaultDevice();
		if (dev == nil) {
			return NULL;
		}
		return CFBridgingRetain(dev);
	}
}

static CFTypeRef deviceNewCommandQueue(CFTypeRef devRef) {
	@autoreleasepool {
		id<MTLDevice> dev = (__bridge id<MTLDevice>)devRef;
		return CFBridgingRetain([dev newCommandQueue]);
	}
}

static int deviceSupportsFamily(CFTypeRef devRef, NSInteger family) {
	@autoreleasepool {
		id<MTLDevice> dev = (__bridge id<MTLDevice>)devRef;
		if (@available(macOS 10.15, *)) {
			return [dev supportsFamily:(MTLGPUFamily)family] ? 1 : 0;
		}
		return 0;
	}
}
*/
import "C"

// createDevice opens the system default Metal device and its single
// command queue, the same one-device-one-queue shape the corpus's
// Metal backend assumes (one queue is enough: Metal serializes
// command buffer completion order per queue regardless of submission
// concurrency).
func createDevice() (dev, queue C.CFTypeRef, err error) {
	dev = C.createSystemDevice()
	if dev == 0 {
		return 0, 0, driverErr(gerr.DeviceCreationFailed)
	}
	queue = C.deviceNewCommandQueue(dev)
	if queue == 0 {
		C.CFRelease(dev)
		return 0, 0, driverErr(gerr.DeviceCreationFailed)
	}
	return dev, queue, nil
}

// supportsFamily reports whether dev implements at least the given
// MTLGPUFamily ordinal, used by newGPU to set
// Capabilities.SupportsTessellation.
func supportsFamily(dev C.CFTypeRef, family int) bool {
	return C.deviceSupportsFamily(dev, C.NSInteger(family)) != 0
}

func cfRelease(ref C.CFTypeRef) {
	if ref != 0 {
		C.CFRelease(ref)
	}
}
