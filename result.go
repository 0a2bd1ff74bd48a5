package vkcore

import (
	"fmt"

	"github.com/NOT-REAL-GAMES/vkcore/internal/vk"
)

// Result is the closed set of outcomes every creation path can return.
// It covers all three error tiers from the design: Ok/device-surfaced
// codes map 1:1 to a wrapped vk.Result, while the programmer-error and
// validation tiers get their own small set of sentinels so callers
// never need to match against raw VkResult values.
type Result int32

const (
	Ok Result = iota
	ArgumentNull
	ArgumentError
	ArgumentOutOfRange
	NotSupported
	InvalidState
	RuntimeError
	CompileError
)

func (r Result) String() string {
	switch r {
	case Ok:
		return "Ok"
	case ArgumentNull:
		return "ArgumentNull"
	case ArgumentError:
		return "ArgumentError"
	case ArgumentOutOfRange:
		return "ArgumentOutOfRange"
	case NotSupported:
		return "NotSupported"
	case InvalidState:
		return "InvalidState"
	case RuntimeError:
		return "RuntimeError"
	case CompileError:
		return "CompileError"
	default:
		return fmt.Sprintf("Result(%d)", int32(r))
	}
}

func (r Result) Error() string {
	return r.String()
}

// DeviceError wraps a raw Vulkan result that does not have a cleaner
// Result-tier equivalent, preserving the underlying VkResult for
// logging (spec section 7, tier 2).
type DeviceError struct {
	Raw vk.Result
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device error: %s", e.Raw.Error())
}

func (e *DeviceError) Unwrap() error {
	return e.Raw
}

// wrapDevice turns a raw Vulkan result into an error, or nil on
// success.
func wrapDevice(r vk.Result) error {
	if r == vk.SUCCESS {
		return nil
	}
	return &DeviceError{Raw: r}
}
