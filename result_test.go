package vkcore

import (
	"errors"
	"testing"

	"github.com/NOT-REAL-GAMES/vkcore/internal/vk"
	"github.com/stretchr/testify/assert"
)

func TestResultStringsCoverEveryTier(t *testing.T) {
	cases := map[Result]string{
		Ok:                 "Ok",
		ArgumentNull:       "ArgumentNull",
		ArgumentError:      "ArgumentError",
		ArgumentOutOfRange: "ArgumentOutOfRange",
		NotSupported:       "NotSupported",
		InvalidState:       "InvalidState",
		RuntimeError:       "RuntimeError",
		CompileError:       "CompileError",
	}
	for r, want := range cases {
		assert.Equal(t, want, r.String())
		assert.Equal(t, want, r.Error(), "Result must satisfy error via its own String")
	}
}

func TestResultUnknownValueFallsBackToNumericForm(t *testing.T) {
	assert.Equal(t, "Result(99)", Result(99).String())
}

func TestWrapDeviceSuccessIsNil(t *testing.T) {
	assert.NoError(t, wrapDevice(vk.SUCCESS))
}

func TestWrapDeviceFailureWrapsAndUnwraps(t *testing.T) {
	err := wrapDevice(vk.DEVICE_LOST)
	assert.Error(t, err)

	var de *DeviceError
	assert.True(t, errors.As(err, &de))
	assert.Equal(t, vk.DEVICE_LOST, de.Raw)
	assert.ErrorIs(t, err, vk.DEVICE_LOST)
}
