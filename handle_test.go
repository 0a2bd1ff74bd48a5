package vkcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleIsNull(t *testing.T) {
	assert.True(t, NullHandle.IsNull())
	assert.True(t, Handle{}.IsNull())
	assert.False(t, Handle{Index: 1, Generation: 1}.IsNull())
}

func TestHandleString(t *testing.T) {
	assert.Equal(t, "Handle(null)", NullHandle.String())
	assert.Equal(t, "Handle(3/2)", Handle{Index: 3, Generation: 2}.String())
}

func TestSubmissionHandleIsNull(t *testing.T) {
	assert.True(t, NullSubmission.IsNull())
	assert.True(t, SubmissionHandle{BufferIndex: 7, SubmitID: 0}.IsNull(),
		"SubmitID 0 is always retired regardless of which buffer slot produced it")
	assert.False(t, SubmissionHandle{BufferIndex: 0, SubmitID: 1}.IsNull())
}
