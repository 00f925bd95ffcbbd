package amqp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSoftErrorClassification(t *testing.T) {
	assert.True(t, isSoftError(NotFound))
	assert.True(t, isSoftError(AccessRefused))
	assert.False(t, isSoftError(FrameError))
	assert.False(t, isSoftError(ChannelErrorCode))
}

func TestNewErrorMarksRecoverableForSoftCodes(t *testing.T) {
	e := newError(NotFound, "no queue 'orders'")
	assert.True(t, e.Recover)
	assert.True(t, e.Server)
	assert.Equal(t, NotFound, e.Code)
}

func TestNewErrorMarksUnrecoverableForHardCodes(t *testing.T) {
	e := newError(FrameError, "malformed frame")
	assert.False(t, e.Recover)
}

func TestChannelErrorWrapsReason(t *testing.T) {
	err := &ChannelError{&Error{Code: NotFound, Reason: "no queue 'orders'"}}
	assert.Contains(t, err.Error(), "channel closed")
	assert.Contains(t, err.Error(), "no queue 'orders'")
}

func TestBrokerUnreachableErrorMessage(t *testing.T) {
	err := &BrokerUnreachableError{}
	assert.Contains(t, err.Error(), "no endpoints attempted")
}
