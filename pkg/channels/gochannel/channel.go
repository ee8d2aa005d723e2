// Package gochannel provides the in-process pub/sub used by a single API instance and by tests.
package gochannel

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const outputBuffer = 256

// New returns a non-persistent GoChannel that serves as both publisher and
// subscriber. Events published before Subscribe are dropped.
func New(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: outputBuffer}, logger)
}
