package shutdown

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeGRPC struct {
	block   chan struct{}
	stopped atomic.Bool
}

func (f *fakeGRPC) GracefulStop() { <-f.block }

func (f *fakeGRPC) Stop() {
	f.stopped.Store(true)
	close(f.block)
}

func TestStopGRPC_Graceful(t *testing.T) {
	srv := &fakeGRPC{block: make(chan struct{})}
	close(srv.block)

	StopGRPC(srv, time.Second)

	assert.False(t, srv.stopped.Load())
}

func TestStopGRPC_ForcesAfterTimeout(t *testing.T) {
	srv := &fakeGRPC{block: make(chan struct{})}

	StopGRPC(srv, 10*time.Millisecond)

	assert.True(t, srv.stopped.Load())
}
