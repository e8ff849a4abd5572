package shutdown

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
)

type Server interface {
	Shutdown(ctx context.Context) error
}

// GRPCServer is the subset of *grpc.Server needed to stop it.
type GRPCServer interface {
	GracefulStop()
	Stop()
}

// Wait blocks until SIGINT or SIGTERM is received.
func Wait() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	return <-quit
}

// WaitForShutdown waits for a signal, shuts srv down, then runs the cleanup
// funcs in order.
func WaitForShutdown(srv Server, timeout time.Duration, cleanups ...func()) {
	sig := Wait()
	log.Printf("Shutting down server... Received signal: %v", sig)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	for _, cleanup := range cleanups {
		cleanup()
	}

	log.Println("Server gracefully stopped.")
}

// StopGRPC drains in-flight RPCs and forces a stop once timeout elapses.
func StopGRPC(srv GRPCServer, timeout time.Duration) {
	done := make(chan struct{})

	go func() {
		srv.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		log.Println("gRPC server stopped")
	case <-time.After(timeout):
		log.Println("gRPC graceful stop timed out, forcing stop")
		srv.Stop()
	}
}
