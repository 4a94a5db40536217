package signalhandler

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SetupHandler returns a context cancelled on the first SIGINT/SIGTERM so the
// session can release its tiles. A second signal exits immediately.
func SetupHandler(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	stopped := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(stopped)
			cancel()
		})
	}

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-stopped:
			return
		}

		select {
		case sig := <-sigChan:
			fmt.Fprintf(os.Stderr, "\nReceived %v again, exiting\n", sig)
			os.Exit(1)
		case <-stopped:
		}
	}()

	return ctx, stop
}
