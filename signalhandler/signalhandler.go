package signalhandler

import (
	"os"
	"os/signal"
	"syscall"
)

// SetupHandler runs cleanup and exits when SIGINT or SIGTERM arrives. The
// catalog writes each image in its own transaction, so stopping between
// images leaves it consistent.
func SetupHandler(cleanup func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		if cleanup != nil {
			cleanup()
		}
		if sig == syscall.SIGINT {
			os.Exit(130)
		}
		os.Exit(143)
	}()
}
