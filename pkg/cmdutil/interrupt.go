package cmdutil

import (
	"os"
	"os/signal"
	"syscall"
)

// InterruptChan returns a channel that is closed on SIGINT, SIGTERM or SIGQUIT.
// Several goroutines can wait on it.
func InterruptChan() <-chan struct{} {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		<-sigChan
		signal.Stop(sigChan)
		close(done)
	}()

	return done
}
