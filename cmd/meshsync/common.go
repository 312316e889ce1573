package main

import (
	"context"
	"os/signal"

	"github.com/mutagen-io/meshsync/cmd"
	"github.com/mutagen-io/meshsync/pkg/client"
	"github.com/mutagen-io/meshsync/pkg/logging"
)

// signalContext returns a context that is cancelled when a termination signal
// is received.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), cmd.TerminationSignals...)
}

// dial connects a client to the configured server.
func dial(ctx context.Context) (*client.Client, error) {
	settings := client.NewSettings(&loadedConfiguration.Client)
	dialCtx, cancel := context.WithTimeout(ctx, settings.Timeout)
	defer cancel()
	return client.Dial(dialCtx, settings, logging.RootLogger.Sublogger("client"))
}
