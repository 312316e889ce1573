package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"google.golang.org/grpc"

	"github.com/mutagen-io/meshsync/cmd"
	"github.com/mutagen-io/meshsync/pkg/logging"
	"github.com/mutagen-io/meshsync/pkg/server"
	meshsyncsvc "github.com/mutagen-io/meshsync/pkg/service/meshsync"
)

// serverMain is the entry point for the server command.
func serverMain(_ *cobra.Command, _ []string) error {
	// Compute the effective server configuration.
	c := loadedConfiguration.Server
	if serverConfiguration.listen != "" {
		c.ListenAddress = serverConfiguration.listen
	}
	if serverConfiguration.monitor != "" {
		c.MonitorAddress = serverConfiguration.monitor
	}
	if serverConfiguration.save != "" {
		c.SavePath = serverConfiguration.save
	}
	logger := logging.RootLogger.Sublogger("server")

	// Attempt to acquire the server lock and defer its release.
	lock, err := server.AcquireLock()
	if err != nil {
		return errors.Wrap(err, "unable to acquire server lock")
	}
	defer lock.Release()

	// Create the server and defer its shutdown.
	srv, err := server.New(server.NewSettings(&c), logger)
	if err != nil {
		return errors.Wrap(err, "unable to create server")
	}
	defer srv.Shutdown()

	// Start the monitor if requested.
	var monitor *server.Monitor
	monitorErrors := make(chan error, 1)
	if c.MonitorAddress != "" {
		monitor = server.NewMonitor(logger.Sublogger("monitor"))
		defer monitor.Close()
		monitorListener, err := server.Listen(c.MonitorAddress, c.MaximumConnections)
		if err != nil {
			return errors.Wrap(err, "unable to create monitor listener")
		}
		monitorServer := &http.Server{Handler: monitor}
		defer monitorServer.Close()
		go func() {
			monitorErrors <- monitorServer.Serve(monitorListener)
		}()
		logger.Info("Monitor listening on", monitorListener.Addr())
	}

	// Create the replica host.
	replicaSettings := server.ReplicaSettings{
		SavePath:            c.SavePath,
		EvaluateConstraints: serverConfiguration.evaluateConstraints,
	}
	replica, err := server.NewReplica(srv, replicaSettings, monitor, logger.Sublogger("replica"))
	if err != nil {
		return errors.Wrap(err, "unable to create replica")
	}

	// Create the gRPC server and defer its termination.
	maximumMessageSize := int(c.MaximumMessageSize)
	grpcServer := grpc.NewServer(
		grpc.MaxSendMsgSize(maximumMessageSize),
		grpc.MaxRecvMsgSize(maximumMessageSize),
	)
	defer grpcServer.Stop()
	meshsyncsvc.RegisterMeshSyncServer(grpcServer, meshsyncsvc.NewServer(srv))

	// Create the listener and serve.
	listener, err := server.Listen(c.ListenAddress, c.MaximumConnections)
	if err != nil {
		return errors.Wrap(err, "unable to create server listener")
	}
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- grpcServer.Serve(listener)
	}()
	logger.Info("Server listening on", listener.Addr())

	// Run the replica.
	replicaCtx, replicaCancel := context.WithCancel(context.Background())
	defer replicaCancel()
	replicaErrors := make(chan error, 1)
	go func() {
		replicaErrors <- replica.Run(replicaCtx)
	}()

	// Set up signal handling.
	signalTermination := make(chan os.Signal, 1)
	signal.Notify(signalTermination, cmd.TerminationSignals...)

	// Wait for termination from a signal or a failure.
	var result error
	select {
	case s := <-signalTermination:
		logger.Info("Terminating due to signal:", s)
	case err := <-serverErrors:
		result = errors.Wrap(err, "premature server termination")
	case err := <-monitorErrors:
		result = errors.Wrap(err, "premature monitor termination")
	case err := <-replicaErrors:
		return errors.Wrap(err, "premature replica termination")
	}

	// Stop accepting messages and wait for the replica's final save.
	grpcServer.Stop()
	srv.Shutdown()
	if err := <-replicaErrors; err != nil && result == nil {
		result = errors.Wrap(err, "unable to save replica")
	}
	return result
}

// serverCommand is the server command.
var serverCommand = &cobra.Command{
	Use:          "server",
	Short:        "Run a MeshSync server with a headless replica host",
	Args:         cmd.DisallowArguments,
	RunE:         serverMain,
	SilenceUsage: true,
}

// serverConfiguration stores configuration for the server command.
var serverConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
	// listen overrides the listen address.
	listen string
	// monitor overrides the monitor address.
	monitor string
	// save overrides the replica save path.
	save string
	// evaluateConstraints applies constraints to served scenes.
	evaluateConstraints bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := serverCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&serverConfiguration.help, "help", "h", false, "Show help information")

	// Wire up server flags.
	flags.StringVarP(&serverConfiguration.listen, "listen", "l", "", "Specify the listen address")
	flags.StringVarP(&serverConfiguration.monitor, "monitor", "m", "", "Serve the WebSocket monitor on the specified address")
	flags.StringVarP(&serverConfiguration.save, "save", "s", "", "Persist the replica scene to the specified path")
	flags.BoolVar(&serverConfiguration.evaluateConstraints, "evaluate-constraints", false, "Apply constraints to transforms in scenes served to clients")
}
