package client

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"google.golang.org/grpc"

	"github.com/mutagen-io/meshsync/pkg/configuration"
	"github.com/mutagen-io/meshsync/pkg/grpcutil"
	"github.com/mutagen-io/meshsync/pkg/identifier"
	"github.com/mutagen-io/meshsync/pkg/logging"
	"github.com/mutagen-io/meshsync/pkg/message"
	"github.com/mutagen-io/meshsync/pkg/scene"
	meshsyncsvc "github.com/mutagen-io/meshsync/pkg/service/meshsync"
)

// ErrUnavailable indicates that the server couldn't be reached or is shutting
// down.
var ErrUnavailable = errors.New("server unavailable (is the server running?)")

// unwrapRPCError converts an error returned by the MeshSync service client,
// mapping unreachable servers to ErrUnavailable and peeling away the RPC error
// layer otherwise.
func (c *Client) unwrapRPCError(err error, description string) error {
	if grpcutil.IsUnavailable(err) {
		c.logger.Debugf("Server unavailable: %v", err)
		return errors.Wrap(ErrUnavailable, description)
	}
	return errors.Wrap(grpcutil.PeelAwayRPCErrorLayer(err), description)
}

// Settings are the client's connection parameters.
type Settings struct {
	// ServerAddress is the address of the server.
	ServerAddress string
	// Timeout is the per-call timeout. It doesn't apply to polling. Zero
	// selects the default.
	Timeout time.Duration
}

// NewSettings extracts client settings from a configuration.
func NewSettings(c *configuration.ClientConfiguration) Settings {
	return Settings{
		ServerAddress: c.ServerAddress,
		Timeout:       time.Duration(c.Timeout),
	}
}

// Client is a MeshSync client (msClient). Each client represents a single
// session. It is safe for concurrent usage, though fences are tracked per
// session, so concurrent batches should use separate clients.
type Client struct {
	// settings are the client settings with defaults applied.
	settings Settings
	// connection is the underlying connection, if owned by the client.
	connection *grpc.ClientConn
	// service is the MeshSync service client.
	service meshsyncsvc.MeshSyncClient
	// session is the session identifier.
	session string
	// logger is the client logger.
	logger *logging.Logger
}

// Dial connects to the server specified in settings. The dial blocks until the
// connection is established or ctx is done.
func Dial(ctx context.Context, settings Settings, logger *logging.Logger) (*Client, error) {
	connection, err := grpc.DialContext(
		ctx, settings.ServerAddress,
		grpc.WithInsecure(),
		grpc.WithBlock(),
		grpc.WithDefaultCallOptions(grpc.MaxCallSendMsgSize(grpcutil.MaximumMessageSize)),
		grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(grpcutil.MaximumMessageSize)),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.New("connection timed out (is the server running?)")
		}
		return nil, errors.Wrap(err, "unable to connect to server")
	}
	client, err := NewClient(connection, settings, logger)
	if err != nil {
		connection.Close()
		return nil, err
	}
	client.connection = connection
	return client, nil
}

// NewClient creates a client that uses an existing connection. The connection
// isn't closed by Close.
func NewClient(connection grpc.ClientConnInterface, settings Settings, logger *logging.Logger) (*Client, error) {
	// Apply defaults.
	if settings.Timeout <= 0 {
		settings.Timeout = configuration.DefaultClientTimeout
	}

	// Generate a session identifier.
	session, err := identifier.New(identifier.PrefixSession)
	if err != nil {
		return nil, errors.Wrap(err, "unable to generate session identifier")
	}
	logger.Debugf("Created session %s", session)

	// Create the client.
	return &Client{
		settings: settings,
		service:  meshsyncsvc.NewMeshSyncClient(connection),
		session:  session,
		logger:   logger,
	}, nil
}

// Session returns the client's session identifier.
func (c *Client) Session() string {
	return c.session
}

// header creates a new message header for the client's session.
func (c *Client) header() message.Header {
	return message.NewHeader(c.session)
}

// call performs a unary call with the per-call timeout, converting RPC errors
// on failure.
func (c *Client) call(ctx context.Context, description string, invoke func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.settings.Timeout)
	defer cancel()
	if err := invoke(ctx); err != nil {
		return c.unwrapRPCError(err, description)
	}
	return nil
}

// IsServerAvailable checks whether or not the server is reachable and speaks
// the same protocol version.
func (c *Client) IsServerAvailable(ctx context.Context) bool {
	_, err := c.Poll(ctx, 0)
	return err == nil
}

// Send transmits scene data. The scene is sent as-is, without conversion or
// filtering.
func (c *Client) Send(ctx context.Context, data *scene.Scene) error {
	request := &message.Set{Header: c.header(), Scene: data}
	return c.call(ctx, "unable to send scene", func(ctx context.Context) error {
		_, err := c.service.Set(ctx, request)
		return err
	})
}

// Delete removes entities (along with their descendants), materials, and the
// constraints on entities at constraintPaths.
func (c *Client) Delete(ctx context.Context, paths []string, materialIDs []int32, constraintPaths []string) error {
	request := &message.Delete{
		Header:          c.header(),
		Paths:           paths,
		MaterialIDs:     materialIDs,
		ConstraintPaths: constraintPaths,
	}
	return c.call(ctx, "unable to delete", func(ctx context.Context) error {
		_, err := c.service.Delete(ctx, request)
		return err
	})
}

// Fence opens or closes an atomic batch for the client's session.
func (c *Client) Fence(ctx context.Context, typ message.FenceType) error {
	request := &message.Fence{Header: c.header(), Type: typ}
	return c.call(ctx, "unable to send fence", func(ctx context.Context) error {
		_, err := c.service.Fence(ctx, request)
		return err
	})
}

// Text transmits a log message.
func (c *Client) Text(ctx context.Context, text string, typ message.TextType) error {
	request := &message.Text{Header: c.header(), Text: text, Type: typ}
	return c.call(ctx, "unable to send text", func(ctx context.Context) error {
		_, err := c.service.Text(ctx, request)
		return err
	})
}

// Get retrieves scene data from the server's host. Flags select the content
// (zero selects everything), settings specify the coordinate conventions of
// the result, and filter selects subtrees by path pattern.
func (c *Client) Get(ctx context.Context, flags message.GetFlags, settings scene.Settings, filter []string) (*scene.Scene, error) {
	request := &message.Get{Header: c.header(), Flags: flags, Settings: settings, Filter: filter}
	var response *message.Response
	err := c.call(ctx, "unable to get scene", func(ctx context.Context) (err error) {
		response, err = c.service.Get(ctx, request)
		return
	})
	if err != nil {
		return nil, err
	} else if response.Scene == nil {
		return scene.New(settings), nil
	}
	return response.Scene, nil
}

// Query requests information from the server's host.
func (c *Client) Query(ctx context.Context, typ message.QueryType) ([]string, error) {
	request := &message.Query{Header: c.header(), Type: typ}
	var response *message.Response
	err := c.call(ctx, "unable to query", func(ctx context.Context) (err error) {
		response, err = c.service.Query(ctx, request)
		return
	})
	if err != nil {
		return nil, err
	}
	return response.Text, nil
}

// Screenshot requests an image of the host's current view.
func (c *Client) Screenshot(ctx context.Context) ([]byte, error) {
	request := &message.Screenshot{Header: c.header()}
	var response *message.Response
	err := c.call(ctx, "unable to request screenshot", func(ctx context.Context) (err error) {
		response, err = c.service.Screenshot(ctx, request)
		return
	})
	if err != nil {
		return nil, err
	}
	return response.Image, nil
}

// Poll waits for the server's state index to differ from index and returns
// its status. An index of 0 returns immediately. Polling isn't subject to the
// per-call timeout.
func (c *Client) Poll(ctx context.Context, index uint64) (*message.Status, error) {
	status, err := c.service.Poll(ctx, &message.Poll{Header: c.header(), Index: index})
	if err != nil {
		return nil, c.unwrapRPCError(err, "unable to poll server")
	}
	return status, nil
}

// Close closes the client's connection if the client owns it.
func (c *Client) Close() error {
	if c.connection == nil {
		return nil
	}
	return errors.Wrap(c.connection.Close(), "unable to close connection")
}
