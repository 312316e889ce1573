package meshsync

import (
	"context"

	"github.com/pkg/errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mutagen-io/meshsync/pkg/message"
	"github.com/mutagen-io/meshsync/pkg/server"
)

// Server provides an implementation of the MeshSync service.
type Server struct {
	// server is the underlying MeshSync server.
	server *server.Server
}

// NewServer creates a new MeshSync service server.
func NewServer(server *server.Server) *Server {
	return &Server{
		server: server,
	}
}

// statusError converts server errors to gRPC status errors so that clients
// can distinguish failure classes.
func statusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, server.ErrVersionMismatch):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, server.ErrQueueFull):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, server.ErrRequestTimeout):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, server.ErrShutdown):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return err
	}
}

// receive forwards a message to the server.
func (s *Server) receive(ctx context.Context, m message.Message) (*message.Response, error) {
	response, err := s.server.Receive(ctx, m)
	if err != nil {
		return nil, statusError(err)
	}
	return response, nil
}

// Set implements MeshSyncServer.Set.
func (s *Server) Set(ctx context.Context, request *message.Set) (*message.Response, error) {
	return s.receive(ctx, request)
}

// Delete implements MeshSyncServer.Delete.
func (s *Server) Delete(ctx context.Context, request *message.Delete) (*message.Response, error) {
	return s.receive(ctx, request)
}

// Fence implements MeshSyncServer.Fence.
func (s *Server) Fence(ctx context.Context, request *message.Fence) (*message.Response, error) {
	return s.receive(ctx, request)
}

// Text implements MeshSyncServer.Text.
func (s *Server) Text(ctx context.Context, request *message.Text) (*message.Response, error) {
	return s.receive(ctx, request)
}

// Get implements MeshSyncServer.Get.
func (s *Server) Get(ctx context.Context, request *message.Get) (*message.Response, error) {
	return s.receive(ctx, request)
}

// Query implements MeshSyncServer.Query.
func (s *Server) Query(ctx context.Context, request *message.Query) (*message.Response, error) {
	return s.receive(ctx, request)
}

// Screenshot implements MeshSyncServer.Screenshot.
func (s *Server) Screenshot(ctx context.Context, request *message.Screenshot) (*message.Response, error) {
	return s.receive(ctx, request)
}

// Poll implements MeshSyncServer.Poll.
func (s *Server) Poll(ctx context.Context, request *message.Poll) (*message.Status, error) {
	result, err := s.server.Poll(ctx, request)
	if err != nil {
		return nil, statusError(err)
	}
	return result, nil
}
