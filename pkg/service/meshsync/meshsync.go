// Package meshsync provides the gRPC transport for MeshSync. Messages are
// carried with a dedicated codec (registered under the "meshsync" content
// subtype) rather than Protocol Buffers generated types, so the service
// description is declared by hand.
package meshsync

import (
	"context"

	"google.golang.org/grpc"

	"github.com/mutagen-io/meshsync/pkg/message"
)

// ServiceName is the fully qualified name of the MeshSync service.
const ServiceName = "meshsync.MeshSync"

// MeshSyncServer is the server API for the MeshSync service.
type MeshSyncServer interface {
	// Set transmits scene data.
	Set(context.Context, *message.Set) (*message.Response, error)
	// Delete removes entities and materials.
	Delete(context.Context, *message.Delete) (*message.Response, error)
	// Fence opens or closes an atomic batch.
	Fence(context.Context, *message.Fence) (*message.Response, error)
	// Text transmits a log message.
	Text(context.Context, *message.Text) (*message.Response, error)
	// Get requests scene data from the host.
	Get(context.Context, *message.Get) (*message.Response, error)
	// Query requests information from the host.
	Query(context.Context, *message.Query) (*message.Response, error)
	// Screenshot requests an image from the host.
	Screenshot(context.Context, *message.Screenshot) (*message.Response, error)
	// Poll waits for server state changes.
	Poll(context.Context, *message.Poll) (*message.Status, error)
}

// unaryHandler creates a method handler that decodes a request allocated by
// allocate and dispatches it through invoke.
func unaryHandler(
	method string,
	allocate func() message.Message,
	invoke func(MeshSyncServer, context.Context, message.Message) (message.Message, error),
) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(server interface{}, ctx context.Context, decode func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		request := allocate()
		if err := decode(request); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return invoke(server.(MeshSyncServer), ctx, request)
		}
		info := &grpc.UnaryServerInfo{
			Server:     server,
			FullMethod: "/" + ServiceName + "/" + method,
		}
		handler := func(ctx context.Context, request interface{}) (interface{}, error) {
			return invoke(server.(MeshSyncServer), ctx, request.(message.Message))
		}
		return interceptor(ctx, request, info, handler)
	}
}

// serviceDescription is the service description for the MeshSync service.
var serviceDescription = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MeshSyncServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Set",
			Handler: unaryHandler("Set",
				func() message.Message { return &message.Set{} },
				func(s MeshSyncServer, ctx context.Context, m message.Message) (message.Message, error) {
					return s.Set(ctx, m.(*message.Set))
				},
			),
		},
		{
			MethodName: "Delete",
			Handler: unaryHandler("Delete",
				func() message.Message { return &message.Delete{} },
				func(s MeshSyncServer, ctx context.Context, m message.Message) (message.Message, error) {
					return s.Delete(ctx, m.(*message.Delete))
				},
			),
		},
		{
			MethodName: "Fence",
			Handler: unaryHandler("Fence",
				func() message.Message { return &message.Fence{} },
				func(s MeshSyncServer, ctx context.Context, m message.Message) (message.Message, error) {
					return s.Fence(ctx, m.(*message.Fence))
				},
			),
		},
		{
			MethodName: "Text",
			Handler: unaryHandler("Text",
				func() message.Message { return &message.Text{} },
				func(s MeshSyncServer, ctx context.Context, m message.Message) (message.Message, error) {
					return s.Text(ctx, m.(*message.Text))
				},
			),
		},
		{
			MethodName: "Get",
			Handler: unaryHandler("Get",
				func() message.Message { return &message.Get{} },
				func(s MeshSyncServer, ctx context.Context, m message.Message) (message.Message, error) {
					return s.Get(ctx, m.(*message.Get))
				},
			),
		},
		{
			MethodName: "Query",
			Handler: unaryHandler("Query",
				func() message.Message { return &message.Query{} },
				func(s MeshSyncServer, ctx context.Context, m message.Message) (message.Message, error) {
					return s.Query(ctx, m.(*message.Query))
				},
			),
		},
		{
			MethodName: "Screenshot",
			Handler: unaryHandler("Screenshot",
				func() message.Message { return &message.Screenshot{} },
				func(s MeshSyncServer, ctx context.Context, m message.Message) (message.Message, error) {
					return s.Screenshot(ctx, m.(*message.Screenshot))
				},
			),
		},
		{
			MethodName: "Poll",
			Handler: unaryHandler("Poll",
				func() message.Message { return &message.Poll{} },
				func(s MeshSyncServer, ctx context.Context, m message.Message) (message.Message, error) {
					return s.Poll(ctx, m.(*message.Poll))
				},
			),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "meshsync",
}

// RegisterMeshSyncServer registers a MeshSync server implementation with a
// gRPC server.
func RegisterMeshSyncServer(registrar grpc.ServiceRegistrar, server MeshSyncServer) {
	registrar.RegisterService(&serviceDescription, server)
}

// MeshSyncClient is the client API for the MeshSync service.
type MeshSyncClient interface {
	// Set transmits scene data.
	Set(ctx context.Context, request *message.Set, options ...grpc.CallOption) (*message.Response, error)
	// Delete removes entities and materials.
	Delete(ctx context.Context, request *message.Delete, options ...grpc.CallOption) (*message.Response, error)
	// Fence opens or closes an atomic batch.
	Fence(ctx context.Context, request *message.Fence, options ...grpc.CallOption) (*message.Response, error)
	// Text transmits a log message.
	Text(ctx context.Context, request *message.Text, options ...grpc.CallOption) (*message.Response, error)
	// Get requests scene data from the host.
	Get(ctx context.Context, request *message.Get, options ...grpc.CallOption) (*message.Response, error)
	// Query requests information from the host.
	Query(ctx context.Context, request *message.Query, options ...grpc.CallOption) (*message.Response, error)
	// Screenshot requests an image from the host.
	Screenshot(ctx context.Context, request *message.Screenshot, options ...grpc.CallOption) (*message.Response, error)
	// Poll waits for server state changes.
	Poll(ctx context.Context, request *message.Poll, options ...grpc.CallOption) (*message.Status, error)
}

// meshSyncClient implements MeshSyncClient.
type meshSyncClient struct {
	// connection is the underlying client connection.
	connection grpc.ClientConnInterface
}

// NewMeshSyncClient creates a new MeshSync client.
func NewMeshSyncClient(connection grpc.ClientConnInterface) MeshSyncClient {
	return &meshSyncClient{connection}
}

// invoke performs a unary call using the MeshSync codec.
func (c *meshSyncClient) invoke(ctx context.Context, method string, request, response message.Message, options []grpc.CallOption) error {
	options = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, options...)
	return c.connection.Invoke(ctx, "/"+ServiceName+"/"+method, request, response, options...)
}

// respond performs a unary call that returns a response message.
func (c *meshSyncClient) respond(ctx context.Context, method string, request message.Message, options []grpc.CallOption) (*message.Response, error) {
	response := &message.Response{}
	if err := c.invoke(ctx, method, request, response, options); err != nil {
		return nil, err
	}
	return response, nil
}

// Set implements MeshSyncClient.Set.
func (c *meshSyncClient) Set(ctx context.Context, request *message.Set, options ...grpc.CallOption) (*message.Response, error) {
	return c.respond(ctx, "Set", request, options)
}

// Delete implements MeshSyncClient.Delete.
func (c *meshSyncClient) Delete(ctx context.Context, request *message.Delete, options ...grpc.CallOption) (*message.Response, error) {
	return c.respond(ctx, "Delete", request, options)
}

// Fence implements MeshSyncClient.Fence.
func (c *meshSyncClient) Fence(ctx context.Context, request *message.Fence, options ...grpc.CallOption) (*message.Response, error) {
	return c.respond(ctx, "Fence", request, options)
}

// Text implements MeshSyncClient.Text.
func (c *meshSyncClient) Text(ctx context.Context, request *message.Text, options ...grpc.CallOption) (*message.Response, error) {
	return c.respond(ctx, "Text", request, options)
}

// Get implements MeshSyncClient.Get.
func (c *meshSyncClient) Get(ctx context.Context, request *message.Get, options ...grpc.CallOption) (*message.Response, error) {
	return c.respond(ctx, "Get", request, options)
}

// Query implements MeshSyncClient.Query.
func (c *meshSyncClient) Query(ctx context.Context, request *message.Query, options ...grpc.CallOption) (*message.Response, error) {
	return c.respond(ctx, "Query", request, options)
}

// Screenshot implements MeshSyncClient.Screenshot.
func (c *meshSyncClient) Screenshot(ctx context.Context, request *message.Screenshot, options ...grpc.CallOption) (*message.Response, error) {
	return c.respond(ctx, "Screenshot", request, options)
}

// Poll implements MeshSyncClient.Poll.
func (c *meshSyncClient) Poll(ctx context.Context, request *message.Poll, options ...grpc.CallOption) (*message.Status, error) {
	response := &message.Status{}
	if err := c.invoke(ctx, "Poll", request, response, options); err != nil {
		return nil, err
	}
	return response, nil
}
