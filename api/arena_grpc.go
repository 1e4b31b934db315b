package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Arena_ServiceName is the fully qualified name of the admin service.
const Arena_ServiceName = "vinom.arena.v1.Arena"

const (
	Arena_Scoreboard_FullMethodName   = "/vinom.arena.v1.Arena/Scoreboard"
	Arena_Snapshot_FullMethodName     = "/vinom.arena.v1.Arena/Snapshot"
	Arena_Kick_FullMethodName         = "/vinom.arena.v1.Arena/Kick"
	Arena_RestartRound_FullMethodName = "/vinom.arena.v1.Arena/RestartRound"
)

// ArenaServer is the server API for the arena admin service.
type ArenaServer interface {
	Scoreboard(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Snapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Kick(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	RestartRound(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)
}

// RegisterArenaServer registers srv with s.
func RegisterArenaServer(s grpc.ServiceRegistrar, srv ArenaServer) {
	s.RegisterService(&Arena_ServiceDesc, srv)
}

// ArenaClient is the client API for the arena admin service.
type ArenaClient interface {
	Scoreboard(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	Snapshot(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	Kick(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
	RestartRound(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error)
}

type arenaClient struct {
	cc grpc.ClientConnInterface
}

func NewArenaClient(cc grpc.ClientConnInterface) ArenaClient {
	return &arenaClient{cc}
}

func (c *arenaClient) Scoreboard(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Arena_Scoreboard_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *arenaClient) Snapshot(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Arena_Snapshot_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *arenaClient) Kick(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, Arena_Kick_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *arenaClient) RestartRound(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, Arena_RestartRound_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func _Arena_Scoreboard_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ArenaServer).Scoreboard(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Arena_Scoreboard_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ArenaServer).Scoreboard(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _Arena_Snapshot_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ArenaServer).Snapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Arena_Snapshot_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ArenaServer).Snapshot(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _Arena_Kick_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ArenaServer).Kick(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Arena_Kick_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ArenaServer).Kick(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Arena_RestartRound_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ArenaServer).RestartRound(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Arena_RestartRound_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ArenaServer).RestartRound(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// Arena_ServiceDesc is the grpc.ServiceDesc for the arena admin service.
var Arena_ServiceDesc = grpc.ServiceDesc{
	ServiceName: Arena_ServiceName,
	HandlerType: (*ArenaServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Scoreboard", Handler: _Arena_Scoreboard_Handler},
		{MethodName: "Snapshot", Handler: _Arena_Snapshot_Handler},
		{MethodName: "Kick", Handler: _Arena_Kick_Handler},
		{MethodName: "RestartRound", Handler: _Arena_RestartRound_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vinom/arena/v1/arena.proto",
}
