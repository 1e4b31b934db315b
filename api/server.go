package api

import (
	"context"
	"errors"

	"github.com/beka-birhanu/vinom-arena-server/codec"
	"github.com/beka-birhanu/vinom-arena-server/service/i"
	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type Server struct {
	arenaManager i.ArenaManager
}

func RegisterNewArenaServer(gsr grpc.ServiceRegistrar, am i.ArenaManager) error {
	if am == nil {
		return errors.New("arena manager is required")
	}
	server := &Server{
		arenaManager: am,
	}

	RegisterArenaServer(gsr, server)
	return nil
}

func (s *Server) Scoreboard(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	out, err := codec.ToStruct(s.arenaManager.Scoreboard())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding scoreboard: %s", err)
	}
	return out, nil
}

func (s *Server) Snapshot(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	out, err := codec.ToStruct(s.arenaManager.Snapshot())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding snapshot: %s", err)
	}
	return out, nil
}

func (s *Server) Kick(ctx context.Context, r *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	tag := r.GetValue()
	if tag == "" {
		return nil, status.Error(codes.InvalidArgument, "tag is required")
	}
	return wrapperspb.Bool(s.arenaManager.Kick(tag)), nil
}

func (s *Server) RestartRound(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	generation, ok := s.arenaManager.RestartRound()
	if !ok {
		return nil, status.Error(codes.Aborted, "round was restarted concurrently")
	}
	return wrapperspb.Int64(generation), nil
}
