package grpc_server

import (
	"context"
	"errors"

	"learningcenter/pkg/logger"
	"learningcenter/pkg/profilepb"
	"learningcenter/services/profile-service/internal/domain"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id int64) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type ProfileServer struct {
	profilepb.UnimplementedProfileServiceServer
	repo ProfileRepository
	log  *logger.Logger
}

func NewProfileServer(repo ProfileRepository, log *logger.Logger) *ProfileServer {
	return &ProfileServer{repo: repo, log: log}
}

func (s *ProfileServer) FetchProfileIDByEmail(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.Int64Value, error) {
	profile, err := s.repo.GetByEmail(ctx, req.GetValue())
	if errors.Is(err, domain.ErrProfileNotFound) {
		return wrapperspb.Int64(0), nil
	}
	if err != nil {
		s.log.Error("fetch profile by email failed", "error", err)
		return nil, status.Error(codes.Internal, "database error")
	}
	return wrapperspb.Int64(profile.ID), nil
}

func (s *ProfileServer) CreateProfile(ctx context.Context, req *structpb.Struct) (*wrapperspb.Int64Value, error) {
	in, err := profilepb.FromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	profile, err := domain.NewProfile(domain.CreateProfileParams{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		Street:     in.Street,
		Number:     in.Number,
		City:       in.City,
		PostalCode: in.PostalCode,
		Country:    in.Country,
	})
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	exists, err := s.repo.ExistsByEmail(ctx, profile.Email)
	if err != nil {
		s.log.Error("check profile email failed", "error", err)
		return nil, status.Error(codes.Internal, "database error")
	}
	if exists {
		return nil, status.Error(codes.AlreadyExists, domain.ErrEmailTaken.Error())
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, status.Error(codes.AlreadyExists, err.Error())
		}
		s.log.Error("create profile failed", "error", err)
		return nil, status.Error(codes.Internal, "failed to create profile")
	}

	s.log.Info("profile created", "profile_id", profile.ID)
	return wrapperspb.Int64(profile.ID), nil
}

func (s *ProfileServer) GetProfile(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	if req.GetValue() < 1 {
		return nil, status.Error(codes.InvalidArgument, "invalid profile id")
	}
	profile, err := s.repo.GetByID(ctx, req.GetValue())
	if errors.Is(err, domain.ErrProfileNotFound) {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	if err != nil {
		s.log.Error("get profile failed", "error", err, "profile_id", req.GetValue())
		return nil, status.Error(codes.Internal, "database error")
	}

	out, err := profilepb.Profile{
		ID:         profile.ID,
		FirstName:  profile.FirstName,
		LastName:   profile.LastName,
		Email:      profile.Email,
		Street:     profile.Street,
		Number:     profile.Number,
		City:       profile.City,
		PostalCode: profile.PostalCode,
		Country:    profile.Country,
	}.ToStruct()
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode profile")
	}
	return out, nil
}
