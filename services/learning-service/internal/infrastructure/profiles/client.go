package profiles

import (
	"context"
	"fmt"

	"learningcenter/pkg/logger"
	"learningcenter/pkg/profilepb"
	"learningcenter/services/learning-service/internal/application/usecase"
	"learningcenter/services/learning-service/internal/domain"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client reaches the profile service over gRPC and translates its answers into
// learning-context values.
type Client struct {
	conn   *grpc.ClientConn
	client profilepb.ProfileServiceClient
	log    *logger.Logger
}

func Dial(addr string, log *logger.Logger, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}, opts...)
	cc, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial profile service: %w", err)
	}
	return &Client{conn: cc, client: profilepb.NewProfileServiceClient(cc), log: log.With("client", "profiles")}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) FetchProfileIDByEmail(ctx context.Context, email string) (domain.ProfileID, bool, error) {
	resp, err := c.client.FetchProfileIDByEmail(ctx, wrapperspb.String(email))
	if err != nil {
		return 0, false, c.translate("fetch profile id", err)
	}
	if resp.GetValue() < 1 {
		return 0, false, nil
	}
	return domain.ProfileID(resp.GetValue()), true, nil
}

func (c *Client) CreateProfile(ctx context.Context, d usecase.ProfileDetails) (domain.ProfileID, error) {
	payload, err := profilepb.Profile{
		FirstName:  d.FirstName,
		LastName:   d.LastName,
		Email:      d.Email,
		Street:     d.Street,
		Number:     d.Number,
		City:       d.City,
		PostalCode: d.PostalCode,
		Country:    d.Country,
	}.ToStruct()
	if err != nil {
		return 0, fmt.Errorf("%w: encode profile: %v", domain.ErrOperationFailed, err)
	}
	resp, err := c.client.CreateProfile(ctx, payload)
	if err != nil {
		return 0, c.translate("create profile", err)
	}
	id, err := domain.NewProfileID(resp.GetValue())
	if err != nil {
		return 0, fmt.Errorf("%w: profile service returned id %d", domain.ErrOperationFailed, resp.GetValue())
	}
	return id, nil
}

func (c *Client) translate(op string, err error) error {
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", domain.ErrValidation, st.Message())
	case codes.AlreadyExists:
		return domain.ErrProfileEmailTaken
	case codes.NotFound:
		return domain.ErrProfileNotFound
	}
	c.log.Error("profile service call failed", "op", op, "code", st.Code().String(), "error", st.Message())
	return fmt.Errorf("%w: %s: %s", domain.ErrOperationFailed, op, st.Message())
}

var _ usecase.ProfileService = (*Client)(nil)
