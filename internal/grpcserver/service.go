package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified name of the review service.
const ServiceName = "jobportal.review.v1.ReviewService"

const (
	listApplicantsMethod = "/" + ServiceName + "/ListApplicants"
	updateStatusMethod   = "/" + ServiceName + "/UpdateStatus"
)

// ReviewServer is the server API for the review service. Messages are
// well-known types, so no generated code is involved.
type ReviewServer interface {
	ListApplicants(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	UpdateStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterReviewServer registers srv on s.
func RegisterReviewServer(s grpc.ServiceRegistrar, srv ReviewServer) {
	s.RegisterService(&reviewServiceDesc, srv)
}

var reviewServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReviewServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListApplicants", Handler: listApplicantsHandler},
		{MethodName: "UpdateStatus", Handler: updateStatusHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "jobportal/review/v1/review.proto",
}

func listApplicantsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReviewServer).ListApplicants(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listApplicantsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReviewServer).ListApplicants(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func updateStatusHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReviewServer).UpdateStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: updateStatusMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReviewServer).UpdateStatus(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ─── Client ──────────────────────────────────────────────────────────────────

// ReviewClient calls the review service.
type ReviewClient struct {
	cc grpc.ClientConnInterface
}

// NewReviewClient returns a client over cc.
func NewReviewClient(cc grpc.ClientConnInterface) *ReviewClient {
	return &ReviewClient{cc: cc}
}

func (c *ReviewClient) ListApplicants(ctx context.Context, jobID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, listApplicantsMethod, wrapperspb.String(jobID), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ReviewClient) UpdateStatus(ctx context.Context, applicationID, status string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]any{"applicationId": applicationID, "status": status})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, updateStatusMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
