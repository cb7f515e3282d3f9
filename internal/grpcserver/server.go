// Package grpcserver implements the ReviewService gRPC server used by
// internal reviewer tooling.
//
// It delegates all business logic to applications.Service and handles
// only the gRPC transport concerns: identity extraction, error mapping,
// and conversion between domain values and well-known proto messages.
package grpcserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"jobportal/board-service/internal/applications"
	"jobportal/board-service/internal/apperr"
	"jobportal/board-service/internal/auth"
)

// Server implements ReviewServer.
type Server struct {
	svc *applications.Service
}

// NewServer constructs a Server backed by the given applications.Service.
func NewServer(svc *applications.Service) *Server {
	return &Server{svc: svc}
}

// New returns a grpc.Server with the review service, the standard health
// service and the bearer-token interceptor installed.
func New(svc *applications.Service, issuer *auth.Issuer, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.UnaryInterceptor(AuthInterceptor(issuer)))
	gs := grpc.NewServer(opts...)
	RegisterReviewServer(gs, NewServer(svc))

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
	return gs
}

// ─── RPC implementations ──────────────────────────────────────────────────────

// ListApplicants returns the job with every application and applicant.
func (s *Server) ListApplicants(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	userID, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	job, err := s.svc.Applicants(ctx, userID, req.GetValue())
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(job)
}

// UpdateStatus accepts or rejects a pending application. The request carries
// applicationId and status fields.
func (s *Server) UpdateStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	fields := req.GetFields()
	appID := fields["applicationId"].GetStringValue()
	if appID == "" {
		return nil, status.Error(codes.InvalidArgument, "applicationId is required")
	}

	app, err := s.svc.UpdateStatus(ctx, userID, appID, fields["status"].GetStringValue())
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(app)
}

// ─── Identity ────────────────────────────────────────────────────────────────

// AuthInterceptor verifies the "authorization: Bearer <token>" metadata and
// attaches the caller's id to the context. Health checks are exempt.
func AuthInterceptor(issuer *auth.Issuer) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if strings.HasPrefix(info.FullMethod, "/grpc.health.v1.Health/") {
			return handler(ctx, req)
		}
		md, _ := metadata.FromIncomingContext(ctx)
		var token string
		if vals := md.Get("authorization"); len(vals) > 0 {
			token = auth.BearerToken(vals[0])
		}
		if token == "" {
			return nil, status.Error(codes.Unauthenticated, "missing bearer token")
		}
		userID, err := issuer.Verify(token)
		if err != nil {
			return nil, toGRPCError(err)
		}
		return handler(auth.WithUserID(ctx, userID), req)
	}
}

// userIDFromCtx returns the caller resolved by AuthInterceptor.
func userIDFromCtx(ctx context.Context) (string, error) {
	id, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing caller identity")
	}
	return id, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	msg, _ := apperr.Message(err)
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return status.Error(codes.InvalidArgument, msg)
	case apperr.KindUnauthenticated, apperr.KindInvalidCredentials:
		return status.Error(codes.Unauthenticated, msg)
	case apperr.KindForbidden:
		return status.Error(codes.PermissionDenied, msg)
	case apperr.KindNotFound:
		return status.Error(codes.NotFound, msg)
	case apperr.KindConflict:
		return status.Error(codes.AlreadyExists, msg)
	case apperr.KindRateLimited:
		return status.Error(codes.ResourceExhausted, msg)
	case apperr.KindUnavailable:
		return status.Error(codes.Unavailable, msg)
	case apperr.KindTimeout:
		return status.Error(codes.DeadlineExceeded, msg)
	}
	slog.Error("review rpc failed", "err", err)
	return status.Error(codes.Internal, "internal server error")
}

// toStruct converts a JSON-tagged domain value to a Struct using the same
// field names as the HTTP API.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return out, nil
}
