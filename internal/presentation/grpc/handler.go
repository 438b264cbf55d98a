package grpc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/Heitorcp/customer-churn/internal/application/dto"
	"github.com/Heitorcp/customer-churn/internal/application/usecase"
	"github.com/Heitorcp/customer-churn/internal/domain/model"
	"github.com/Heitorcp/customer-churn/pkg/auth"
)

// requireRole checks that the caller has at least one of the given roles.
func requireRole(ctx context.Context, roles ...string) error {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "authentication required")
	}
	if claims.HasAnyRole(roles...) {
		return nil
	}
	return status.Error(codes.PermissionDenied, "insufficient permissions")
}

// Compile-time assertion that ChurnServiceHandler implements ChurnServiceServer.
var _ ChurnServiceServer = (*ChurnServiceHandler)(nil)

// ChurnServiceHandler implements the gRPC ChurnServiceServer interface.
type ChurnServiceHandler struct {
	UnimplementedChurnServiceServer
	predictChurn  *usecase.PredictChurn
	predictBatch  *usecase.PredictBatch
	getPrediction *usecase.GetPrediction
	getModelInfo  *usecase.GetModelInfo
	logger        *slog.Logger
	requireAuth   bool
}

// NewChurnServiceHandler creates a new gRPC handler. With requireAuth set,
// callers need the admin or analyst role.
func NewChurnServiceHandler(
	predictChurn *usecase.PredictChurn,
	predictBatch *usecase.PredictBatch,
	getPrediction *usecase.GetPrediction,
	getModelInfo *usecase.GetModelInfo,
	requireAuth bool,
	logger *slog.Logger,
) *ChurnServiceHandler {
	return &ChurnServiceHandler{
		predictChurn:  predictChurn,
		predictBatch:  predictBatch,
		getPrediction: getPrediction,
		getModelInfo:  getModelInfo,
		requireAuth:   requireAuth,
		logger:        logger,
	}
}

// Proto-aligned request/response message types.

// PredictRequest represents the proto PredictRequest message.
type PredictRequest struct {
	Customer   *dto.CustomerRecord `json:"customer"`
	CustomerID string              `json:"customer_id"`
}

// PredictResponse represents the proto PredictResponse message.
type PredictResponse struct {
	Prediction  *dto.PredictionResponse `json:"prediction"`
	PredictedAt *timestamppb.Timestamp  `json:"predicted_at"`
}

// PredictBatchRequest represents the proto PredictBatchRequest message.
type PredictBatchRequest struct {
	Customers []dto.CustomerRecord `json:"customers"`
}

// PredictBatchResponse represents the proto PredictBatchResponse message.
type PredictBatchResponse struct {
	dto.BatchResponse
}

// GetPredictionRequest represents the proto GetPredictionRequest message.
type GetPredictionRequest struct {
	PredictionID string `json:"prediction_id"`
}

// GetPredictionResponse represents the proto GetPredictionResponse message.
type GetPredictionResponse struct {
	Prediction  *dto.PredictionResponse `json:"prediction"`
	PredictedAt *timestamppb.Timestamp  `json:"predicted_at"`
}

// GetModelInfoRequest represents the proto GetModelInfoRequest message.
type GetModelInfoRequest struct{}

// GetModelInfoResponse represents the proto GetModelInfoResponse message.
type GetModelInfoResponse struct {
	dto.ModelInfoResponse
}

func (h *ChurnServiceHandler) authorize(ctx context.Context) error {
	if !h.requireAuth {
		return nil
	}
	return requireRole(ctx, auth.RoleAdmin, auth.RoleAnalyst, auth.RoleAPIClient)
}

// Predict scores one customer record.
func (h *ChurnServiceHandler) Predict(ctx context.Context, req *PredictRequest) (*PredictResponse, error) {
	if err := h.authorize(ctx); err != nil {
		return nil, err
	}
	if req == nil || req.Customer == nil {
		return nil, status.Error(codes.InvalidArgument, "customer is required")
	}

	resp, err := h.predictChurn.Execute(ctx, dto.PredictRequest{
		CustomerID: req.CustomerID,
		Customer:   *req.Customer,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "Predict", err)
	}
	return &PredictResponse{
		Prediction:  &resp,
		PredictedAt: timestamppb.New(resp.ModelInfo.PredictionTimestamp),
	}, nil
}

// PredictBatch scores every customer; failed rows are reported in place.
func (h *ChurnServiceHandler) PredictBatch(ctx context.Context, req *PredictBatchRequest) (*PredictBatchResponse, error) {
	if err := h.authorize(ctx); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	items := make([]dto.BatchItem, len(req.Customers))
	for i, c := range req.Customers {
		items[i] = dto.BatchItem{Customer: c}
	}

	resp, err := h.predictBatch.Execute(ctx, dto.BatchRequest{Items: items})
	if err != nil {
		return nil, h.toStatus(ctx, "PredictBatch", err)
	}
	return &PredictBatchResponse{BatchResponse: resp}, nil
}

// GetPrediction returns a stored decision record.
func (h *ChurnServiceHandler) GetPrediction(ctx context.Context, req *GetPredictionRequest) (*GetPredictionResponse, error) {
	if err := h.authorize(ctx); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	id, err := uuid.Parse(req.PredictionID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid prediction_id: %v", err)
	}

	resp, err := h.getPrediction.Execute(ctx, dto.GetPredictionRequest{PredictionID: id})
	if err != nil {
		return nil, h.toStatus(ctx, "GetPrediction", err)
	}
	return &GetPredictionResponse{
		Prediction:  &resp,
		PredictedAt: timestamppb.New(resp.ModelInfo.PredictionTimestamp),
	}, nil
}

// GetModelInfo describes the loaded model.
func (h *ChurnServiceHandler) GetModelInfo(ctx context.Context, _ *GetModelInfoRequest) (*GetModelInfoResponse, error) {
	if err := h.authorize(ctx); err != nil {
		return nil, err
	}

	resp, err := h.getModelInfo.Execute(ctx)
	if err != nil {
		return nil, h.toStatus(ctx, "GetModelInfo", err)
	}
	return &GetModelInfoResponse{ModelInfoResponse: resp}, nil
}

func (h *ChurnServiceHandler) toStatus(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, model.ErrInvalidInput),
		errors.Is(err, usecase.ErrBatchTooLarge),
		errors.Is(err, usecase.ErrEmptyBatch):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, usecase.ErrPredictionNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, usecase.ErrModelUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	default:
		h.logger.ErrorContext(ctx, "rpc failed",
			slog.String("method", method),
			slog.String("error", err.Error()),
		)
		return status.Error(codes.Internal, "internal error")
	}
}
