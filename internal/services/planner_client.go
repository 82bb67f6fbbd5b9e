package services

import (
  "context"

  "github.com/yungbote/tripflow-backend/internal/types"
)

// GenerateRequest is the trip context handed to the planner collaborator.
type GenerateRequest struct {
  Destination   string   `json:"destination"`
  Country       string   `json:"country,omitempty"`
  Days          int      `json:"days"`
  Travelers     int      `json:"travelers"`
  Budget        float64  `json:"budget"`
  Interests     []string `json:"interests,omitempty"`
  TripType      string   `json:"trip_type,omitempty"`
  MemoryContext string   `json:"memory_context,omitempty"`
}

// PlannerClient is the opaque AI collaborator. Every method returns the raw
// JSON object the model produced; callers run it through the strict decode
// layer before anything is persisted. Implementations must never write.
type PlannerClient interface {
  GeneratePlan(ctx context.Context, req GenerateRequest) (map[string]any, error)
  GenerateVariant(ctx context.Context, req GenerateRequest, variantID string) (map[string]any, error)
  DetectDisruptions(ctx context.Context, trip *types.Trip, activities []*types.Activity) (map[string]any, error)
  ProposeReplan(ctx context.Context, trip *types.Trip, activities []*types.Activity, disruption Disruption) (map[string]any, error)
}
