package services

import (
  "encoding/json"
  "fmt"
  "time"

  "github.com/yungbote/tripflow-backend/internal/apperr"
  "github.com/yungbote/tripflow-backend/internal/types"
)

// ActivityDraft is one proposed activity inside a PlanCandidate: validated and
// normalized here, persisted only through the itinerary service's replace.
type ActivityDraft struct {
  Name           string    `json:"name"`
  Description    string    `json:"description"`
  LocationName   string    `json:"location_name"`
  Lat            *float64  `json:"lat,omitempty"`
  Lng            *float64  `json:"lng,omitempty"`
  StartTime      time.Time `json:"start_time"`
  EndTime        time.Time `json:"end_time"`
  Category       string    `json:"category"`
  Cost           float64   `json:"cost"`
  Status         string    `json:"status"`
  Notes          string    `json:"notes"`
  Priority       int       `json:"priority"`
  ReviewScore    *float64  `json:"review_score,omitempty"`
  EstimatedSteps int       `json:"estimated_steps"`
}

// PlanCandidate is a proposed activity set plus summary metadata, not yet
// persisted.
type PlanCandidate struct {
  Activities     []ActivityDraft `json:"activities"`
  TotalCost      float64         `json:"total_cost"`
  VariantID      string          `json:"variant_id,omitempty"`
  RegretScore    *float64        `json:"regret_score,omitempty"`
  ChangesSummary string          `json:"changes_summary,omitempty"`
  ChangesCount   int             `json:"changes_count"`
}

type Disruption struct {
  Type        string  `json:"type"`
  Severity    string  `json:"severity"`
  Title       string  `json:"title"`
  Description string  `json:"description"`
  Confidence  float64 `json:"confidence"`
}

type DisruptionReport struct {
  Disruptions []Disruption `json:"disruptions"`
  OverallRisk string       `json:"overall_risk"`
  NeedsReplan bool         `json:"needs_replan"`
}

type CounterfactualSet struct {
  Plans          []PlanCandidate `json:"plans"`
  Recommendation string          `json:"recommendation"`
  ComparisonNote string          `json:"comparison_note"`
}

// rawDraft carries activity fields exactly as the planner returned them so
// required-field and time-format checks can run before any defaulting.
type rawDraft struct {
  Name           *string  `json:"name"`
  Description    string   `json:"description"`
  LocationName   string   `json:"location_name"`
  Lat            *float64 `json:"lat"`
  Lng            *float64 `json:"lng"`
  StartTime      *string  `json:"start_time"`
  EndTime        *string  `json:"end_time"`
  Category       *string  `json:"category"`
  Cost           *float64 `json:"cost"`
  Status         string   `json:"status"`
  Notes          string   `json:"notes"`
  Priority       int      `json:"priority"`
  ReviewScore    *float64 `json:"review_score"`
  EstimatedSteps int      `json:"estimated_steps"`
}

type rawCandidate struct {
  Activities     []rawDraft `json:"activities"`
  TotalCost      *float64   `json:"total_cost"`
  VariantID      string     `json:"variant_id"`
  RegretScore    *float64   `json:"regret_score"`
  ChangesSummary string     `json:"changes_summary"`
  ChangesCount   int        `json:"changes_count"`
}

var draftTimeLayouts = []string{
  time.RFC3339,
  "2006-01-02T15:04:05",
  "2006-01-02T15:04",
}

func parseDraftTime(field, value string) (time.Time, error) {
  for _, layout := range draftTimeLayouts {
    if t, err := time.Parse(layout, value); err == nil {
      return t, nil
    }
  }
  return time.Time{}, apperr.Validation("activity %s %q is not a recognized timestamp", field, value)
}

// DecodePlanCandidate is the strict schema gate between the planner
// collaborator and persistence: the payload is untyped JSON and nothing past
// this function trusts its shape.
func DecodePlanCandidate(obj map[string]any) (*PlanCandidate, error) {
  raw, err := json.Marshal(obj)
  if err != nil {
    return nil, apperr.Validation("plan candidate is not serializable: %v", err)
  }
  var rc rawCandidate
  if err := json.Unmarshal(raw, &rc); err != nil {
    return nil, apperr.Validation("plan candidate shape mismatch: %v", err)
  }
  if rc.TotalCost == nil {
    return nil, apperr.Validation("plan candidate missing total_cost")
  }

  out := &PlanCandidate{
    TotalCost:      *rc.TotalCost,
    VariantID:      rc.VariantID,
    RegretScore:    rc.RegretScore,
    ChangesSummary: rc.ChangesSummary,
    ChangesCount:   rc.ChangesCount,
    Activities:     make([]ActivityDraft, 0, len(rc.Activities)),
  }

  for i, rd := range rc.Activities {
    draft, err := decodeDraft(i, rd)
    if err != nil {
      return nil, err
    }
    out.Activities = append(out.Activities, *draft)
  }
  return out, nil
}

func decodeDraft(index int, rd rawDraft) (*ActivityDraft, error) {
  if rd.Name == nil || *rd.Name == "" {
    return nil, apperr.Validation("activity %d missing name", index)
  }
  if rd.StartTime == nil || *rd.StartTime == "" {
    return nil, apperr.Validation("activity %d (%s) missing start_time", index, *rd.Name)
  }
  if rd.EndTime == nil || *rd.EndTime == "" {
    return nil, apperr.Validation("activity %d (%s) missing end_time", index, *rd.Name)
  }
  if rd.Category == nil || *rd.Category == "" {
    return nil, apperr.Validation("activity %d (%s) missing category", index, *rd.Name)
  }
  if !types.ValidCategory(*rd.Category) {
    return nil, apperr.Validation("activity %d (%s) has unknown category %q", index, *rd.Name, *rd.Category)
  }

  start, err := parseDraftTime("start_time", *rd.StartTime)
  if err != nil {
    return nil, err
  }
  end, err := parseDraftTime("end_time", *rd.EndTime)
  if err != nil {
    return nil, err
  }

  cost := 0.0
  if rd.Cost != nil {
    cost = *rd.Cost
  }
  if cost < 0 {
    cost = 0
  }

  status := rd.Status
  if status == "" {
    status = types.ActivityStatusPending
  }
  if !types.ValidActivityStatus(status) {
    return nil, apperr.Validation("activity %d (%s) has unknown status %q", index, *rd.Name, status)
  }

  return &ActivityDraft{
    Name:           *rd.Name,
    Description:    rd.Description,
    LocationName:   rd.LocationName,
    Lat:            rd.Lat,
    Lng:            rd.Lng,
    StartTime:      start,
    EndTime:        end,
    Category:       *rd.Category,
    Cost:           cost,
    Status:         status,
    Notes:          rd.Notes,
    Priority:       rd.Priority,
    ReviewScore:    rd.ReviewScore,
    EstimatedSteps: rd.EstimatedSteps,
  }, nil
}

// ValidateForReplace runs the pre-persistence checks: generation and replan
// flows always require at least one activity, and every draft must be
// chronological. Nothing is written once this fails.
func (pc *PlanCandidate) ValidateForReplace(requireNonEmpty bool) error {
  if requireNonEmpty && len(pc.Activities) == 0 {
    return apperr.Validation("plan candidate has no activities")
  }
  for i := range pc.Activities {
    d := &pc.Activities[i]
    if !d.EndTime.After(d.StartTime) {
      return apperr.Validation("activity %d (%s) has end_time <= start_time", i, d.Name)
    }
    if d.Cost < 0 {
      d.Cost = 0
    }
    if d.Status == "" {
      d.Status = types.ActivityStatusPending
    }
  }
  return nil
}

// CostBreakdown sums draft costs per category plus the planner's total.
func (pc *PlanCandidate) CostBreakdown() map[string]any {
  perCategory := map[string]float64{}
  sum := 0.0
  for _, d := range pc.Activities {
    perCategory[d.Category] += d.Cost
    sum += d.Cost
  }
  return map[string]any{
    "total_cost":    pc.TotalCost,
    "activity_sum":  sum,
    "per_category":  perCategory,
    "activity_count": len(pc.Activities),
  }
}

func DecodeDisruptionReport(obj map[string]any) (*DisruptionReport, error) {
  raw, err := json.Marshal(obj)
  if err != nil {
    return nil, apperr.Validation("disruption report is not serializable: %v", err)
  }
  var dr DisruptionReport
  if err := json.Unmarshal(raw, &dr); err != nil {
    return nil, apperr.Validation("disruption report shape mismatch: %v", err)
  }
  for i, d := range dr.Disruptions {
    if d.Type == "" {
      return nil, apperr.Validation("disruption %d missing type", i)
    }
    if d.Title == "" {
      return nil, apperr.Validation("disruption %d missing title", i)
    }
    if !types.ValidSeverity(d.Severity) {
      return nil, apperr.Validation("disruption %d has unknown severity %q", i, d.Severity)
    }
    if d.Confidence < 0 || d.Confidence > 1 {
      return nil, apperr.Validation("disruption %d confidence %v outside [0,1]", i, d.Confidence)
    }
  }
  if len(dr.Disruptions) == 0 {
    dr.NeedsReplan = false
  }
  return &dr, nil
}

// DecodeReplanCandidate is DecodePlanCandidate plus the replan-specific
// requirements: the proposal must explain itself.
func DecodeReplanCandidate(obj map[string]any) (*PlanCandidate, error) {
  pc, err := DecodePlanCandidate(obj)
  if err != nil {
    return nil, err
  }
  if pc.ChangesSummary == "" {
    return nil, apperr.Validation("replan candidate missing changes_summary")
  }
  if pc.ChangesCount <= 0 {
    return nil, apperr.Validation("replan candidate missing changes_count")
  }
  return pc, nil
}

func DecodeCounterfactualSet(obj map[string]any) (*CounterfactualSet, error) {
  raw, err := json.Marshal(obj)
  if err != nil {
    return nil, apperr.Validation("counterfactual set is not serializable: %v", err)
  }
  var wrapper struct {
    Plans          []map[string]any `json:"plans"`
    Recommendation string           `json:"recommendation"`
    ComparisonNote string           `json:"comparison_note"`
  }
  if err := json.Unmarshal(raw, &wrapper); err != nil {
    return nil, apperr.Validation("counterfactual set shape mismatch: %v", err)
  }
  if len(wrapper.Plans) == 0 {
    return nil, apperr.Validation("counterfactual set has no plans")
  }

  out := &CounterfactualSet{
    Recommendation: wrapper.Recommendation,
    ComparisonNote: wrapper.ComparisonNote,
    Plans:          make([]PlanCandidate, 0, len(wrapper.Plans)),
  }
  for i, rawPlan := range wrapper.Plans {
    pc, err := DecodePlanCandidate(rawPlan)
    if err != nil {
      return nil, apperr.Validation("counterfactual plan %d: %v", i, err)
    }
    if pc.VariantID == "" {
      return nil, apperr.Validation("counterfactual plan %d missing variant_id", i)
    }
    out.Plans = append(out.Plans, *pc)
  }
  return out, nil
}

func mustJSON(v any) []byte {
  raw, err := json.Marshal(v)
  if err != nil {
    return []byte(fmt.Sprintf(`{"marshal_error":%q}`, err.Error()))
  }
  return raw
}
