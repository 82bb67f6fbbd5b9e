package services

import (
  "testing"
  "time"

  "github.com/yungbote/tripflow-backend/internal/apperr"
)

func validCandidatePayload() map[string]any {
  return map[string]any{
    "total_cost": 320.5,
    "variant_id": "balanced",
    "activities": []any{
      map[string]any{
        "name":       "Alfama walking tour",
        "category":   "attraction",
        "start_time": "2026-10-02T10:00:00Z",
        "end_time":   "2026-10-02T12:30:00Z",
        "cost":       25.0,
      },
      map[string]any{
        "name":       "Time Out Market dinner",
        "category":   "food",
        "start_time": "2026-10-02T19:00",
        "end_time":   "2026-10-02T21:00",
        "cost":       60.0,
        "status":     "pending",
      },
    },
  }
}

func TestDecodePlanCandidateValid(t *testing.T) {
  pc, err := DecodePlanCandidate(validCandidatePayload())
  if err != nil {
    t.Fatalf("DecodePlanCandidate: %v", err)
  }
  if pc.TotalCost != 320.5 {
    t.Fatalf("total cost: want=320.5 got=%v", pc.TotalCost)
  }
  if len(pc.Activities) != 2 {
    t.Fatalf("activities: want=2 got=%d", len(pc.Activities))
  }
  if pc.Activities[0].Name != "Alfama walking tour" {
    t.Fatalf("activity name: got=%q", pc.Activities[0].Name)
  }
  if pc.Activities[1].Status != "pending" {
    t.Fatalf("activity status: want=pending got=%q", pc.Activities[1].Status)
  }
  if !pc.Activities[0].EndTime.After(pc.Activities[0].StartTime) {
    t.Fatalf("times not chronological after decode")
  }
}

func TestDecodePlanCandidateDefaultsStatus(t *testing.T) {
  pc, err := DecodePlanCandidate(validCandidatePayload())
  if err != nil {
    t.Fatalf("DecodePlanCandidate: %v", err)
  }
  if pc.Activities[0].Status != "pending" {
    t.Fatalf("missing status should default to pending, got=%q", pc.Activities[0].Status)
  }
}

func TestDecodePlanCandidateRejections(t *testing.T) {
  cases := []struct {
    name   string
    mutate func(m map[string]any)
  }{
    {"missing total_cost", func(m map[string]any) { delete(m, "total_cost") }},
    {"missing activity name", func(m map[string]any) {
      m["activities"].([]any)[0].(map[string]any)["name"] = ""
    }},
    {"missing start_time", func(m map[string]any) {
      delete(m["activities"].([]any)[0].(map[string]any), "start_time")
    }},
    {"missing end_time", func(m map[string]any) {
      delete(m["activities"].([]any)[0].(map[string]any), "end_time")
    }},
    {"missing category", func(m map[string]any) {
      delete(m["activities"].([]any)[0].(map[string]any), "category")
    }},
    {"unknown category", func(m map[string]any) {
      m["activities"].([]any)[0].(map[string]any)["category"] = "nightlife"
    }},
    {"unknown status", func(m map[string]any) {
      m["activities"].([]any)[0].(map[string]any)["status"] = "maybe"
    }},
    {"garbage timestamp", func(m map[string]any) {
      m["activities"].([]any)[0].(map[string]any)["start_time"] = "tomorrow at noon"
    }},
  }
  for _, tc := range cases {
    t.Run(tc.name, func(t *testing.T) {
      payload := validCandidatePayload()
      tc.mutate(payload)
      _, err := DecodePlanCandidate(payload)
      if err == nil {
        t.Fatalf("expected rejection")
      }
      if !apperr.IsValidation(err) {
        t.Fatalf("expected ValidationError, got %T: %v", err, err)
      }
    })
  }
}

func TestDecodePlanCandidateClampsNegativeCost(t *testing.T) {
  payload := validCandidatePayload()
  payload["activities"].([]any)[0].(map[string]any)["cost"] = -12.0
  pc, err := DecodePlanCandidate(payload)
  if err != nil {
    t.Fatalf("DecodePlanCandidate: %v", err)
  }
  if pc.Activities[0].Cost != 0 {
    t.Fatalf("negative cost should clamp to 0, got=%v", pc.Activities[0].Cost)
  }
}

func TestValidateForReplaceRequiresActivities(t *testing.T) {
  pc := &PlanCandidate{TotalCost: 10}
  err := pc.ValidateForReplace(true)
  if err == nil || !apperr.IsValidation(err) {
    t.Fatalf("empty candidate should fail validation, got %v", err)
  }
  if err := pc.ValidateForReplace(false); err != nil {
    t.Fatalf("empty candidate allowed when not required: %v", err)
  }
}

func TestValidateForReplaceRejectsNonChronological(t *testing.T) {
  now := time.Now()
  pc := &PlanCandidate{
    TotalCost: 10,
    Activities: []ActivityDraft{
      {Name: "backwards", Category: "food", StartTime: now, EndTime: now.Add(-time.Hour)},
    },
  }
  if err := pc.ValidateForReplace(true); err == nil {
    t.Fatalf("expected rejection for end before start")
  }
  pc.Activities[0].EndTime = pc.Activities[0].StartTime
  if err := pc.ValidateForReplace(true); err == nil {
    t.Fatalf("expected rejection for zero-duration activity")
  }
}

func TestCostBreakdownSumsPerCategory(t *testing.T) {
  pc, err := DecodePlanCandidate(validCandidatePayload())
  if err != nil {
    t.Fatalf("DecodePlanCandidate: %v", err)
  }
  breakdown := pc.CostBreakdown()
  perCategory := breakdown["per_category"].(map[string]float64)
  if perCategory["food"] != 60 {
    t.Fatalf("food sum: want=60 got=%v", perCategory["food"])
  }
  if perCategory["attraction"] != 25 {
    t.Fatalf("attraction sum: want=25 got=%v", perCategory["attraction"])
  }
  if breakdown["activity_sum"].(float64) != 85 {
    t.Fatalf("activity sum: want=85 got=%v", breakdown["activity_sum"])
  }
}

func TestDecodeDisruptionReport(t *testing.T) {
  report, err := DecodeDisruptionReport(map[string]any{
    "disruptions": []any{
      map[string]any{
        "type":       "weather",
        "severity":   "high",
        "title":      "Storm warning",
        "confidence": 0.8,
      },
    },
    "overall_risk": "high",
    "needs_replan": true,
  })
  if err != nil {
    t.Fatalf("DecodeDisruptionReport: %v", err)
  }
  if !report.NeedsReplan {
    t.Fatalf("needs_replan should survive decode")
  }
  if len(report.Disruptions) != 1 || report.Disruptions[0].Type != "weather" {
    t.Fatalf("unexpected disruptions: %+v", report.Disruptions)
  }
}

func TestDecodeDisruptionReportEmptyNeverNeedsReplan(t *testing.T) {
  report, err := DecodeDisruptionReport(map[string]any{
    "disruptions":  []any{},
    "needs_replan": true,
  })
  if err != nil {
    t.Fatalf("DecodeDisruptionReport: %v", err)
  }
  if report.NeedsReplan {
    t.Fatalf("empty report must not request a replan")
  }
}

func TestDecodeDisruptionReportRejectsBadConfidence(t *testing.T) {
  _, err := DecodeDisruptionReport(map[string]any{
    "disruptions": []any{
      map[string]any{"type": "strike", "severity": "medium", "title": "Metro strike", "confidence": 1.3},
    },
  })
  if err == nil || !apperr.IsValidation(err) {
    t.Fatalf("confidence outside [0,1] should be rejected, got %v", err)
  }
}

func TestDecodeReplanCandidateRequiresChangeSummary(t *testing.T) {
  payload := validCandidatePayload()
  _, err := DecodeReplanCandidate(payload)
  if err == nil {
    t.Fatalf("replan without changes_summary should be rejected")
  }

  payload["changes_summary"] = "Moved outdoor activities indoors"
  payload["changes_count"] = 2
  pc, err := DecodeReplanCandidate(payload)
  if err != nil {
    t.Fatalf("DecodeReplanCandidate: %v", err)
  }
  if pc.ChangesCount != 2 {
    t.Fatalf("changes_count: want=2 got=%d", pc.ChangesCount)
  }
}

func TestDecodeCounterfactualSetRequiresVariantIDs(t *testing.T) {
  plan := validCandidatePayload()
  delete(plan, "variant_id")
  _, err := DecodeCounterfactualSet(map[string]any{
    "plans":          []map[string]any{plan},
    "recommendation": "balanced",
  })
  if err == nil || !apperr.IsValidation(err) {
    t.Fatalf("plan without variant_id should be rejected, got %v", err)
  }
}
