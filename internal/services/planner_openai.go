package services

import (
  "bytes"
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "io"
  "math/rand"
  "net"
  "net/http"
  "os"
  "strconv"
  "strings"
  "time"

  "github.com/yungbote/tripflow-backend/internal/apperr"
  "github.com/yungbote/tripflow-backend/internal/logger"
  "github.com/yungbote/tripflow-backend/internal/types"
)

type openAIPlanner struct {
  log        *logger.Logger
  baseURL    string
  apiKey     string
  model      string
  httpClient *http.Client

  maxRetries int
}

func NewOpenAIPlanner(log *logger.Logger) (PlannerClient, error) {
  apiKey := os.Getenv("OPENAI_API_KEY")
  if apiKey == "" {
    return nil, fmt.Errorf("missing OPENAI_API_KEY")
  }

  baseURL := os.Getenv("OPENAI_BASE_URL")
  if baseURL == "" {
    baseURL = "https://api.openai.com"
  }

  model := os.Getenv("OPENAI_MODEL")
  if model == "" {
    model = "gpt-5.2"
  }

  timeoutSec := 120
  if v := os.Getenv("OPENAI_TIMEOUT_SECONDS"); v != "" {
    if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
      timeoutSec = parsed
    }
  }

  maxRetries := 4
  if v := os.Getenv("OPENAI_MAX_RETRIES"); v != "" {
    if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
      maxRetries = parsed
    }
  }

  return &openAIPlanner{
    log:        log.With("service", "OpenAIPlanner"),
    baseURL:    baseURL,
    apiKey:     apiKey,
    model:      model,
    httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
    maxRetries: maxRetries,
  }, nil
}

type plannerHTTPError struct {
  StatusCode int
  Body       string
}

func (e *plannerHTTPError) Error() string {
  return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func isRetryableHTTP(code int) bool {
  if code == 408 || code == 429 {
    return true
  }
  if code >= 500 && code <= 599 {
    return true
  }
  return false
}

func isRetryableErr(err error) bool {
  if err == nil {
    return false
  }
  if errors.Is(err, context.DeadlineExceeded) {
    return true
  }
  var netErr net.Error
  if errors.As(err, &netErr) {
    if netErr.Timeout() {
      return true
    }
  }
  var httpErr *plannerHTTPError
  if errors.As(err, &httpErr) {
    return isRetryableHTTP(httpErr.StatusCode)
  }
  return false
}

func jitterSleep(base time.Duration) time.Duration {
  // +/- 20%
  if base <= 0 {
    return 0
  }
  j := 0.2
  delta := base.Seconds() * j
  low := base.Seconds() - delta
  high := base.Seconds() + delta
  if low < 0 {
    low = 0
  }
  v := low + rand.Float64()*(high-low)
  return time.Duration(v * float64(time.Second))
}

// classify maps the exhausted-retries error onto the caller-facing taxonomy
// so rate limits and burned credits get distinct user messages.
func classify(err error) error {
  var httpErr *plannerHTTPError
  if errors.As(err, &httpErr) {
    switch {
    case httpErr.StatusCode == 429 && strings.Contains(httpErr.Body, "insufficient_quota"):
      return apperr.External(apperr.ExternalQuotaExhausted, err)
    case httpErr.StatusCode == 429:
      return apperr.External(apperr.ExternalRateLimited, err)
    case httpErr.StatusCode == 402:
      return apperr.External(apperr.ExternalQuotaExhausted, err)
    }
  }
  return apperr.External(apperr.ExternalUpstream, err)
}

func (c *openAIPlanner) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
  var buf bytes.Buffer
  if body != nil {
    if err := json.NewEncoder(&buf).Encode(body); err != nil {
      return nil, nil, err
    }
  }

  req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
  if err != nil {
    return nil, nil, err
  }
  req.Header.Set("Authorization", "Bearer "+c.apiKey)
  req.Header.Set("Content-Type", "application/json")

  resp, err := c.httpClient.Do(req)
  if err != nil {
    return nil, nil, err
  }

  raw, readErr := io.ReadAll(resp.Body)
  _ = resp.Body.Close()
  if readErr != nil {
    return resp, nil, readErr
  }

  if resp.StatusCode < 200 || resp.StatusCode >= 300 {
    return resp, raw, &plannerHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
  }
  return resp, raw, nil
}

func (c *openAIPlanner) do(ctx context.Context, method, path string, body any, out any) error {
  // exponential backoff: 1s, 2s, 4s, 8s (cap ~10s)
  backoff := 1 * time.Second

  for attempt := 0; attempt <= c.maxRetries; attempt++ {
    if ctx.Err() != nil {
      return ctx.Err()
    }

    resp, raw, err := c.doOnce(ctx, method, path, body)
    if err == nil {
      if out == nil {
        return nil
      }
      if uErr := json.Unmarshal(raw, out); uErr != nil {
        return apperr.External(apperr.ExternalBadPayload, fmt.Errorf("openai decode error: %w; raw=%s", uErr, string(raw)))
      }
      return nil
    }

    if !isRetryableErr(err) {
      return classify(err)
    }

    if attempt == c.maxRetries {
      return classify(err)
    }

    // Respect Retry-After when present
    sleepFor := backoff
    if resp != nil {
      ra := strings.TrimSpace(resp.Header.Get("Retry-After"))
      if ra != "" {
        if secs, parseErr := strconv.Atoi(ra); parseErr == nil && secs > 0 {
          sleepFor = time.Duration(secs) * time.Second
        }
      }
    }

    if sleepFor > 10*time.Second {
      sleepFor = 10 * time.Second
    }
    sleepFor = jitterSleep(sleepFor)

    c.log.Warn("OpenAI request retrying",
      "path", path,
      "attempt", attempt+1,
      "max_retries", c.maxRetries,
      "sleep", sleepFor.String(),
      "error", err.Error(),
    )

    time.Sleep(sleepFor)
    backoff *= 2
  }

  return fmt.Errorf("unreachable retry loop")
}

// ---- Responses JSON (Structured Outputs via text.format json_schema) ----

type responsesRequest struct {
  Model string `json:"model"`
  Input []struct {
    Role    string `json:"role"`
    Content string `json:"content"`
  } `json:"input"`
  Text struct {
    Format map[string]any `json:"format"`
  } `json:"text"`
  Temperature float64 `json:"temperature,omitempty"`
}

type responsesResponse struct {
  Output []struct {
    Type    string `json:"type"`
    Role    string `json:"role,omitempty"`
    Content []struct {
      Type string `json:"type"`
      Text string `json:"text,omitempty"`
    } `json:"content,omitempty"`
  } `json:"output"`
  Refusal string `json:"refusal,omitempty"`
}

func (c *openAIPlanner) generateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
  req := responsesRequest{
    Model: c.model,
    Input: []struct {
      Role    string `json:"role"`
      Content string `json:"content"`
    }{
      {Role: "system", Content: system},
      {Role: "user", Content: user},
    },
    Temperature: 0.3,
  }
  req.Text.Format = map[string]any{
    "type":   "json_schema",
    "name":   schemaName,
    "schema": schema,
    "strict": true,
  }

  var resp responsesResponse
  if err := c.do(ctx, "POST", "/v1/responses", req, &resp); err != nil {
    return nil, err
  }
  if resp.Refusal != "" {
    return nil, apperr.External(apperr.ExternalBadPayload, fmt.Errorf("model refused: %s", resp.Refusal))
  }

  var jsonText string
  for _, item := range resp.Output {
    if item.Type == "message" && item.Role == "assistant" {
      for _, part := range item.Content {
        if part.Type == "output_text" && part.Text != "" {
          jsonText += part.Text
        }
      }
    }
  }
  if jsonText == "" {
    return nil, apperr.External(apperr.ExternalBadPayload, fmt.Errorf("no output_text found in response"))
  }

  var obj map[string]any
  if err := json.Unmarshal([]byte(jsonText), &obj); err != nil {
    return nil, apperr.External(apperr.ExternalBadPayload, fmt.Errorf("failed to parse model JSON: %w; text=%s", err, jsonText))
  }
  return obj, nil
}

// ---- Schemas ----

func activityDraftSchema() map[string]any {
  return map[string]any{
    "type": "object",
    "properties": map[string]any{
      "name":            map[string]any{"type": "string"},
      "description":     map[string]any{"type": "string"},
      "location_name":   map[string]any{"type": "string"},
      "lat":             map[string]any{"type": []string{"number", "null"}},
      "lng":             map[string]any{"type": []string{"number", "null"}},
      "start_time":      map[string]any{"type": "string"},
      "end_time":        map[string]any{"type": "string"},
      "category":        map[string]any{"type": "string", "enum": []string{types.CategoryFood, types.CategoryAttraction, types.CategoryTransport, types.CategoryShopping, types.CategoryAccommodation, types.CategoryOther}},
      "cost":            map[string]any{"type": "number"},
      "notes":           map[string]any{"type": "string"},
      "priority":        map[string]any{"type": "integer"},
      "estimated_steps": map[string]any{"type": "integer"},
    },
    "required":             []string{"name", "start_time", "end_time", "category", "cost"},
    "additionalProperties": false,
  }
}

func planCandidateSchema() map[string]any {
  return map[string]any{
    "type": "object",
    "properties": map[string]any{
      "activities":      map[string]any{"type": "array", "items": activityDraftSchema()},
      "total_cost":      map[string]any{"type": "number"},
      "variant_id":      map[string]any{"type": "string"},
      "regret_score":    map[string]any{"type": []string{"number", "null"}},
      "changes_summary": map[string]any{"type": "string"},
      "changes_count":   map[string]any{"type": "integer"},
    },
    "required":             []string{"activities", "total_cost"},
    "additionalProperties": false,
  }
}

func disruptionReportSchema() map[string]any {
  return map[string]any{
    "type": "object",
    "properties": map[string]any{
      "disruptions": map[string]any{
        "type": "array",
        "items": map[string]any{
          "type": "object",
          "properties": map[string]any{
            "type":        map[string]any{"type": "string"},
            "severity":    map[string]any{"type": "string", "enum": []string{types.SeverityLow, types.SeverityMedium, types.SeverityHigh, types.SeverityCritical}},
            "title":       map[string]any{"type": "string"},
            "description": map[string]any{"type": "string"},
            "confidence":  map[string]any{"type": "number"},
          },
          "required":             []string{"type", "severity", "title", "confidence"},
          "additionalProperties": false,
        },
      },
      "overall_risk": map[string]any{"type": "string"},
      "needs_replan": map[string]any{"type": "boolean"},
    },
    "required":             []string{"disruptions", "overall_risk", "needs_replan"},
    "additionalProperties": false,
  }
}

// ---- Prompt assembly ----

func tripContextJSON(trip *types.Trip, activities []*types.Activity) string {
  ctx := map[string]any{
    "destination":  trip.Destination,
    "country":      trip.Country,
    "start_date":   trip.StartDate.Format("2006-01-02"),
    "end_date":     trip.EndDate.Format("2006-01-02"),
    "budget_total": trip.BudgetTotal,
    "status":       trip.Status,
  }
  acts := make([]map[string]any, 0, len(activities))
  for _, a := range activities {
    acts = append(acts, map[string]any{
      "name":       a.Name,
      "category":   a.Category,
      "start_time": a.StartTime.Format(time.RFC3339),
      "end_time":   a.EndTime.Format(time.RFC3339),
      "cost":       a.Cost,
      "status":     a.Status,
      "location":   a.LocationName,
    })
  }
  ctx["activities"] = acts
  return string(mustJSON(ctx))
}

const plannerSystemPrompt = `You are a travel-planning engine. You produce complete day-by-day activity plans as structured JSON. Timestamps are RFC3339. Costs are in the trip currency and never negative. Respect the trip budget.`

func (c *openAIPlanner) GeneratePlan(ctx context.Context, req GenerateRequest) (map[string]any, error) {
  user := fmt.Sprintf("Plan a trip.\nContext: %s", string(mustJSON(req)))
  return c.generateJSON(ctx, plannerSystemPrompt, user, "plan_candidate", planCandidateSchema())
}

func (c *openAIPlanner) GenerateVariant(ctx context.Context, req GenerateRequest, variantID string) (map[string]any, error) {
  var emphasis string
  switch variantID {
  case types.VariantBudget:
    emphasis = "Minimize total cost; prefer free and low-cost activities."
  case types.VariantExperience:
    emphasis = "Maximize memorable experiences; budget is secondary."
  default:
    emphasis = "Balance cost against experience quality."
  }
  user := fmt.Sprintf("Plan a trip. Strategy %q: %s\nSet variant_id to %q and include a regret_score in [0,1].\nContext: %s",
    variantID, emphasis, variantID, string(mustJSON(req)))
  return c.generateJSON(ctx, plannerSystemPrompt, user, "plan_candidate", planCandidateSchema())
}

func (c *openAIPlanner) DetectDisruptions(ctx context.Context, trip *types.Trip, activities []*types.Activity) (map[string]any, error) {
  user := fmt.Sprintf("Identify likely real-world disruptions (weather, closures, delays) threatening this itinerary. Confidence is in [0,1].\nContext: %s",
    tripContextJSON(trip, activities))
  return c.generateJSON(ctx, plannerSystemPrompt, user, "disruption_report", disruptionReportSchema())
}

func (c *openAIPlanner) ProposeReplan(ctx context.Context, trip *types.Trip, activities []*types.Activity, disruption Disruption) (map[string]any, error) {
  user := fmt.Sprintf("Revise this itinerary around the disruption, changing as little as possible. Include changes_summary and changes_count.\nDisruption: %s\nContext: %s",
    string(mustJSON(disruption)), tripContextJSON(trip, activities))
  return c.generateJSON(ctx, plannerSystemPrompt, user, "plan_candidate", planCandidateSchema())
}
