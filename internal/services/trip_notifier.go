package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/tripflow-backend/internal/sse"
	"github.com/yungbote/tripflow-backend/internal/ssedata"
	"github.com/yungbote/tripflow-backend/internal/types"
)

// TripNotifier pushes row-change events on the trip channel so other group
// members refresh their derived views. When request-scoped SSE data is in the
// context (mutations running inside a transaction), the message is deferred
// there and the handler flushes it after commit; otherwise it is emitted
// immediately.
type TripNotifier interface {
	ItineraryReplaced(ctx context.Context, tripID uuid.UUID, itinerary *types.ItineraryVersion, activityCount int)
	ActivityUpdated(ctx context.Context, tripID uuid.UUID, activity *types.Activity)
	VoteChanged(ctx context.Context, tripID uuid.UUID, activityID uuid.UUID, tally *VoteTally)
	MessageCreated(ctx context.Context, tripID uuid.UUID, message *types.Message)
	ReplanApplied(ctx context.Context, tripID uuid.UUID, event *types.DisruptionEvent)
}

type tripNotifier struct {
	emitter SSEEmitter
}

func NewTripNotifier(emitter SSEEmitter) TripNotifier {
	return &tripNotifier{emitter: emitter}
}

func (n *tripNotifier) send(ctx context.Context, msg sse.SSEMessage) {
	if ssd := ssedata.GetSSEData(ctx); ssd != nil {
		ssd.AppendMessage(msg)
		return
	}
	n.emitter.Emit(ctx, msg)
}

func (n *tripNotifier) ItineraryReplaced(ctx context.Context, tripID uuid.UUID, itinerary *types.ItineraryVersion, activityCount int) {
	n.send(ctx, sse.SSEMessage{
		Channel: sse.TripChannel(tripID),
		Event:   sse.SSEEventTripItineraryReplaced,
		Data: map[string]any{
			"itinerary_id":   itinerary.ID,
			"version":        itinerary.Version,
			"revision":       itinerary.Revision,
			"variant_id":     itinerary.VariantID,
			"activity_count": activityCount,
		},
	})
}

func (n *tripNotifier) ActivityUpdated(ctx context.Context, tripID uuid.UUID, activity *types.Activity) {
	n.send(ctx, sse.SSEMessage{
		Channel: sse.TripChannel(tripID),
		Event:   sse.SSEEventTripActivityUpdated,
		Data:    map[string]any{"activity": activity},
	})
}

func (n *tripNotifier) VoteChanged(ctx context.Context, tripID uuid.UUID, activityID uuid.UUID, tally *VoteTally) {
	n.send(ctx, sse.SSEMessage{
		Channel: sse.TripChannel(tripID),
		Event:   sse.SSEEventTripVoteChanged,
		Data: map[string]any{
			"activity_id": activityID,
			"tally":       tally,
		},
	})
}

func (n *tripNotifier) MessageCreated(ctx context.Context, tripID uuid.UUID, message *types.Message) {
	n.send(ctx, sse.SSEMessage{
		Channel: sse.TripChannel(tripID),
		Event:   sse.SSEEventTripMessageCreated,
		Data:    map[string]any{"message": message},
	})
}

func (n *tripNotifier) ReplanApplied(ctx context.Context, tripID uuid.UUID, event *types.DisruptionEvent) {
	n.send(ctx, sse.SSEMessage{
		Channel: sse.TripChannel(tripID),
		Event:   sse.SSEEventTripReplanApplied,
		Data:    map[string]any{"event": event},
	})
}
