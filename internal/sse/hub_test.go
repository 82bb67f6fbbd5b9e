package sse

import (
  "testing"

  "github.com/google/uuid"

  "github.com/yungbote/tripflow-backend/internal/logger"
)

func testHub(tb testing.TB) *SSEHub {
  tb.Helper()
  log, err := logger.New("test")
  if err != nil {
    tb.Fatalf("logger: %v", err)
  }
  return NewSSEHub(log)
}

func TestBroadcastReachesOnlySubscribedChannel(t *testing.T) {
  hub := testHub(t)
  tripA := TripChannel(uuid.New())
  tripB := TripChannel(uuid.New())

  member := hub.NewSSEClient(uuid.New())
  outsider := hub.NewSSEClient(uuid.New())
  hub.AddChannel(member, tripA)
  hub.AddChannel(outsider, tripB)

  hub.Broadcast(SSEMessage{Channel: tripA, Event: SSEEventTripVoteChanged, Data: "v"})

  select {
  case msg := <-member.Outbound:
    if msg.Event != SSEEventTripVoteChanged {
      t.Fatalf("event: want=%s got=%s", SSEEventTripVoteChanged, msg.Event)
    }
  default:
    t.Fatalf("subscribed client received nothing")
  }
  select {
  case msg := <-outsider.Outbound:
    t.Fatalf("unsubscribed client received %+v", msg)
  default:
  }
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
  hub := testHub(t)
  channel := TripChannel(uuid.New())
  client := hub.NewSSEClient(uuid.New())
  hub.AddChannel(client, channel)

  // One more than the outbound buffer; the send must not block.
  for i := 0; i < cap(client.Outbound)+1; i++ {
    hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventTripMessageCreated})
  }
  if got := len(client.Outbound); got != cap(client.Outbound) {
    t.Fatalf("queued: want=%d got=%d", cap(client.Outbound), got)
  }
}

func TestRemoveClientClearsSubscriptions(t *testing.T) {
  hub := testHub(t)
  channel := TripChannel(uuid.New())
  client := hub.NewSSEClient(uuid.New())
  hub.AddChannel(client, channel)
  hub.RemoveClient(client)

  hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventTripActivityUpdated})
  if len(client.Outbound) != 0 {
    t.Fatalf("removed client should receive nothing, got %d", len(client.Outbound))
  }
}
