package push

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"github.com/vnioa/StudyMate-sub010/internal/observability"
	"github.com/vnioa/StudyMate-sub010/internal/repositories"
)

// DispatchResult summarizes one user's push delivery.
type DispatchResult struct {
	Delivered int `json:"delivered"`
	Pruned    int `json:"pruned"`
	Failed    int `json:"failed"`
}

type job struct {
	id            string
	roomID        int
	excludeUserID int
	note          Notification
}

// Notifier fans push notifications out to room participants. Jobs are
// queued on a bounded channel and consumed by a single worker, so a
// slow provider never delays the sending request. A full queue drops
// the job: delivery is best effort, at most once.
type Notifier struct {
	rooms    repositories.RoomRepository
	devices  repositories.DeviceTokenRepository
	provider Provider
	jobs     chan job
	done     chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewNotifier constructs a Notifier with the given queue capacity.
func NewNotifier(rooms repositories.RoomRepository, devices repositories.DeviceTokenRepository, provider Provider, queueSize int) *Notifier {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Notifier{
		rooms:    rooms,
		devices:  devices,
		provider: provider,
		jobs:     make(chan job, queueSize),
		done:     make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (n *Notifier) Start(ctx context.Context) {
	go n.run(ctx)
}

// Stop drains outstanding jobs and waits for the worker to exit.
func (n *Notifier) Stop() {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.jobs)
	}
	n.mu.Unlock()
	<-n.done
}

// NotifyRoom queues a fan-out job for every participant except the
// sender. Never blocks; the job is dropped when the queue is full or
// the notifier is stopped.
func (n *Notifier) NotifyRoom(roomID, excludeUserID int, title, body string, data map[string]string) {
	j := job{
		id:            uuid.NewString(),
		roomID:        roomID,
		excludeUserID: excludeUserID,
		note:          Notification{Title: title, Body: body, Data: data},
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		observability.IncNotifyDropped()
		log.Warn().Int("room_id", roomID).Msg("notifier stopped, job dropped")
		return
	}
	select {
	case n.jobs <- j:
		observability.SetNotifyQueueDepth(len(n.jobs))
	default:
		observability.IncNotifyDropped()
		log.Warn().Int("room_id", roomID).Msg("notify queue full, job dropped")
	}
}

func (n *Notifier) run(ctx context.Context) {
	defer close(n.done)
	log.Info().Int("queue_cap", cap(n.jobs)).Msg("notification worker started")

	for j := range n.jobs {
		observability.SetNotifyQueueDepth(len(n.jobs))
		n.process(ctx, j)
	}
	log.Info().Msg("notification worker stopped")
}

func (n *Notifier) process(ctx context.Context, j job) {
	ctx, span := otel.Tracer("studymate/push").Start(ctx, "push.fanout")
	defer span.End()

	participants, err := n.rooms.ListParticipants(ctx, j.roomID)
	if err != nil {
		log.Error().Err(err).Int("room_id", j.roomID).Msg("fan-out roster load failed")
		return
	}

	total := DispatchResult{}
	for _, p := range participants {
		if p.UserID == j.excludeUserID {
			continue
		}
		result, err := n.Dispatch(ctx, p.UserID, j.note)
		if err != nil {
			// partial failure stays silent towards the sender, only logged
			log.Error().Err(err).Int("user_id", p.UserID).Int("room_id", j.roomID).Msg("push dispatch failed")
		}
		total.Delivered += result.Delivered
		total.Pruned += result.Pruned
		total.Failed += result.Failed
	}

	_ = observability.PublishEvent(ctx, "notify.dispatched", observability.EventEnvelope{
		EventType: "notify_events",
		EventName: "notify_dispatched",
		Payload: map[string]any{
			"job_id":  j.id,
			"room_id": j.roomID,
			"result":  total,
		},
	})
}

// Dispatch delivers the notification to every token registered for the
// user, token by token, pruning the ones the provider reports
// undeliverable. Per-token failures do not fail the call.
func (n *Notifier) Dispatch(ctx context.Context, userID int, note Notification) (DispatchResult, error) {
	var result DispatchResult

	tokens, err := n.devices.TokensForUsers(ctx, []int{userID})
	if err != nil {
		return result, fmt.Errorf("resolve tokens: %w", err)
	}
	if len(tokens) == 0 {
		return result, nil
	}

	tokenStrings := make([]string, 0, len(tokens))
	for _, t := range tokens {
		tokenStrings = append(tokenStrings, t.Token)
	}

	results, err := n.provider.Send(ctx, tokenStrings, note)
	if err != nil {
		observability.IncPushDispatch("error")
		return result, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	for _, r := range results {
		switch {
		case r.Invalid:
			result.Pruned++
			observability.IncPushTokenPruned()
			if err := n.devices.RemoveToken(ctx, r.Token); err != nil {
				log.Warn().Err(err).Msg("token prune failed")
			}
		case r.Err != nil:
			result.Failed++
			observability.IncPushDispatch("error")
			log.Warn().Err(r.Err).Int("user_id", userID).Msg("push token delivery failed")
		default:
			result.Delivered++
			observability.IncPushDispatch("ok")
		}
	}
	return result, nil
}
