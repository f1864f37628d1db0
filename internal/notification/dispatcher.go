package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gaming-notification-service/internal/push"
)

// PartitionOutcome is the result of one partition send.
type PartitionOutcome struct {
	State push.DeliveryState
	Err   error
}

func (o PartitionOutcome) Delivered() bool { return o.Err == nil }

// DispatchResult maps each partition to its outcome so callers can observe
// partial failure instead of a single collapsed error.
type DispatchResult map[PartitionKey]PartitionOutcome

// DeliveredCount reports how many partitions were accepted by the transport.
func (r DispatchResult) DeliveredCount() int {
	n := 0
	for _, outcome := range r {
		if outcome.Delivered() {
			n++
		}
	}
	return n
}

// FailedCount reports how many partitions failed.
func (r DispatchResult) FailedCount() int {
	return len(r) - r.DeliveredCount()
}

// Dispatcher executes a delivery plan against the push transport. Each
// partition is an isolated unit of failure and partitions run concurrently;
// nothing is retried here, redelivery belongs to the upstream event bus.
type Dispatcher struct {
	sender push.Sender
}

func NewDispatcher(sender push.Sender) *Dispatcher {
	return &Dispatcher{sender: sender}
}

// Dispatch fans the plan out per partition. The returned result always
// covers every partition; the error aggregates partition failures so the
// caller can hand the event back to the bus for redelivery.
func (d *Dispatcher) Dispatch(ctx context.Context, plan DeliveryPlan) (DispatchResult, error) {
	result := make(DispatchResult, len(plan.Partitions))

	// Push delivery is not locally transactional: once a partition send is
	// in flight it runs to completion even if the caller cancels.
	sendCtx := context.WithoutCancel(ctx)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, partition := range plan.Partitions {
		wg.Add(1)
		go func(p Partition) {
			defer wg.Done()
			outcome := d.dispatchPartition(sendCtx, p)
			mu.Lock()
			result[p.Key()] = outcome
			mu.Unlock()
		}(partition)
	}
	wg.Wait()

	if failed := result.FailedCount(); failed > 0 {
		return result, fmt.Errorf("dispatch completed with %d of %d partitions failed", failed, len(plan.Partitions))
	}
	return result, nil
}

func (d *Dispatcher) dispatchPartition(ctx context.Context, p Partition) PartitionOutcome {
	payload, err := BuildPayload(p.Event, p.Platform)
	if err != nil {
		return PartitionOutcome{Err: err}
	}

	target := push.Target{Platform: p.Platform, Expression: p.Expression}
	state, err := d.sender.Send(ctx, payload, target)
	if err != nil {
		slog.Error("Partition dispatch failed",
			"event_id", p.Event.EventID,
			"platform", p.Platform,
			"tags", p.Expression.String(),
			"error", err,
		)
		return PartitionOutcome{Err: &TransportError{Op: "send", Err: err}}
	}

	slog.Info("Partition dispatched",
		"event_id", p.Event.EventID,
		"platform", p.Platform,
		"tags", p.Expression.String(),
		"state", state,
	)
	return PartitionOutcome{State: state}
}
