package drowsinessService

import (
	"WakeGuard/internal/api/drowsiness"
	drowsinessRepository "WakeGuard/internal/api/drowsiness/repository"
	"WakeGuard/internal/entity"
	"WakeGuard/pkg/clock"
	"WakeGuard/pkg/log"
	"WakeGuard/pkg/utils"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const backgroundTimeout = 10 * time.Second

// AlertContext carries what the dispatcher needs from the frame that caused
// the transitions. Frame is only read synchronously.
type AlertContext struct {
	Frame           entity.VideoFrame
	ClosedEyeFrames int
	YawnFrames      int
	EAR             *float64
}

// Dispatcher turns alarm transitions into side effects. Nothing it does
// blocks the frame loop beyond encoding a snapshot.
type Dispatcher struct {
	log        *logrus.Logger
	clock      clock.Clock
	repo       drowsinessRepository.Repository
	alerts     drowsiness.AlertSettings
	audio      AlarmPlayer
	notifier   Notifier
	publisher  EventPublisher
	snapshots  SnapshotStore
	cooldown   *SmsCooldown
	utils      utils.IUtils
	background sync.WaitGroup
}

func NewDispatcher(
	log *logrus.Logger,
	clk clock.Clock,
	repo drowsinessRepository.Repository,
	thresholds drowsiness.Thresholds,
	alerts drowsiness.AlertSettings,
	audio AlarmPlayer,
	notifier Notifier,
	publisher EventPublisher,
	snapshots SnapshotStore,
) *Dispatcher {
	return &Dispatcher{
		log:       log,
		clock:     clk,
		repo:      repo,
		alerts:    alerts,
		audio:     audio,
		notifier:  notifier,
		publisher: publisher,
		snapshots: snapshots,
		cooldown:  NewSmsCooldown(thresholds.SMSCooldown),
		utils:     utils.New(),
	}
}

func (d *Dispatcher) Handle(transitions []entity.Transition, ac AlertContext) {
	for _, t := range transitions {
		event := d.record(t, ac)

		if d.publisher != nil {
			d.goBackground(func(ctx context.Context) {
				if err := d.publisher.PublishAlert(ctx, event); err != nil {
					d.log.WithFields(log.Fields{
						"event_id": event.ID,
						"error":    err.Error(),
					}).Warn("Failed to publish alert event")
				}
			})
		}

		if t.Kind != entity.AlertDrowsiness {
			continue
		}

		switch {
		case t.Entered():
			if d.audio != nil {
				d.audio.PlayLooping()
			}
			d.notify(event)
			d.uploadSnapshot(event, ac.Frame)
		case t.Exited():
			if d.audio != nil {
				d.audio.Stop()
			}
		}
	}
}

// Wait blocks until queued notifications, publishes and uploads finish.
func (d *Dispatcher) Wait() {
	d.background.Wait()
}

func (d *Dispatcher) record(t entity.Transition, ac AlertContext) entity.AlertEvent {
	now := d.clock.Now()
	id, err := d.utils.NewULIDFromTimestamp(now)
	if err != nil {
		id = fmt.Sprintf("%d", now.UnixNano())
	}

	event := entity.AlertEvent{
		ID:              id,
		Kind:            t.Kind,
		From:            t.From,
		To:              t.To,
		ClosedEyeFrames: ac.ClosedEyeFrames,
		YawnFrames:      ac.YawnFrames,
		EAR:             ac.EAR,
		OccurredAt:      now,
	}

	d.log.WithFields(log.Fields{
		"event_id":          event.ID,
		"kind":              event.Kind,
		"from":              event.From,
		"to":                event.To,
		"closed_eye_frames": event.ClosedEyeFrames,
		"yawn_frames":       event.YawnFrames,
	}).Info("Alarm state changed")

	if err := d.repo.AppendAlert(context.Background(), event); err != nil {
		d.log.WithFields(log.Fields{
			"event_id": event.ID,
			"error":    err.Error(),
		}).Error("Failed to record alert event")
	}

	return event
}

func (d *Dispatcher) notify(event entity.AlertEvent) {
	if d.notifier == nil {
		return
	}

	now := d.clock.Now()
	if !d.cooldown.TryAcquire(now) {
		d.log.WithFields(log.Fields{
			"event_id":       event.ID,
			"last_delivered": d.cooldown.LastDelivered(),
		}).Info("Notification suppressed by cooldown")
		return
	}

	msg := entity.Notification{
		From: d.alerts.From,
		To:   d.alerts.To,
		Text: d.alerts.Message,
	}

	d.background.Add(1)
	go func() {
		defer d.background.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.alerts.NotifyTimeout)
		defer cancel()

		receipt, err := d.notifier.Send(ctx, msg)
		delivered := err == nil && receipt.Accepted
		d.cooldown.Release(delivered, now)

		fields := log.Fields{
			"event_id": event.ID,
			"to":       msg.To,
			"code":     receipt.Code,
		}
		switch {
		case err != nil:
			fields["error"] = err.Error()
			d.log.WithFields(fields).Error("Failed to send alert notification")
		case !delivered:
			fields["detail"] = receipt.Detail
			d.log.WithFields(fields).Warn("Alert notification rejected")
		default:
			d.log.WithFields(fields).Info("Alert notification sent")
		}
	}()
}

func (d *Dispatcher) uploadSnapshot(event entity.AlertEvent, frame entity.VideoFrame) {
	if d.snapshots == nil || !d.alerts.UploadSnapshot || frame == nil {
		return
	}

	jpeg, err := frame.EncodeJPEG()
	if err != nil {
		d.log.WithFields(log.Fields{
			"event_id": event.ID,
			"error":    err.Error(),
		}).Warn("Failed to encode alert snapshot")
		return
	}

	key := d.utils.SnapshotKey(event.ID, event.OccurredAt)
	d.goBackground(func(ctx context.Context) {
		location, err := d.snapshots.UploadSnapshot(ctx, key, jpeg)
		if err != nil {
			d.log.WithFields(log.Fields{
				"event_id": event.ID,
				"key":      key,
				"error":    err.Error(),
			}).Warn("Failed to upload alert snapshot")
			return
		}

		if err := d.repo.AttachSnapshot(ctx, event.ID, location); err != nil {
			d.log.WithFields(log.Fields{
				"event_id": event.ID,
				"error":    err.Error(),
			}).Debug("Alert event gone before snapshot landed")
		}
	})
}

func (d *Dispatcher) goBackground(fn func(ctx context.Context)) {
	d.background.Add(1)
	go func() {
		defer d.background.Done()
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()
		fn(ctx)
	}()
}
