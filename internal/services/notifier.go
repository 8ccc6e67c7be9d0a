package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rebecca-roussel/ecoride/internal/metrics"
	"github.com/rebecca-roussel/ecoride/pkg/logger"
)

type RideMailer interface {
	SendRideCancelledEmail(to []string, from, dest string, departure time.Time) error
	SendReviewRequestEmail(to []string, from, dest string, rideID uint) error
}

type RealtimePusher interface {
	SendToUser(userID uint, message WebSocketMessage) error
}

type RidePublisher interface {
	PublishRideUpdate(ctx context.Context, notice RideNotice) error
}

// FanOutNotifier delivers a ride notice by mail, websocket and redis
// pub/sub. Every channel is attempted; failures are counted and joined.
type FanOutNotifier struct {
	mailer    RideMailer
	pusher    RealtimePusher
	publisher RidePublisher
	metrics   *metrics.Metrics
	log       *logger.Logger
}

// NewFanOutNotifier accepts nil for any channel that is not configured.
func NewFanOutNotifier(mailer RideMailer, pusher RealtimePusher, publisher RidePublisher, m *metrics.Metrics, log *logger.Logger) *FanOutNotifier {
	return &FanOutNotifier{mailer: mailer, pusher: pusher, publisher: publisher, metrics: m, log: log}
}

func (n *FanOutNotifier) NotifyRide(ctx context.Context, notice RideNotice) error {
	var errs []error

	if n.mailer != nil {
		if err := n.mail(notice); err != nil {
			n.metrics.SideEffectFailed("mail")
			errs = append(errs, err)
		}
	}

	if n.pusher != nil {
		message := WebSocketMessage{
			Type: string(notice.Kind),
			Data: map[string]interface{}{
				"rideId":         notice.Ride.ID,
				"status":         notice.Ride.Status,
				"seatsAvailable": notice.Ride.SeatsAvailable,
			},
		}
		for _, r := range notice.Recipients {
			if err := n.pusher.SendToUser(r.UserID, message); err != nil {
				n.metrics.SideEffectFailed("push")
				errs = append(errs, fmt.Errorf("push to user %d: %w", r.UserID, err))
			}
		}
	}

	if n.publisher != nil {
		if err := n.publisher.PublishRideUpdate(ctx, notice); err != nil {
			n.metrics.SideEffectFailed("pubsub")
			errs = append(errs, fmt.Errorf("publish ride update: %w", err))
		}
	}

	return errors.Join(errs...)
}

// mail only covers the notices passengers must act on or be told about.
func (n *FanOutNotifier) mail(notice RideNotice) error {
	to := make([]string, 0, len(notice.Recipients))
	for _, r := range notice.Recipients {
		if r.Email != "" {
			to = append(to, r.Email)
		}
	}
	if len(to) == 0 {
		return nil
	}

	ride := notice.Ride
	switch notice.Kind {
	case NoticeRideCancelled:
		return n.mailer.SendRideCancelledEmail(to, ride.DepartureCity, ride.ArrivalCity, ride.DepartureAt)
	case NoticeRideCompleted:
		return n.mailer.SendReviewRequestEmail(to, ride.DepartureCity, ride.ArrivalCity, ride.ID)
	default:
		return nil
	}
}
