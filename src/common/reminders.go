package common

import (
	"context"
	"fmt"
	"log"
	"time"

	"lodging/src/models"
	"lodging/src/services"

	"github.com/go-co-op/gocron/v2"
)

// CheckinReminders emits reservation.checkin_window_open when the check-in
// window of a reservation opens.
type CheckinReminders struct {
	scheduler gocron.Scheduler
	notifier  services.Notifier
	window    time.Duration
	now       func() time.Time
}

func NewCheckinReminders(scheduler gocron.Scheduler, notifier services.Notifier, window time.Duration) *CheckinReminders {
	return &CheckinReminders{
		scheduler: scheduler,
		notifier:  notifier,
		window:    window,
		now:       time.Now,
	}
}

func (c *CheckinReminders) ScheduleCheckinWindow(ctx context.Context, r models.Reservation) error {
	runsAt := r.CheckInDate.Add(-c.window)
	start := gocron.OneTimeJobStartDateTime(runsAt)
	if !runsAt.After(c.now()) {
		start = gocron.OneTimeJobStartImmediately()
	}
	j, err := c.scheduler.NewJob(
		gocron.OneTimeJob(start),
		gocron.NewTask(func(r models.Reservation) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			event := services.NewEvent(services.EventCheckinWindowOpen, r, time.Now().UTC())
			if err := c.notifier.Notify(ctx, event); err != nil {
				log.Printf("[Reminders] error: %s\n", err.Error())
			}
		}, r),
		gocron.WithName(fmt.Sprintf("Reservation_%d_CheckinWindow", r.ID)),
		gocron.WithTags(reminderTag(r.ID)),
	)
	if err != nil {
		return err
	}
	log.Printf("[Reminders] job %s scheduled at: %s\n", j.ID().String(), runsAt.UTC())
	return nil
}

// CancelCheckinWindow drops the pending reminder of a reservation. It is a
// no-op when the job already ran or was never scheduled.
func (c *CheckinReminders) CancelCheckinWindow(_ context.Context, reservationID uint) error {
	c.scheduler.RemoveByTags(reminderTag(reservationID))
	return nil
}

func reminderTag(reservationID uint) string {
	return fmt.Sprintf("reservation:%d", reservationID)
}
