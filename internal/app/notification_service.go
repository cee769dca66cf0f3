package app

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"github.com/Azamat-Raximov/telegrambot/internal/domain/schedule"
	"github.com/Azamat-Raximov/telegrambot/internal/domain/subscription"
	domainTelegram "github.com/Azamat-Raximov/telegrambot/internal/domain/telegram"
)

// ScheduleSource is the read side of the timetable pipeline as dispatch
// sees it.
type ScheduleSource interface {
	WeekSchedule(ctx context.Context, facultyID, group string) (schedule.WeekSchedule, error)
}

const dispatchTimeout = 30 * time.Second

// NotificationService resolves a fired trigger, or an explicit command,
// into a delivered timetable message.
type NotificationService struct {
	subs   subscription.Repository
	source ScheduleSource
	client domainTelegram.Client
	loc    *time.Location
	log    *logrus.Entry
}

func NewNotificationService(
	subs subscription.Repository,
	source ScheduleSource,
	client domainTelegram.Client,
	loc *time.Location,
	log *logrus.Entry,
) *NotificationService {
	return &NotificationService{
		subs:   subs,
		source: source,
		client: client,
		loc:    loc,
		log:    log,
	}
}

// NotifyUser is the trigger callback. It loads the user's subscription,
// picks the day their notify mode points at and sends the rendered
// schedule. Every failure is logged and swallowed here: one user's bad
// fetch or delivery must not disturb anyone else's trigger.
func (s *NotificationService) NotifyUser(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	logCtx := s.log.WithField("user_id", userID)

	sub, err := s.subs.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			logCtx.Debug("Trigger fired for a removed user, skipping")
		} else {
			logCtx.WithError(err).Error("Could not load subscription for notification")
		}
		return
	}
	if !sub.Complete() {
		logCtx.Debug("Subscription incomplete, skipping notification")
		return
	}

	day := schedule.WeekdayFor(sub.NotifyMode, time.Now().In(s.loc))
	text, err := s.renderDay(ctx, sub, day)
	if err != nil {
		logCtx.WithError(err).Error("Could not build notification message")
		return
	}
	if err := s.client.SendMessage(userID, text, markdownOpts()); err != nil {
		logCtx.WithError(err).Error("Notification delivery failed")
		return
	}
	logCtx.WithField("day", day).Info("Daily timetable notification sent")
}

// SendDay answers the /today and /tomorrow commands.
func (s *NotificationService) SendDay(ctx context.Context, sub *subscription.Subscription, mode string) error {
	day := schedule.WeekdayFor(mode, time.Now().In(s.loc))
	text, err := s.renderDay(ctx, sub, day)
	if err != nil {
		return err
	}
	return s.client.SendMessage(sub.UserID, text, markdownOpts())
}

// SendWeek answers the /week command.
func (s *NotificationService) SendWeek(ctx context.Context, sub *subscription.Subscription) error {
	week, err := s.source.WeekSchedule(ctx, sub.FacultyID, sub.Group)
	if err != nil {
		return err
	}
	return s.client.SendMessage(sub.UserID, RenderWeek(sub.Group, week), markdownOpts())
}

func (s *NotificationService) renderDay(ctx context.Context, sub *subscription.Subscription, day string) (string, error) {
	week, err := s.source.WeekSchedule(ctx, sub.FacultyID, sub.Group)
	if err != nil {
		return "", err
	}
	lessons := week[day]
	if len(lessons) == 0 {
		return RenderNoLessons(day), nil
	}
	return RenderDay(sub.Group, day, lessons), nil
}

func markdownOpts() *telebot.SendOptions {
	return &telebot.SendOptions{ParseMode: telebot.ModeMarkdown}
}
