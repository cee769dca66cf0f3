package telegram

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"github.com/Azamat-Raximov/telegrambot/internal/app"
	"github.com/Azamat-Raximov/telegrambot/internal/domain/schedule"
	"github.com/Azamat-Raximov/telegrambot/internal/domain/subscription"
)

// Setup conversation steps, in order.
const (
	stepFaculty = iota
	stepCourse
	stepSpecialization
	stepGroup
	stepNotifyTime
	stepConfirmation
)

const (
	btnConfirm = "Tasdiqlash ✅"
	btnRestart = "Qaytadan boshlash 🔁"
)

// FacultySource is the slice of the timetable pipeline onboarding needs.
type FacultySource interface {
	Faculties(ctx context.Context) (map[string]string, error)
	Groups(ctx context.Context, facultyID string) ([]string, error)
}

// TriggerScheduler is the scheduling surface onboarding drives.
type TriggerScheduler interface {
	Schedule(userID int64, hour, minute int)
}

// setupState carries one user's answers through the /start conversation.
type setupState struct {
	step           int
	faculties      map[string]string
	faculty        string
	facultyID      string
	course         string
	specialization string
	group          string
	notifyTime     string
}

// Handlers wires the bot's commands and the linear onboarding
// conversation. Conversation state lives in memory per user; /start
// re-enters it at any time and /cancel abandons it.
type Handlers struct {
	subs              subscription.Repository
	source            FacultySource
	notifier          *app.NotificationService
	scheduler         TriggerScheduler
	defaultNotifyMode string
	log               *logrus.Entry

	mu     sync.Mutex
	states map[int64]*setupState
}

func NewHandlers(
	subs subscription.Repository,
	source FacultySource,
	notifier *app.NotificationService,
	scheduler TriggerScheduler,
	defaultNotifyMode string,
	log *logrus.Entry,
) *Handlers {
	return &Handlers{
		subs:              subs,
		source:            source,
		notifier:          notifier,
		scheduler:         scheduler,
		defaultNotifyMode: defaultNotifyMode,
		log:               log,
		states:            make(map[int64]*setupState),
	}
}

// Register attaches all command and text handlers to the bot.
func (h *Handlers) Register(b *telebot.Bot) {
	b.Handle("/start", h.onStart)
	b.Handle("/cancel", h.onCancel)
	b.Handle("/today", func(c telebot.Context) error { return h.onDay(c, schedule.ModeToday) })
	b.Handle("/tomorrow", func(c telebot.Context) error { return h.onDay(c, schedule.ModeTomorrow) })
	b.Handle("/week", h.onWeek)
	b.Handle(telebot.OnText, h.onText)
}

func (h *Handlers) onStart(c telebot.Context) error {
	userID := c.Sender().ID
	logCtx := h.log.WithFields(logrus.Fields{"command": "/start", "user_id": userID})

	ctx, cancel := handlerContext()
	defer cancel()

	// An already configured user gets their summary instead of the wizard,
	// unless they are mid-conversation (then /start restarts it).
	h.mu.Lock()
	_, inProgress := h.states[userID]
	h.mu.Unlock()
	if !inProgress {
		if sub, err := h.subs.Get(ctx, userID); err == nil && sub.Complete() && sub.NotifyTime != "" {
			logCtx.Info("Known user, sending settings summary")
			return c.Send(fmt.Sprintf(
				"Assalomu alaykum! 😊 Siz ro'yxatdan o'tgansiz.\n"+
					"Fakultet: %s\nKurs: %s-kurs\nYo'nalish: %s\nGuruh: %s\nXabar vaqti: %s\n\n"+
					"Jadvalni ko'rish uchun: /today, /tomorrow, /week\n"+
					"Sozlamalarni o'zgartirish uchun /start buyrug'ini qayta yuboring va keyingi xabaringiz bilan sozlashni boshlang.",
				sub.Faculty, sub.Course, sub.Specialization, sub.Group, sub.NotifyTime))
		}
	}

	if err := c.Send("Assalomu alaykum! 👋\nMen GulDU talabalari uchun dars jadvalini yuboradigan botman.\nKeling, ma'lumotlaringizni birma-bir kiritamiz."); err != nil {
		return err
	}

	faculties, err := h.source.Faculties(ctx)
	if err != nil || len(faculties) == 0 {
		if err != nil {
			logCtx.WithError(err).Error("Could not fetch faculty index for onboarding")
		} else {
			logCtx.Warn("Faculty index came back empty")
		}
		return c.Send("Xatolik: Fakultetlarni olib bo'lmadi. Iltimos, birozdan so'ng qayta urinib ko'ring.")
	}

	h.mu.Lock()
	h.states[userID] = &setupState{step: stepFaculty, faculties: faculties}
	h.mu.Unlock()

	names := make([]string, 0, len(faculties))
	for name := range faculties {
		names = append(names, name)
	}
	sort.Strings(names)
	return c.Send("Iltimos, fakultetingizni tanlang 👇", replyKeyboard(names, 1))
}

func (h *Handlers) onCancel(c telebot.Context) error {
	h.mu.Lock()
	delete(h.states, c.Sender().ID)
	h.mu.Unlock()
	return c.Send("Jarayon bekor qilindi.", removeKeyboard())
}

func (h *Handlers) onText(c telebot.Context) error {
	userID := c.Sender().ID

	h.mu.Lock()
	state := h.states[userID]
	h.mu.Unlock()
	if state == nil {
		return nil // not in a conversation; ignore free text
	}

	switch state.step {
	case stepFaculty:
		return h.facultyStep(c, state)
	case stepCourse:
		return h.courseStep(c, state)
	case stepSpecialization:
		state.specialization = c.Text()
		state.step = stepGroup
		return h.askGroup(c, state)
	case stepGroup:
		state.group = c.Text()
		state.step = stepNotifyTime
		return c.Send(
			"Har kuni soat nechida dars jadvalini yuborishimni xohlaysiz? ⏰\nFormat: HH:MM (masalan: 07:00 yoki 21:30)",
			removeKeyboard())
	case stepNotifyTime:
		return h.notifyTimeStep(c, state)
	case stepConfirmation:
		return h.confirmationStep(c, state)
	}
	return nil
}

func (h *Handlers) facultyStep(c telebot.Context, state *setupState) error {
	name := c.Text()
	id, ok := state.faculties[name]
	if !ok {
		return c.Send("Iltimos, fakultetni quyidagi tugmalardan birini bosib tanlang.")
	}
	state.faculty = name
	state.facultyID = id
	state.step = stepCourse
	return c.Send("Kursingizni tanlang 👇",
		replyKeyboard([]string{"1-kurs", "2-kurs", "3-kurs", "4-kurs"}, 2))
}

func (h *Handlers) courseStep(c telebot.Context, state *setupState) error {
	text := c.Text()
	if !strings.HasSuffix(text, "-kurs") {
		return c.Send("Iltimos, kursni tugmalar yordamida tanlang.")
	}
	state.course = strings.TrimSuffix(text, "-kurs")
	state.step = stepSpecialization
	return c.Send("Endi yo'nalishingiz nomini kiriting (masalan, 'Matematika' yoki 'Kompyuter ilmlari'):", removeKeyboard())
}

// askGroup offers the faculty's group list as buttons when the site
// provides one; typed group names are accepted either way.
func (h *Handlers) askGroup(c telebot.Context, state *setupState) error {
	ctx, cancel := handlerContext()
	defer cancel()

	groups, err := h.source.Groups(ctx, state.facultyID)
	if err != nil || len(groups) == 0 {
		if err != nil {
			h.log.WithError(err).WithField("faculty_id", state.facultyID).
				Warn("Could not fetch group list, falling back to free text")
		}
		return c.Send("Guruhingiz nomini kiriting (masalan, 101-23):", removeKeyboard())
	}
	return c.Send("Guruhingizni tanlang yoki nomini yozing 👇", replyKeyboard(groups, 2))
}

func (h *Handlers) notifyTimeStep(c telebot.Context, state *setupState) error {
	text := c.Text()
	if _, _, err := subscription.ParseNotifyTime(text); err != nil {
		return c.Send("Vaqtni noto'g'ri formatda kiritdingiz. Iltimos, HH:MM formatida kiriting (masalan: 08:00).")
	}
	state.notifyTime = text
	state.step = stepConfirmation
	return c.Send(fmt.Sprintf(
		"Ma'lumotlaringizni tasdiqlang:\n\n"+
			"🎓 Fakultet: %s\n👨‍🎓 Kurs: %s-kurs\n📖 Yo'nalish: %s\n👥 Guruh: %s\n⏰ Xabar vaqti: %s\n\n"+
			"Agar hammasi to'g'ri bo'lsa, '%s' tugmasini bosing.",
		state.faculty, state.course, state.specialization, state.group, state.notifyTime, btnConfirm),
		replyKeyboard([]string{btnConfirm, btnRestart}, 2))
}

func (h *Handlers) confirmationStep(c telebot.Context, state *setupState) error {
	userID := c.Sender().ID

	switch c.Text() {
	case btnRestart:
		h.mu.Lock()
		delete(h.states, userID)
		h.mu.Unlock()
		return h.onStart(c)
	case btnConfirm:
	default:
		return c.Send("Iltimos, tugmalardan birini tanlang.")
	}

	sub := &subscription.Subscription{
		UserID:         userID,
		Faculty:        state.faculty,
		FacultyID:      state.facultyID,
		Course:         state.course,
		Specialization: state.specialization,
		Group:          state.group,
		NotifyTime:     state.notifyTime,
		NotifyMode:     h.defaultNotifyMode,
	}

	ctx, cancel := handlerContext()
	defer cancel()
	if err := h.subs.Save(ctx, sub); err != nil {
		h.log.WithError(err).WithField("user_id", userID).Error("Could not save subscription")
		return c.Send("Xatolik yuz berdi. Iltimos, qayta urinib ko'ring.")
	}

	hour, minute, err := subscription.ParseNotifyTime(state.notifyTime)
	if err != nil {
		// Validated at stepNotifyTime; reaching here means the state was
		// corrupted, restart the conversation.
		h.mu.Lock()
		delete(h.states, userID)
		h.mu.Unlock()
		return c.Send("Xatolik yuz berdi. /start orqali qayta sozlang.")
	}
	h.scheduler.Schedule(userID, hour, minute)

	h.mu.Lock()
	delete(h.states, userID)
	h.mu.Unlock()

	h.log.WithFields(logrus.Fields{"user_id": userID, "group": sub.Group}).Info("User setup complete")
	return c.Send(
		"Hammasi sozlandi! 🎉\nJadvalni ko'rish uchun /today, /tomorrow, /week buyruqlaridan foydalaning.",
		removeKeyboard())
}

func (h *Handlers) onDay(c telebot.Context, mode string) error {
	sub, err := h.subscriptionFor(c)
	if err != nil || sub == nil {
		return err
	}
	ctx, cancel := handlerContext()
	defer cancel()
	if err := h.notifier.SendDay(ctx, sub, mode); err != nil {
		h.log.WithError(err).WithField("user_id", sub.UserID).Error("Could not send day schedule")
		return c.Send("Jadvalni olib bo'lmadi. Iltimos, birozdan so'ng qayta urinib ko'ring.")
	}
	return nil
}

func (h *Handlers) onWeek(c telebot.Context) error {
	sub, err := h.subscriptionFor(c)
	if err != nil || sub == nil {
		return err
	}
	ctx, cancel := handlerContext()
	defer cancel()
	if err := h.notifier.SendWeek(ctx, sub); err != nil {
		h.log.WithError(err).WithField("user_id", sub.UserID).Error("Could not send week schedule")
		return c.Send("Jadvalni olib bo'lmadi. Iltimos, birozdan so'ng qayta urinib ko'ring.")
	}
	return nil
}

// subscriptionFor loads the sender's subscription, replying with a hint
// when they are not set up yet. A nil, nil return means "already replied".
func (h *Handlers) subscriptionFor(c telebot.Context) (*subscription.Subscription, error) {
	ctx, cancel := handlerContext()
	defer cancel()

	sub, err := h.subs.Get(ctx, c.Sender().ID)
	if err != nil {
		return nil, c.Send("Siz ro'yxatdan o'tmagansiz. /start buyrug'ini bosing.")
	}
	if !sub.Complete() {
		return nil, c.Send("Fakultet yoki guruh ma'lumotlari topilmadi. /start orqali qayta sozlang.")
	}
	return sub, nil
}
