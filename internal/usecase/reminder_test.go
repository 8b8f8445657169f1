package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/dosepilot/reminder-service/internal/domain"
	"github.com/dosepilot/reminder-service/internal/notify"
	"github.com/dosepilot/reminder-service/internal/repository"
)

type fakeStore struct {
	replaceSetFn     func(ctx context.Context, userID string, set repository.ReminderSet) error
	getSetFn         func(ctx context.Context, userID string) (repository.ReminderSet, error)
	deleteReminderFn func(ctx context.Context, userID, reminderID string) error
	deleteSetFn      func(ctx context.Context, userID string) error
	listUserIDsFn    func(ctx context.Context) ([]string, error)
}

func (f *fakeStore) ReplaceSet(ctx context.Context, userID string, set repository.ReminderSet) error {
	return f.replaceSetFn(ctx, userID, set)
}

func (f *fakeStore) GetSet(ctx context.Context, userID string) (repository.ReminderSet, error) {
	return f.getSetFn(ctx, userID)
}

func (f *fakeStore) DeleteReminder(ctx context.Context, userID, reminderID string) error {
	return f.deleteReminderFn(ctx, userID, reminderID)
}

func (f *fakeStore) DeleteSet(ctx context.Context, userID string) error {
	return f.deleteSetFn(ctx, userID)
}

func (f *fakeStore) ListUserIDs(ctx context.Context) ([]string, error) {
	return f.listUserIDsFn(ctx)
}

type fakeScheduler struct {
	scheduleAllFn    func(userID string, meds []domain.Medication, rems []domain.Reminder) int
	cancelReminderFn func(userID, reminderID string) int
	clearUserFn      func(userID string) int
}

func (f *fakeScheduler) ScheduleAll(userID string, meds []domain.Medication, rems []domain.Reminder) int {
	return f.scheduleAllFn(userID, meds, rems)
}

func (f *fakeScheduler) CancelReminder(userID, reminderID string) int {
	return f.cancelReminderFn(userID, reminderID)
}

func (f *fakeScheduler) ClearUser(userID string) int {
	return f.clearUserFn(userID)
}

type fakeDispatcher struct {
	deliverFn func(ctx context.Context, userID string, med domain.Medication, rem domain.Reminder) notify.Outcome
}

func (f *fakeDispatcher) Deliver(ctx context.Context, userID string, med domain.Medication, rem domain.Reminder) notify.Outcome {
	return f.deliverFn(ctx, userID, med, rem)
}

type fakeDeliveries struct {
	listFn func(ctx context.Context, userID string, limit int) ([]*domain.Delivery, error)
}

func (f *fakeDeliveries) Record(_ context.Context, _ *domain.Delivery) error { return nil }

func (f *fakeDeliveries) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Delivery, error) {
	return f.listFn(ctx, userID, limit)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduleAll_PersistsBeforeScheduling(t *testing.T) {
	var order []string

	store := &fakeStore{
		replaceSetFn: func(_ context.Context, userID string, set repository.ReminderSet) error {
			order = append(order, "persist")
			if userID != "u1" {
				t.Errorf("persisted for user %q, want u1", userID)
			}
			for _, m := range set.Medications {
				if m.UserID != "u1" {
					t.Errorf("medication UserID = %q, want stamped u1", m.UserID)
				}
			}
			for _, r := range set.Reminders {
				if r.UserID != "u1" {
					t.Errorf("reminder UserID = %q, want stamped u1", r.UserID)
				}
			}
			return nil
		},
	}
	sched := &fakeScheduler{
		scheduleAllFn: func(string, []domain.Medication, []domain.Reminder) int {
			order = append(order, "schedule")
			return 4
		},
	}

	uc := NewReminderUsecase(store, &fakeDeliveries{}, sched, &fakeDispatcher{}, discardLogger())
	n, err := uc.ScheduleAll(context.Background(), ScheduleAllInput{
		UserID:      "u1",
		Medications: []domain.Medication{{ID: "m1", Name: "Vitamin D"}},
		Reminders:   []domain.Reminder{{ID: "r1", MedicationID: "m1", Time: "08:00", Days: []string{"monday"}, Enabled: true}},
	})
	if err != nil {
		t.Fatalf("ScheduleAll: %v", err)
	}
	if n != 4 {
		t.Errorf("scheduled = %d, want 4", n)
	}
	if len(order) != 2 || order[0] != "persist" || order[1] != "schedule" {
		t.Errorf("order = %v, want [persist schedule]", order)
	}
}

func TestScheduleAll_StoreFailure_DoesNotTouchSchedule(t *testing.T) {
	store := &fakeStore{
		replaceSetFn: func(context.Context, string, repository.ReminderSet) error {
			return errors.New("pg down")
		},
	}
	sched := &fakeScheduler{
		scheduleAllFn: func(string, []domain.Medication, []domain.Reminder) int {
			t.Fatal("scheduler must not run when persistence fails")
			return 0
		},
	}

	uc := NewReminderUsecase(store, &fakeDeliveries{}, sched, &fakeDispatcher{}, discardLogger())
	_, err := uc.ScheduleAll(context.Background(), ScheduleAllInput{UserID: "u1"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestScheduleAll_UnknownMedication_DroppedNotFatal(t *testing.T) {
	// A reminder pointing at a medication that isn't in the submitted set must
	// be dropped before persistence — the store's FK would otherwise reject
	// the whole batch — while the valid reminders go through untouched.
	store := &fakeStore{
		replaceSetFn: func(_ context.Context, _ string, set repository.ReminderSet) error {
			if len(set.Reminders) != 1 || set.Reminders[0].ID != "r2" {
				t.Errorf("persisted reminders = %+v, want only r2", set.Reminders)
			}
			return nil
		},
	}
	sched := &fakeScheduler{
		scheduleAllFn: func(_ string, _ []domain.Medication, rems []domain.Reminder) int {
			if len(rems) != 1 || rems[0].ID != "r2" {
				t.Errorf("scheduled reminders = %+v, want only r2", rems)
			}
			return 2
		},
	}

	uc := NewReminderUsecase(store, &fakeDeliveries{}, sched, &fakeDispatcher{}, discardLogger())
	n, err := uc.ScheduleAll(context.Background(), ScheduleAllInput{
		UserID:      "u1",
		Medications: []domain.Medication{{ID: "m1", Name: "Vitamin D"}},
		Reminders: []domain.Reminder{
			{ID: "r1", MedicationID: "missing", Time: "08:00", Days: []string{"monday"}, Enabled: true},
			{ID: "r2", MedicationID: "m1", Time: "09:00", Days: []string{"tuesday", "thursday"}, Enabled: true},
		},
	})
	if err != nil {
		t.Fatalf("ScheduleAll: %v", err)
	}
	if n != 2 {
		t.Errorf("scheduled = %d, want 2 (bad reminder dropped, rest kept)", n)
	}
}

func TestScheduleAll_MissingUserID(t *testing.T) {
	uc := NewReminderUsecase(&fakeStore{}, &fakeDeliveries{}, &fakeScheduler{}, &fakeDispatcher{}, discardLogger())
	_, err := uc.ScheduleAll(context.Background(), ScheduleAllInput{})
	if !errors.Is(err, domain.ErrMissingUserID) {
		t.Fatalf("err = %v, want ErrMissingUserID", err)
	}
}

func TestCancelReminder_DeletesThenCancels(t *testing.T) {
	deleted, cancelled := false, false
	store := &fakeStore{
		deleteReminderFn: func(_ context.Context, userID, reminderID string) error {
			deleted = true
			if userID != "u1" || reminderID != "r1" {
				t.Errorf("deleted (%q, %q), want (u1, r1)", userID, reminderID)
			}
			return nil
		},
	}
	sched := &fakeScheduler{
		cancelReminderFn: func(userID, reminderID string) int {
			cancelled = true
			return 3
		},
	}

	uc := NewReminderUsecase(store, &fakeDeliveries{}, sched, &fakeDispatcher{}, discardLogger())
	if err := uc.CancelReminder(context.Background(), "u1", "r1"); err != nil {
		t.Fatalf("CancelReminder: %v", err)
	}
	if !deleted || !cancelled {
		t.Errorf("deleted=%v cancelled=%v, want both", deleted, cancelled)
	}
}

func TestClearUser(t *testing.T) {
	cleared := false
	store := &fakeStore{
		deleteSetFn: func(_ context.Context, userID string) error { return nil },
	}
	sched := &fakeScheduler{
		clearUserFn: func(userID string) int {
			cleared = true
			return 5
		},
	}

	uc := NewReminderUsecase(store, &fakeDeliveries{}, sched, &fakeDispatcher{}, discardLogger())
	if err := uc.ClearUser(context.Background(), "u1"); err != nil {
		t.Fatalf("ClearUser: %v", err)
	}
	if !cleared {
		t.Error("scheduler jobs not cleared")
	}
}

func TestSendTest_Success(t *testing.T) {
	disp := &fakeDispatcher{
		deliverFn: func(_ context.Context, userID string, med domain.Medication, _ domain.Reminder) notify.Outcome {
			if med.Name != "Test notification" {
				t.Errorf("med.Name = %q", med.Name)
			}
			return notify.Outcome{Delivered: true, Channel: notify.ChannelPush, MessageID: "msg-1"}
		},
	}

	uc := NewReminderUsecase(&fakeStore{}, &fakeDeliveries{}, &fakeScheduler{}, disp, discardLogger())
	id, err := uc.SendTest(context.Background(), "u1")
	if err != nil {
		t.Fatalf("SendTest: %v", err)
	}
	if id != "msg-1" {
		t.Errorf("message id = %q, want msg-1", id)
	}
}

func TestSendTest_Failure(t *testing.T) {
	disp := &fakeDispatcher{
		deliverFn: func(context.Context, string, domain.Medication, domain.Reminder) notify.Outcome {
			return notify.Outcome{Channel: notify.ChannelPush, Err: errors.New("gateway 502")}
		},
	}

	uc := NewReminderUsecase(&fakeStore{}, &fakeDeliveries{}, &fakeScheduler{}, disp, discardLogger())
	_, err := uc.SendTest(context.Background(), "u1")
	if !errors.Is(err, domain.ErrDeliveryFailed) {
		t.Fatalf("err = %v, want ErrDeliveryFailed", err)
	}
}

func TestRehydrate_SkipsBrokenUsers(t *testing.T) {
	store := &fakeStore{
		listUserIDsFn: func(context.Context) ([]string, error) {
			return []string{"u1", "broken", "u3"}, nil
		},
		getSetFn: func(_ context.Context, userID string) (repository.ReminderSet, error) {
			if userID == "broken" {
				return repository.ReminderSet{}, errors.New("corrupt row")
			}
			return repository.ReminderSet{}, nil
		},
	}
	scheduledFor := []string{}
	sched := &fakeScheduler{
		scheduleAllFn: func(userID string, _ []domain.Medication, _ []domain.Reminder) int {
			scheduledFor = append(scheduledFor, userID)
			return 0
		},
	}

	uc := NewReminderUsecase(store, &fakeDeliveries{}, sched, &fakeDispatcher{}, discardLogger())
	n, err := uc.Rehydrate(context.Background())
	if err != nil {
		t.Fatalf("Rehydrate: %v", err)
	}
	if n != 2 {
		t.Errorf("resynced = %d, want 2", n)
	}
	if len(scheduledFor) != 2 || scheduledFor[0] != "u1" || scheduledFor[1] != "u3" {
		t.Errorf("scheduled for %v, want [u1 u3]", scheduledFor)
	}
}

func TestDeliveries_ClampsLimit(t *testing.T) {
	var gotLimit int
	deliveries := &fakeDeliveries{
		listFn: func(_ context.Context, _ string, limit int) ([]*domain.Delivery, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	uc := NewReminderUsecase(&fakeStore{}, deliveries, &fakeScheduler{}, &fakeDispatcher{}, discardLogger())

	for _, tc := range []struct{ in, want int }{
		{0, defaultDeliveryLimit},
		{-5, defaultDeliveryLimit},
		{50, 50},
		{1000, maxDeliveryLimit},
	} {
		if _, err := uc.Deliveries(context.Background(), "u1", tc.in); err != nil {
			t.Fatalf("Deliveries(%d): %v", tc.in, err)
		}
		if gotLimit != tc.want {
			t.Errorf("limit %d clamped to %d, want %d", tc.in, gotLimit, tc.want)
		}
	}
}
