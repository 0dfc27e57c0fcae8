package switch_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GYM-ClassService/internal/domain"
	"github.com/m04kA/GYM-ClassService/internal/infra/notify"
	bookingRepo "github.com/m04kA/GYM-ClassService/internal/infra/storage/booking"
	entitlementRepo "github.com/m04kA/GYM-ClassService/internal/infra/storage/entitlement"
	"github.com/m04kA/GYM-ClassService/internal/service/classes"
	"github.com/m04kA/GYM-ClassService/pkg/ptr"
	"github.com/m04kA/GYM-ClassService/pkg/types"
)

// Воскресенье, утро текущей недели
var testNow = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

// Исходное занятие: понедельник 09:00, целевое: вторник 10:00
var (
	fromDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	toDate   = time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
)

func instance(templateID int64, date time.Time, start string, capacity int) *domain.ClassInstance {
	key := domain.NewClassKey(templateID, date)
	return &domain.ClassInstance{
		ID:              key.InstanceID(),
		Key:             key,
		Name:            "Class",
		CoachName:       "Anna",
		StartTime:       types.TimeString(start),
		DurationMinutes: 60,
		Capacity:        capacity,
	}
}

type fakeSchedule struct {
	instances map[string]*domain.ClassInstance
}

func (f *fakeSchedule) ResolveInstance(_ context.Context, instanceID string) (*domain.ClassInstance, error) {
	inst, ok := f.instances[instanceID]
	if !ok {
		return nil, classes.ErrInstanceNotFound
	}
	return inst, nil
}

type fakeBookings struct {
	bookings map[int64]*domain.Booking
	nextID   int64

	cancelledReason map[int64]string
	createErr       error
}

func newFakeBookings(bookings ...*domain.Booking) *fakeBookings {
	f := &fakeBookings{
		bookings:        make(map[int64]*domain.Booking),
		nextID:          100,
		cancelledReason: make(map[int64]string),
	}
	for _, b := range bookings {
		f.bookings[b.ID] = b
	}
	return f
}

func (f *fakeBookings) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeBookings) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	b.ID = f.nextID
	b.CreatedAt = testNow
	f.bookings[b.ID] = b
	return b, nil
}

func (f *fakeBookings) Cancel(_ context.Context, id int64, reason string) error {
	b, ok := f.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.Status = domain.StatusCancelled
	f.cancelledReason[id] = reason
	return nil
}

func (f *fakeBookings) GetActiveByMemberAndKey(_ context.Context, memberID int64, key domain.ClassKey) (*domain.Booking, error) {
	for _, b := range f.bookings {
		if b.MemberID == memberID && b.Key().Equal(key) && b.IsActive() {
			return b, nil
		}
	}
	return nil, bookingRepo.ErrBookingNotFound
}

func (f *fakeBookings) GetByClassKey(_ context.Context, key domain.ClassKey) ([]*domain.Booking, error) {
	result := make([]*domain.Booking, 0)
	for _, b := range f.bookings {
		if b.Key().Equal(key) && b.IsActive() {
			result = append(result, b)
		}
	}
	return result, nil
}

func (f *fakeBookings) GetWaitlist(_ context.Context, key domain.ClassKey) ([]*domain.Booking, error) {
	result := make([]*domain.Booking, 0)
	for _, b := range f.bookings {
		if b.Key().Equal(key) && b.IsWaitlisted() {
			result = append(result, b)
		}
	}
	return result, nil
}

func (f *fakeBookings) UpdateStatus(_ context.Context, id int64, status domain.BookingStatus) error {
	b, ok := f.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.Status = status
	return nil
}

type fakeTemplates struct{}

func (fakeTemplates) GetByID(_ context.Context, id int64) (*domain.ScheduleTemplate, error) {
	return &domain.ScheduleTemplate{ID: id, IsActive: true}, nil
}

type fakeEntitlements struct {
	byMember map[int64]*domain.Entitlement
}

func (f *fakeEntitlements) GetCurrentByMember(_ context.Context, memberID int64) (*domain.Entitlement, error) {
	ent, ok := f.byMember[memberID]
	if !ok {
		return nil, entitlementRepo.ErrEntitlementNotFound
	}
	return ent, nil
}

func (f *fakeEntitlements) Consume(_ context.Context, e *domain.Entitlement, now time.Time) (*entitlementRepo.ConsumeResult, error) {
	if e.Status != domain.EntitlementActive || e.Remaining() == 0 || e.IsExpired(now) {
		return &entitlementRepo.ConsumeResult{Outcome: entitlementRepo.ConsumeInsufficient}, nil
	}
	e.ClassesUsed++
	return &entitlementRepo.ConsumeResult{Outcome: entitlementRepo.ConsumeOK, Status: string(e.Status)}, nil
}

type passTxManager struct{}

func (passTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingNotifier struct {
	events []notify.Event
}

func (r *recordingNotifier) Publish(_ context.Context, event notify.Event) {
	r.events = append(r.events, event)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func subscription(memberID int64, used int) *domain.Entitlement {
	return &domain.Entitlement{
		ID:               memberID,
		MemberID:         memberID,
		Kind:             domain.KindSubscription,
		Status:           domain.EntitlementActive,
		ClassesPerPeriod: 8,
		ClassesUsed:      used,
		PeriodEnd:        ptr.Ptr(time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)),
	}
}

func originalBooking(id, memberID int64) *domain.Booking {
	key := domain.NewClassKey(1, fromDate)
	return &domain.Booking{
		ID:         id,
		MemberID:   memberID,
		TemplateID: 1,
		ClassDate:  fromDate,
		InstanceID: key.InstanceID(),
		Status:     domain.StatusConfirmed,
		ClassName:  "Class",
		StartTime:  types.TimeString("09:00"),
		CreatedAt:  testNow.Add(-time.Hour),
	}
}

type fixture struct {
	uc       *UseCase
	from     *domain.ClassInstance
	target   *domain.ClassInstance
	bookings *fakeBookings
	ents     *fakeEntitlements
	notifier *recordingNotifier
}

func newFixture(now time.Time, targetCapacity int, bookings *fakeBookings, ents map[int64]*domain.Entitlement) *fixture {
	from := instance(1, fromDate, "09:00", 5)
	target := instance(2, toDate, "10:00", targetCapacity)

	f := &fixture{
		from:     from,
		target:   target,
		bookings: bookings,
		ents:     &fakeEntitlements{byMember: ents},
		notifier: &recordingNotifier{},
	}

	f.uc = NewUseCase(
		&fakeSchedule{instances: map[string]*domain.ClassInstance{
			from.ID:   from,
			target.ID: target,
		}},
		f.bookings,
		fakeTemplates{},
		f.ents,
		passTxManager{},
		f.notifier,
		nopLogger{},
		time.UTC,
		domain.DefaultSwitchWindowHours,
	)
	f.uc.timeProvider = fixedTime{now: now}

	return f
}

func switchRequest(f *fixture, bookingID, actorID int64) *Request {
	return &Request{
		BookingID:    bookingID,
		ActorID:      actorID,
		ActorRole:    domain.RoleMember,
		ToInstanceID: f.target.ID,
	}
}

func TestExecute_SuccessfulSwitch(t *testing.T) {
	ents := map[int64]*domain.Entitlement{10: subscription(10, 3)}
	f := newFixture(testNow, 5, newFakeBookings(originalBooking(1, 10)), ents)

	resp, err := f.uc.Execute(context.Background(), switchRequest(f, 1, 10))

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, f.target.ID, resp.InstanceID)
	assert.Equal(t, int64(1), resp.CancelledBookingID)

	assert.Equal(t, domain.StatusCancelled, f.bookings.bookings[1].Status)
	assert.Equal(t, ReasonSwitched, f.bookings.cancelledReason[1])

	// Единица не списывается повторно
	assert.Equal(t, 3, ents[10].ClassesUsed)

	require.Len(t, f.notifier.events, 2)
	assert.Equal(t, notify.EventBookingCancelled, f.notifier.events[0].Type)
	assert.Equal(t, notify.EventBookingCreated, f.notifier.events[1].Type)
}

func TestExecute_WindowClosed(t *testing.T) {
	ents := map[int64]*domain.Entitlement{10: subscription(10, 3)}

	// За 30 минут до начала исходного занятия
	f := newFixture(time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC), 5, newFakeBookings(originalBooking(1, 10)), ents)

	_, err := f.uc.Execute(context.Background(), switchRequest(f, 1, 10))

	assert.ErrorIs(t, err, ErrSwitchWindowClosed)
	assert.Equal(t, domain.StatusConfirmed, f.bookings.bookings[1].Status)
}

func TestExecute_ExactlyOneHourIsOpen(t *testing.T) {
	ents := map[int64]*domain.Entitlement{10: subscription(10, 3)}
	f := newFixture(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), 5, newFakeBookings(originalBooking(1, 10)), ents)

	_, err := f.uc.Execute(context.Background(), switchRequest(f, 1, 10))

	assert.NoError(t, err)
}

func TestExecute_TargetFullRejected(t *testing.T) {
	ents := map[int64]*domain.Entitlement{10: subscription(10, 3)}

	occupant := &domain.Booking{
		ID: 50, MemberID: 99, TemplateID: 2, ClassDate: toDate,
		Status: domain.StatusConfirmed,
	}
	f := newFixture(testNow, 1, newFakeBookings(originalBooking(1, 10), occupant), ents)

	_, err := f.uc.Execute(context.Background(), switchRequest(f, 1, 10))

	assert.ErrorIs(t, err, ErrInstanceFull)

	// Исходное бронирование нетронуто
	assert.Equal(t, domain.StatusConfirmed, f.bookings.bookings[1].Status)
	assert.Empty(t, f.notifier.events)
}

func TestExecute_SameClassRejected(t *testing.T) {
	ents := map[int64]*domain.Entitlement{10: subscription(10, 3)}
	f := newFixture(testNow, 5, newFakeBookings(originalBooking(1, 10)), ents)

	req := switchRequest(f, 1, 10)
	req.ToInstanceID = f.from.ID

	_, err := f.uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrAlreadyBooked)
}

func TestExecute_DuplicateOnTargetRejected(t *testing.T) {
	ents := map[int64]*domain.Entitlement{10: subscription(10, 3)}

	targetBooking := &domain.Booking{
		ID: 60, MemberID: 10, TemplateID: 2, ClassDate: toDate,
		Status: domain.StatusConfirmed,
	}
	f := newFixture(testNow, 5, newFakeBookings(originalBooking(1, 10), targetBooking), ents)

	_, err := f.uc.Execute(context.Background(), switchRequest(f, 1, 10))

	assert.ErrorIs(t, err, ErrAlreadyBooked)
}

func TestExecute_StaffSkipsDuplicateCheck(t *testing.T) {
	ents := map[int64]*domain.Entitlement{10: subscription(10, 3)}

	targetBooking := &domain.Booking{
		ID: 60, MemberID: 10, TemplateID: 2, ClassDate: toDate,
		Status: domain.StatusConfirmed,
	}
	f := newFixture(testNow, 5, newFakeBookings(originalBooking(1, 10), targetBooking), ents)

	// Для персонала явная проверка дубликата пропускается,
	// коллизию ловит уникальный индекс при создании
	req := switchRequest(f, 1, 99)
	req.ActorRole = domain.RoleAdmin

	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, f.target.ID, resp.InstanceID)
	assert.Equal(t, domain.StatusCancelled, f.bookings.bookings[1].Status)
}

func TestExecute_StaffDuplicateCaughtByIndex(t *testing.T) {
	ents := map[int64]*domain.Entitlement{10: subscription(10, 3)}
	f := newFixture(testNow, 5, newFakeBookings(originalBooking(1, 10)), ents)
	f.bookings.createErr = bookingRepo.ErrDuplicateBooking

	req := switchRequest(f, 1, 99)
	req.ActorRole = domain.RoleAdmin

	_, err := f.uc.Execute(context.Background(), req)

	require.ErrorIs(t, err, ErrAlreadyBooked)
	assert.Empty(t, f.notifier.events)
}

func TestExecute_WaitlistedCannotSwitch(t *testing.T) {
	ents := map[int64]*domain.Entitlement{10: subscription(10, 3)}

	waitlisted := originalBooking(1, 10)
	waitlisted.Status = domain.StatusWaitingList

	f := newFixture(testNow, 5, newFakeBookings(waitlisted), ents)

	_, err := f.uc.Execute(context.Background(), switchRequest(f, 1, 10))

	assert.ErrorIs(t, err, ErrCannotSwitch)
}

func TestExecute_TargetNextWeekLocked(t *testing.T) {
	ents := map[int64]*domain.Entitlement{10: subscription(10, 3)}
	f := newFixture(testNow, 5, newFakeBookings(originalBooking(1, 10)), ents)

	// Целевое занятие в следующей неделе, до четверга 12:00 запись закрыта
	nextWeek := instance(2, toDate.AddDate(0, 0, 7), "10:00", 5)
	f.uc.schedule.(*fakeSchedule).instances[nextWeek.ID] = nextWeek

	req := switchRequest(f, 1, 10)
	req.ToInstanceID = nextWeek.ID

	_, err := f.uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrRegistrationClosed)
}

func TestExecute_FreedSeatPromotesWaitlist(t *testing.T) {
	waitlisted := &domain.Booking{
		ID: 70, MemberID: 20, TemplateID: 1, ClassDate: fromDate,
		InstanceID: domain.NewClassKey(1, fromDate).InstanceID(),
		Status:     domain.StatusWaitingList,
		StartTime:  types.TimeString("09:00"),
		CreatedAt:  testNow.Add(-time.Minute),
	}

	ents := map[int64]*domain.Entitlement{
		10: subscription(10, 3),
		20: subscription(20, 0),
	}
	f := newFixture(testNow, 5, newFakeBookings(originalBooking(1, 10), waitlisted), ents)

	resp, err := f.uc.Execute(context.Background(), switchRequest(f, 1, 10))

	require.NoError(t, err)
	require.NotNil(t, resp.PromotedBookingID)
	assert.Equal(t, int64(70), *resp.PromotedBookingID)
	assert.Equal(t, domain.StatusConfirmed, f.bookings.bookings[70].Status)
	assert.Equal(t, 1, ents[20].ClassesUsed)
}

func TestExecute_StaffBypassesWindow(t *testing.T) {
	ents := map[int64]*domain.Entitlement{10: subscription(10, 3)}

	// За 30 минут до начала, но переносит персонал
	f := newFixture(time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC), 5, newFakeBookings(originalBooking(1, 10)), ents)

	req := switchRequest(f, 1, 99)
	req.ActorRole = domain.RoleAdmin

	_, err := f.uc.Execute(context.Background(), req)

	assert.NoError(t, err)
}

func TestExecute_TargetNotFound(t *testing.T) {
	ents := map[int64]*domain.Entitlement{10: subscription(10, 3)}
	f := newFixture(testNow, 5, newFakeBookings(originalBooking(1, 10)), ents)

	req := switchRequest(f, 1, 10)
	req.ToInstanceID = "00000000-0000-0000-0000-000000000000"

	_, err := f.uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrInstanceNotFound)
}
