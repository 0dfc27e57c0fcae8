package book_class

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
	memberRepo "github.com/m04kA/GYM-ClassService/internal/infra/storage/member"
	"github.com/m04kA/GYM-ClassService/internal/service/classes"
	"github.com/m04kA/GYM-ClassService/pkg/ptr"
	"github.com/m04kA/GYM-ClassService/pkg/types"
)

// Воскресенье, утро текущей недели
var testNow = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func testInstance(templateID int64, date time.Time, capacity int, tags ...string) *domain.ClassInstance {
	key := domain.NewClassKey(templateID, date)
	return &domain.ClassInstance{
		ID:              key.InstanceID(),
		Key:             key,
		Name:            "Morning Yoga",
		CoachName:       "Anna",
		StartTime:       types.TimeString("09:00"),
		DurationMinutes: 60,
		Capacity:        capacity,
		RequiredTags:    tags,
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
	bookings  []*domain.Booking
	nextID    int64
	createErr error
}

func (f *fakeBookings) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	b.ID = f.nextID
	b.CreatedAt = testNow
	f.bookings = append(f.bookings, b)
	return b, nil
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

type fakeEntitlements struct {
	entitlement *domain.Entitlement
	consumed    int
}

func (f *fakeEntitlements) GetCurrentByMember(_ context.Context, _ int64) (*domain.Entitlement, error) {
	if f.entitlement == nil {
		return nil, entitlementRepo.ErrEntitlementNotFound
	}
	return f.entitlement, nil
}

func (f *fakeEntitlements) Consume(_ context.Context, e *domain.Entitlement, now time.Time) (*entitlementRepo.ConsumeResult, error) {
	if e.Status != domain.EntitlementActive || e.Remaining() == 0 || e.IsExpired(now) {
		return &entitlementRepo.ConsumeResult{Outcome: entitlementRepo.ConsumeInsufficient}, nil
	}

	f.consumed++
	if e.Kind == domain.KindTicket {
		e.SessionsUsed++
		if e.SessionsUsed >= e.TotalSessions {
			e.Status = domain.EntitlementDepleted
		}
	} else {
		e.ClassesUsed++
	}
	return &entitlementRepo.ConsumeResult{Outcome: entitlementRepo.ConsumeOK, Status: string(e.Status)}, nil
}

type fakeMembers struct {
	penalty *domain.PenaltyRecord
}

func (f *fakeMembers) GetPenalty(_ context.Context, memberID int64) (*domain.PenaltyRecord, error) {
	if f.penalty == nil {
		return nil, memberRepo.ErrMemberNotFound
	}
	return f.penalty, nil
}

type passTxManager struct{}

func (passTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

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

type fixture struct {
	uc           *UseCase
	instance     *domain.ClassInstance
	bookings     *fakeBookings
	entitlements *fakeEntitlements
	members      *fakeMembers
	notifier     *recordingNotifier
}

func activeSubscription(memberID int64, tags ...string) *domain.Entitlement {
	return &domain.Entitlement{
		ID:               1,
		MemberID:         memberID,
		Kind:             domain.KindSubscription,
		Tier:             domain.TierStandard,
		Status:           domain.EntitlementActive,
		ClassesPerPeriod: 8,
		ClassesUsed:      0,
		PeriodEnd:        ptr.Ptr(time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)),
		Tags:             tags,
	}
}

func newFixture(ent *domain.Entitlement, capacity int, tags ...string) *fixture {
	// Понедельник текущей недели
	instance := testInstance(1, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), capacity, tags...)

	f := &fixture{
		instance:     instance,
		bookings:     &fakeBookings{},
		entitlements: &fakeEntitlements{entitlement: ent},
		members:      &fakeMembers{},
		notifier:     &recordingNotifier{},
	}

	f.uc = NewUseCase(
		&fakeSchedule{instances: map[string]*domain.ClassInstance{instance.ID: instance}},
		f.bookings,
		f.entitlements,
		f.members,
		passTxManager{},
		f.notifier,
		nopLogger{},
		time.UTC,
	)
	f.uc.timeProvider = fixedTime{now: testNow}

	return f
}

func memberRequest(f *fixture, memberID int64) *Request {
	return &Request{
		MemberID:   memberID,
		ActorID:    memberID,
		ActorRole:  domain.RoleMember,
		InstanceID: f.instance.ID,
	}
}

func TestExecute_ConfirmedSeat(t *testing.T) {
	f := newFixture(activeSubscription(10), 5)

	resp, err := f.uc.Execute(context.Background(), memberRequest(f, 10))

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, f.instance.ID, resp.InstanceID)
	assert.Equal(t, 1, f.entitlements.consumed)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, notify.EventBookingCreated, f.notifier.events[0].Type)
}

func TestExecute_FullClassRoutesToWaitlist(t *testing.T) {
	f := newFixture(activeSubscription(10), 1)

	// Занимаем единственное место
	f.bookings.bookings = append(f.bookings.bookings, &domain.Booking{
		ID: 100, MemberID: 99, TemplateID: 1,
		ClassDate: f.instance.Key.ClassDate,
		Status:    domain.StatusConfirmed,
	})

	resp, err := f.uc.Execute(context.Background(), memberRequest(f, 10))

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusWaitingList), resp.Status)

	// Лист ожидания не списывает занятие с абонемента
	assert.Equal(t, 0, f.entitlements.consumed)
}

func TestExecute_DuplicateRejected(t *testing.T) {
	f := newFixture(activeSubscription(10), 5)

	_, err := f.uc.Execute(context.Background(), memberRequest(f, 10))
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), memberRequest(f, 10))
	assert.ErrorIs(t, err, ErrAlreadyBooked)
}

func TestExecute_EligibilityFailures(t *testing.T) {
	expired := activeSubscription(10)
	expired.Status = domain.EntitlementExpired

	frozen := activeSubscription(10)
	frozen.Status = domain.EntitlementFrozen

	depleted := activeSubscription(10)
	depleted.ClassesUsed = depleted.ClassesPerPeriod

	pastDeadline := activeSubscription(10)
	pastDeadline.PeriodEnd = ptr.Ptr(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name    string
		ent     *domain.Entitlement
		tags    []string
		wantErr error
	}{
		{"no entitlement", nil, nil, ErrNoActiveEntitlement},
		{"frozen", frozen, nil, ErrNoActiveEntitlement},
		{"expired status", expired, nil, ErrEntitlementExpired},
		{"past deadline", pastDeadline, nil, ErrEntitlementExpired},
		{"depleted", depleted, nil, ErrEntitlementDepleted},
		{"tag mismatch", activeSubscription(10), []string{"premium"}, ErrTagMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.ent, 5, tt.tags...)

			_, err := f.uc.Execute(context.Background(), memberRequest(f, 10))

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.bookings.bookings)
		})
	}
}

func TestExecute_BlockedMemberRejected(t *testing.T) {
	f := newFixture(activeSubscription(10), 5)
	f.members.penalty = &domain.PenaltyRecord{
		MemberID:     10,
		BlockEndDate: ptr.Ptr(testNow.AddDate(0, 0, 2)),
	}

	_, err := f.uc.Execute(context.Background(), memberRequest(f, 10))

	assert.ErrorIs(t, err, ErrAccountBlocked)
}

func TestExecute_ExpiredBlockIgnored(t *testing.T) {
	f := newFixture(activeSubscription(10), 5)
	f.members.penalty = &domain.PenaltyRecord{
		MemberID:     10,
		BlockEndDate: ptr.Ptr(testNow.AddDate(0, 0, -1)),
	}

	_, err := f.uc.Execute(context.Background(), memberRequest(f, 10))

	assert.NoError(t, err)
}

func TestExecute_NextWeekLockedBeforeThursdayNoon(t *testing.T) {
	f := newFixture(activeSubscription(10), 5)

	// Занятие в понедельник следующей недели
	nextWeek := testInstance(1, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), 5)
	f.uc.schedule = &fakeSchedule{instances: map[string]*domain.ClassInstance{nextWeek.ID: nextWeek}}

	req := memberRequest(f, 10)
	req.InstanceID = nextWeek.ID

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrRegistrationClosed)

	// В четверг 12:00 открывается
	f.uc.timeProvider = fixedTime{now: time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)}
	_, err = f.uc.Execute(context.Background(), req)
	assert.NoError(t, err)
}

func TestExecute_StartedClassRejected(t *testing.T) {
	f := newFixture(activeSubscription(10), 5)

	// Занятие началось в 09:00, сейчас 09:30
	f.uc.timeProvider = fixedTime{now: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)}

	_, err := f.uc.Execute(context.Background(), memberRequest(f, 10))

	assert.ErrorIs(t, err, ErrRegistrationClosed)
}

func TestExecute_InstanceNotFound(t *testing.T) {
	f := newFixture(activeSubscription(10), 5)

	req := memberRequest(f, 10)
	req.InstanceID = "00000000-0000-0000-0000-000000000000"

	_, err := f.uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrInstanceNotFound)
}

func TestExecute_TicketDepletionEmitsEvent(t *testing.T) {
	ticket := &domain.Entitlement{
		ID:            1,
		MemberID:      10,
		Kind:          domain.KindTicket,
		Status:        domain.EntitlementActive,
		TotalSessions: 1,
		SessionsUsed:  0,
		ExpiresAt:     ptr.Ptr(time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)),
	}
	f := newFixture(ticket, 5)

	resp, err := f.uc.Execute(context.Background(), memberRequest(f, 10))

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)

	require.Len(t, f.notifier.events, 2)
	assert.Equal(t, notify.EventBookingCreated, f.notifier.events[0].Type)
	assert.Equal(t, notify.EventEntitlementDepleted, f.notifier.events[1].Type)
}

func TestExecute_StaffOverride(t *testing.T) {
	// Персонал записывает участника без entitlement в полное занятие
	f := newFixture(nil, 1)
	f.bookings.bookings = append(f.bookings.bookings, &domain.Booking{
		ID: 100, MemberID: 99, TemplateID: 1,
		ClassDate: f.instance.Key.ClassDate,
		Status:    domain.StatusConfirmed,
	})

	resp, err := f.uc.Execute(context.Background(), &Request{
		MemberID:   10,
		ActorID:    1,
		ActorRole:  domain.RoleAdmin,
		InstanceID: f.instance.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, 0, f.entitlements.consumed)
}

func TestExecute_StaffDuplicateCaughtByIndex(t *testing.T) {
	// Персонал обходит явную проверку дубликата, но уникальный индекс
	// в базе отклоняет повторную запись
	f := newFixture(nil, 5)
	f.bookings.createErr = bookingRepo.ErrDuplicateBooking

	_, err := f.uc.Execute(context.Background(), &Request{
		MemberID:   10,
		ActorID:    1,
		ActorRole:  domain.RoleAdmin,
		InstanceID: f.instance.ID,
	})

	require.ErrorIs(t, err, ErrAlreadyBooked)
	assert.Empty(t, f.notifier.events)
}

func TestExecute_StaffForceWaitlist(t *testing.T) {
	f := newFixture(nil, 5)

	resp, err := f.uc.Execute(context.Background(), &Request{
		MemberID:      10,
		ActorID:       1,
		ActorRole:     domain.RoleAdmin,
		InstanceID:    f.instance.ID,
		ForceWaitlist: true,
	})

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusWaitingList), resp.Status)
}

func TestExecute_InvalidInput(t *testing.T) {
	f := newFixture(activeSubscription(10), 5)

	_, err := f.uc.Execute(context.Background(), &Request{MemberID: 0, ActorID: 1, InstanceID: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(context.Background(), &Request{MemberID: 1, ActorID: 1, InstanceID: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
