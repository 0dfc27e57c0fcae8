package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GYM-ClassService/internal/domain"
	bookingRepo "github.com/m04kA/GYM-ClassService/internal/infra/storage/booking"
	"github.com/m04kA/GYM-ClassService/internal/service/bookings/models"
	"github.com/m04kA/GYM-ClassService/pkg/ptr"
	"github.com/m04kA/GYM-ClassService/pkg/types"
)

type fakeBookingRepo struct {
	bookings map[int64]*domain.Booking

	lastAttendanceStatus domain.BookingStatus
	lastAttendedAt       *time.Time
}

func newFakeBookingRepo(bookings ...*domain.Booking) *fakeBookingRepo {
	repo := &fakeBookingRepo{bookings: make(map[int64]*domain.Booking)}
	for _, b := range bookings {
		repo.bookings[b.ID] = b
	}
	return repo
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) GetActiveByMemberAndInstance(_ context.Context, memberID int64, instanceID string) (*domain.Booking, error) {
	for _, b := range f.bookings {
		if b.MemberID == memberID && b.InstanceID == instanceID && b.IsActive() {
			copied := *b
			return &copied, nil
		}
	}
	return nil, bookingRepo.ErrBookingNotFound
}

func (f *fakeBookingRepo) GetByMemberID(_ context.Context, memberID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	result := make([]*domain.Booking, 0)
	for _, b := range f.bookings {
		if b.MemberID != memberID {
			continue
		}
		if status != nil && b.Status != *status {
			continue
		}
		copied := *b
		result = append(result, &copied)
	}
	return result, nil
}

func (f *fakeBookingRepo) SetAttendance(_ context.Context, id int64, status domain.BookingStatus, attendedAt *time.Time) error {
	b, ok := f.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.Status = status
	b.AttendedAt = attendedAt
	f.lastAttendanceStatus = status
	f.lastAttendedAt = attendedAt
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func pastBooking(id, memberID int64) *domain.Booking {
	return &domain.Booking{
		ID:         id,
		MemberID:   memberID,
		TemplateID: 1,
		ClassDate:  time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		InstanceID: domain.NewClassKey(1, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)).InstanceID(),
		Status:     domain.StatusConfirmed,
		ClassName:  "Morning Yoga",
		StartTime:  types.TimeString("09:00"),
	}
}

func newTestService(repo *fakeBookingRepo, now time.Time) *Service {
	s := NewService(repo, nopLogger{}, time.UTC)
	s.now = func() time.Time { return now }
	return s
}

func TestGetByID_AccessRules(t *testing.T) {
	repo := newFakeBookingRepo(pastBooking(1, 10))
	s := newTestService(repo, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))

	// Владелец видит своё бронирование
	resp, err := s.GetByID(context.Background(), 1, 10, domain.RoleMember)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)

	// Чужой участник - нет
	_, err = s.GetByID(context.Background(), 1, 99, domain.RoleMember)
	assert.ErrorIs(t, err, ErrAccessDenied)

	// Персонал видит любые
	_, err = s.GetByID(context.Background(), 1, 99, domain.RoleCoach)
	assert.NoError(t, err)
}

func TestGetMemberBooking(t *testing.T) {
	booking := pastBooking(1, 10)
	repo := newFakeBookingRepo(booking)
	s := newTestService(repo, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))

	resp, err := s.GetMemberBooking(context.Background(), 10, booking.InstanceID)
	require.NoError(t, err)
	assert.Equal(t, booking.InstanceID, resp.InstanceID)

	_, err = s.GetMemberBooking(context.Background(), 10, "missing")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetMemberBookings_StatusFilter(t *testing.T) {
	confirmed := pastBooking(1, 10)
	cancelled := pastBooking(2, 10)
	cancelled.Status = domain.StatusCancelled

	repo := newFakeBookingRepo(confirmed, cancelled)
	s := newTestService(repo, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))

	resp, err := s.GetMemberBookings(context.Background(), &models.GetMemberBookingsRequest{
		MemberID:  10,
		ActorID:   10,
		ActorRole: domain.RoleMember,
		Status:    ptr.Ptr("cancelled"),
	})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, "cancelled", resp.Bookings[0].Status)
}

func TestGetMemberBookings_AccessDenied(t *testing.T) {
	s := newTestService(newFakeBookingRepo(), time.Now())

	_, err := s.GetMemberBookings(context.Background(), &models.GetMemberBookingsRequest{
		MemberID:  10,
		ActorID:   11,
		ActorRole: domain.RoleMember,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetMemberBookings_InvalidStatus(t *testing.T) {
	s := newTestService(newFakeBookingRepo(), time.Now())

	_, err := s.GetMemberBookings(context.Background(), &models.GetMemberBookingsRequest{
		MemberID:  10,
		ActorID:   10,
		ActorRole: domain.RoleMember,
		Status:    ptr.Ptr("bogus"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMarkAttendance_Outcomes(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		outcome        string
		initialStatus  domain.BookingStatus
		wantStatus     domain.BookingStatus
		wantAttendedAt bool
	}{
		{"attended", domain.StatusConfirmed, domain.StatusCompleted, true},
		{"late", domain.StatusConfirmed, domain.StatusLate, true},
		{"no_show", domain.StatusConfirmed, domain.StatusNoShow, false},
		{"reset", domain.StatusNoShow, domain.StatusConfirmed, false},
		{"reset", domain.StatusCompleted, domain.StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.outcome+"_from_"+string(tt.initialStatus), func(t *testing.T) {
			booking := pastBooking(1, 10)
			booking.Status = tt.initialStatus

			repo := newFakeBookingRepo(booking)
			s := newTestService(repo, now)

			resp, err := s.MarkAttendance(context.Background(), &models.MarkAttendanceRequest{
				BookingID: 1,
				ActorID:   99,
				ActorRole: domain.RoleCoach,
				Outcome:   tt.outcome,
			})

			require.NoError(t, err)
			assert.Equal(t, string(tt.wantStatus), resp.Status)
			if tt.wantAttendedAt {
				require.NotNil(t, repo.lastAttendedAt)
				assert.Equal(t, now, *repo.lastAttendedAt)
			} else {
				assert.Nil(t, repo.lastAttendedAt)
			}
		})
	}
}

func TestMarkAttendance_MemberForbidden(t *testing.T) {
	repo := newFakeBookingRepo(pastBooking(1, 10))
	s := newTestService(repo, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))

	_, err := s.MarkAttendance(context.Background(), &models.MarkAttendanceRequest{
		BookingID: 1,
		ActorID:   10,
		ActorRole: domain.RoleMember,
		Outcome:   "attended",
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestMarkAttendance_FutureClassRejected(t *testing.T) {
	repo := newFakeBookingRepo(pastBooking(1, 10))

	// За час до начала занятия
	s := newTestService(repo, time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))

	_, err := s.MarkAttendance(context.Background(), &models.MarkAttendanceRequest{
		BookingID: 1,
		ActorID:   99,
		ActorRole: domain.RoleAdmin,
		Outcome:   "attended",
	})
	assert.ErrorIs(t, err, ErrClassNotStarted)
}

func TestMarkAttendance_WaitlistedRejected(t *testing.T) {
	booking := pastBooking(1, 10)
	booking.Status = domain.StatusWaitingList

	repo := newFakeBookingRepo(booking)
	s := newTestService(repo, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))

	_, err := s.MarkAttendance(context.Background(), &models.MarkAttendanceRequest{
		BookingID: 1,
		ActorID:   99,
		ActorRole: domain.RoleAdmin,
		Outcome:   "attended",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMarkAttendance_InvalidOutcome(t *testing.T) {
	repo := newFakeBookingRepo(pastBooking(1, 10))
	s := newTestService(repo, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))

	_, err := s.MarkAttendance(context.Background(), &models.MarkAttendanceRequest{
		BookingID: 1,
		ActorID:   99,
		ActorRole: domain.RoleAdmin,
		Outcome:   "maybe",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
