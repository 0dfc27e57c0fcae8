package notify

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GYM-ClassService/pkg/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(filepath.Join(t.TempDir(), "test.log"), "error")
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })

	return log
}

func TestRedisNotifier_Publish(t *testing.T) {
	client, mock := redismock.NewClientMock()
	notifier := NewRedisNotifier(client, "gym:events", newTestLogger(t))

	event := Event{
		Type:       EventBookingCreated,
		MemberID:   42,
		BookingID:  7,
		InstanceID: "b7c2f9d0-0000-5000-8000-000000000000",
		ClassName:  "Morning Yoga",
		ClassDate:  "2026-03-02",
		StartTime:  "09:00",
		Status:     "confirmed",
		OccurredAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	mock.ExpectPublish("gym:events", payload).SetVal(1)

	notifier.Publish(context.Background(), event)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisNotifier_Publish_DeliveryFailureIsSwallowed(t *testing.T) {
	client, mock := redismock.NewClientMock()
	notifier := NewRedisNotifier(client, "gym:events", newTestLogger(t))

	event := Event{
		Type:       EventEntitlementDepleted,
		MemberID:   42,
		OccurredAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	mock.ExpectPublish("gym:events", payload).SetErr(errors.New("connection refused"))

	// Сбой доставки не должен приводить к панике или ошибке
	notifier.Publish(context.Background(), event)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoopNotifier_Publish(t *testing.T) {
	notifier := NewNoopNotifier()

	notifier.Publish(context.Background(), Event{Type: EventBookingCancelled, MemberID: 1})
}
