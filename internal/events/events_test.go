package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/property-notifier/internal/domain"
)

func TestDispatcherRunsEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher(zaptest.NewLogger(t))

	var calls []string
	d.Subscribe(EventJobAssigned, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventJobAssigned, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventJobStarted, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{ID: "e1", Type: EventJobAssigned})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, []string{"first", "second"}, calls)

	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventUserRegistered}))
}

func TestDecodePayload(t *testing.T) {
	want := JobAssignedPayload{
		TechnicianID: "tech-1",
		Job:          domain.JobRef{ID: "job-1", Title: "Fix sink", PropertyName: "Elm St"},
	}

	var fromStruct JobAssignedPayload
	require.NoError(t, DecodePayload(Event{Type: EventJobAssigned, Payload: want}, &fromStruct))
	assert.Equal(t, want, fromStruct)

	raw := json.RawMessage(`{"technician_id":"tech-1","job":{"id":"job-1","title":"Fix sink","property_name":"Elm St"}}`)
	var fromJSON JobAssignedPayload
	require.NoError(t, DecodePayload(Event{Type: EventJobAssigned, Payload: raw}, &fromJSON))
	assert.Equal(t, want, fromJSON)

	var bad JobAssignedPayload
	assert.Error(t, DecodePayload(Event{Type: EventJobAssigned, Payload: json.RawMessage(`[1,2]`)}, &bad))
}

func TestEventTypeValid(t *testing.T) {
	assert.True(t, EventInspectionApproved.Valid())
	assert.False(t, EventType("ticket_created").Valid())
}
