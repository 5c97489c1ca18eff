package signal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/study-planner-api/internal/models"
)

func TestBusDispatchesInRegistrationOrder(t *testing.T) {
	bus := NewBus()
	var calls []string
	bus.On(models.SignalTasks, func(context.Context, models.Signal) { calls = append(calls, "list") })
	bus.On(models.SignalTasks, func(context.Context, models.Signal) { calls = append(calls, "badge") })
	bus.On(models.SignalExams, func(context.Context, models.Signal) { calls = append(calls, "exams") })

	bus.Emit(context.Background(), models.SignalTasks)
	require.Equal(t, []string{"list", "badge"}, calls)
}

func TestBusOffRemovesOnlyThatHandler(t *testing.T) {
	bus := NewBus()
	var calls []string
	off := bus.On(models.SignalSettings, func(context.Context, models.Signal) { calls = append(calls, "a") })
	bus.On(models.SignalSettings, func(context.Context, models.Signal) { calls = append(calls, "b") })

	off()
	off()
	require.Equal(t, 1, bus.Count(models.SignalSettings))

	bus.Emit(context.Background(), models.SignalSettings)
	require.Equal(t, []string{"b"}, calls)
}

func TestBusHandlerMayRegisterDuringEmit(t *testing.T) {
	bus := NewBus()
	count := 0
	bus.On(models.SignalUsers, func(context.Context, models.Signal) {
		count++
		bus.On(models.SignalUsers, func(context.Context, models.Signal) { count++ })
	})

	bus.Emit(context.Background(), models.SignalUsers)
	require.Equal(t, 1, count)
}

func TestEmitterFromContext(t *testing.T) {
	bus := NewBus()
	got := ""
	bus.On(models.SignalSession, func(_ context.Context, name models.Signal) { got = name.String() })

	ctx := WithEmitter(context.Background(), bus)
	EmitterFrom(ctx).Emit(ctx, models.SignalSession)
	require.Equal(t, "sessionUpdated", got)

	require.NotPanics(t, func() {
		EmitterFrom(context.Background()).Emit(context.Background(), models.SignalSession)
	})
}
