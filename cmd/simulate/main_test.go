package main

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newEmptyPoolSimulator() *Simulator {
	return &Simulator{
		config: SimConfig{APIBaseURL: "http://127.0.0.1:0"},
		pool:   &DataPool{},
		client: &http.Client{Timeout: time.Second},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestOpsAreNoOpsOnEmptyPool(t *testing.T) {
	sim := newEmptyPoolSimulator()

	sim.doCreate()
	sim.doSchedule()
	sim.doCancel()
	sim.doRead()

	assert.Zero(t, sim.metrics.Create.Total)
	assert.Zero(t, sim.metrics.Schedule.Total)
	assert.Zero(t, sim.metrics.Cancel.Total)
	assert.Zero(t, sim.metrics.Read.Total)
}

func TestGetRandomAppointment_Empty(t *testing.T) {
	pool := &DataPool{}

	_, ok := pool.GetRandomAppointment()
	assert.False(t, ok)

	id := uuid.New()
	pool.AddAppointment(id)

	got, ok := pool.GetRandomAppointment()
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestOperationMetrics_Stats(t *testing.T) {
	var om OperationMetrics
	for i := 1; i <= 10; i++ {
		om.Record(time.Duration(i)*time.Millisecond, true, false)
	}

	avg, min, max, p50, p95 := om.Stats()
	assert.Equal(t, 5500*time.Microsecond, avg)
	assert.Equal(t, time.Millisecond, min)
	assert.Equal(t, 10*time.Millisecond, max)
	assert.Equal(t, 6*time.Millisecond, p50)
	assert.Equal(t, 10*time.Millisecond, p95)
}
