package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/carepulse/patient-booking/internal/appointment"
	"github.com/carepulse/patient-booking/internal/db"
)

type SimConfig struct {
	APIBaseURL    string
	Duration      time.Duration
	Workers       int
	CreateRatio   float64
	ScheduleRatio float64
	CancelRatio   float64
	ReadRatio     float64
	PatientLimit  int
	PostgresDSN   string
}

// bookingPair is a person with a registered patient profile, the unit every
// appointment submission needs.
type bookingPair struct {
	PersonID  uuid.UUID
	PatientID uuid.UUID
}

type DataPool struct {
	Pairs []bookingPair

	mu           sync.RWMutex
	appointments []uuid.UUID
}

func (dp *DataPool) AddAppointment(id uuid.UUID) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, id)
}

func (dp *DataPool) GetRandomAppointment() (uuid.UUID, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return uuid.Nil, false
	}
	return dp.appointments[rand.Intn(len(dp.appointments))], true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success, conflict bool) {
	om.mu.Lock()
	defer om.mu.Unlock()

	om.Total++
	switch {
	case success:
		om.Success++
	case conflict:
		om.Conflict++
	default:
		om.Error++
	}
	om.Latencies = append(om.Latencies, latency)
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)

	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]

	p50Idx := len(latencies) * 50 / 100
	if p50Idx >= len(latencies) {
		p50Idx = len(latencies) - 1
	}
	p50 = latencies[p50Idx]

	p95Idx := len(latencies) * 95 / 100
	if p95Idx >= len(latencies) {
		p95Idx = len(latencies) - 1
	}
	p95 = latencies[p95Idx]

	return avg, min, max, p50, p95
}

type Metrics struct {
	Create   OperationMetrics
	Schedule OperationMetrics
	Cancel   OperationMetrics
	Read     OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	logger  *slog.Logger
	metrics Metrics
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	log.Printf("config: duration=%s workers=%d create=%.2f schedule=%.2f cancel=%.2f read=%.2f",
		cfg.Duration, cfg.Workers, cfg.CreateRatio, cfg.ScheduleRatio, cfg.CancelRatio, cfg.ReadRatio)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, nil)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pgPool.Close()

	dataPool, err := loadDataPool(ctx, pgPool, cfg)
	if err != nil {
		log.Fatalf("load data pool: %v", err)
	}

	if len(dataPool.Pairs) == 0 {
		log.Fatal("no patient profiles found: run cmd/seed first")
	}

	log.Printf("loaded: %d person/patient pairs", len(dataPool.Pairs))

	sim := &Simulator{
		config: cfg,
		pool:   dataPool,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	_ = godotenv.Load()

	cfg := SimConfig{
		APIBaseURL:    getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:      getDuration("SIM_DURATION", 30*time.Second),
		Workers:       getInt("SIM_WORKERS", 10),
		CreateRatio:   getFloat("SIM_CREATE_RATIO", 0.4),
		ScheduleRatio: getFloat("SIM_SCHEDULE_RATIO", 0.2),
		CancelRatio:   getFloat("SIM_CANCEL_RATIO", 0.1),
		ReadRatio:     getFloat("SIM_READ_RATIO", 0.3),
		PatientLimit:  getInt("SIM_PATIENT_LIMIT", 4000),
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
	}

	// Normalize ratios
	total := cfg.CreateRatio + cfg.ScheduleRatio + cfg.CancelRatio + cfg.ReadRatio
	if total > 0 {
		cfg.CreateRatio /= total
		cfg.ScheduleRatio /= total
		cfg.CancelRatio /= total
		cfg.ReadRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required (set in .env or environment)")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	return nil
}

func loadDataPool(ctx context.Context, pool *pgxpool.Pool, cfg SimConfig) (*DataPool, error) {
	dataPool := &DataPool{}

	rows, err := pool.Query(ctx, `
		SELECT p.person_id, p.id
		FROM patient_profiles p
		LIMIT $1
	`, cfg.PatientLimit)
	if err != nil {
		return nil, fmt.Errorf("load patient profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pair bookingPair
		if err := rows.Scan(&pair.PersonID, &pair.PatientID); err != nil {
			return nil, err
		}
		dataPool.Pairs = append(dataPool.Pairs, pair)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return dataPool, nil
}

func (s *Simulator) Run() {
	deadline := time.Now().Add(s.config.Duration)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(deadline)
		}()
	}
	wg.Wait()
}

func (s *Simulator) worker(deadline time.Time) {
	for time.Now().Before(deadline) {
		r := rand.Float64()
		switch {
		case r < s.config.CreateRatio:
			s.doCreate()
		case r < s.config.CreateRatio+s.config.ScheduleRatio:
			s.doSchedule()
		case r < s.config.CreateRatio+s.config.ScheduleRatio+s.config.CancelRatio:
			s.doCancel()
		default:
			s.doRead()
		}
	}
}

// doCreate drives one booking through a form session the way the UI does:
// validate, submit, then navigate to the success view of the new record.
func (s *Simulator) doCreate() {
	if len(s.pool.Pairs) == 0 {
		return
	}
	pair := s.pool.Pairs[rand.Intn(len(s.pool.Pairs))]

	submit := func(ctx context.Context, op appointment.Operation, in appointment.SubmissionInput) (*appointment.Appointment, error) {
		return s.postAppointment(ctx, pair, in)
	}
	navigate := func(id uuid.UUID) {
		s.pool.AddAppointment(id)
		// Success view: re-read the record we were redirected to.
		_, _ = s.getAppointment(id)
	}

	session := appointment.NewFormSession(appointment.OpCreate, submit, navigate, s.logger)

	in := appointment.SubmissionInput{
		PrimaryPhysician: "Dr. " + gofakeit.LastName(),
		Schedule:         time.Now().Add(time.Duration(rand.Intn(30*24)) * time.Hour),
		Reason:           gofakeit.Sentence(4),
	}

	start := time.Now()
	_, err := session.Submit(context.Background(), in)
	s.metrics.Create.Record(time.Since(start), err == nil, false)
}

func (s *Simulator) doSchedule() {
	id, ok := s.pool.GetRandomAppointment()
	if !ok {
		return
	}

	body := map[string]any{
		"primaryPhysician": "Dr. " + gofakeit.LastName(),
		"schedule":         time.Now().Add(time.Duration(rand.Intn(30*24)) * time.Hour).Format(time.RFC3339),
		"reason":           gofakeit.Sentence(3),
	}

	start := time.Now()
	status, err := s.post(fmt.Sprintf("/appointments/%s/schedule", id), body, nil)
	s.metrics.Schedule.Record(time.Since(start), err == nil && status == http.StatusOK, status == http.StatusConflict)
}

func (s *Simulator) doCancel() {
	id, ok := s.pool.GetRandomAppointment()
	if !ok {
		return
	}

	body := map[string]any{"cancellationReason": gofakeit.Sentence(3)}

	start := time.Now()
	status, err := s.post(fmt.Sprintf("/appointments/%s/cancel", id), body, nil)
	s.metrics.Cancel.Record(time.Since(start), err == nil && status == http.StatusOK, status == http.StatusConflict)
}

func (s *Simulator) doRead() {
	id, ok := s.pool.GetRandomAppointment()
	if !ok {
		return
	}

	start := time.Now()
	_, err := s.getAppointment(id)
	s.metrics.Read.Record(time.Since(start), err == nil, false)
}

type appointmentResponse struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

func (s *Simulator) postAppointment(ctx context.Context, pair bookingPair, in appointment.SubmissionInput) (*appointment.Appointment, error) {
	body := map[string]any{
		"userId":           pair.PersonID.String(),
		"patient":          pair.PatientID.String(),
		"primaryPhysician": in.PrimaryPhysician,
		"schedule":         in.Schedule.Format(time.RFC3339),
		"reason":           in.Reason,
		"note":             in.Note,
	}

	var resp appointmentResponse
	status, err := s.post("/appointments", body, &resp)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated {
		return nil, fmt.Errorf("create appointment: status %d", status)
	}

	return &appointment.Appointment{
		ID:     resp.ID,
		Status: appointment.Status(resp.Status),
	}, nil
}

func (s *Simulator) post(path string, body map[string]any, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}

	resp, err := s.client.Post(s.config.APIBaseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}

	return resp.StatusCode, nil
}

func (s *Simulator) getAppointment(id uuid.UUID) (int, error) {
	resp, err := s.client.Get(fmt.Sprintf("%s/appointments/%s", s.config.APIBaseURL, id))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (s *Simulator) PrintReport() {
	fmt.Println()
	fmt.Println("=== simulation report ===")
	printOp("create", &s.metrics.Create)
	printOp("schedule", &s.metrics.Schedule)
	printOp("cancel", &s.metrics.Cancel)
	printOp("read", &s.metrics.Read)
}

func printOp(name string, om *OperationMetrics) {
	avg, min, max, p50, p95 := om.Stats()
	fmt.Printf("%-9s total=%d success=%d conflict=%d error=%d avg=%s min=%s max=%s p50=%s p95=%s\n",
		name, om.Total, om.Success, om.Conflict, om.Error, avg, min, max, p50, p95)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
