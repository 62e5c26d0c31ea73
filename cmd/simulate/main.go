package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// The simulator drives a running api-server with concurrent clients. Bookings
// deliberately collide on a small set of slots so the Redis lock and the
// uq_medico_fecha_hora constraint are both exercised.

type SimConfig struct {
	APIBaseURL   string
	Username     string
	Password     string
	Duration     time.Duration
	Workers      int
	BookingRatio float64
	StatusRatio  float64
	ReadRatio    float64
	Days         int
}

type DataPool struct {
	Patients []int64
	Doctors  []int64

	mu           sync.RWMutex
	appointments []int64
}

func (dp *DataPool) AddAppointment(id int64) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, id)
}

func (dp *DataPool) RandomAppointment(rng *rand.Rand) (int64, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return 0, false
	}
	return dp.appointments[rng.Intn(len(dp.appointments))], true
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	token   string
	metrics Metrics
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	log.Printf("config: api=%s duration=%s workers=%d booking=%.2f status=%.2f read=%.2f",
		cfg.APIBaseURL, cfg.Duration, cfg.Workers, cfg.BookingRatio, cfg.StatusRatio, cfg.ReadRatio)

	sim := &Simulator{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sim.login(ctx); err != nil {
		log.Fatalf("login: %v", err)
	}
	pool, err := sim.loadDataPool(ctx)
	if err != nil {
		log.Fatalf("load data pool: %v", err)
	}
	sim.pool = pool

	log.Printf("loaded: %d patients, %d doctors", len(pool.Patients), len(pool.Doctors))

	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL:   getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Username:     getEnv("SIM_USERNAME", "admin"),
		Password:     getEnv("SIM_PASSWORD", "admin123"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		BookingRatio: getFloat("SIM_BOOKING_RATIO", 0.5),
		StatusRatio:  getFloat("SIM_STATUS_RATIO", 0.2),
		ReadRatio:    getFloat("SIM_READ_RATIO", 0.3),
		Days:         getInt("SIM_DAYS", 3),
	}

	// Normalize ratios
	total := cfg.BookingRatio + cfg.StatusRatio + cfg.ReadRatio
	if total > 0 {
		cfg.BookingRatio /= total
		cfg.StatusRatio /= total
		cfg.ReadRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.Days <= 0 {
		return fmt.Errorf("SIM_DAYS must be > 0")
	}
	return nil
}

func (s *Simulator) login(ctx context.Context) error {
	var out struct {
		Token string `json:"token"`
	}
	status, err := s.call(ctx, http.MethodPost, "/auth/login",
		map[string]string{"username": s.config.Username, "password": s.config.Password}, &out)
	if err != nil {
		return err
	}
	if status != http.StatusOK || out.Token == "" {
		return fmt.Errorf("login returned status %d", status)
	}
	s.token = out.Token
	return nil
}

func (s *Simulator) loadDataPool(ctx context.Context) (*DataPool, error) {
	var patients, doctors []struct {
		ID int64 `json:"id"`
	}
	if _, err := s.call(ctx, http.MethodGet, "/patients", nil, &patients); err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	if _, err := s.call(ctx, http.MethodGet, "/doctors", nil, &doctors); err != nil {
		return nil, fmt.Errorf("load doctors: %w", err)
	}

	dp := &DataPool{}
	for _, p := range patients {
		dp.Patients = append(dp.Patients, p.ID)
	}
	for _, d := range doctors {
		dp.Doctors = append(dp.Doctors, d.ID)
	}

	if len(dp.Patients) == 0 {
		return nil, fmt.Errorf("no patients loaded, run cmd/seed first")
	}
	if len(dp.Doctors) == 0 {
		return nil, fmt.Errorf("no doctors loaded, run cmd/seed first")
	}
	return dp, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	log.Printf("starting simulation for %s with %d workers", s.config.Duration, s.config.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	log.Println("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			r := rng.Float64()
			switch {
			case r < s.config.BookingRatio:
				s.doBooking(ctx, rng)
			case r < s.config.BookingRatio+s.config.StatusRatio:
				s.doStatus(ctx, rng)
			default:
				switch rng.Intn(3) {
				case 0:
					s.doReadByID(ctx, rng)
				case 1:
					s.doListByDoctor(ctx, rng)
				case 2:
					s.doAgenda(ctx, rng)
				}
			}
		}
	}
}

// randomSlot picks one of the half-hour slots between 08:00 and 13:30.
func (s *Simulator) randomSlot(rng *rand.Rand) (date, clock string) {
	day := time.Now().AddDate(0, 0, rng.Intn(s.config.Days)+1)
	minutes := 8*60 + 30*rng.Intn(12)
	return day.Format("2006-01-02"), fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	date, clock := s.randomSlot(rng)
	body := map[string]any{
		"patient_id": s.pool.Patients[rng.Intn(len(s.pool.Patients))],
		"doctor_id":  s.pool.Doctors[rng.Intn(len(s.pool.Doctors))],
		"date":       date,
		"time":       clock,
		"reason":     "simulated visit",
	}

	var out struct {
		ID int64 `json:"id"`
	}
	start := time.Now()
	status, err := s.call(ctx, http.MethodPost, "/appointments", body, &out)
	s.metrics.Booking.Record(time.Since(start), err == nil && status == http.StatusCreated, status == http.StatusConflict)

	if status == http.StatusCreated && out.ID != 0 {
		s.pool.AddAppointment(out.ID)
	}
}

func (s *Simulator) doStatus(ctx context.Context, rng *rand.Rand) {
	id, ok := s.pool.RandomAppointment(rng)
	if !ok {
		return
	}
	statuses := []string{"confirmed", "completed", "cancelled"}

	start := time.Now()
	status, err := s.call(ctx, http.MethodPatch, fmt.Sprintf("/appointments/%d/status", id),
		map[string]string{"status": statuses[rng.Intn(len(statuses))]}, nil)
	s.metrics.Status.Record(time.Since(start), err == nil && status == http.StatusOK, false)
}

func (s *Simulator) doReadByID(ctx context.Context, rng *rand.Rand) {
	id, ok := s.pool.RandomAppointment(rng)
	if !ok {
		return
	}
	s.read(ctx, &s.metrics.ReadByID, fmt.Sprintf("/appointments/%d", id))
}

func (s *Simulator) doListByDoctor(ctx context.Context, rng *rand.Rand) {
	doctorID := s.pool.Doctors[rng.Intn(len(s.pool.Doctors))]
	s.read(ctx, &s.metrics.ListByDoctor, fmt.Sprintf("/appointments?doctor_id=%d", doctorID))
}

func (s *Simulator) doAgenda(ctx context.Context, rng *rand.Rand) {
	date, _ := s.randomSlot(rng)
	s.read(ctx, &s.metrics.Agenda, "/appointments?date="+date)
}

func (s *Simulator) read(ctx context.Context, om *OperationMetrics, path string) {
	start := time.Now()
	status, err := s.call(ctx, http.MethodGet, path, nil, nil)
	om.Record(time.Since(start), err == nil && status == http.StatusOK, false)
}

// call sends body as JSON with the session token and decodes a 2xx response
// into out when out is non-nil.
func (s *Simulator) call(ctx context.Context, method, path string, body, out any) (int, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, r)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode/100 == 2 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
		return resp.StatusCode, nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// Helper functions

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
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return def
}
