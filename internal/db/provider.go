package db

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// Source hands out a live Querier. Repositories are built on a Source so the
// same code runs against the shared Provider, a transaction or a test mock.
type Source interface {
	Acquire(ctx context.Context) (Querier, error)
}

// Fixed is a Source that always returns the same Querier.
type Fixed struct {
	Q Querier
}

func (f Fixed) Acquire(context.Context) (Querier, error) { return f.Q, nil }

// Provider owns the process' Postgres pool. The pool is created on the first
// Acquire and again after Close.
type Provider struct {
	dsn     string
	breaker *gobreaker.CircuitBreaker
	connect func(ctx context.Context, dsn string) (Pool, error)

	mu   sync.Mutex
	pool Pool
}

func NewProvider(dsn string) *Provider {
	return &Provider{
		dsn:     dsn,
		breaker: NewBreaker("postgres", 10*time.Second),
		connect: func(ctx context.Context, dsn string) (Pool, error) {
			pool, err := ConnectPostgres(ctx, dsn)
			if err != nil {
				return nil, err
			}
			return pool, nil
		},
	}
}

// Acquire returns the shared pool, connecting if needed. Connect failures
// come back as *ConnectionError; while the breaker is open they fail without
// touching the network.
func (p *Provider) Acquire(ctx context.Context) (Querier, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pool != nil {
		return p.pool, nil
	}

	res, err := p.breaker.Execute(func() (interface{}, error) {
		return p.connect(ctx, p.dsn)
	})
	if err != nil {
		log.Printf("postgres connect failed: %v", err)
		return nil, &ConnectionError{Err: err}
	}

	p.pool = res.(Pool)
	log.Println("connected to Postgres")
	return p.pool, nil
}

// Close releases the pool if one is open.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pool == nil {
		return
	}
	p.pool.Close()
	p.pool = nil
	log.Println("postgres pool closed")
}

// IsConnected reports whether a pool is currently held. It never dials.
func (p *Provider) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pool != nil
}

// Ping acquires the pool and round-trips to the server.
func (p *Provider) Ping(ctx context.Context) error {
	if _, err := p.Acquire(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	pool := p.pool
	p.mu.Unlock()
	if pool == nil {
		return &ConnectionError{Err: fmt.Errorf("pool closed during ping")}
	}

	if err := pool.Ping(ctx); err != nil {
		return &ConnectionError{Err: err}
	}
	return nil
}
