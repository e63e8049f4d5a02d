package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"clipcast/domain/dto"

	"golang.org/x/sync/errgroup"
)

const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
	HealthDown     = "down"

	healthCheckTimeout = 2 * time.Second
)

// Pinger is satisfied by *sql.DB and by the catalog/cache repositories
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a Ping(ctx) method to Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type IHealthUsecase interface {
	Check(ctx context.Context) dto.HealthReport
}

type healthUsecase struct {
	critical string
	checks   map[string]Pinger
	static   map[string]string
}

// NewHealthUsecase reports "down" when the critical dependency fails and "degraded"
// when any other check fails. static entries (e.g. "pubsub": "disabled") are reported as-is.
func NewHealthUsecase(critical string, checks map[string]Pinger, static map[string]string) IHealthUsecase {
	return &healthUsecase{critical: critical, checks: checks, static: static}
}

func (u *healthUsecase) Check(ctx context.Context) dto.HealthReport {
	report := dto.HealthReport{Status: HealthOK, Checks: make(map[string]string, len(u.checks)+len(u.static))}
	for name, status := range u.static {
		report.Checks[name] = status
	}

	names := make([]string, 0, len(u.checks))
	for name := range u.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	var mu sync.Mutex
	var g errgroup.Group
	for _, name := range names {
		pinger := u.checks[name]
		g.Go(func() error {
			status := HealthOK
			if pinger == nil {
				status = HealthDown
			} else {
				pctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
				defer cancel()
				if err := pinger.PingContext(pctx); err != nil {
					status = HealthDown
				}
			}
			mu.Lock()
			report.Checks[name] = status
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for _, name := range names {
		if report.Checks[name] == HealthOK {
			continue
		}
		if name == u.critical {
			report.Status = HealthDown
			break
		}
		report.Status = HealthDegraded
	}
	return report
}
