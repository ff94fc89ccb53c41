// internal/app/poller.go
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"homework_status_bot/internal/domain/homework"
	"homework_status_bot/internal/domain/journal"

	"github.com/sirupsen/logrus"
)

const errorNotifyTimeout = 30 * time.Second

// PollerStatus describes the recent health and state of the poller.
type PollerStatus struct {
	LastAttempt         time.Time
	LastSuccess         time.Time
	ConsecutiveFailures int
	LastError           string
	Cursor              int64
	PreviousStatus      homework.Status // empty until the first status is observed
	LastHomework        string
}

// Poller runs the fetch/validate/notify cycle against the homework status API.
// All state lives in memory and is lost on restart.
type Poller struct {
	client   homework.StatusClient
	notifier Notifier
	logger   *logrus.Entry
	lookback time.Duration
	now      func() time.Time

	runMu sync.Mutex // serializes cycles

	stateMu          sync.RWMutex
	cursor           int64
	previousStatus   homework.Status
	lastErrorMessage string // last error notification delivered
	status           PollerStatus
}

// NewPoller constructs a Poller. lookback moves the first cursor back from "now".
func NewPoller(client homework.StatusClient, notifier Notifier, logger *logrus.Entry, lookback time.Duration) *Poller {
	return &Poller{
		client:   client,
		notifier: notifier,
		logger:   logger,
		lookback: lookback,
		now:      time.Now,
	}
}

// Tick runs one cycle and owns its failure handling: the error is logged and
// reported to the chat unless the same text was the last error delivered.
// Tick never panics on cycle errors and never returns them.
func (p *Poller) Tick(ctx context.Context) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	start := p.now()
	p.recordAttempt(start)

	err := p.runCycle(ctx)
	if err == nil {
		p.recordSuccess(start)
		return
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		p.logger.WithError(err).Info("Polling cycle interrupted by shutdown")
		return
	}
	p.recordFailure(err)

	kind, _ := homework.KindOf(err)
	p.logger.WithError(err).WithField("kind", kind).Error("Polling cycle failed")

	message := fmt.Sprintf("Сбой в работе программы: %v", err)
	if !p.isNewError(message) {
		p.logger.Debug("Error already reported, notification suppressed")
		return
	}
	// The cycle context may already be past its deadline; the report gets its own budget.
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), errorNotifyTimeout)
	defer cancel()
	if nerr := p.notifier.Notify(notifyCtx, journal.EntryKindError, message); nerr != nil {
		p.logger.WithError(nerr).Error("Error notification was not delivered")
		return
	}
	p.stateMu.Lock()
	p.lastErrorMessage = message
	p.stateMu.Unlock()
}

// RunCycle performs one fetch/validate/compare/notify pass and advances the cursor.
// It only classifies failures; logging and reporting are left to the caller.
func (p *Poller) RunCycle(ctx context.Context) error {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	return p.runCycle(ctx)
}

func (p *Poller) runCycle(ctx context.Context) error {
	cursor := p.currentCursor()

	payload, err := p.client.FetchStatuses(ctx, cursor)
	if err != nil {
		return err
	}
	snap, err := homework.Validate(payload)
	if err != nil {
		return err
	}
	p.logger.WithFields(logrus.Fields{"from_date": cursor, "records": len(snap.Records)}).Info("Homework statuses fetched")

	if len(snap.Records) > 0 {
		latest := snap.Records[0]
		// The leading record is checked before the comparison: an empty status
		// must not pass as "unchanged" while no status has been stored yet.
		message, err := homework.Message(latest)
		if err != nil {
			return err
		}
		if latest.Status == p.previous() {
			p.logger.WithField("homework", latest.Name).Debug("No status update")
		} else {
			// A failed delivery is logged by the notifier and must not abort the cycle.
			if nerr := p.notifier.Notify(ctx, journal.EntryKindStatus, message); nerr != nil {
				p.logger.WithError(nerr).Warn("Status notification was not delivered")
			}
			p.setPrevious(latest)
		}
	} else {
		p.logger.Debug("No homework updates in this period")
	}

	if snap.CurrentDate != 0 {
		p.setCursor(snap.CurrentDate)
	} else {
		p.logger.WithField("from_date", cursor).Warn("Response has no current_date, cursor unchanged")
	}
	return nil
}

// Status returns a snapshot of the poller's recent health.
func (p *Poller) Status() PollerStatus {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	s := p.status
	s.Cursor = p.cursor
	s.PreviousStatus = p.previousStatus
	return s
}

func (p *Poller) currentCursor() int64 {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	if p.cursor == 0 {
		p.cursor = p.now().Add(-p.lookback).Unix()
	}
	return p.cursor
}

func (p *Poller) setCursor(c int64) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	p.cursor = c
}

func (p *Poller) previous() homework.Status {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	return p.previousStatus
}

func (p *Poller) setPrevious(r homework.Record) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	p.previousStatus = r.Status
	p.status.LastHomework = r.Name
}

func (p *Poller) isNewError(message string) bool {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	return message != p.lastErrorMessage
}

func (p *Poller) recordAttempt(at time.Time) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	p.status.LastAttempt = at
}

func (p *Poller) recordSuccess(at time.Time) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	p.status.ConsecutiveFailures = 0
	p.status.LastError = ""
	p.status.LastSuccess = at
	// After a recovery the same failure is worth reporting again.
	p.lastErrorMessage = ""
}

func (p *Poller) recordFailure(err error) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	p.status.ConsecutiveFailures++
	p.status.LastError = err.Error()
}
