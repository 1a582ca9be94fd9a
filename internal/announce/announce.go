package announce

import (
	"context"
	"daily-shoutout/internal/database"
	"daily-shoutout/internal/metrics"
	"daily-shoutout/internal/shoutout"
	"daily-shoutout/internal/types"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Provider supplies today's shoutout and the date it belongs to
type Provider interface {
	DailyShoutout(ctx context.Context) types.Shoutout
	Today() string
}

// Sender delivers a shoutout to a chat
type Sender interface {
	SendShoutout(chatID int64, replyTo int, s types.Shoutout) error
}

// Ledger remembers which dates were already announced
type Ledger interface {
	Has(date string, chatID int64) (bool, error)
	Record(date string, chatID int64, name string) error
}

// Announcer posts the shoutout of the day to a chat once per date
type Announcer struct {
	provider Provider
	sender   Sender
	ledger   Ledger
	chatID   int64
	interval time.Duration
	metrics  *metrics.Metrics

	// sent remembers deliveries even when the ledger could not record them
	sent *MemoryLedger

	// processing ensures only one check runs at a time
	processing sync.Mutex
}

func NewAnnouncer(provider Provider, sender Sender, ledger Ledger, chatID int64, interval time.Duration, m *metrics.Metrics) *Announcer {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Announcer{
		provider: provider,
		sender:   sender,
		ledger:   ledger,
		chatID:   chatID,
		interval: interval,
		metrics:  m,
		sent:     NewMemoryLedger(),
	}
}

// Check announces today's shoutout if it has not been announced yet.
// It reports whether a message was sent.
func (a *Announcer) Check(ctx context.Context) (bool, error) {
	a.processing.Lock()
	defer a.processing.Unlock()

	today := a.provider.Today()

	if done, _ := a.sent.Has(today, a.chatID); done {
		return false, nil
	}

	done, err := a.ledger.Has(today, a.chatID)
	if err != nil {
		return false, errors.Wrap(err, "could not read announcement ledger")
	}
	if done {
		return false, nil
	}

	s := a.provider.DailyShoutout(ctx)
	if s == shoutout.Fallback {
		log.Debugf("no person found for %s, skipping announcement", today)
		return false, nil
	}

	if err := a.sender.SendShoutout(a.chatID, 0, s); err != nil {
		return false, errors.Wrap(err, "could not announce shoutout")
	}
	a.metrics.ObserveAnnouncement()
	a.sent.Record(today, a.chatID, s.Name)

	if err := a.ledger.Record(today, a.chatID, s.Name); err != nil {
		return true, errors.Wrap(err, "could not record announcement")
	}

	log.Infof("Announced %s for %s to chat %d", s.Name, today, a.chatID)
	return true, nil
}

// Start runs Check every interval until ctx is done
func (a *Announcer) Start(ctx context.Context) {
	go a.run(ctx)
	log.Info("Announcer started.")
}

func (a *Announcer) run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Panic recovered in announcer: %v. Restarting in 10 seconds...", r)
			select {
			case <-ctx.Done():
				return
			case <-time.After(10 * time.Second):
			}
			go a.run(ctx)
		}
	}()

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		if _, err := a.Check(ctx); err != nil {
			log.Errorf("Announcement failed: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// DBLedger keeps the ledger in the sqlite database
type DBLedger struct{}

func (DBLedger) Has(date string, chatID int64) (bool, error) {
	return database.HasAnnouncement(date, chatID)
}

func (DBLedger) Record(date string, chatID int64, name string) error {
	return database.InsertAnnouncement(date, chatID, name)
}

// MemoryLedger keeps the ledger for the lifetime of the process
type MemoryLedger struct {
	mu   sync.Mutex
	seen map[string]string
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{seen: make(map[string]string)}
}

func (l *MemoryLedger) key(date string, chatID int64) string {
	return date + "|" + strconv.FormatInt(chatID, 10)
}

func (l *MemoryLedger) Has(date string, chatID int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[l.key(date, chatID)]
	return ok, nil
}

func (l *MemoryLedger) Record(date string, chatID int64, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[l.key(date, chatID)] = name
	return nil
}
