// Package journal keeps an append-only WAL record of every order the bot
// touches. The journal is bookkeeping only: it never replays or re-places
// orders, so a run stays single-shot.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/bittrex-dca-bot/internal/domain"
	"github.com/vadiminshakov/gowal"
	"go.uber.org/zap"
)

const (
	recordKeyPrefix = "order_intent_"

	StatusPending  = "pending"
	StatusPlaced   = "placed"
	StatusFilled   = "filled"
	StatusUnfilled = "unfilled"
	StatusFailed   = "failed"

	walDirPermissions   = 0o755
	walSegmentThreshold = 1000
	walMaxSegments      = 100
)

// Record is one order intent and its lifecycle state.
type Record struct {
	ID      string          `json:"id"`
	Status  string          `json:"status"`
	Side    string          `json:"side"`
	Pair    string          `json:"pair"`
	Amount  decimal.Decimal `json:"amount"`
	Rate    decimal.Decimal `json:"rate"`
	OrderID string          `json:"order_id,omitempty"`
	Time    time.Time       `json:"time"`
	Error   string          `json:"error,omitempty"`
}

// Journal is a WAL-backed order journal.
type Journal struct {
	wal     *gowal.Wal
	pending []*Record
	l       *zap.Logger
}

// New opens (or creates) the journal in dir and recovers prior records.
// Intents still pending from earlier runs are reported via the logger.
func New(dir string, l *zap.Logger) (*Journal, error) {
	if err := os.MkdirAll(dir, walDirPermissions); err != nil {
		return nil, errors.Wrapf(err, "failed to ensure journal directory %s", dir)
	}

	walCfg := gowal.Config{
		Dir:              dir,
		Prefix:           "log_",
		SegmentThreshold: walSegmentThreshold,
		MaxSegments:      walMaxSegments,
		IsInSyncDiskMode: true,
	}
	wal, err := gowal.NewWAL(walCfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open journal WAL")
	}

	// The WAL holds every state transition; the latest record per intent wins.
	latest := make(map[string]*Record)
	for msg := range wal.Iterator() {
		if !strings.HasPrefix(msg.Key, recordKeyPrefix) {
			continue
		}
		var rec Record
		if err := json.Unmarshal(msg.Value, &rec); err != nil {
			l.Error("failed to unmarshal journal record", zap.Error(err), zap.String("key", msg.Key))
			continue
		}
		recCopy := rec
		latest[rec.ID] = &recCopy
	}

	j := &Journal{wal: wal, l: l}
	for _, rec := range latest {
		if rec.Status != StatusPending && rec.Status != StatusPlaced {
			continue
		}
		j.pending = append(j.pending, rec)
		l.Warn("found unfinished order intent from a previous run",
			zap.String("intent", rec.ID),
			zap.String("status", rec.Status),
			zap.String("pair", rec.Pair),
			zap.String("order", rec.OrderID))
	}
	return j, nil
}

// Pending returns intents recovered in a non-terminal state.
func (j *Journal) Pending() []*Record {
	return j.pending
}

// Prepare appends a pending intent before the order is placed.
func (j *Journal) Prepare(side domain.Side, pair domain.Pair, amount, rate decimal.Decimal, now time.Time) (*Record, error) {
	rec := &Record{
		ID:     uuid.New().String(),
		Status: StatusPending,
		Side:   side.String(),
		Pair:   pair.MarketName(),
		Amount: amount,
		Rate:   rate,
		Time:   now,
	}
	if err := j.persist(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// MarkPlaced stores the exchange order id on the intent.
func (j *Journal) MarkPlaced(rec *Record, orderID string) error {
	if rec == nil {
		return nil
	}
	rec.Status = StatusPlaced
	rec.OrderID = orderID
	return j.persist(rec)
}

// MarkFilled marks the intent as filled.
func (j *Journal) MarkFilled(rec *Record) error {
	if rec == nil {
		return nil
	}
	rec.Status = StatusFilled
	rec.Error = ""
	return j.persist(rec)
}

// MarkUnfilled marks the intent as given up on while still open.
func (j *Journal) MarkUnfilled(rec *Record) error {
	if rec == nil {
		return nil
	}
	rec.Status = StatusUnfilled
	return j.persist(rec)
}

// MarkFailed marks the intent as failed with the placement error.
func (j *Journal) MarkFailed(rec *Record, cause error) error {
	if rec == nil {
		return nil
	}
	rec.Status = StatusFailed
	if cause != nil {
		rec.Error = cause.Error()
	}
	return j.persist(rec)
}

// Close closes the underlying WAL.
func (j *Journal) Close() error {
	return j.wal.Close()
}

func (j *Journal) persist(rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "failed to marshal journal record")
	}
	key := fmt.Sprintf("%s%s", recordKeyPrefix, rec.ID)
	nextIndex := j.wal.CurrentIndex() + 1
	return errors.Wrap(j.wal.Write(nextIndex, key, data), "failed to write journal record")
}
