package audit

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/RodrigoTechieX/MedCore-Sistema/internal/apperror"
	"github.com/RodrigoTechieX/MedCore-Sistema/internal/models"
)

const (
	ActionInsert = "INSERT"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// Brasilia is UTC-3 as a fixed offset. It does not track daylight saving.
var Brasilia = time.FixedZone("UTC-3", -3*60*60)

type Entry struct {
	Actor   string
	Module  string
	Action  string
	Details string
}

// Outcome reports what happened to a Record call. Callers are free to ignore
// it: a failed write never affects the operation being audited.
type Outcome struct {
	ID  uint
	Err error
}

func (o Outcome) OK() bool { return o.Err == nil }

type Recorder struct {
	db       *gorm.DB
	logger   *log.Logger
	now      func() time.Time
	failures prometheus.Counter
}

type Option func(*Recorder)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// WithFailureCounter counts swallowed write failures.
func WithFailureCounter(counter prometheus.Counter) Option {
	return func(r *Recorder) { r.failures = counter }
}

func NewRecorder(db *gorm.DB, logger *log.Logger, opts ...Option) *Recorder {
	r := &Recorder{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Recorder) Record(ctx context.Context, entry Entry) Outcome {
	row := models.AuditRecord{
		RecordedAt: r.now().In(Brasilia),
		Actor:      entry.Actor,
		Module:     entry.Module,
		Action:     entry.Action,
		Details:    entry.Details,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		r.logger.Printf("audit write failed (module=%s action=%s): %v", entry.Module, entry.Action, err)
		if r.failures != nil {
			r.failures.Inc()
		}
		return Outcome{Err: err}
	}

	return Outcome{ID: row.ID}
}

// List returns every audit record, newest first.
func (r *Recorder) List(ctx context.Context) ([]models.AuditRecord, error) {
	var records []models.AuditRecord
	if err := r.db.WithContext(ctx).
		Order("recorded_at DESC").
		Order("id DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	return records, nil
}

// Purge deletes the records whose ids appear in rawIDs. Tokens that are not
// plain positive integers are dropped; if none remain nothing is executed.
func (r *Recorder) Purge(ctx context.Context, rawIDs []string) (int64, error) {
	ids := numericIDs(rawIDs)
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id IN ?", ids).Delete(&models.AuditRecord{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		r.logger.Printf("audit purge failed: %v", err)
		return 0, fmt.Errorf("purge audit records: %w", err)
	}
	return deleted, nil
}

// Delete removes a single record.
func (r *Recorder) Delete(ctx context.Context, id uint) error {
	deleted, err := r.Purge(ctx, []string{strconv.FormatUint(uint64(id), 10)})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return apperror.NotFound("audit record")
	}
	return nil
}

func numericIDs(raw []string) []uint64 {
	ids := make([]uint64, 0, len(raw))
	seen := make(map[uint64]struct{}, len(raw))
	for _, token := range raw {
		token = strings.TrimSpace(token)
		if token == "" || strings.IndexFunc(token, notDigit) >= 0 {
			continue
		}
		// Keys are SERIAL (int4); larger ids cannot match a row.
		id, err := strconv.ParseUint(token, 10, 31)
		if err != nil || id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func notDigit(r rune) bool {
	return r < '0' || r > '9'
}
