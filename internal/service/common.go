package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/RodrigoTechieX/MedCore-Sistema/internal/apperror"
	"github.com/RodrigoTechieX/MedCore-Sistema/internal/audit"
	"github.com/RodrigoTechieX/MedCore-Sistema/internal/cpf"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type noopAuditor struct{}

func (noopAuditor) Record(context.Context, audit.Entry) audit.Outcome { return audit.Outcome{} }

// repo carries what every entity service needs: the store handle, the audit
// sink and the module tag written to audit records.
type repo struct {
	db      *gorm.DB
	auditor Auditor
	logger  *log.Logger
	module  string
	entity  string
}

func newRepo(db *gorm.DB, auditor Auditor, logger *log.Logger, module, entity string) repo {
	if auditor == nil {
		auditor = noopAuditor{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return repo{db: db, auditor: auditor, logger: logger, module: module, entity: entity}
}

// record fires an audit entry. The outcome is dropped since the
// recorder has already logged any failure.
func (r repo) record(ctx context.Context, action string, format string, args ...any) {
	_ = r.auditor.Record(ctx, audit.Entry{
		Actor:   audit.ActorFromContext(ctx),
		Module:  r.module,
		Action:  action,
		Details: fmt.Sprintf(format, args...),
	})
}

// insert creates row in its own transaction.
func (r repo) insert(ctx context.Context, row any, fkMessage string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(row).Error
	})
	if err != nil {
		return mapWriteError(err, fkMessage)
	}
	return nil
}

// updateByID applies a patch to one row. Classified store errors surface as
// typed errors; anything else is logged and reported as "not updated".
func (r repo) updateByID(ctx context.Context, model any, id uint, updates map[string]any, fkMessage string) error {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) == 0 {
			return tx.Model(model).Where("id = ?", id).Count(&affected).Error
		}
		result := tx.Model(model).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		return nil
	})
	if err != nil {
		mapped := mapWriteError(err, fkMessage)
		if apperror.GetCode(mapped) != apperror.CodeInternal {
			return mapped
		}
		r.logger.Printf("update %s %d failed: %v", r.entity, id, err)
		return apperror.New(apperror.CodeNotFound, r.entity+" not updated")
	}
	if affected == 0 {
		return apperror.NotFound(r.entity)
	}
	return nil
}

// deleteByID removes one row. A foreign key violation means other rows still
// reference it.
func (r repo) deleteByID(ctx context.Context, model any, id uint, dependentsMessage string) error {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(model, id)
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		return nil
	})
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return apperror.New(apperror.CodeHasDependents, dependentsMessage)
		}
		return fmt.Errorf("delete %s: %w", r.entity, err)
	}
	if affected == 0 {
		return apperror.NotFound(r.entity)
	}
	return nil
}

func normalizeRequiredString(raw string, field string, maxLen int) (string, error) {
	value := strings.TrimSpace(raw)
	length := utf8.RuneCountInString(value)
	if length < 1 {
		return "", apperror.New(apperror.CodeValidation, field+" is required")
	}
	if length > maxLen {
		return "", apperror.New(apperror.CodeValidation, fmt.Sprintf("%s must be at most %d characters", field, maxLen))
	}
	return value, nil
}

// normalizeNationalID validates a CPF and returns its digits-only form.
func normalizeNationalID(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", apperror.New(apperror.CodeValidation, "national_id is required")
	}
	if !cpf.IsValid(raw) {
		return "", apperror.New(apperror.CodeValidation, "invalid national ID")
	}
	return cpf.Normalize(raw), nil
}

// nationalIDPattern prefers the digits of a search term so punctuated and
// bare CPFs match the stored form.
func nationalIDPattern(raw string) string {
	if digits := cpf.Normalize(raw); digits != "" {
		return containsPattern(digits)
	}
	return containsPattern(raw)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func mapWriteError(err error, fkMessage string) error {
	switch pgCode(err) {
	case pgUniqueViolation:
		return apperror.New(apperror.CodeDuplicate, "national ID already registered")
	case pgForeignKeyViolation:
		return apperror.New(apperror.CodeValidation, fkMessage)
	}
	return err
}
