package repository

import (
	"database/sql/driver"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/tair/retail-ledger/internal/ledger/domain"
)

// postgres SQLSTATE codes the ledger reacts to
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
)

// translate maps driver errors onto the ledger taxonomy. Unknown errors pass through unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}

	var lerr *domain.Error
	if errors.As(err, &lerr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound("record not found")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
			return domain.Conflict(err)
		case codeUniqueViolation:
			return &domain.Error{Kind: domain.KindValidation, Message: "duplicate record", Err: errors.New(pgErr.ConstraintName)}
		case codeForeignKeyViolation:
			return &domain.Error{Kind: domain.KindValidation, Message: "missing reference", Err: errors.New(pgErr.ConstraintName)}
		case codeCheckViolation:
			return &domain.Error{Kind: domain.KindIntegrity, Message: "constraint violated", Err: errors.New(pgErr.ConstraintName)}
		}
		return err
	}

	if errors.Is(err, driver.ErrBadConn) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return domain.Unavailable(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.Unavailable(err)
	}
	return err
}
