package postgres

import (
	"context"

	"SahayCare/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so every repository
// runs the same SQL inside or outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store binds all repositories to one querier and implements the atomic
// transaction primitive.
type Store struct {
	db     *DB
	q      querier
	tx     pgx.Tx // non-nil when this store is transaction-bound
	secSvc ports.SecurityPort
	log    zerolog.Logger
}

var _ ports.Store = (*Store)(nil)

// NewStore creates the root store over the connection pool.
func NewStore(db *DB, secSvc ports.SecurityPort, baseLogger *zerolog.Logger) *Store {
	return &Store{
		db:     db,
		q:      db.pool,
		secSvc: secSvc,
		log:    baseLogger.With().Str("component", "store").Logger(),
	}
}

func (s *Store) Citizens() ports.CitizenRepository {
	return &citizenRepository{q: s.q, secSvc: s.secSvc, log: s.log}
}

func (s *Store) Officers() ports.OfficerRepository {
	return &officerRepository{q: s.q, log: s.log}
}

func (s *Store) Visits() ports.VisitRepository {
	return &visitRepository{q: s.q, log: s.log}
}

func (s *Store) Verifications() ports.VerificationRepository {
	return &verificationRepository{q: s.q, log: s.log}
}

func (s *Store) Alerts() ports.SOSRepository {
	return &sosRepository{q: s.q, log: s.log}
}

func (s *Store) Transfers() ports.TransferRepository {
	return &transferRepository{q: s.q, log: s.log}
}

// WithinTx runs fn against a transaction-bound Store. Any error from fn rolls
// the whole transaction back. A nested call reuses the enclosing transaction
// instead of opening a second one.
func (s *Store) WithinTx(ctx context.Context, fn func(tx ports.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.pool.Begin(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to begin transaction")
		return err
	}

	txStore := &Store{
		db:     s.db,
		q:      tx,
		tx:     tx,
		secSvc: s.secSvc,
		log:    s.log,
	}

	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.log.Error().Err(rbErr).Msg("Failed to rollback transaction")
		}
		return err
	}
	return tx.Commit(ctx)
}
