package repository

import "github.com/jackc/pgx/v5/pgxpool"

// NewPostgresRepositories wires every Postgres repository onto one pool.
func NewPostgresRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:      NewUserRepository(pool),
		Tickets:    NewTicketRepository(pool),
		Comments:   NewCommentRepository(pool),
		Activities: NewActivityRepository(pool),
		News:       NewNewsRepository(pool),
		ImageRefs:  NewImageReferenceRepository(pool),
		Tx:         NewTxManager(pool),
	}
}
