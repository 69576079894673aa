package postgres

// Static statements. Filter-driven statements come from Compiler.

const (
	// querySaveEvent inserts one event row.
	// ON CONFLICT DO NOTHING returns no rows (sql.ErrNoRows) for duplicates.
	querySaveEvent = `
		INSERT INTO events (id, pubkey, created_at, kind, sig, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
		RETURNING id
	`

	// queryEventByID reads the payload and visibility of one event.
	// Deleted rows are returned so the caller can tell them apart.
	queryEventByID = `
		SELECT payload, deleted
		FROM events
		WHERE id = $1
	`

	queryCheckID = `
		SELECT deleted
		FROM events
		WHERE id = $1
	`

	// querySchemaTables counts the tables the store needs.
	querySchemaTables = `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		  AND table_name IN ('events', 'event_tags')
	`
)
