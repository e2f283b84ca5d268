package postgres

// Schema is the base PostgreSQL schema. All statements are idempotent so the
// store can apply it unconditionally at startup.
const Schema = `
CREATE TABLE IF NOT EXISTS people (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	nickname TEXT,
	email TEXT,
	phone TEXT,
	location TEXT,
	birthday TIMESTAMPTZ,
	notes TEXT,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	is_owner BOOLEAN NOT NULL DEFAULT FALSE,
	tags TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_people_name ON people(name);
CREATE INDEX IF NOT EXISTS idx_people_active ON people(is_active);

CREATE TABLE IF NOT EXISTS relationship_types (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	inverse_name TEXT,
	category TEXT NOT NULL DEFAULT 'custom',
	is_symmetric BOOLEAN NOT NULL DEFAULT FALSE,
	auto_create_inverse BOOLEAN NOT NULL DEFAULT FALSE,
	description TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS relationships (
	id TEXT PRIMARY KEY,
	person_a TEXT NOT NULL REFERENCES people(id) ON DELETE CASCADE,
	person_b TEXT NOT NULL REFERENCES people(id) ON DELETE CASCADE,
	type_id TEXT NOT NULL REFERENCES relationship_types(id) ON DELETE RESTRICT,
	started_date TIMESTAMPTZ,
	notes TEXT,
	strength INTEGER,
	auto_created BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT relationships_no_self CHECK (person_a <> person_b),
	CONSTRAINT relationships_unique_edge UNIQUE (person_a, person_b, type_id)
);

CREATE INDEX IF NOT EXISTS idx_relationships_person_a ON relationships(person_a);
CREATE INDEX IF NOT EXISTS idx_relationships_person_b ON relationships(person_b);
CREATE INDEX IF NOT EXISTS idx_relationships_type ON relationships(type_id);

CREATE TABLE IF NOT EXISTS memories (
	id TEXT PRIMARY KEY,
	person_id TEXT NOT NULL REFERENCES people(id) ON DELETE CASCADE,
	title TEXT,
	content TEXT NOT NULL,
	happened_on TIMESTAMPTZ,
	tags TEXT,
	tagging_status TEXT NOT NULL DEFAULT 'pending',
	tagging_error TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_memories_person ON memories(person_id);
CREATE INDEX IF NOT EXISTS idx_memories_tagging_status ON memories(tagging_status);

CREATE TABLE IF NOT EXISTS life_events (
	id TEXT PRIMARY KEY,
	person_id TEXT NOT NULL REFERENCES people(id) ON DELETE CASCADE,
	kind TEXT NOT NULL,
	title TEXT NOT NULL,
	happened_on TIMESTAMPTZ,
	description TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_life_events_person ON life_events(person_id);

CREATE TABLE IF NOT EXISTS embeddings (
	memory_id TEXT PRIMARY KEY REFERENCES memories(id) ON DELETE CASCADE,
	embedding TEXT NOT NULL,
	dimension INTEGER NOT NULL,
	model TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// MigrationPgvector adds the native vector column used for cosine-distance
// queries. Applied only when the pgvector extension is available.
const MigrationPgvector = `
ALTER TABLE embeddings ADD COLUMN IF NOT EXISTS embedding_vec vector(1536);
`
