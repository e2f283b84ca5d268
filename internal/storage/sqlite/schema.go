package sqlite

// Schema contains the SQL statements to create the LifeGraph schema for SQLite.
// All statements are idempotent (IF NOT EXISTS) so the schema can be applied
// on every startup.
//
// Integrity rules live in the schema itself, not just in Go code:
//   - relationships carries UNIQUE(person_a, person_b, type_id) so concurrent
//     creates of the same edge collapse into one winner and one conflict,
//   - CHECK(person_a <> person_b) backstops the self-relationship validation,
//   - person deletion cascades to relationships, memories, and life events,
//   - relationship type deletion is RESTRICTed while edges reference it.
const Schema = `
-- People: the contact directory
CREATE TABLE IF NOT EXISTS people (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    nickname TEXT,
    email TEXT,
    phone TEXT,
    location TEXT,
    birthday TIMESTAMP,
    notes TEXT,

    is_active INTEGER NOT NULL DEFAULT 1,
    is_owner INTEGER NOT NULL DEFAULT 0,

    -- Tags (JSON array)
    tags TEXT,

    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Relationship type catalog
CREATE TABLE IF NOT EXISTS relationship_types (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    inverse_name TEXT,
    category TEXT NOT NULL DEFAULT 'custom',
    is_symmetric INTEGER NOT NULL DEFAULT 0,
    auto_create_inverse INTEGER NOT NULL DEFAULT 1,
    description TEXT,

    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Relationships: directed edges between people
CREATE TABLE IF NOT EXISTS relationships (
    id TEXT PRIMARY KEY,
    person_a TEXT NOT NULL,
    person_b TEXT NOT NULL,
    type_id TEXT NOT NULL,

    started_date TIMESTAMP,
    notes TEXT,
    strength INTEGER,

    auto_created INTEGER NOT NULL DEFAULT 0,

    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,

    FOREIGN KEY (person_a) REFERENCES people(id) ON DELETE CASCADE,
    FOREIGN KEY (person_b) REFERENCES people(id) ON DELETE CASCADE,
    FOREIGN KEY (type_id) REFERENCES relationship_types(id) ON DELETE RESTRICT,

    UNIQUE(person_a, person_b, type_id),
    CHECK(person_a <> person_b)
);

CREATE INDEX IF NOT EXISTS idx_relationships_person_a ON relationships(person_a);
CREATE INDEX IF NOT EXISTS idx_relationships_person_b ON relationships(person_b);
CREATE INDEX IF NOT EXISTS idx_relationships_type ON relationships(type_id);

-- Memories: journal entries about a person
CREATE TABLE IF NOT EXISTS memories (
    id TEXT PRIMARY KEY,
    person_id TEXT NOT NULL,
    title TEXT,
    content TEXT NOT NULL,
    happened_on TIMESTAMP,

    -- Tags (JSON array)
    tags TEXT,

    -- Async tag suggestion tracking
    tagging_status TEXT NOT NULL DEFAULT 'pending',
    tagging_error TEXT,

    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,

    FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_memories_person ON memories(person_id);

-- Life events: dated milestones on a person's timeline
CREATE TABLE IF NOT EXISTS life_events (
    id TEXT PRIMARY KEY,
    person_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    title TEXT NOT NULL,
    happened_on TIMESTAMP,
    description TEXT,

    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,

    FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_life_events_person ON life_events(person_id);

-- Embeddings: memory-content vectors (JSON-serialized float32 array)
CREATE TABLE IF NOT EXISTS embeddings (
    memory_id TEXT PRIMARY KEY,
    embedding TEXT NOT NULL,
    dimension INTEGER NOT NULL,
    model TEXT NOT NULL,

    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,

    FOREIGN KEY (memory_id) REFERENCES memories(id) ON DELETE CASCADE
);

-- Settings: persisted user configuration (key-value)
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
