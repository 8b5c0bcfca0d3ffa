package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the audit database schema.
const Schema = `
-- Audit records table
CREATE TABLE IF NOT EXISTS audit (
    id TEXT PRIMARY KEY,
    request_id TEXT NOT NULL,

    -- Timestamps
    request_time TIMESTAMP NOT NULL,
    recorded_time TIMESTAMP NOT NULL,

    -- Request
    method TEXT NOT NULL,
    target_url TEXT NOT NULL,
    session_id TEXT,
    ephemeral BOOLEAN NOT NULL,
    proxy BOOLEAN NOT NULL,

    -- Outcome
    status_code INTEGER,
    redirect_count INTEGER,
    final_url TEXT,
    elapsed_ms INTEGER,

    -- Caller
    api_key_name TEXT,
    remote_addr TEXT,

    -- Error info
    error TEXT,
    error_code TEXT
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_audit_request_time ON audit(request_time);
CREATE INDEX IF NOT EXISTS idx_audit_session_id ON audit(session_id);
CREATE INDEX IF NOT EXISTS idx_audit_api_key_name ON audit(api_key_name);
CREATE INDEX IF NOT EXISTS idx_audit_request_id ON audit(request_id);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
