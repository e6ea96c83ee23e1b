package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;

-- One row per successful manifest write
CREATE TABLE IF NOT EXISTS emits (
    emit_id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL,
    output_path TEXT NOT NULL,
    mode TEXT NOT NULL,             -- full, names-only
    public_path TEXT NOT NULL,
    build_hash TEXT,
    asset_count INTEGER NOT NULL DEFAULT 0,
    manifest_chunks TEXT,           -- comma separated chunk names
    content_hash TEXT NOT NULL,     -- sha256 of the written file
    size_bytes INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_emits_created ON emits(created_at);
CREATE INDEX IF NOT EXISTS idx_emits_output ON emits(output_path, created_at);
`
