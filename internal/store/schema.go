package store

// schemaSQL contains the store schema. One table, key-value with JSON values.
const schemaSQL = `
    CREATE TABLE IF NOT EXISTS kv (
        key   TEXT PRIMARY KEY,
        value TEXT NOT NULL
    );
`
