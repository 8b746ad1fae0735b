package stationlog

import (
	_ "embed"
)

//go:embed schema.sql
var initSchemaSQL string

const (
	initIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_snapshots_session_pi ON snapshots (session_id, pi);
CREATE INDEX IF NOT EXISTS idx_snapshots_timestamp ON snapshots (timestamp);`

	insertSessionSQL = `
INSERT INTO sessions (start_time,
                      source,
                      standard)
VALUES (?, ?, ?)`

	selectSessionsSQL = `
SELECT
    id,
    start_time,
    source,
    standard
FROM sessions
ORDER BY id`

	insertSnapshotSQL = `
INSERT INTO snapshots (session_id,
                       timestamp,
                       pi,
                       ps,
                       pty,
                       rt,
                       ptyn,
                       ecc,
                       lc,
                       tp,
                       ta,
                       ms,
                       di,
                       af_json,
                       clock_time,
                       group_count,
                       block_errors)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectSnapshotsSQL = `
SELECT
    id,
    session_id,
    timestamp,
    pi,
    ps,
    pty,
    rt,
    ptyn,
    ecc,
    lc,
    tp,
    ta,
    ms,
    di,
    af_json,
    clock_time,
    group_count,
    block_errors
FROM snapshots
WHERE
    session_id = ?
ORDER BY id`
)
