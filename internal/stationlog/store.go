// Package stationlog keeps a history of decoded station snapshots in SQLite.
package stationlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bartgrantham/gofm/rds"
	_ "github.com/mattn/go-sqlite3"
)

// lazyDB is a connection opened on first use.  A failed open is not retried.
type lazyDB struct {
	once sync.Once
	db   *sql.DB
	err  error
}

func (l *lazyDB) get(open func() (*sql.DB, error)) (*sql.DB, error) {
	l.once.Do(func() { l.db, l.err = open() })
	return l.db, l.err
}

// close is a no-op for a connection that was never opened.
func (l *lazyDB) close() error {
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

const (
	writeParams = "_journal_mode=WAL&_synchronous=NORMAL"
	readParams  = "mode=ro"
)

// SqliteStore is a station log in one SQLite file.  Sessions and snapshots
// are written through a WAL connection and listed through a read-only one.
type SqliteStore struct {
	path   string
	writer lazyDB
	reader lazyDB

	closeOnce sync.Once
	closeErr  error
}

func NewSqliteStore(path string) *SqliteStore {
	return &SqliteStore{path: path}
}

func (s *SqliteStore) dsn(params string) string {
	return "file:" + s.path + "?" + params
}

func (s *SqliteStore) writeDB() (*sql.DB, error) {
	return s.writer.get(func() (*sql.DB, error) {
		db, err := sql.Open("sqlite3", s.dsn(writeParams))
		if err != nil {
			return nil, fmt.Errorf("opening %s for writing: %w", s.path, err)
		}
		if _, err = db.Exec(initSchemaSQL); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("creating tables: %w", err)
		}
		return db, nil
	})
}

func (s *SqliteStore) readDB() (*sql.DB, error) {
	return s.reader.get(func() (*sql.DB, error) {
		db, err := sql.Open("sqlite3", s.dsn(readParams))
		if err != nil {
			return nil, fmt.Errorf("opening %s for reading: %w", s.path, err)
		}
		return db, nil
	})
}

// CreateSession starts a new session for source, e.g. "si4703" or a file
// path, decoded with the given standard.
func (s *SqliteStore) CreateSession(ctx context.Context, source, standard string) (sessionID int64, err error) {
	db, err := s.writeDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, time.Now().UTC(), source, standard)
	if err != nil {
		err = fmt.Errorf("inserting session: %w", err)
		return
	}

	sessionID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting session ID: %w", err)
	}
	return
}

func (s *SqliteStore) Sessions(ctx context.Context) (sessions []Session, err error) {
	db, err := s.readDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectSessionsSQL)
	if err != nil {
		err = fmt.Errorf("querying sessions: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var sess Session
		if err = rows.Scan(&sess.ID, &sess.StartTime, &sess.Source, &sess.Standard); err != nil {
			err = fmt.Errorf("scanning session: %w", err)
			return
		}
		sessions = append(sessions, sess)
	}
	err = rows.Err()
	return
}

// RecordSnapshot stores snap as seen at ts.
func (s *SqliteStore) RecordSnapshot(ctx context.Context, sessionID int64, ts time.Time, snap rds.Snapshot) (snapshotID int64, err error) {
	data, err := toSnapshotData(sessionID, ts, snap)
	if err != nil {
		return
	}

	db, err := s.writeDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertSnapshotSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(
		ctx,
		data.SessionID,
		data.Timestamp,
		data.Snap.PI,
		data.Snap.PS,
		data.Snap.PTY,
		data.Snap.RT,
		data.Snap.PTYN,
		data.Snap.ECC,
		data.Snap.LC,
		data.Snap.TP,
		data.Snap.TA,
		data.Snap.MS,
		data.Snap.DI,
		data.AFJSON,
		data.ClockTime,
		data.Groups,
		data.BlockErrors,
	)
	if err != nil {
		err = fmt.Errorf("inserting snapshot: %w", err)
		return
	}

	snapshotID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting snapshot ID: %w", err)
	}
	return
}

// Snapshots returns the records of a session, oldest first.
func (s *SqliteStore) Snapshots(ctx context.Context, sessionID int64) (records []Record, err error) {
	db, err := s.readDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectSnapshotsSQL, sessionID)
	if err != nil {
		err = fmt.Errorf("querying snapshots: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var r Record
		var af string
		var clock sql.NullTime
		if err = rows.Scan(
			&r.ID,
			&r.SessionID,
			&r.Timestamp,
			&r.PI,
			&r.PS,
			&r.PTY,
			&r.RT,
			&r.PTYN,
			&r.ECC,
			&r.LC,
			&r.TP,
			&r.TA,
			&r.MS,
			&r.DI,
			&af,
			&clock,
			&r.Groups,
			&r.BlockErrors,
		); err != nil {
			err = fmt.Errorf("scanning snapshot: %w", err)
			return
		}
		if err = json.Unmarshal([]byte(af), &r.AF); err != nil {
			err = fmt.Errorf("decoding AF of snapshot %d: %w", r.ID, err)
			return
		}
		if clock.Valid {
			t := clock.Time
			r.ClockTime = &t
		}
		records = append(records, r)
	}
	err = rows.Err()
	return
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		// indexes are built once at the end rather than kept up on every insert
		if s.writer.db != nil {
			_, _ = s.writer.db.Exec(initIndexesSQL)
		}
		s.closeErr = errors.Join(s.writer.close(), s.reader.close())
	})
	return s.closeErr
}
