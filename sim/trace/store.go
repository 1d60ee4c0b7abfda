package trace

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// createdLayout keeps stored timestamps fixed-width so they sort as text.
const createdLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RunMeta describes one stored run.
type RunMeta struct {
	ID         string
	Scenario   string
	Seed       int64
	Steps      int
	FinalClock float64
	StopReason string
	CreatedAt  time.Time
}

// Store persists run traces in SQLite so runs can be compared after the fact.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the database at path and initializes the schema.
func OpenStore(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open trace db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate trace db: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		scenario    TEXT NOT NULL,
		seed        INTEGER NOT NULL,
		steps       INTEGER NOT NULL,
		final_clock REAL NOT NULL,
		stop_reason TEXT NOT NULL,
		created_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS emissions (
		run_id  TEXT NOT NULL REFERENCES runs(id),
		idx     INTEGER NOT NULL,
		clock   REAL NOT NULL,
		model   TEXT NOT NULL,
		port    TEXT NOT NULL,
		value   TEXT NOT NULL,
		fanout  INTEGER NOT NULL,
		PRIMARY KEY (run_id, idx)
	);

	CREATE TABLE IF NOT EXISTS activations (
		run_id  TEXT NOT NULL REFERENCES runs(id),
		idx     INTEGER NOT NULL,
		seq     INTEGER NOT NULL,
		clock   REAL NOT NULL,
		model   TEXT NOT NULL,
		source  TEXT NOT NULL,
		port    TEXT NOT NULL,
		PRIMARY KEY (run_id, idx)
	);

	CREATE TABLE IF NOT EXISTS deliveries (
		run_id     TEXT NOT NULL REFERENCES runs(id),
		idx        INTEGER NOT NULL,
		clock      REAL NOT NULL,
		from_model TEXT NOT NULL,
		from_port  TEXT NOT NULL,
		to_model   TEXT NOT NULL,
		to_port    TEXT NOT NULL,
		PRIMARY KEY (run_id, idx)
	);

	CREATE INDEX IF NOT EXISTS idx_emissions_model ON emissions(run_id, model, port);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun stores the run and its trace in one transaction and returns the
// generated run id. meta.ID and meta.CreatedAt are filled in when empty.
func (s *Store) SaveRun(meta RunMeta, st *SimulationTrace) (string, error) {
	if meta.ID == "" {
		meta.ID = uuid.Must(uuid.NewV7()).String()
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
	if st == nil {
		st = NewSimulationTrace(TraceConfig{Level: TraceLevelNone})
	}

	err := retryOnContention(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.Exec(
			`INSERT INTO runs (id, scenario, seed, steps, final_clock, stop_reason, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			meta.ID, meta.Scenario, meta.Seed, meta.Steps, meta.FinalClock, meta.StopReason,
			meta.CreatedAt.UTC().Format(createdLayout),
		); err != nil {
			return err
		}
		for _, e := range st.Emissions {
			if _, err := tx.Exec(
				`INSERT INTO emissions (run_id, idx, clock, model, port, value, fanout)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				meta.ID, e.Index, e.Clock, e.Model, e.Port, encodeValue(e.Value), e.Fanout,
			); err != nil {
				return err
			}
		}
		for _, a := range st.Activations {
			if _, err := tx.Exec(
				`INSERT INTO activations (run_id, idx, seq, clock, model, source, port)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				meta.ID, a.Index, int64(a.Seq), a.Clock, a.Model, a.Source, a.Port,
			); err != nil {
				return err
			}
		}
		for _, d := range st.Deliveries {
			if _, err := tx.Exec(
				`INSERT INTO deliveries (run_id, idx, clock, from_model, from_port, to_model, to_port)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				meta.ID, d.Index, d.Clock, d.From, d.FromPort, d.To, d.ToPort,
			); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return "", fmt.Errorf("save run %s: %w", meta.ID, err)
	}
	return meta.ID, nil
}

// ListRuns returns all stored runs, oldest first.
func (s *Store) ListRuns() ([]RunMeta, error) {
	rows, err := s.db.Query(
		`SELECT id, scenario, seed, steps, final_clock, stop_reason, created_at
		 FROM runs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunMeta
	for rows.Next() {
		var m RunMeta
		var created string
		if err := rows.Scan(&m.ID, &m.Scenario, &m.Seed, &m.Steps, &m.FinalClock, &m.StopReason, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		m.CreatedAt, _ = time.Parse(createdLayout, created)
		runs = append(runs, m)
	}
	return runs, rows.Err()
}

// Emissions loads the emissions of a run in recording order. Values come
// back as their JSON encoding.
func (s *Store) Emissions(runID string) ([]EmissionRecord, error) {
	rows, err := s.db.Query(
		`SELECT idx, clock, model, port, value, fanout
		 FROM emissions WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("load emissions: %w", err)
	}
	defer rows.Close()

	var out []EmissionRecord
	for rows.Next() {
		var e EmissionRecord
		var value string
		if err := rows.Scan(&e.Index, &e.Clock, &e.Model, &e.Port, &value, &e.Fanout); err != nil {
			return nil, fmt.Errorf("scan emission: %w", err)
		}
		e.Value = value
		out = append(out, e)
	}
	return out, rows.Err()
}

// Deliveries loads the deliveries of a run in recording order. They are only
// recorded at TraceLevelAll.
func (s *Store) Deliveries(runID string) ([]DeliveryRecord, error) {
	rows, err := s.db.Query(
		`SELECT idx, clock, from_model, from_port, to_model, to_port
		 FROM deliveries WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("load deliveries: %w", err)
	}
	defer rows.Close()

	var out []DeliveryRecord
	for rows.Next() {
		var d DeliveryRecord
		if err := rows.Scan(&d.Index, &d.Clock, &d.From, &d.FromPort, &d.To, &d.ToPort); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// encodeValue stores values as JSON, falling back to their %v form for
// values JSON cannot represent.
func encodeValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprint(v))
	}
	return string(data)
}
