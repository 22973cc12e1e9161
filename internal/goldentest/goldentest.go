// Package goldentest backs §8's "concrete end-to-end scenarios" with a
// small sqlite-backed fixture store: one row per scenario (source text,
// expected stdout, expected exit code), loaded through database/sql and
// modernc.org/sqlite (pure Go, cgo-free) rather than kept as bare Go
// literals, so the fixture set can grow or be edited without a
// recompile. Grounded on the teacher's own go.mod, which carries
// modernc.org/sqlite as a direct dependency; this package gives it a
// real caller.
package goldentest

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/ZOrfeas/llamac/internal/driver"
)

// Scenario is one row of the fixture table. Args is stored joined by "\x1f"
// (a plain TEXT column, not a separate join table — the flag list is
// always short and never contains that byte).
type Scenario struct {
	Name         string
	Source       string
	Args         []string
	ExpectStdout string
	ExpectExit   int
}

const argSep = "\x1f"

// Store is an in-memory sqlite database holding the fixture table.
// In-memory rather than file-backed: these fixtures are seeded fresh by
// Seed on every test run, never persisted between them.
type Store struct {
	db *sql.DB
}

// Open creates a fresh in-memory fixture store and its schema.
func Open(ctx context.Context) (*Store, error) {
	db, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("opening fixture store: %w", err)
	}
	const schema = `
CREATE TABLE scenarios (
	name TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	args TEXT NOT NULL,
	expect_stdout TEXT NOT NULL,
	expect_exit INTEGER NOT NULL
);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating fixture schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the store's connection.
func (s *Store) Close() error { return s.db.Close() }

// Seed inserts scenarios, replacing any existing row of the same name.
func (s *Store) Seed(ctx context.Context, scenarios []Scenario) error {
	for _, sc := range scenarios {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO scenarios (name, source, args, expect_stdout, expect_exit) VALUES (?, ?, ?, ?, ?)`,
			sc.Name, sc.Source, strings.Join(sc.Args, argSep), sc.ExpectStdout, sc.ExpectExit)
		if err != nil {
			return fmt.Errorf("seeding scenario %q: %w", sc.Name, err)
		}
	}
	return nil
}

// Load fetches one scenario row by name.
func (s *Store) Load(ctx context.Context, name string) (Scenario, error) {
	var sc Scenario
	sc.Name = name
	var args string
	row := s.db.QueryRowContext(ctx,
		`SELECT source, args, expect_stdout, expect_exit FROM scenarios WHERE name = ?`, name)
	if err := row.Scan(&sc.Source, &args, &sc.ExpectStdout, &sc.ExpectExit); err != nil {
		return Scenario{}, fmt.Errorf("loading scenario %q: %w", name, err)
	}
	if args != "" {
		sc.Args = strings.Split(args, argSep)
	}
	return sc, nil
}

// All returns every seeded scenario, ordered by name.
func (s *Store) All(ctx context.Context) ([]Scenario, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, source, args, expect_stdout, expect_exit FROM scenarios ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing scenarios: %w", err)
	}
	defer rows.Close()
	var out []Scenario
	for rows.Next() {
		var sc Scenario
		var args string
		if err := rows.Scan(&sc.Name, &sc.Source, &args, &sc.ExpectStdout, &sc.ExpectExit); err != nil {
			return nil, err
		}
		if args != "" {
			sc.Args = strings.Split(args, argSep)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// Result holds what running a scenario through internal/driver actually
// produced, for diffing against its Scenario row.
type Result struct {
	Stdout string
	Exit   int
}

// RunScenario compiles sc.Source through internal/driver with sc.Args
// and reports what came out. §6's compiler only emits IR/a dump, never
// executes the program, so "stdout" here is the driver's own -i/-ast/
// -idtypes output — running the emitted binary to check its printed
// output (§8 scenario 2's "prints 3") is runtime/*.c's and an external
// linker's job, outside this store's scope.
func RunScenario(sc Scenario) Result {
	var out, errw bytes.Buffer
	exit := driver.Run(sc.Args, strings.NewReader(sc.Source), &out, &errw)
	return Result{Stdout: out.String(), Exit: exit}
}

// Diff reports a human-readable mismatch between want and got, or "" if
// they match.
func Diff(sc Scenario, got Result) string {
	var msgs []string
	if got.Exit != sc.ExpectExit {
		msgs = append(msgs, fmt.Sprintf("exit: want %d, got %d", sc.ExpectExit, got.Exit))
	}
	if sc.ExpectStdout != "" && !strings.Contains(got.Stdout, sc.ExpectStdout) {
		msgs = append(msgs, fmt.Sprintf("stdout: want it to contain %q, got %q", sc.ExpectStdout, got.Stdout))
	}
	return strings.Join(msgs, "; ")
}
