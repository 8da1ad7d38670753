// Package migration runs and tracks versioned GORM schema migrations.
//
// Migrations register themselves from init():
//
//	func init() {
//	    migration.Register("20260101000000_create_products_table", &CreateProductsTable{})
//	}
//
// and are applied from the CLI:
//
//	pricebook migrate             // run all pending
//	pricebook migrate:rollback    // roll back the last batch
//	pricebook migrate:status
//
// Each step and its bookkeeping row commit in one transaction, so a failed
// step is never recorded as run. Dialects with implicit DDL commits (MySQL)
// only get that guarantee for the bookkeeping row.
package migration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/pricebook/pkg/logger"
)

// Migration is one reversible schema step. db is the step's transaction.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

type record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null;index"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "pricebook_migrations" }

type step struct {
	name string
	m    Migration
}

var steps []step

// Register adds a migration. Names should be timestamp-prefixed; pending
// migrations run in name order.
func Register(name string, m Migration) {
	steps = append(steps, step{name: name, m: m})
}

// ErrNoMigrations is returned by Run when nothing is registered.
var ErrNoMigrations = errors.New("migration: no migrations registered")

// State is one registered migration as seen by Status. Batch is zero
// while pending.
type State struct {
	Name  string
	Batch int
	RunAt time.Time
}

// Ran reports whether the migration has been applied.
func (s State) Ran() bool { return s.Batch > 0 }

// Runner applies and reverts registered migrations against one database.
type Runner struct {
	db  *gorm.DB
	out io.Writer
}

// New returns a Runner that reports progress on stdout.
func New(db *gorm.DB) *Runner {
	return &Runner{db: db, out: os.Stdout}
}

// WithOutput redirects progress lines.
func (r *Runner) WithOutput(w io.Writer) *Runner {
	r.out = w
	return r
}

func (r *Runner) conn(ctx context.Context) (*gorm.DB, error) {
	db := r.db.WithContext(ctx)
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("migration: tracking table: %w", err)
	}
	return db, nil
}

// Status lists every registered migration in name order with its batch.
func (r *Runner) Status(ctx context.Context) ([]State, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	var rows []record
	if err := db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("migration: read history: %w", err)
	}
	ran := make(map[string]record, len(rows))
	for _, row := range rows {
		ran[row.Name] = row
	}

	out := make([]State, 0, len(steps))
	for _, s := range steps {
		st := State{Name: s.name}
		if row, ok := ran[s.name]; ok {
			st.Batch, st.RunAt = row.Batch, row.RunAt
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Pending returns the names of migrations that have not run, in run order.
func (r *Runner) Pending(ctx context.Context) ([]string, error) {
	states, err := r.Status(ctx)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, s := range states {
		if !s.Ran() {
			names = append(names, s.Name)
		}
	}
	return names, nil
}

// Run applies every pending migration as one new batch.
func (r *Runner) Run(ctx context.Context) error {
	if len(steps) == 0 {
		return ErrNoMigrations
	}
	pending, err := r.Pending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
		return nil
	}

	db, err := r.conn(ctx)
	if err != nil {
		return err
	}
	batch, err := lastBatch(db)
	if err != nil {
		return err
	}
	batch++

	byName := registered()
	for _, name := range pending {
		fmt.Fprintf(r.out, "  ▶ Migrating: %s\n", name)
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := byName[name].Up(tx); err != nil {
				return err
			}
			return tx.Create(&record{Name: name, Batch: batch}).Error
		})
		if err != nil {
			return fmt.Errorf("migration: %s up: %w", name, err)
		}
		fmt.Fprintf(r.out, "  ✅ Migrated:  %s\n", name)
	}

	logger.Info("migration: done", "ran", len(pending), "batch", batch)
	return nil
}

// Rollback reverts the most recent batch, newest migration first.
func (r *Runner) Rollback(ctx context.Context) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}
	last, err := lastBatch(db)
	if err != nil {
		return err
	}
	if last == 0 {
		fmt.Fprintln(r.out, "Nothing to roll back.")
		return nil
	}

	var rows []record
	if err := db.Where("batch = ?", last).Order("id desc").Find(&rows).Error; err != nil {
		return fmt.Errorf("migration: load batch %d: %w", last, err)
	}

	byName := registered()
	for _, row := range rows {
		m, ok := byName[row.Name]
		if !ok {
			return fmt.Errorf("migration: cannot roll back %s: not registered", row.Name)
		}

		fmt.Fprintf(r.out, "  ◀ Rolling back: %s\n", row.Name)
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return err
			}
			return tx.Delete(&record{}, row.ID).Error
		})
		if err != nil {
			return fmt.Errorf("migration: %s down: %w", row.Name, err)
		}
		fmt.Fprintf(r.out, "  ✅ Rolled back:  %s\n", row.Name)
	}

	logger.Info("migration: rolled back", "batch", last, "count", len(rows))
	return nil
}

// PrintStatus writes Status as a table.
func (r *Runner) PrintStatus(ctx context.Context) error {
	states, err := r.Status(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(r.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "MIGRATION\tSTATUS\tBATCH\tRUN AT")
	for _, s := range states {
		if s.Ran() {
			fmt.Fprintf(w, "%s\tRan\t%d\t%s\n", s.Name, s.Batch, s.RunAt.Format(time.RFC3339))
		} else {
			fmt.Fprintf(w, "%s\tPending\t-\t-\n", s.Name)
		}
	}
	return w.Flush()
}

func registered() map[string]Migration {
	m := make(map[string]Migration, len(steps))
	for _, s := range steps {
		m[s.name] = s.m
	}
	return m
}

func lastBatch(db *gorm.DB) (int, error) {
	var row struct{ Max int }
	if err := db.Model(&record{}).Select("COALESCE(MAX(batch), 0) AS max").Scan(&row).Error; err != nil {
		return 0, fmt.Errorf("migration: read last batch: %w", err)
	}
	return row.Max, nil
}
