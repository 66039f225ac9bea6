// Package janitor removes uploaded image files no longer referenced by any
// record. Asset deletion elsewhere is best-effort, so orphans accumulate
// after failed removals or rejected creates; the sweeper is the backstop.
package janitor

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/avelar/vidshelf-be/internal/storage"
)

// gracePeriod protects freshly uploaded files whose record has not been
// written yet.
const gracePeriod = time.Hour

// Sweeper periodically deletes unreferenced assets on a cron schedule.
type Sweeper struct {
	db       *sql.DB
	assets   *storage.Store
	schedule cron.Schedule
	nextRun  time.Time
	ticker   *time.Ticker
	done     chan bool
}

// NewSweeper creates a sweeper from a standard cron expression.
func NewSweeper(db *sql.DB, assets *storage.Store, scheduleExpr string) (*Sweeper, error) {
	schedule, err := cron.ParseStandard(scheduleExpr)
	if err != nil {
		return nil, err
	}
	return &Sweeper{
		db:       db,
		assets:   assets,
		schedule: schedule,
		nextRun:  schedule.Next(time.Now()),
		done:     make(chan bool),
	}, nil
}

// Run starts the sweeper's ticking loop.
func (s *Sweeper) Run() {
	log.Info().Msg("Starting asset janitor")
	s.ticker = time.NewTicker(1 * time.Minute)
	defer s.ticker.Stop()

	for {
		select {
		case <-s.done:
			log.Info().Msg("Stopping asset janitor")
			return
		case <-s.ticker.C:
			now := time.Now()
			if now.After(s.nextRun) {
				s.nextRun = s.schedule.Next(now)
				if err := s.Sweep(); err != nil {
					log.Error().Err(err).Msg("Asset sweep failed")
				}
			}
		}
	}
}

// Stop halts the sweeper.
func (s *Sweeper) Stop() {
	s.done <- true
}

// Sweep removes every file under the upload root that no record references
// and that is older than the grace period.
func (s *Sweeper) Sweep() error {
	queries := map[string]string{
		storage.KindOthers:     "SELECT avatar FROM users WHERE avatar IS NOT NULL AND avatar != ''",
		storage.KindCategories: "SELECT image FROM categories WHERE image IS NOT NULL AND image != ''",
		storage.KindVideos:     "SELECT image FROM videos WHERE image IS NOT NULL AND image != ''",
	}

	removed := 0
	for kind, query := range queries {
		referenced, err := s.referencedNames(query)
		if err != nil {
			return err
		}

		entries, err := os.ReadDir(filepath.Join(s.assets.Root(), kind))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		for _, entry := range entries {
			if entry.IsDir() || referenced[entry.Name()] {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if time.Since(info.ModTime()) < gracePeriod {
				continue
			}
			if err := s.assets.Remove(kind, entry.Name()); err != nil {
				log.Warn().Err(err).Str("asset", entry.Name()).Msg("Janitor could not remove orphaned asset")
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		log.Info().Int("removed", removed).Msg("Janitor removed orphaned assets")
	}
	return nil
}

func (s *Sweeper) referencedNames(query string) (map[string]bool, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names[name] = true
	}
	return names, rows.Err()
}
