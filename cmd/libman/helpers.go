package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/chaiji/libman/internal/profile"
	"github.com/chaiji/libman/internal/report"
	"github.com/chaiji/libman/internal/store"
	"github.com/chaiji/libman/internal/util"
)

// loadProfile applies log levels and resolves the selected profile
func loadProfile() (*profile.Profile, error) {
	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))

	p, err := profile.Load(viper.GetString("profile"))
	if err != nil {
		return nil, err
	}
	if err := p.EnsureCatalogDir(); err != nil {
		return nil, err
	}
	return p, nil
}

// eventLogLevel maps CLI verbosity onto the event log filter
func eventLogLevel() report.EventLevel {
	if viper.GetBool("quiet") {
		return report.LevelWarning
	}
	if viper.GetBool("verbose") {
		return report.LevelDebug
	}
	return report.LevelInfo
}

// openEventLogger opens the JSONL event log, degrading to a null logger if
// the catalog directory is unwritable
func openEventLogger(p *profile.Profile) *report.EventLogger {
	logger, err := report.NewEventLogger(p.CatalogDir, eventLogLevel())
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		return report.NullLogger()
	}
	return logger
}

// openStoreWithFallback opens the catalog store. An unreadable backing file
// is set aside rather than aborting: the scan then proceeds against a fresh
// store, treating every path as new. The degradation is always reported.
func openStoreWithFallback(p *profile.Profile, logger *report.EventLogger) (*store.Store, error) {
	db, err := store.Open(p.StorePath())
	if err == nil {
		if ierr := db.CheckIntegrity(); ierr == nil {
			return db, nil
		} else {
			db.Close()
			err = ierr
		}
	}

	aside := fmt.Sprintf("%s.corrupt-%s", p.StorePath(), time.Now().Format("20060102-150405"))
	if rerr := os.Rename(p.StorePath(), aside); rerr != nil {
		return nil, fmt.Errorf("%w: %v (and could not set file aside: %v)", util.ErrCorruptStore, err, rerr)
	}

	reason := fmt.Sprintf("store unreadable (%v); moved to %s, rebuilding from scratch", err, aside)
	util.WarnLog("%s", reason)
	util.WarnLog("Run 'libman restore' to rehydrate from the mirror export, if one exists")
	logger.LogFallback(reason)

	db, err = store.Open(p.StorePath())
	if err != nil {
		return nil, fmt.Errorf("failed to recreate store: %w", err)
	}
	return db, nil
}
