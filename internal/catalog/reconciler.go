// Package catalog implements the scan reconciler: the run pipeline that
// walks a library root, compares what it finds against the entry store, and
// commits the minimal set of create/update decisions.
package catalog

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/chaiji/libman/internal/fingerprint"
	"github.com/chaiji/libman/internal/profile"
	"github.com/chaiji/libman/internal/report"
	"github.com/chaiji/libman/internal/store"
	"github.com/chaiji/libman/internal/util"
)

const (
	writeBatchSize  = 256
	writeFlushEvery = 500 * time.Millisecond
)

// Reconciler drives one catalog run
type Reconciler struct {
	store     *store.Store
	profile   *profile.Profile
	logger    *report.EventLogger
	extractor Extractor
	tokens    TokenCounter
	hashFunc  func(string) (string, error)
}

// Config holds reconciler configuration
type Config struct {
	Store     *store.Store
	Profile   *profile.Profile
	Logger    *report.EventLogger
	Extractor Extractor    // optional; used only with Options.Convert
	Tokens    TokenCounter // optional; used only with Options.Tokenize
	HashFunc  func(string) (string, error)
}

// Options selects the operating mode for one run
type Options struct {
	Rebuild  bool // discard the store first, treat every path as new
	Convert  bool // invoke the extraction collaborator for stale artifacts
	Tokenize bool // count tokens for entries with a fresh text artifact
}

// New creates a Reconciler
func New(cfg *Config) *Reconciler {
	hashFunc := cfg.HashFunc
	if hashFunc == nil {
		hashFunc = fingerprint.Identity
	}
	logger := cfg.Logger
	if logger == nil {
		logger = report.NullLogger()
	}
	return &Reconciler{
		store:     cfg.Store,
		profile:   cfg.Profile,
		logger:    logger,
		extractor: cfg.Extractor,
		tokens:    cfg.Tokens,
		hashFunc:  hashFunc,
	}
}

// workItem is one file that needs work beyond a no-op
type workItem struct {
	absPath  string
	key      store.Key
	sig      fingerprint.Signal
	prior    *store.Entry // nil for new entries
	needHash bool
}

// Run executes one reconciliation pass. Per-file errors are counted and
// skipped; only root inaccessibility or a store write failure aborts the run.
func (r *Reconciler) Run(ctx context.Context, opts Options) (*report.RunReport, error) {
	started := time.Now()
	rep := &report.RunReport{Mode: "incremental"}
	if opts.Rebuild {
		rep.Mode = "rebuild"
	}

	root := r.profile.Root
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		rep.Outcome = report.OutcomeAborted
		rep.Finish(started)
		if err == nil {
			err = fmt.Errorf("not a directory")
		}
		return rep, fmt.Errorf("root directory inaccessible: %s: %w", root, err)
	}

	if opts.Rebuild {
		if err := r.store.Reset(); err != nil {
			rep.Outcome = report.OutcomeAborted
			rep.Finish(started)
			return rep, fmt.Errorf("full rebuild reset failed: %w", err)
		}
	}

	// Pre-load the existing entries so compare is a map lookup, not a query
	prior := make(map[store.Key]*store.Entry)
	if !opts.Rebuild {
		entries, err := r.store.All()
		if err != nil {
			rep.Outcome = report.OutcomeAborted
			rep.Finish(started)
			return rep, fmt.Errorf("failed to load existing entries: %w", err)
		}
		for _, e := range entries {
			prior[e.Key] = e
		}
	}
	util.InfoLog("Starting %s run of %s (%d known entries)", rep.Mode, root, len(prior))

	var (
		created   atomic.Int64
		updated   atomic.Int64
		unchanged atomic.Int64
		hashed    atomic.Int64
		tokenized atomic.Int64
		errored   atomic.Int64
		warnings  atomic.Int64
		found     atomic.Int64
		processed atomic.Int64
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	work := make(chan *workItem, 128)
	results := make(chan *store.Entry, 256)

	// Single serialized writer: workers never touch the store directly, so
	// the persisted content is independent of worker scheduling order.
	var writerWg sync.WaitGroup
	var writeErr error
	writerWg.Add(1)
	go func() {
		defer writerWg.Done()
		batch := make([]*store.Entry, 0, writeBatchSize)
		ticker := time.NewTicker(writeFlushEvery)
		defer ticker.Stop()

		flush := func() {
			if len(batch) == 0 || writeErr != nil {
				return
			}
			if err := r.store.UpsertBatch(batch); err != nil {
				util.ErrorLog("Failed to commit batch: %v", err)
				writeErr = err
				cancel()
				return
			}
			batch = batch[:0]
		}

		for {
			select {
			case e, ok := <-results:
				if !ok {
					flush()
					return
				}
				batch = append(batch, e)
				if len(batch) >= writeBatchSize {
					flush()
				}
			case <-ticker.C:
				flush()
			}
		}
	}()

	// Bounded worker pool for hashing and artifact checks
	var wg sync.WaitGroup
	for i := 0; i < r.profile.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range work {
				select {
				case <-runCtx.Done():
					return
				default:
				}

				e, err := r.process(runCtx, opts, item)
				processed.Add(1)
				if err != nil {
					errored.Add(1)
					r.logger.LogError(item.key.String(), item.absPath, err)
					util.WarnLog("Skipping %s: %v", item.absPath, err)
					continue
				}
				if item.needHash {
					hashed.Add(1)
				}
				if e.TokenCount.Valid && (item.prior == nil || !item.prior.TokenCount.Valid) {
					tokenized.Add(1)
				}
				if item.prior == nil {
					created.Add(1)
				} else {
					updated.Add(1)
				}
				results <- e
			}
		}()
	}

	bar, stopProgress := r.startProgress(runCtx, &found, &processed)

	x := newExcluder(r.profile.Excluded, r.profile.ExtractDir)
	catalogDir, _ := filepath.Abs(r.profile.CatalogDir)
	seen := make(map[store.Key]bool)
	lowerSeen := make(map[string]store.Key)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-runCtx.Done():
			return runCtx.Err()
		default:
		}

		if err != nil {
			util.WarnLog("Error accessing path %s: %v", path, err)
			errored.Add(1)
			return nil // continue walking
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if abs, aerr := filepath.Abs(path); aerr == nil && abs == catalogDir {
				return filepath.SkipDir
			}
			if x.excludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if x.excludedFile(d.Name()) {
			return nil
		}

		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			errored.Add(1)
			return nil
		}
		key := store.KeyForPath(rel)
		found.Add(1)

		// Case-insensitive filesystems can map two paths to one key.
		// Second write wins; record the collision instead of corrupting.
		lower := strings.ToLower(key.String())
		if prev, dup := lowerSeen[lower]; dup && prev != key {
			warnings.Add(1)
			r.logger.LogCollision(key.String(), path)
		}
		lowerSeen[lower] = key
		seen[key] = true

		fi, ferr := d.Info()
		if ferr != nil {
			errored.Add(1)
			r.logger.LogError(key.String(), path, ferr)
			return nil
		}
		sig := fingerprint.Signal{MtimeUnix: fi.ModTime().Unix(), SizeBytes: fi.Size()}
		r.logger.LogScan(key.String(), path, sig.SizeBytes)

		pe := prior[key]
		if pe != nil && sig.Equal(fingerprint.Signal{MtimeUnix: pe.MtimeUnix, SizeBytes: pe.SizeBytes}) {
			// Signal unchanged: rehash is forbidden. The row is only touched
			// when artifact freshness, the missing flag, or an opt-in pass
			// requires it.
			extractedNow, _ := artifactState(root, r.profile.ExtractDir, key, sig.MtimeUnix)
			needsToken := opts.Tokenize && r.tokens != nil && extractedNow && !pe.TokenCount.Valid
			wantsConvert := opts.Convert && r.extractor != nil && !extractedNow && isExtractable(key.Extension)
			if extractedNow == pe.Extracted && !pe.Missing && !needsToken && !wantsConvert {
				unchanged.Add(1)
				return nil
			}
			return send(runCtx, work, &workItem{absPath: path, key: key, sig: sig, prior: pe})
		}

		return send(runCtx, work, &workItem{absPath: path, key: key, sig: sig, prior: pe, needHash: true})
	})

	close(work)
	wg.Wait()
	close(results)
	writerWg.Wait()
	stopProgress()
	if bar != nil {
		bar.Finish()
	}

	if writeErr != nil {
		rep.Outcome = report.OutcomeAborted
		r.fillCounts(rep, &created, &updated, &unchanged, &hashed, &tokenized, &errored, &warnings)
		rep.Finish(started)
		return rep, fmt.Errorf("store write failed: %w", writeErr)
	}

	if walkErr != nil || ctx.Err() != nil {
		// Everything committed so far stays committed; the run just ends early.
		rep.Outcome = report.OutcomeAborted
		r.fillCounts(rep, &created, &updated, &unchanged, &hashed, &tokenized, &errored, &warnings)
		rep.Finish(started)
		return rep, context.Canceled
	}

	// Paths that disappeared are flagged, never deleted
	if !opts.Rebuild {
		var missingKeys []store.Key
		for k, e := range prior {
			if !seen[k] && !e.Missing {
				missingKeys = append(missingKeys, k)
			}
		}
		sort.Slice(missingKeys, func(i, j int) bool {
			return missingKeys[i].String() < missingKeys[j].String()
		})
		for _, k := range missingKeys {
			r.logger.LogMissing(k.String())
		}
		if err := r.store.MarkMissing(missingKeys); err != nil {
			rep.Outcome = report.OutcomeAborted
			rep.Finish(started)
			return rep, fmt.Errorf("failed to flag missing entries: %w", err)
		}
		rep.Missing = len(missingKeys)
	}

	r.fillCounts(rep, &created, &updated, &unchanged, &hashed, &tokenized, &errored, &warnings)
	rep.Finish(started)

	util.SuccessLog("Run %s: %d created, %d updated, %d unchanged, %d missing, %d errors",
		rep.Outcome, rep.Created, rep.Updated, rep.Unchanged, rep.Missing, rep.Errors)

	return rep, nil
}

func (r *Reconciler) fillCounts(rep *report.RunReport, created, updated, unchanged, hashed, tokenized, errored, warnings *atomic.Int64) {
	rep.Created = int(created.Load())
	rep.Updated = int(updated.Load())
	rep.Unchanged = int(unchanged.Load())
	rep.Hashed = int(hashed.Load())
	rep.Tokenized = int(tokenized.Load())
	rep.Errors = int(errored.Load())
	rep.Warnings = int(warnings.Load())
}

func send(ctx context.Context, work chan<- *workItem, item *workItem) error {
	select {
	case work <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// process turns one work item into a completed entry update. Runs on a
// worker; must not touch the store.
func (r *Reconciler) process(ctx context.Context, opts Options, item *workItem) (*store.Entry, error) {
	e := &store.Entry{
		Key:       item.key,
		MtimeUnix: item.sig.MtimeUnix,
		SizeBytes: item.sig.SizeBytes,
	}

	if item.needHash {
		hash, err := r.hashFunc(item.absPath)
		r.logger.LogHash(item.key.String(), item.absPath, hash, err)
		if err != nil {
			return nil, err
		}
		e.ContentHash = hash
	} else {
		// Signal unchanged: the stored identity and token count still hold
		e.ContentHash = item.prior.ContentHash
		e.TokenCount = item.prior.TokenCount
	}

	extracted, artPath := artifactState(r.profile.Root, r.profile.ExtractDir, item.key, item.sig.MtimeUnix)
	if !extracted && opts.Convert && r.extractor != nil && isExtractable(item.key.Extension) && artPath != "" {
		err := r.extractor.Extract(ctx, item.absPath, artPath)
		r.logger.LogExtract(item.key.String(), item.absPath, artPath, err)
		if err != nil {
			util.WarnLog("Extraction failed for %s: %v", item.absPath, err)
		} else {
			extracted, artPath = artifactState(r.profile.Root, r.profile.ExtractDir, item.key, item.sig.MtimeUnix)
		}
	}
	e.Extracted = extracted

	if opts.Tokenize && r.tokens != nil && extracted && !e.TokenCount.Valid {
		target := artPath
		if strings.EqualFold(item.key.Extension, "txt") {
			target = item.absPath
		}
		if target != "" {
			if n, err := r.tokens.CountFile(target); err != nil {
				util.WarnLog("Token counting failed for %s: %v", target, err)
			} else {
				e.TokenCount.Int64 = n
				e.TokenCount.Valid = true
			}
		}
	}

	return e, nil
}

// startProgress shows a progress bar on a TTY, mirroring the counters the
// final report uses. Returns a stop function.
func (r *Reconciler) startProgress(ctx context.Context, found, processed *atomic.Int64) (*progressbar.ProgressBar, func()) {
	if !util.IsTerminal(os.Stdout.Fd()) || util.IsQuiet() {
		return nil, func() {}
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Scanning"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionThrottle(200*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				bar.Describe(fmt.Sprintf("Scanning | %d found | %d processed",
					found.Load(), processed.Load()))
				bar.Set64(processed.Load())
			}
		}
	}()

	var once sync.Once
	return bar, func() { once.Do(func() { close(done) }) }
}
