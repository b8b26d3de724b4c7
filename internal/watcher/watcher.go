// Package watcher reacts to out-of-process filesystem changes — working
// tree edits, VCS state changes, and review-state changes from other
// processes — and emits coalesced notifications per repo (spec.md §4.6).
// Grounded on the fsnotify recursive-watch idiom in
// dshills-keystorm/internal/project/watcher/fsnotify.go, generalized from
// its generic Op/Event model into classification-driven notifications.
package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const debounceWindow = 200 * time.Millisecond

// NotificationKind enumerates the coalesced notification types a batch can
// produce.
type NotificationKind string

const (
	ReviewStateChanged NotificationKind = "review-state-changed"
	GitChanged         NotificationKind = "git-changed"
)

// Notification is a single coalesced event for one repo.
type Notification struct {
	RepoPath string
	Kind     NotificationKind
}

// Watcher recursively watches one repository root and emits coalesced
// Notifications on Notifications().
type Watcher struct {
	repoRoot string
	fsw      *fsnotify.Watcher
	classify *classifier
	log      zerolog.Logger

	notifications chan Notification
	closeCh       chan struct{}
	wg            sync.WaitGroup
}

// New creates a Watcher rooted at repoRoot. storageSub is the repo-relative
// path of the engine's own on-disk storage subdirectory (if the review
// store happens to live inside the repo), used to classify ReviewState
// events; pass "" if the store lives outside the repo entirely.
func New(repoRoot, storageSub string, log zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		repoRoot:      repoRoot,
		fsw:           fsw,
		classify:      newClassifier(repoRoot, storageSub),
		log:           log.With().Str("component", "watcher").Str("repo", repoRoot).Logger(),
		notifications: make(chan Notification, 16),
		closeCh:       make(chan struct{}),
	}

	if err := w.watchRecursive(repoRoot); err != nil {
		fsw.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.loop()

	return w, nil
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		// .git itself (HEAD, index) and the refs directories leading to
		// refs/heads and refs/remotes hold the paths classifyGit keeps, so
		// they are watched even though they classify as ignored.
		rel, _ := filepath.Rel(root, p)
		rel = filepath.ToSlash(rel)
		gitWatched := rel == ".git" || rel == ".git/refs" ||
			strings.HasPrefix(rel, ".git/refs/heads") || strings.HasPrefix(rel, ".git/refs/remotes")
		if p != root && !gitWatched && w.classify.classify(p, true) == CategoryIgnored {
			return filepath.SkipDir
		}
		if addErr := w.fsw.Add(p); addErr != nil {
			w.log.Warn().Err(addErr).Str("path", p).Msg("failed to watch directory")
		}
		return nil
	})
}

// Notifications returns the channel of coalesced per-batch notifications.
func (w *Watcher) Notifications() <-chan Notification {
	return w.notifications
}

// Close stops watching and releases the underlying fsnotify handle.
func (w *Watcher) Close() error {
	close(w.closeCh)
	w.wg.Wait()
	close(w.notifications)
	return w.fsw.Close()
}

// loop debounces raw fsnotify events into 200ms batches, classifies every
// path in the batch, and emits at most one notification per kind.
func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time
	pending := make(map[string]bool)

	flush := func() {
		if len(pending) == 0 {
			return
		}
		seenReviewState, seenGit := false, false
		for path := range pending {
			info, statErr := os.Lstat(path)
			isDir := statErr == nil && info.IsDir()
			switch w.classify.classify(path, isDir) {
			case CategoryReviewState:
				seenReviewState = true
			case CategoryWorkingTree:
				seenGit = true
			}
			if statErr == nil && isDir {
				_ = w.fsw.Add(path)
			}
		}
		pending = make(map[string]bool)

		if seenReviewState {
			w.send(Notification{RepoPath: w.repoRoot, Kind: ReviewStateChanged})
		}
		if seenGit {
			w.send(Notification{RepoPath: w.repoRoot, Kind: GitChanged})
		}
	}

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			pending[ev.Name] = true
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerC = timer.C
			} else {
				timer.Reset(debounceWindow)
			}

		case <-timerC:
			flush()
			timer = nil
			timerC = nil

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) send(n Notification) {
	select {
	case w.notifications <- n:
	default:
		w.log.Warn().Str("kind", string(n.Kind)).Msg("notification channel full, dropping")
	}
}
