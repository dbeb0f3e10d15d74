// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package fsobserver

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/tidybee-agent/pkg/debounce"
	"github.com/autobrr/tidybee-agent/pkg/pathcmp"
)

// DebounceWindow is the fixed coalescing interval: bursts of raw fsnotify
// events on the same path collapse into a single logical Event, and a
// Rename/Create pair observed within the window is folded into one Rename.
const DebounceWindow = 2 * time.Second

// Observer watches a set of roots recursively and emits a single debounced
// stream of Events. Construction failure (the underlying watcher failing to
// start) is fatal for the agent; per-root listing/watch failures are
// logged and that root is skipped, watching continues for the rest.
type Observer struct {
	watcher Watcher
	queue   *unboundedQueue
	debounceMgr *debounce.Manager[string]

	mu      sync.Mutex
	watched map[string]struct{}
	pending []pendingRename

	closeOnce sync.Once
	done      chan struct{}
}

type pendingRename struct {
	from  string
	timer *time.Timer
}

// New starts watching every root recursively. Roots that don't exist or
// aren't directories are logged and skipped; watching proceeds for the rest.
func New(roots []string) (*Observer, error) {
	w, err := newFSNotifyWatcher()
	if err != nil {
		return nil, err
	}

	o := &Observer{
		watcher:     w,
		queue:       newUnboundedQueue(),
		debounceMgr: debounce.NewManager[string](func() *debounce.Debouncer { return debounce.New(DebounceWindow) }),
		watched:     make(map[string]struct{}),
		done:        make(chan struct{}),
	}

	for _, root := range roots {
		if err := o.watchRoot(root); err != nil {
			log.Warn().Err(err).Str("root", root).Msg("fsobserver: skipping root")
		}
	}

	go o.watchLoop()
	return o, nil
}

// Events returns the observer's debounced, unbounded event stream.
func (o *Observer) Events() <-chan Event {
	return o.queue.events()
}

// Close stops the watcher and drains pending debounce timers.
func (o *Observer) Close() error {
	var err error
	o.closeOnce.Do(func() {
		err = o.watcher.Close()
		close(o.done)
		o.debounceMgr.StopAll()
		o.queue.close()
	})
	return err
}

func (o *Observer) watchRoot(root string) error {
	canonical := pathcmp.NormalizePath(root)

	info, statErr := os.Stat(canonical)
	if statErr != nil {
		return statErr
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "watch", Path: canonical, Err: fs.ErrInvalid}
	}

	return filepath.WalkDir(canonical, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			log.Warn().Err(walkErr).Str("path", path).Msg("fsobserver: walk error, skipping entry")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			o.addWatch(path)
		}
		return nil
	})
}

func (o *Observer) addWatch(path string) {
	o.mu.Lock()
	if _, ok := o.watched[path]; ok {
		o.mu.Unlock()
		return
	}
	o.watched[path] = struct{}{}
	o.mu.Unlock()

	if err := o.watcher.Add(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("fsobserver: failed to watch directory")
	}
}

func (o *Observer) dropWatch(path string) {
	o.mu.Lock()
	_, ok := o.watched[path]
	delete(o.watched, path)
	o.mu.Unlock()
	if ok {
		_ = o.watcher.Remove(path)
	}
}

func (o *Observer) watchLoop() {
	for {
		select {
		case <-o.done:
			return
		case evt, ok := <-o.watcher.Events():
			if !ok {
				return
			}
			o.handleRaw(evt)
		case err, ok := <-o.watcher.Errors():
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("fsobserver: watcher backend error")
		}
	}
}

func (o *Observer) handleRaw(evt fsnotify.Event) {
	switch {
	case evt.Op&fsnotify.Create == fsnotify.Create:
		o.handleCreate(evt.Name)
	case evt.Op&fsnotify.Rename == fsnotify.Rename:
		o.handleRenameFrom(evt.Name)
	case evt.Op&fsnotify.Remove == fsnotify.Remove:
		o.dropWatch(evt.Name)
		o.emitDebounced(evt.Name, Removed)
	case evt.Op&fsnotify.Write == fsnotify.Write:
		o.emitDebounced(evt.Name, ModifiedData)
	case evt.Op&fsnotify.Chmod == fsnotify.Chmod:
		o.emitDebounced(evt.Name, ModifiedMetadata)
	}
}

// handleCreate either completes a pending rename (fsnotify never exposes
// the inotify rename cookie pairing old/new paths, so a Create observed
// while a Rename "from" is still pending is taken as its "to" side, FIFO)
// or treats the path as a fresh Created event.
func (o *Observer) handleCreate(path string) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		o.addWatch(path)
		_ = o.watchRoot(path)
	}

	o.mu.Lock()
	if len(o.pending) > 0 {
		pr := o.pending[0]
		o.pending = o.pending[1:]
		o.mu.Unlock()

		pr.timer.Stop()
		o.debounceMgr.Do(pr.from, func() {
			o.queue.push(Event{Kind: Rename, Path: pr.from, RenameTo: path})
		})
		return
	}
	o.mu.Unlock()

	o.emitDebounced(path, Created)
}

func (o *Observer) handleRenameFrom(path string) {
	timer := time.AfterFunc(DebounceWindow, func() {
		o.mu.Lock()
		for i, pr := range o.pending {
			if pr.from == path {
				o.pending = append(o.pending[:i], o.pending[i+1:]...)
				break
			}
		}
		o.mu.Unlock()
		o.dropWatch(path)
		o.emitDebounced(path, Removed)
	})

	o.mu.Lock()
	o.pending = append(o.pending, pendingRename{from: path, timer: timer})
	o.mu.Unlock()
}

func (o *Observer) emitDebounced(path string, kind Kind) {
	o.debounceMgr.Do(path, func() {
		o.queue.push(Event{Kind: kind, Path: path})
	})
}
