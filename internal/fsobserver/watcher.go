// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package fsobserver

import "github.com/fsnotify/fsnotify"

// Watcher abstracts fsnotify so tests can substitute a fake backend.
type Watcher interface {
	Add(name string) error
	Remove(name string) error
	Close() error
	Events() <-chan fsnotify.Event
	Errors() <-chan error
}

type fsNotifyWatcher struct {
	*fsnotify.Watcher
}

func newFSNotifyWatcher() (Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &fsNotifyWatcher{Watcher: w}, nil
}

func (w *fsNotifyWatcher) Events() <-chan fsnotify.Event { return w.Watcher.Events }
func (w *fsNotifyWatcher) Errors() <-chan error          { return w.Watcher.Errors }
