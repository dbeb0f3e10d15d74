// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package orchestrator ties the catalog, the rule engine, and the
// filesystem observer into the single startup sequence and event loop that
// keeps the index consistent with the watched roots.
package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/tidybee-agent/internal/catalog"
	"github.com/autobrr/tidybee-agent/internal/fileinfo"
	"github.com/autobrr/tidybee-agent/internal/fsobserver"
	"github.com/autobrr/tidybee-agent/internal/hub"
	"github.com/autobrr/tidybee-agent/internal/tidyrule"
)

// Orchestrator owns the event loop that keeps the catalog, the rule
// engine's scores, and the remote hub consistent with the watched roots.
type Orchestrator struct {
	cat        *catalog.DB
	engine     *tidyrule.Engine
	hubClient  *hub.Client
	roots      []string
	extensions []string
}

// New builds an Orchestrator. hubClient may be nil, in which case catalog
// changes are never announced to a hub (useful for tests and for --list-only
// invocations).
func New(cat *catalog.DB, engine *tidyrule.Engine, hubClient *hub.Client, roots []string) *Orchestrator {
	return &Orchestrator{cat: cat, engine: engine, hubClient: hubClient, roots: roots}
}

// WithExtensions restricts indexing (both the startup listing pass and
// fsnotify-driven Created events) to files whose extension matches one of
// extensions, case-insensitively and without the leading dot. An empty or
// nil extensions matches every file, which is the zero-value behavior.
func (o *Orchestrator) WithExtensions(extensions []string) *Orchestrator {
	o.extensions = extensions
	return o
}

// matchesExtensionFilter reports whether path should be indexed under the
// configured --extension allow-list.
func (o *Orchestrator) matchesExtensionFilter(path string) bool {
	if len(o.extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return slices.ContainsFunc(o.extensions, func(allowed string) bool {
		return strings.EqualFold(allowed, ext)
	})
}

// Bootstrap enumerates every listing root recursively, indexing and scoring
// every regular file it finds, then recomputes grades for the whole
// catalog so pre-existing rows pick up any rule-set changes since their
// last run. It is step 3-4 of the startup sequence; steps 1-2 (catalog open,
// manifest load) happen in main before an Orchestrator is constructed.
func (o *Orchestrator) Bootstrap(ctx context.Context, listRoots []string) error {
	for _, root := range listRoots {
		if err := o.listRoot(ctx, root); err != nil {
			log.Warn().Err(err).Str("root", root).Msg("orchestrator: skipping listing root")
		}
	}
	return o.RecomputeGrades(ctx)
}

func (o *Orchestrator) listRoot(ctx context.Context, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			log.Warn().Err(walkErr).Str("path", path).Msg("orchestrator: walk error, skipping entry")
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if err := o.indexNewFile(ctx, path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("orchestrator: failed to index file during listing")
		}
		return nil
	})
}

// RecomputeGrades recomputes and persists the grade of every scored file in
// the catalog under the currently loaded rule set.
func (o *Orchestrator) RecomputeGrades(ctx context.Context) error {
	records, err := o.cat.GetAll(ctx)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if rec.Score == nil {
			continue
		}
		if err := o.cat.UpdateGrade(ctx, rec.File.AbsolutePath, o.engine.GradeFunc()); err != nil {
			log.Warn().Err(err).Str("path", rec.File.AbsolutePath).Msg("orchestrator: failed to recompute grade")
		}
	}
	return nil
}

// HandleEvent dispatches a single fsobserver.Event per the orchestrator's
// event table, tolerating the race between event emission and handling by
// re-checking disk presence at handling time.
func (o *Orchestrator) HandleEvent(ctx context.Context, ev fsobserver.Event) {
	switch ev.Kind {
	case fsobserver.Created:
		o.handleCreated(ctx, ev.Path)
	case fsobserver.Removed:
		o.handleRemoved(ctx, ev.Path)
	case fsobserver.ModifiedMetadata, fsobserver.ModifiedData:
		o.handleModified(ctx, ev.Path)
	case fsobserver.Rename:
		o.handleRename(ctx, ev.Path, ev.RenameTo)
	}
}

func (o *Orchestrator) handleCreated(ctx context.Context, path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := o.indexNewFile(ctx, path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("orchestrator: failed to index created file")
	}
}

func (o *Orchestrator) handleRemoved(ctx context.Context, path string) {
	if _, err := os.Stat(path); err == nil {
		return
	}
	if err := o.cat.RemoveFile(ctx, path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("orchestrator: failed to remove file")
		return
	}
	if o.hubClient != nil {
		msg := hub.NewDeleteMessage(catalog.FileRecord{
			AbsolutePath: path,
			PrettyPath:   fileinfo.PrettyPath(path, o.roots),
		})
		if err := o.hubClient.SendDelete(ctx, msg); err != nil {
			log.Error().Err(err).Str("path", path).Msg("orchestrator: hub delete notification failed")
		}
	}
}

func (o *Orchestrator) handleModified(ctx context.Context, path string) {
	rec, ok, err := fileinfo.Build(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("orchestrator: failed to rebuild file info")
		return
	}
	if !ok {
		return
	}
	rec.PrettyPath = fileinfo.PrettyPath(rec.AbsolutePath, o.roots)

	if err := o.cat.UpdateFileInfo(ctx, rec); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("orchestrator: failed to update file info")
		return
	}

	if err := o.rescoreAndAnnounce(ctx, rec, true); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("orchestrator: failed to rescore modified file")
	}
}

func (o *Orchestrator) handleRename(ctx context.Context, from, to string) {
	newPretty := fileinfo.PrettyPath(to, o.roots)
	if err := o.cat.UpdatePath(ctx, from, to, newPretty); err != nil {
		log.Warn().Err(err).Str("from", from).Str("to", to).Msg("orchestrator: failed to rename indexed file")
		return
	}

	if o.hubClient != nil {
		msg := hub.UpdateMessage{PrettyPath: newPretty, AbsolutePath: to}
		if err := o.hubClient.SendUpdate(ctx, msg); err != nil {
			log.Error().Err(err).Str("path", to).Msg("orchestrator: hub rename notification failed")
		}
	}
}

// indexNewFile builds a FileRecord for path, adds it to the catalog, scores
// it, and announces it to the hub. Used both by the startup listing pass
// and by the Created event handler.
func (o *Orchestrator) indexNewFile(ctx context.Context, path string) error {
	if !o.matchesExtensionFilter(path) {
		return nil
	}

	rec, ok, err := fileinfo.Build(path)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	rec.PrettyPath = fileinfo.PrettyPath(rec.AbsolutePath, o.roots)

	stored, err := o.cat.AddFile(ctx, rec)
	if err != nil {
		return err
	}

	return o.rescoreAndAnnounce(ctx, stored, false)
}

// rescoreAndAnnounce re-applies every rule to rec, persists the resulting
// score and grade, and — for files that were already indexed (isUpdate) —
// sends an Update notification to the hub. Newly indexed files send a
// Create notification instead.
func (o *Orchestrator) rescoreAndAnnounce(ctx context.Context, rec catalog.FileRecord, isUpdate bool) error {
	score := o.engine.Apply(ctx, rec, o.cat)
	catScore := score.ToCatalogScore()
	catScore.Grade = o.engine.Grade(catScore)

	if err := o.cat.SetScore(ctx, rec.AbsolutePath, catScore); err != nil {
		return err
	}

	if o.hubClient == nil {
		return nil
	}

	if isUpdate {
		msg := hub.NewUpdateMessage(rec, true)
		if err := o.hubClient.SendUpdate(ctx, msg); err != nil {
			log.Error().Err(err).Str("path", rec.AbsolutePath).Msg("orchestrator: hub update notification failed")
		}
	} else {
		msg := hub.NewCreateMessage(rec)
		if err := o.hubClient.SendCreate(ctx, msg); err != nil {
			log.Error().Err(err).Str("path", rec.AbsolutePath).Msg("orchestrator: hub create notification failed")
		}
	}
	return nil
}

// Run drains events from the observer until ctx is cancelled or the
// observer's channel closes, dispatching each one via HandleEvent. Event
// ordering from the observer is preserved: HandleEvent is never called
// concurrently for events from the same Run call.
func (o *Orchestrator) Run(ctx context.Context, events <-chan fsobserver.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			o.HandleEvent(ctx, ev)
		}
	}
}
