package command

import (
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/forge/internal/corelog"
	"github.com/spaghettifunk/forge/internal/jobqueue"
	"github.com/spaghettifunk/forge/internal/pathutil"
)

// watchCommand implements `--watch -dir <dir> [-r]` (SPEC_FULL.md §2 "Watch
// mode"): an fsnotify.Watcher feeds every create/write event's path into a
// bounded jobqueue.RingQueue so a burst of saves (an editor's atomic
// rename-into-place, a build tool touching many files at once) coalesces
// into a backlog the drain loop works through one path at a time, rather
// than re-running a conversion per raw fsnotify event. The watcher never
// calls pipeline code directly; it only ever pushes onto the queue.
type watchCommand struct{ reg *Registry }

func (watchCommand) Key() string { return "--watch" }
func (watchCommand) Flags() []Flag {
	return []Flag{{Key: "-dir", HasArgument: true, Optional: false}, recurseFlag}
}

func (c *watchCommand) Run(flags ParsedFlags) error {
	dir := pathutil.Normalize(flags.First("-dir"))
	recurse := flags.Has("-r")

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := addWatchTree(w, dir, recurse); err != nil {
		w.Close()
		return err
	}

	queue := jobqueue.NewRingQueue[string](256)
	go drainWatchQueue(queue, c.reg)
	go pumpWatchEvents(w, queue)

	corelog.LogInfo("watch: watching %q (recursive=%v)", dir, recurse)
	return nil
}

func addWatchTree(w *fsnotify.Watcher, dir pathutil.Path, recurse bool) error {
	if !recurse {
		return w.Add(dir.String())
	}
	files, err := pathutil.ListRecursive(dir, true)
	if err != nil {
		return err
	}
	seen := map[string]bool{dir.String(): true}
	if err := w.Add(dir.String()); err != nil {
		return err
	}
	for _, f := range files {
		d := f.Dir().String()
		if seen[d] {
			continue
		}
		seen[d] = true
		if err := w.Add(d); err != nil {
			corelog.LogWarn("watch: failed to add %q: %v", d, err)
		}
	}
	return nil
}

// pumpWatchEvents forwards every create/write event's path into queue,
// dropping the event on the floor (logging each dropped path) if the queue is full
// rather than blocking the fsnotify goroutine.
func pumpWatchEvents(w *fsnotify.Watcher, queue *jobqueue.RingQueue[string]) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if err := queue.Enqueue(ev.Name); err != nil {
				corelog.LogWarn("watch: backlog full, dropping %q", ev.Name)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			corelog.LogError("watch: %v", err)
		}
	}
}

// drainWatchQueue works through queued paths one at a time, re-issuing the
// matching `--convert_*` pipeline for each, at a steady pace rather than
// in lockstep with however fast fsnotify delivers events.
func drainWatchQueue(queue *jobqueue.RingQueue[string], reg *Registry) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		for !queue.IsEmpty() {
			path, err := queue.Dequeue()
			if err != nil {
				break
			}
			convertWatchedFile(reg, pathutil.Normalize(path))
		}
	}
}

func convertWatchedFile(reg *Registry, f pathutil.Path) {
	var err error
	switch strings.ToLower(f.Ext()) {
	case ".dds", ".tga", ".png", ".jpg", ".jpeg":
		_, err = reg.Textures.PackageTexture(f.String(), assetName(f), f)
	case ".vert", ".doma", ".hull", ".geom", ".pixe", ".comp":
		_, err = reg.Shaders.PackageShader(f.String(), assetName(f), f)
	case ".wav", ".ogg":
		_, err = reg.Audio.PackageAudio(f.String(), assetName(f), f)
	case ".lua":
		_, err = reg.Scripts.PackageScript(f.String(), assetName(f), f)
	default:
		return
	}
	if err != nil {
		corelog.LogError("watch: %q: %v", f, err)
	}
}
