package fileops

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/justyntemme/razorcore/internal/debug"
	"github.com/justyntemme/razorcore/internal/logging"
	"github.com/justyntemme/razorcore/internal/metrics"
	"github.com/justyntemme/razorcore/internal/notify"
	"github.com/justyntemme/razorcore/internal/trash"
)

// Trasher is the trash backend the engine moves items through.
type Trasher interface {
	Trash(path string) (trash.Item, error)
	Restore(id string) (string, error)
	Get(id string) (trash.Item, error)
	Lookup(originalPath string, deletedAt time.Time) (trash.Item, error)
	Empty() error
}

// Listings is told which directory listings an operation made stale.
type Listings interface {
	NotifyStale(dir string)
}

// Journal persists completed batches.
type Journal interface {
	Record(ctx context.Context, r Result) error
}

// Options configures an Engine. Only Trash is required.
type Options struct {
	Trash           Trasher
	Listings        Listings
	Notifier        notify.Notifier
	Journal         Journal
	NamePolicy      NamePolicy
	Conflict        ConflictPolicy
	CrossDeviceCopy bool // Move falls back to copy+delete across devices
	UndoCapacity    int  // 0 = DefaultUndoCapacity, < 0 = unbounded
}

// Engine executes file operations one at a time and records what they did.
type Engine struct {
	trash       Trasher
	listings    Listings
	notifier    notify.Notifier
	journal     Journal
	policy      NamePolicy
	conflict    ConflictPolicy
	crossDevice bool
	queue       *UndoQueue
	now         func() time.Time

	mu sync.Mutex // Serializes operations
}

// New creates an engine.
func New(opts Options) *Engine {
	e := &Engine{
		trash:       opts.Trash,
		listings:    opts.Listings,
		notifier:    opts.Notifier,
		journal:     opts.Journal,
		policy:      opts.NamePolicy,
		conflict:    opts.Conflict,
		crossDevice: opts.CrossDeviceCopy,
		now:         time.Now,
	}
	if e.notifier == nil {
		e.notifier = notify.Discard
	}
	if e.policy == nil {
		e.policy = DefaultNamePolicy
	}
	capacity := opts.UndoCapacity
	if capacity == 0 {
		capacity = DefaultUndoCapacity
	}
	e.queue = NewUndoQueue(capacity)
	return e
}

// Queue exposes the undo queue for display.
func (e *Engine) Queue() *UndoQueue {
	return e.queue
}

func (e *Engine) newBatch(kind Kind, where string) Batch {
	return Batch{ID: uuid.New(), Kind: kind, Context: where, Time: e.now()}
}

// Copy copies each source into destDir. Existing names are never replaced.
func (e *Engine) Copy(ctx context.Context, sources []string, destDir string) (Result, error) {
	if err := checkDestination(destDir); err != nil {
		return Result{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	res := Result{Batch: e.newBatch(Copy, destDir)}
	for _, src := range sources {
		target, err := e.copyOne(ctx, src, destDir)
		res.add(src, target, err)
	}
	return e.finish(ctx, res, []string{destDir}), nil
}

func (e *Engine) copyOne(ctx context.Context, src, destDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	info, err := os.Lstat(src)
	if err != nil {
		return "", err
	}
	if info.IsDir() && within(destDir, src) {
		return "", errIntoItself
	}

	name := filepath.Base(src)
	target := filepath.Join(destDir, name)
	if pathExists(target) {
		if e.conflict != ConflictKeepBoth {
			return "", &os.LinkError{Op: "copy", Old: src, New: target, Err: os.ErrExist}
		}
		target = filepath.Join(destDir, keepBothName(destDir, name, info.IsDir()))
	}

	n, created, err := copyTree(ctx, src, target)
	if err != nil {
		if created {
			if rerr := os.RemoveAll(target); rerr != nil {
				debug.Log(debug.FILEOP, "cleanup %s: %v", target, rerr)
			}
		}
		return "", err
	}
	debug.Log(debug.FILEOP, "copied %s -> %s (%d bytes)", src, target, n)
	return target, nil
}

// Move moves each source into destDir. Existing names are never replaced.
func (e *Engine) Move(ctx context.Context, sources []string, destDir string) (Result, error) {
	if err := checkDestination(destDir); err != nil {
		return Result{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	res := Result{Batch: e.newBatch(Move, destDir)}
	touched := []string{destDir}
	for _, src := range sources {
		target, err := e.moveOne(ctx, src, destDir)
		res.add(src, target, err)
		if err == nil {
			touched = append(touched, filepath.Dir(src))
		}
	}
	return e.finish(ctx, res, touched), nil
}

func (e *Engine) moveOne(ctx context.Context, src, destDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	info, err := os.Lstat(src)
	if err != nil {
		return "", err
	}
	if info.IsDir() && within(destDir, src) {
		return "", errIntoItself
	}
	target := filepath.Join(destDir, filepath.Base(src))
	if target == src {
		return "", &os.LinkError{Op: "move", Old: src, New: target, Err: os.ErrExist}
	}
	return target, e.relocate(ctx, src, target)
}

// relocate renames src to dst without replacing dst, copying across
// devices when allowed.
func (e *Engine) relocate(ctx context.Context, src, dst string) error {
	err := renameNoReplace(src, dst)
	if err == nil || !isCrossDevice(err) || !e.crossDevice {
		return err
	}
	debug.Log(debug.FILEOP, "%s -> %s crosses devices, copying", src, dst)
	if pathExists(dst) {
		return &os.LinkError{Op: "move", Old: src, New: dst, Err: os.ErrExist}
	}
	return moveAcrossDevices(ctx, src, dst)
}

// Rename gives path a new name in the same directory. Renaming to the
// current name does nothing and records nothing. A name the policy rejects
// fails with a *ValidationError before anything changes.
func (e *Engine) Rename(ctx context.Context, path, newName string) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	parent := filepath.Dir(path)
	newName = NormalizeName(newName)
	res := Result{Batch: e.newBatch(Rename, parent)}
	if newName == NormalizeName(filepath.Base(path)) {
		return res, nil
	}

	ok, reason := e.policy(parent, newName)
	if !ok && !(reason == NameExists && sameFile(path, filepath.Join(parent, newName))) {
		return Result{}, &ValidationError{Path: path, Name: newName, Reason: reason}
	}
	if ok {
		res.Warning = reason
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	target := filepath.Join(parent, newName)
	var err error
	if sameFile(path, target) {
		// Case-only change on a case-insensitive filesystem
		err = os.Rename(path, target)
	} else {
		err = renameNoReplace(path, target)
	}
	if err != nil {
		target = ""
	}
	res.add(path, target, err)
	return e.finish(ctx, res, []string{parent}), nil
}

// NewFolder creates the directory name inside parent. A name the policy
// rejects fails with a *ValidationError before anything changes.
func (e *Engine) NewFolder(ctx context.Context, parent, name string) (Result, error) {
	if err := checkDestination(parent); err != nil {
		return Result{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	name = NormalizeName(name)
	ok, reason := e.policy(parent, name)
	if !ok {
		return Result{}, &ValidationError{Path: parent, Name: name, Reason: reason}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res := Result{Batch: e.newBatch(NewFolder, parent), Warning: reason}
	target := filepath.Join(parent, name)
	err := os.Mkdir(target, 0o755)
	if err == nil {
		res.add(target, target, nil)
	} else {
		res.add(target, "", err)
	}
	return e.finish(ctx, res, []string{parent}), nil
}

// Trash moves each path to the trash.
func (e *Engine) Trash(ctx context.Context, paths []string) (Result, error) {
	if e.trash == nil {
		return Result{}, errors.New("fileops: no trash configured")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	res := Result{Batch: e.newBatch(Trash, trash.Location)}
	touched := []string{trash.Location}
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			res.add(p, "", err)
			continue
		}
		it, err := e.trash.Trash(p)
		if err != nil {
			res.add(p, "", err)
			continue
		}
		res.Outcomes = append(res.Outcomes, Outcome{Source: p, Target: it.TrashPath})
		res.Batch.Items = append(res.Batch.Items, Item{
			Source:    it.OriginalPath,
			Target:    it.TrashPath,
			TrashID:   it.ID,
			DeletedAt: it.DeletedAt,
		})
		touched = append(touched, filepath.Dir(it.OriginalPath))
	}
	return e.finish(ctx, res, touched), nil
}

// Restore puts trashed items back at their original paths.
func (e *Engine) Restore(ctx context.Context, ids []string) (Result, error) {
	if e.trash == nil {
		return Result{}, errors.New("fileops: no trash configured")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	res := Result{Batch: e.newBatch(Restore, trash.Location)}
	touched := []string{trash.Location}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			res.add(id, "", err)
			continue
		}
		it, err := e.trash.Get(id)
		if err != nil {
			res.add(id, "", err)
			continue
		}
		dest, err := e.trash.Restore(id)
		if err != nil {
			res.add(it.OriginalPath, "", err)
			continue
		}
		res.Outcomes = append(res.Outcomes, Outcome{Source: it.TrashPath, Target: dest})
		res.Batch.Items = append(res.Batch.Items, Item{Source: it.TrashPath, Target: dest, TrashID: id})
		touched = append(touched, filepath.Dir(dest))
	}
	return e.finish(ctx, res, touched), nil
}

// EmptyTrash deletes everything in the trash. Undo entries for trash
// batches can no longer be honored and are dropped.
func (e *Engine) EmptyTrash(ctx context.Context) error {
	if e.trash == nil {
		return errors.New("fileops: no trash configured")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.trash.Empty(); err != nil {
		logging.Error("failed to empty trash", zap.Error(err))
		return err
	}
	dropped := e.queue.removeKind(Trash)
	logging.Info("trash emptied", zap.Int("undo_dropped", dropped))
	e.notifier.Notify(notify.TrashEmptied{Dropped: dropped})
	e.stale([]string{trash.Location})
	return nil
}

// UndoLatest reverses the most recent recorded batch.
func (e *Engine) UndoLatest(ctx context.Context) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.queue.PopLatest()
	if !ok {
		return Result{}, ErrNothingToUndo
	}
	return e.undo(ctx, entry), nil
}

// Undo reverses the recorded batch with the given id, wherever it sits
// in the queue.
func (e *Engine) Undo(ctx context.Context, id uint64) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.queue.Pop(id)
	if !ok {
		return Result{}, fmt.Errorf("%w: %d", ErrUnknownUndo, id)
	}
	return e.undo(ctx, entry), nil
}

// undo reverses an entry item by item, newest first. The entry is consumed
// whether or not every item could be reverted.
func (e *Engine) undo(ctx context.Context, entry UndoEntry) Result {
	b := entry.Batch
	res := Result{Batch: Batch{
		ID:      uuid.New(),
		Kind:    b.Kind,
		Context: b.Context,
		Time:    e.now(),
		Reverts: b.ID,
	}}
	touched := []string{b.Context}

	for _, it := range slices.Backward(b.Items) {
		var (
			from, to string
			err      error
		)
		if err = ctx.Err(); err == nil {
			from, to, err = e.revert(ctx, b.Kind, it)
		}
		if err != nil {
			res.Outcomes = append(res.Outcomes, Outcome{Source: it.Target, Failure: newFailure(it.Target, err)})
			continue
		}
		res.Outcomes = append(res.Outcomes, Outcome{Source: from, Target: to})
		res.Batch.Items = append(res.Batch.Items, Item{Source: from, Target: to, TrashID: it.TrashID})
		touched = append(touched, filepath.Dir(it.Source), filepath.Dir(it.Target))
	}

	ok, failed := res.Succeeded(), res.Failed()
	metrics.RecordUndo(b.Kind.String(), failed == 0)
	logging.Info("undo",
		zap.Uint64("undo_id", entry.ID),
		zap.Stringer("kind", b.Kind),
		zap.Int("reverted", ok),
		zap.Int("failed", failed))

	e.notifier.Notify(notify.UndoCompleted{UndoID: entry.ID, Kind: b.Kind.String(), Reverted: ok, Failed: failed})
	if failed > 0 {
		e.notifier.Notify(notify.OperationFailed{
			Kind:   "undo_" + b.Kind.String(),
			Reason: dominantReason(res.Failures()).String(),
			Failed: failed,
			Total:  len(res.Outcomes),
		})
	}
	e.record(ctx, res)
	e.stale(touched)
	return res
}

// revert reverses one item and returns where it went from and to.
func (e *Engine) revert(ctx context.Context, kind Kind, it Item) (string, string, error) {
	switch kind {
	case Copy:
		return it.Target, "", removeTree(it.Target)
	case Move:
		return it.Target, it.Source, e.relocate(ctx, it.Target, it.Source)
	case Rename:
		return it.Target, it.Source, renameNoReplace(it.Target, it.Source)
	case NewFolder:
		// Only an empty folder is removed
		return it.Target, "", os.Remove(it.Target)
	case Trash:
		if e.trash == nil {
			return "", "", errors.New("fileops: no trash configured")
		}
		ti, err := e.locate(it)
		if err != nil {
			return "", "", err
		}
		dest, err := e.trash.Restore(ti.ID)
		return ti.TrashPath, dest, err
	case Restore:
		if e.trash == nil {
			return "", "", errors.New("fileops: no trash configured")
		}
		ti, err := e.trash.Trash(it.Target)
		return it.Target, ti.TrashPath, err
	default:
		return "", "", fmt.Errorf("fileops: cannot undo %s", kind)
	}
}

// locate finds a trashed item by id, then by original path and deletion time.
func (e *Engine) locate(it Item) (trash.Item, error) {
	if it.TrashID != "" {
		ti, err := e.trash.Get(it.TrashID)
		if err == nil && ti.OriginalPath == it.Source {
			return ti, nil
		}
	}
	return e.trash.Lookup(it.Source, it.DeletedAt)
}

// add records one item outcome; err == nil means target was produced.
func (r *Result) add(source, target string, err error) {
	if err != nil {
		r.Outcomes = append(r.Outcomes, Outcome{Source: source, Failure: newFailure(source, err)})
		return
	}
	r.Outcomes = append(r.Outcomes, Outcome{Source: source, Target: target})
	r.Batch.Items = append(r.Batch.Items, Item{Source: source, Target: target})
}

// finish records, reports and journals a completed batch.
func (e *Engine) finish(ctx context.Context, res Result, touched []string) Result {
	kind := res.Batch.Kind
	ok, failed := res.Succeeded(), res.Failed()
	metrics.RecordBatch(kind.String(), ok, failed)

	if ok > 0 {
		res.UndoID = e.queue.Push(res.Batch).ID
	}

	fields := []zap.Field{
		zap.Stringer("kind", kind),
		zap.String("batch", res.Batch.ID.String()),
		zap.Int("succeeded", ok),
		zap.Int("failed", failed),
		zap.Uint64("undo_id", res.UndoID),
	}
	switch {
	case ok == 0 && failed > 0:
		logging.Warn("operation failed", append(fields, zap.Error(res.Failures()[0]))...)
	case failed > 0:
		logging.Warn("operation partially failed", fields...)
	default:
		logging.Info("operation completed", fields...)
	}

	switch {
	case kind == Trash && ok > 0:
		e.notifier.Notify(notify.ItemsTrashed{Count: ok, Failed: failed, UndoID: res.UndoID})
	case kind == Trash:
		// Nothing moved; the listing already shows the outcome
	case failed > 0:
		e.notifier.Notify(notify.OperationFailed{
			Kind:   kind.String(),
			Reason: dominantReason(res.Failures()).String(),
			Failed: failed,
			Total:  len(res.Outcomes),
		})
	}

	if ok > 0 {
		e.record(ctx, res)
		e.stale(touched)
	}
	return res
}

func (e *Engine) record(ctx context.Context, res Result) {
	if e.journal == nil {
		return
	}
	if err := e.journal.Record(ctx, res); err != nil {
		logging.Error("failed to journal batch",
			zap.String("batch", res.Batch.ID.String()), zap.Error(err))
	}
}

// stale notifies each distinct directory once.
func (e *Engine) stale(dirs []string) {
	if e.listings == nil {
		return
	}
	seen := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		if d == "" || d == "." || seen[d] {
			continue
		}
		seen[d] = true
		e.listings.NotifyStale(d)
	}
}

func checkDestination(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return &ValidationError{Path: dir, Reason: err.Error()}
	}
	if !info.IsDir() {
		return &ValidationError{Path: dir, Reason: "not a directory"}
	}
	return nil
}

func sameFile(a, b string) bool {
	ai, err := os.Lstat(a)
	if err != nil {
		return false
	}
	bi, err := os.Lstat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
