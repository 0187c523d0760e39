package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/justyntemme/razorcore/internal/fileops"
	"github.com/justyntemme/razorcore/internal/notify"
	"github.com/justyntemme/razorcore/internal/trash"
)

// reasonText is the wording for each failure code.
var reasonText = map[string]string{
	fileops.ReasonCollision.String():   "an item with that name already exists",
	fileops.ReasonPermission.String():  "permission denied",
	fileops.ReasonCrossDevice.String(): "it is on a different drive",
	fileops.ReasonNotFound.String():    "it no longer exists",
	fileops.ReasonInvalidName.String(): "the name is not valid",
	fileops.ReasonIntoItself.String():  "a folder cannot go into itself",
}

var verbs = map[string]string{
	"copy":       "copy",
	"move":       "move",
	"rename":     "rename",
	"trash":      "move to " + trash.DisplayName(),
	"restore":    "restore",
	"new_folder": "create the folder",
}

func items(n int) string {
	return english.Plural(n, "item", "")
}

// statusFor words a core event for the status line.
func statusFor(ev notify.Event) string {
	switch ev := ev.(type) {
	case notify.ItemsTrashed:
		s := fmt.Sprintf("Moved %s to %s", items(ev.Count), trash.DisplayName())
		if ev.Failed > 0 {
			s += fmt.Sprintf(", %d could not be moved", ev.Failed)
		}
		return s + " (undo to restore)"
	case notify.OperationFailed:
		kind, undo := strings.CutPrefix(ev.Kind, "undo_")
		verb := verbs[kind]
		if verb == "" {
			verb = kind
		}
		if undo {
			verb = "undo " + kind
		}
		why := reasonText[ev.Reason]
		if why == "" {
			why = "an unexpected error occurred"
		}
		if ev.Total == 1 {
			return fmt.Sprintf("Could not %s: %s", verb, why)
		}
		return fmt.Sprintf("Could not %s %d of %d items: %s", verb, ev.Failed, ev.Total, why)
	case notify.UndoCompleted:
		if ev.Failed > 0 {
			return fmt.Sprintf("Undid %s: %s reverted, %d failed", ev.Kind, items(ev.Reverted), ev.Failed)
		}
		return fmt.Sprintf("Undid %s: %s reverted", ev.Kind, items(ev.Reverted))
	case notify.TrashEmptied:
		return trash.DisplayName() + " emptied"
	default:
		return ""
	}
}

// statusForResult words a finished operation. Failures and trash results
// are left to the notification events.
func statusForResult(verb string, res fileops.Result, bytes int64, err error) string {
	var ve *fileops.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, fileops.ErrNothingToUndo):
		return "Nothing to undo"
	case err != nil:
		return fmt.Sprintf("%s failed: %v", verb, err)
	}

	ok := res.Succeeded()
	if ok == 0 || res.Batch.Kind == fileops.Trash || res.Batch.IsUndo() {
		return ""
	}
	var s string
	if res.Batch.Kind == fileops.NewFolder {
		s = "Created folder " + filepath.Base(res.Outcomes[0].Target)
	} else {
		s = fmt.Sprintf("%s %s", verb, items(ok))
	}
	if bytes > 0 {
		s += " (" + humanize.Bytes(uint64(bytes)) + ")"
	}
	if res.Warning != "" {
		s += " - " + res.Warning
	}
	return s
}
