package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	LoadDirectory Phase = iota
	ExportUser
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case LoadDirectory:
		return "load_directory"
	case ExportUser:
		return "export_user"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func loadDirectoryUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadDirectory,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loaded directory (%d users)", total),
	}
}

func exportCompletedUpdate(step, total int, user string, file string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportUser,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s → %s", step, total, user, file),
	}
}

func exportFailedUpdate(step, total int, user string, reason string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportUser,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, user, reason),
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Manifest written: %s", path),
	}
}
