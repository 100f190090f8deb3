package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Requirement defines an external dependency a pipeline stage relies on.
//
// Binaries are resolved through PATH. Scripts are resolved relative to Dir
// (matching how the runner launches them with Dir as the working directory)
// and only need to exist; their interpreter is a separate requirement.
type Requirement struct {
	Name        string
	Command     string
	Dir         string
	Script      bool
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, check(req))
	}
	return results
}

func check(req Requirement) Status {
	cmd := strings.TrimSpace(req.Command)
	status := Status{
		Name:        req.Name,
		Command:     cmd,
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if cmd == "" {
		status.Detail = "command not configured"
		return status
	}

	if req.Script || strings.ContainsRune(cmd, filepath.Separator) {
		path := resolveRelative(req.Dir, cmd)
		status.Command = path
		info, err := os.Stat(path)
		if err != nil {
			status.Detail = fmt.Sprintf("%q not found", path)
			return status
		}
		if info.IsDir() {
			status.Detail = fmt.Sprintf("%q is a directory", path)
			return status
		}
		if !req.Script && info.Mode().Perm()&0o111 == 0 {
			status.Detail = fmt.Sprintf("%q is not executable", path)
			return status
		}
		status.Available = true
		return status
	}

	resolved, err := exec.LookPath(cmd)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", cmd)
		return status
	}
	status.Command = resolved
	status.Available = true
	return status
}

func resolveRelative(dir, command string) string {
	if filepath.IsAbs(command) || strings.TrimSpace(dir) == "" {
		return filepath.Clean(command)
	}
	return filepath.Join(dir, command)
}

// Missing returns the required (non-optional) statuses that are unavailable.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}
