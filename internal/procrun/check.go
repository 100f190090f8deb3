package procrun

import (
	"context"
	"fmt"

	"multiscan/internal/services"
)

// Check converts an unsuccessful Result into an ErrExternalTool error tagged
// with the stage carried by ctx.
func Check(ctx context.Context, tool string, res Result) error {
	if res.Success() {
		return nil
	}
	stage, _ := services.StageFromContext(ctx)
	return services.Wrap(services.ErrExternalTool, stage, tool, fmt.Sprintf("exit code %d", res.ExitCode), res.Err)
}

// PythonPath builds the PYTHONPATH override for tools that import modules
// from their own directory.
func PythonPath(dir string) []string {
	if dir == "" {
		return nil
	}
	return []string{"PYTHONPATH=" + dir}
}
