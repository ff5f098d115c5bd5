// Package installer dispatches package installation to an ecosystem's
// native tool (pip, npm), shelled out via os/exec. The core never
// resolves packages itself (spec.md §1 Non-goals) — it only invokes
// whichever adapter an ecosystem requires.
package installer

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/artpar/smoothstack/internal/core/domain"
)

// Adapter installs one package from a source URL into a target directory.
type Adapter interface {
	Install(ctx context.Context, sourceURL, name, version, targetDir string) error
}

// NewAdapter returns the Adapter for ecosystem, grounded on the teacher's
// factory-switch pattern for per-provider construction.
func NewAdapter(ecosystem domain.Ecosystem) (Adapter, error) {
	switch ecosystem {
	case domain.EcosystemPyPI:
		return &pipAdapter{}, nil
	case domain.EcosystemNPM:
		return &npmAdapter{}, nil
	default:
		return nil, fmt.Errorf("unsupported ecosystem: %s", ecosystem)
	}
}

// pipAdapter installs via `pip install --index-url <source> --target <dir> name==version`.
type pipAdapter struct{}

func (p *pipAdapter) Install(ctx context.Context, sourceURL, name, version, targetDir string) error {
	pkg := name
	if version != "" {
		pkg = fmt.Sprintf("%s==%s", name, version)
	}
	args := []string{"install", "--index-url", sourceURL, "--target", targetDir, pkg}
	cmd := exec.CommandContext(ctx, "pip", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("pip install %s: %w: %s", pkg, err, output)
	}
	return nil
}

// npmAdapter installs via `npm install --registry <source> --prefix <dir> name@version`.
type npmAdapter struct{}

func (n *npmAdapter) Install(ctx context.Context, sourceURL, name, version, targetDir string) error {
	pkg := name
	if version != "" {
		pkg = fmt.Sprintf("%s@%s", name, version)
	}
	args := []string{"install", "--registry", sourceURL, "--prefix", targetDir, pkg}
	cmd := exec.CommandContext(ctx, "npm", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("npm install %s: %w: %s", pkg, err, output)
	}
	return nil
}
