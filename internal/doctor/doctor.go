// Package doctor runs environment checks that predict whether an
// installation will succeed on this host.
package doctor

import (
	"context"
	"fmt"

	"github.com/pg-ecdsa/pgev/internal/pgconfig"
	"github.com/pg-ecdsa/pgev/internal/platform"
	"github.com/pg-ecdsa/pgev/internal/shell"
)

// Status classifies a check outcome.
type Status string

// Check outcomes.
const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Result is one diagnostic row.
type Result struct {
	Status         Status
	Name           string
	Message        string
	Recommendation string
}

// Doctor performs the checks. Lookup functions are injectable for tests.
type Doctor struct {
	LookPath func(string) (string, error)
	Locator  *pgconfig.Locator
}

// New returns a Doctor backed by the real PATH and filesystem.
func New() *Doctor {
	return &Doctor{
		LookPath: shell.LookPath,
		Locator:  pgconfig.NewLocator(),
	}
}

// Run executes all checks for the given PostgreSQL major versions.
func (d *Doctor) Run(ctx context.Context, majors []int) []Result {
	results := d.checkTools()
	results = append(results, d.checkArch(ctx))
	for _, major := range majors {
		results = append(results, d.checkPGConfig(major))
	}
	return results
}

// checkTools verifies the external commands the installer invokes.
func (d *Doctor) checkTools() []Result {
	var results []Result

	for _, tool := range []struct {
		name     string
		required bool
	}{
		{name: "curl", required: true},
		{name: "tar", required: true},
		{name: "sudo", required: false},
	} {
		path, err := d.LookPath(tool.name)
		switch {
		case err == nil:
			results = append(results, Result{
				Status:  StatusOK,
				Name:    tool.name,
				Message: path,
			})
		case tool.required:
			results = append(results, Result{
				Status:         StatusFail,
				Name:           tool.name,
				Message:        "not found on PATH",
				Recommendation: fmt.Sprintf("install %s with your package manager", tool.name),
			})
		default:
			results = append(results, Result{
				Status:         StatusWarn,
				Name:           tool.name,
				Message:        "not found on PATH",
				Recommendation: "needed only when the target directories are not writable",
			})
		}
	}
	return results
}

// checkArch verifies the host architecture has published artifacts.
func (d *Doctor) checkArch(ctx context.Context) Result {
	arch, err := platform.DetectArch(ctx)
	if err != nil {
		return Result{
			Status:         StatusFail,
			Name:           "architecture",
			Message:        err.Error(),
			Recommendation: "artifacts are published for x86_64 and aarch64 only",
		}
	}
	return Result{Status: StatusOK, Name: "architecture", Message: arch}
}

// checkPGConfig verifies pg_config discovery for one major version.
func (d *Doctor) checkPGConfig(major int) Result {
	name := fmt.Sprintf("pg_config (PostgreSQL %d)", major)
	path, err := d.Locator.Locate(major)
	if err != nil {
		return Result{
			Status:         StatusWarn,
			Name:           name,
			Message:        "not found",
			Recommendation: fmt.Sprintf("install the postgresql-server-dev-%d (Debian) or postgresql%d-devel (RHEL) package", major, major),
		}
	}
	return Result{Status: StatusOK, Name: name, Message: path}
}
