package install

import "errors"

// Sentinel errors for the installation pipeline. Every failure is terminal;
// there is no retry anywhere between these.
var (
	// ErrUserAborted indicates the operator declined the version-mismatch
	// confirmation.
	ErrUserAborted = errors.New("installation aborted by user")

	// ErrDownloadFailed indicates the artifact could not be downloaded.
	ErrDownloadFailed = errors.New("artifact download failed")

	// ErrExtractionFailed indicates the downloaded archive could not be
	// unpacked, or contained no installable files.
	ErrExtractionFailed = errors.New("artifact extraction failed")

	// ErrInstallationFailed indicates a target directory could not be created
	// or a file copy failed. Files copied before the failure are left in
	// place; there is no rollback.
	ErrInstallationFailed = errors.New("installation failed")
)
