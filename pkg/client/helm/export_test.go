package helm

var (
	IsReleaseNotFound = isReleaseNotFound
	UninstallResult   = uninstallResult
)
