package lifecycle

import "fmt"

// Operation names used in wrapped fatal errors
const (
	opValidateRequest = "ValidateRequest"
	opLoadDotEnv      = "LoadDotEnv"
	opProvision       = "ProvisionEnvironment"
	opInstall         = "InstallPackages"
	opExecute         = "ExecuteScript"
)

// PackageInstallError names the package whose installation failed
type PackageInstallError struct {
	Package string
}

func (e *PackageInstallError) Error() string {
	return fmt.Sprintf("package %s failed to install", e.Package)
}

// opError wraps a fatal error with the operation it occurred in,
// preserving the cause for errors.Is/As.
func opError(op string, err error) error {
	return fmt.Errorf("Error in %s: %w", op, err)
}
