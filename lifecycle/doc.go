// Package lifecycle sequences provisioned script runs.
//
// The lifecycle package contains the two orchestrators that tie the
// pieces together. Orchestrator runs the full cycle: sanitize the
// input, ensure the micromamba binary and the named environment exist,
// install the requested packages, execute the script with the fixed
// argument contract, and unconditionally tear everything down before
// returning. Persistent skips provisioning and teardown entirely and
// only runs against an environment that already exists.
//
// Every fatal error is wrapped with the operation it occurred in;
// teardown failures are logged best-effort and never mask the primary
// error.
//
// Usage:
//
//	orch := lifecycle.New(logger, provider, runner)
//	result, err := orch.Run(ctx, req)
package lifecycle
