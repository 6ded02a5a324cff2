// Package mamba provides micromamba-backed runtime environments.
//
// The mamba package implements the environment-provider and
// script-runner capabilities on top of the micromamba binary. It
// downloads the binary into a dedicated root prefix, creates named
// environments pinned to a Python version, installs conda-forge
// packages, runs a Python script inside an environment, and tears all
// of it down again.
//
// The micromamba binary itself is treated as a black box; this package
// only sequences its command-line invocations through the
// CommandRunner and FileSystem seams so the behavior stays testable.
//
// Usage:
//
//	provider := mamba.NewMicromamba(logger, rootPrefix)
//	err := provider.EnsureRuntimeBinary(ctx)
//	err = provider.CreateEnvironment(ctx, "langchain", "3.11")
package mamba
