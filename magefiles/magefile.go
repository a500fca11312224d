// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

// Package main provides build targets for the landing project using Mage.
//
// Usage:
//
//	mage build        Compile the landing binary to bin/
//	mage test:all     Run all tests
//	mage test:race    Run all tests with the race detector
//	mage test:cover   Run all tests and write coverage.out
//	mage lint         Run golangci-lint
//	mage clean        Remove build artifacts
//	mage install      Install landing to GOPATH/bin
//	mage stats        Print Go lines of code per package
package main

const (
	binGo      = "go"
	binaryName = "landing"
	binaryDir  = "bin"
	cmdDir     = "./cmd/landing"
	coverFile  = "coverage.out"
)
