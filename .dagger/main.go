// thinkprobe CI
//
// Package main runs the thinkprobe tests, lint and builds in reproducible
// containers, locally and in GitHub actions.
package main

import (
	"context"

	"dagger/thinkprobe/internal/dagger"
)

// Thinkprobe is the CI module for thinkprobe
type Thinkprobe struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Thinkprobe CI module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".thinkprobe", ".env", "build", "tmp"]
	source *dagger.Directory,
) *Thinkprobe {
	return &Thinkprobe{
		Source: source,
	}
}

// goContainer returns an Alpine Go container with the module caches and the
// project source mounted. thinkprobe has no cgo dependencies.
func (t *Thinkprobe) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-alpine").
		WithEnvVariable("CGO_ENABLED", "0").
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", t.Source)
}

// Test runs the unit tests via "go test"
func (t *Thinkprobe) Test(ctx context.Context) (string, error) {
	return t.goContainer().
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}
