// Package utils holds small helpers shared by thinkprobe commands.
package utils

// Build metadata, stamped with -ldflags "-X" by release builds.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)
