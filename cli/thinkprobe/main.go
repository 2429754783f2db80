package main

import (
	"os"

	thinkprobecmder "github.com/papercomputeco/thinkprobe/cmd/thinkprobe"
)

func main() {
	cmd := thinkprobecmder.NewThinkprobeCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
