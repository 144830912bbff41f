// Fsgrowth records the daily disk usage of a filesystem and mails a growth report.
//
// Schedule it from cron: --update appends today's sample to the history
// file, --report renders the chart and table and sends them. Both flags may
// be given in one invocation; the update runs first.
package main

import (
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], defaultDeps()))
}
