// Package command defines the vitals-cli commands on urfave/cli/v2.
//
//   - health: liveness, readiness and detailed host health
//   - metrics: scrape and filter the Prometheus exposition
//   - data: manage items through the demo API
//
// Every command writes to the app's Writer in the format chosen by
// --output.
package command
