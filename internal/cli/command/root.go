package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/vitals/internal/cli/connection"
	"github.com/yndnr/vitals/internal/cli/output"
	"github.com/yndnr/vitals/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "vitals-cli",
		Usage:   "Query a vitals server",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			HealthCommand(),
			MetricsCommand(),
			DataCommand(),
		},
		Before: func(c *cli.Context) error {
			_, err := ParseGlobalFlags(c)
			return err
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "vitals server address (e.g., localhost:8000)",
			EnvVars: []string{"VITALS_SERVER"},
			Value:   "localhost:8000",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Request timeout",
			Value: 10 * time.Second,
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server  string
	Output  output.Format
	Wide    bool
	Timeout time.Duration
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) (*GlobalFlags, error) {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return nil, err
	}
	return &GlobalFlags{
		Server:  c.String("server"),
		Output:  format,
		Wide:    c.Bool("wide"),
		Timeout: c.Duration("timeout"),
	}, nil
}

// session bundles what every action needs.
type session struct {
	flags  *GlobalFlags
	client *connection.HTTPClient
	c      *cli.Context
}

func newSession(c *cli.Context) (*session, error) {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return nil, err
	}
	return &session{
		flags:  flags,
		client: connection.NewHTTPClient(flags.Server),
		c:      c,
	}, nil
}

// requestContext returns a context bounded by --timeout.
func (s *session) requestContext() (context.Context, context.CancelFunc) {
	parent := s.c.Context
	if parent == nil {
		parent = context.Background()
	}
	if s.flags.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, s.flags.Timeout)
}

// render writes data in the selected format. In table mode a non-nil
// table replaces the generic rendering of data.
func (s *session) render(data any, table *output.Table) error {
	if s.flags.Output == output.FormatTable && table != nil {
		return table.Render(s.c.App.Writer)
	}
	return output.NewFormatter(s.flags.Output, s.flags.Wide).Format(s.c.App.Writer, data)
}

// printf writes human-readable text; it is silent for json and yaml.
func (s *session) printf(format string, args ...any) {
	if s.flags.Output != output.FormatTable {
		return
	}
	fmt.Fprintf(s.c.App.Writer, format, args...)
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
