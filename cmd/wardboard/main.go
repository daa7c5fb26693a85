package main

import (
	"os"
	_ "time/tzdata"

	"github.com/alecthomas/kong"
)

var version = "1.4"

// CLI is the root command. Every subcommand reads process configuration from
// the environment (and .env) and the board configuration file.
type CLI struct {
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve      ServeCmd      `cmd:"" default:"1" help:"Run the HTTP server and the auto-reset timer"`
	Migrate    MigrateCmd    `cmd:"" help:"Apply database migrations and exit"`
	Seed       SeedCmd       `cmd:"" help:"Install default statuses and the admin account, optionally with demo data"`
	CreateUser CreateUserCmd `cmd:"" name:"create-user" help:"Create a staff account"`
	PurgeLogs  PurgeLogsCmd  `cmd:"" name:"purge-logs" help:"Delete audit entries older than the retention window"`
	AutoReset  AutoResetCmd  `cmd:"" name:"auto-reset" help:"Evaluate the daily auto-reset once"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("wardboard"),
		kong.Description("Ward room and bed occupancy board."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	if err := ctx.Run(&cli); err != nil {
		ctx.Errorf("%v", err)
		os.Exit(1)
	}
}
