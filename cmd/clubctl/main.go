// clubctl — административные команды ядра клуба.
package main

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/Leganyst/golf-club/internal/app"
	"github.com/Leganyst/golf-club/internal/config"
	"github.com/Leganyst/golf-club/internal/logger"
)

type globalCmd struct {
	EnvFile string `help:"Path to .env file." default:".env" type:"path"`
	Verbose bool   `help:"Log at debug level." short:"v"`

	out io.Writer `kong:"-"`
	app *app.App  `kong:"-"`
}

// open собирает зависимости один раз на запуск.
func (g *globalCmd) open(ctx context.Context) (*app.App, error) {
	if g.app != nil {
		return g.app, nil
	}
	_ = godotenv.Load(g.EnvFile)

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		return nil, err
	}
	level := "warn"
	if g.Verbose {
		level = "debug"
	}
	log, err := logger.NewLogger(level, "console", "clubctl")
	if err != nil {
		return nil, err
	}
	g.app, err = app.New(ctx, cfg, dbCfg, log)
	return g.app, err
}

func (g *globalCmd) close() {
	if g.app != nil {
		g.app.Close()
		_ = g.app.Log.Sync()
	}
}

var CLI struct {
	globalCmd

	Venue struct {
		Add addVenueCmd `cmd:"" help:"Register a golf course."`
	} `cmd:""`

	Member struct {
		Add addMemberCmd `cmd:"" help:"Register a club member."`
	} `cmd:""`

	Token    tokenCmd    `cmd:"" help:"Issue an access token for a member."`
	Generate generateCmd `cmd:"" help:"Generate monthly schedules for a year."`
	OpenDue  openDueCmd  `cmd:"" name:"open-due" help:"Open schedules whose open time has passed."`
	Assign   assignCmd   `cmd:"" help:"Assign teams and tee times for a schedule."`
	Roster   rosterCmd   `cmd:"" help:"Print the roster of a schedule."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("clubctl"),
		kong.Description("Golf club administration."),
		kong.UsageOnError(),
	)
	CLI.out = os.Stdout
	err := ctx.Run(&CLI.globalCmd)
	CLI.close()
	ctx.FatalIfErrorf(err)
}
