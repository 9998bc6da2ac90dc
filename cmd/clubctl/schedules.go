package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Leganyst/golf-club/internal/calendar"
)

type generateCmd struct {
	Year   int     `arg:"" help:"Year to generate schedules for."`
	Venues []int64 `help:"Venue IDs; all active venues when omitted." name:"venue"`
}

func (c *generateCmd) Run(g *globalCmd) error {
	ctx := context.Background()
	a, err := g.open(ctx)
	if err != nil {
		return err
	}
	created, err := a.Schedules.GenerateYear(ctx, c.Year, c.Venues)
	if err != nil {
		return err
	}
	t := table.NewWriter()
	t.SetOutputMirror(g.out)
	t.AppendHeader(table.Row{"ID", "Venue", "Date", "Tee times", "Capacity"})
	for _, s := range created {
		t.AppendRow(table.Row{s.ID, s.VenueID, calendar.FormatPlayDate(s.Date()), s.TeeTimes, s.MaxMembers})
	}
	t.AppendFooter(table.Row{"", "", "", "created", len(created)})
	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}

type openDueCmd struct{}

func (c *openDueCmd) Run(g *globalCmd) error {
	ctx := context.Background()
	a, err := g.open(ctx)
	if err != nil {
		return err
	}
	opened, err := a.Schedules.OpenDue(ctx)
	if err != nil {
		return err
	}
	for _, s := range opened {
		fmt.Fprintf(g.out, "opened schedule %d (%s)\n", s.ID, calendar.FormatPlayDate(s.Date()))
	}
	fmt.Fprintf(g.out, "%d schedule(s) opened\n", len(opened))
	return nil
}

type assignCmd struct {
	ScheduleID int64 `arg:"" help:"Schedule ID."`
}

func (c *assignCmd) Run(g *globalCmd) error {
	ctx := context.Background()
	a, err := g.open(ctx)
	if err != nil {
		return err
	}
	res, err := a.Manager.AssignTeams(ctx, c.ScheduleID)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.out, "schedule %d: %d assigned, %d confirmed, %d waitlisted, %d unseated, %d updated\n",
		res.ScheduleID, res.AssignedCount, res.Confirmed, res.Waitlisted, res.Unseated, res.Updated)
	return nil
}

type rosterCmd struct {
	ScheduleID int64 `arg:"" help:"Schedule ID."`
}

func (c *rosterCmd) Run(g *globalCmd) error {
	ctx := context.Background()
	a, err := g.open(ctx)
	if err != nil {
		return err
	}
	s, list, err := a.Manager.ScheduleRoster(ctx, c.ScheduleID)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(g.out)
	t.SetTitle(fmt.Sprintf("%s, capacity %d, %s", calendar.FormatPlayDate(s.Date()), s.MaxMembers, s.Status))
	t.AppendHeader(table.Row{"#", "Reservation", "Member", "Status", "Priority", "Preferred", "Team", "Tee time", "Applied"})
	for i, r := range list {
		name := ""
		if r.Member != nil {
			name = r.Member.Name
		}
		team := ""
		if r.Team() > 0 {
			team = fmt.Sprint(r.Team())
		}
		t.AppendRow(table.Row{
			i + 1, r.ID, name, r.Status, r.Priority, r.PreferredTeeTime, team, r.AssignedTeeTime(),
			r.AppliedAt.In(a.Location).Format(time.DateTime),
		})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}
