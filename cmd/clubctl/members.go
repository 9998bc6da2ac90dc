package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Leganyst/golf-club/internal/auth"
	"github.com/Leganyst/golf-club/internal/calendar"
	"github.com/Leganyst/golf-club/internal/model"
)

type addVenueCmd struct {
	Name       string `arg:"" help:"Course name."`
	Location   string `help:"Address or region."`
	MaxMembers int    `help:"Default capacity of a schedule." default:"12"`
	Week       int    `help:"Week of the month whose Saturday is played (1-5)." default:"1"`
	TeeStart   string `help:"First tee time." default:"06:00"`
	Interval   int    `help:"Minutes between tee times." default:"8"`
	TeeCount   int    `help:"Number of tee times." default:"3"`
}

func (c *addVenueCmd) Run(g *globalCmd) error {
	ctx := context.Background()
	if c.Week < 1 || c.Week > 5 {
		return fmt.Errorf("week must be between 1 and 5, got %d", c.Week)
	}
	tees, err := calendar.TeeSheet(c.TeeStart, c.Interval, c.TeeCount)
	if err != nil {
		return err
	}
	a, err := g.open(ctx)
	if err != nil {
		return err
	}
	v := &model.Venue{
		Name:           strings.TrimSpace(c.Name),
		Location:       c.Location,
		MaxMembers:     c.MaxMembers,
		ScheduleWeek:   c.Week,
		TeeTimeStart:   tees[0],
		TeeIntervalMin: c.Interval,
		TeeCount:       c.TeeCount,
		IsActive:       true,
	}
	if err := a.Venues.Create(ctx, v); err != nil {
		return fmt.Errorf("create venue: %w", err)
	}
	fmt.Fprintf(g.out, "venue %d %q, tee sheet %s\n", v.ID, v.Name, calendar.JoinTeeTimes(tees))
	return nil
}

type addMemberCmd struct {
	Name  string `arg:"" help:"Member name."`
	Phone string `help:"Phone number."`
	Admin bool   `help:"Grant administrator role."`
}

func (c *addMemberCmd) Run(g *globalCmd) error {
	ctx := context.Background()
	a, err := g.open(ctx)
	if err != nil {
		return err
	}
	m := &model.Member{Name: strings.TrimSpace(c.Name), Phone: c.Phone, IsAdmin: c.Admin}
	if err := a.Members.Create(ctx, m); err != nil {
		return fmt.Errorf("create member: %w", err)
	}
	fmt.Fprintf(g.out, "member %d %q (%s)\n", m.ID, m.Name, auth.RoleOf(m))
	return nil
}

type tokenCmd struct {
	MemberID int64 `arg:"" help:"Member ID."`
}

func (c *tokenCmd) Run(g *globalCmd) error {
	ctx := context.Background()
	a, err := g.open(ctx)
	if err != nil {
		return err
	}
	m, err := calendar.ValidateMember(ctx, a.Members, c.MemberID)
	if err != nil {
		return err
	}
	tok, err := a.Tokens.CreateAccessToken(m)
	if err != nil {
		return err
	}
	fmt.Fprintln(g.out, tok)
	return nil
}
