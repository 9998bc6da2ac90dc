package clubv1

import "time"

type Reservation struct {
	Id               int64     `json:"id"`
	ScheduleId       int64     `json:"schedule_id"`
	MemberId         int64     `json:"member_id"`
	MemberName       string    `json:"member_name,omitempty"`
	Status           string    `json:"status"`
	Priority         int32     `json:"priority"`
	PreferredTeeTime string    `json:"preferred_tee_time,omitempty"`
	TeamNumber       int32     `json:"team_number,omitempty"`
	TeeTime          string    `json:"tee_time,omitempty"`
	AppliedAt        time.Time `json:"applied_at"`
	SwapPartnerId    int64     `json:"swap_partner_id,omitempty"`
	PlayDate         string    `json:"play_date,omitempty"`
	VenueName        string    `json:"venue_name,omitempty"`
}

type Schedule struct {
	Id         int64    `json:"id"`
	VenueId    int64    `json:"venue_id"`
	VenueName  string   `json:"venue_name,omitempty"`
	PlayDate   string   `json:"play_date"`
	TeeTimes   []string `json:"tee_times"`
	MaxMembers int32    `json:"max_members"`
	Status     string   `json:"status"`
}

type Empty struct{}

type ApplyRequest struct {
	MemberId         int64  `json:"member_id"`
	ScheduleId       int64  `json:"schedule_id"`
	PreferredTeeTime string `json:"preferred_tee_time,omitempty"`
}

type ApplyResponse struct {
	Reservation *Reservation `json:"reservation"`
	Position    int32        `json:"position"`
}

type CancelRequest struct {
	MemberId      int64 `json:"member_id"`
	ReservationId int64 `json:"reservation_id"`
}

type ReleaseResponse struct {
	Reservation      *Reservation `json:"reservation"`
	PromotedMemberId int64        `json:"promoted_member_id,omitempty"`
}

type ReservationRef struct {
	ReservationId int64 `json:"reservation_id"`
}

type SetStatusRequest struct {
	ReservationId int64  `json:"reservation_id"`
	Status        string `json:"status"`
}

type BookForRequest struct {
	ScheduleId int64 `json:"schedule_id"`
	MemberId   int64 `json:"member_id"`
}

type ReservationResponse struct {
	Reservation *Reservation `json:"reservation"`
}

type ScheduleRef struct {
	ScheduleId int64 `json:"schedule_id"`
}

type AssignResponse struct {
	ScheduleId    int64 `json:"schedule_id"`
	AssignedCount int32 `json:"assigned_count"`
	Confirmed     int32 `json:"confirmed"`
	Waitlisted    int32 `json:"waitlisted"`
	Unseated      int32 `json:"unseated"`
	Updated       int32 `json:"updated"`
}

type SwapRequest struct {
	ReservationA int64 `json:"reservation_a"`
	ReservationB int64 `json:"reservation_b"`
	ExpectedTeam int32 `json:"expected_team,omitempty"`
}

type PairResponse struct {
	Reservations []*Reservation `json:"reservations"`
}

type MemberRef struct {
	MemberId int64 `json:"member_id"`
}

type ReservationList struct {
	Reservations []*Reservation `json:"reservations"`
}

type RosterResponse struct {
	Schedule     *Schedule      `json:"schedule"`
	Reservations []*Reservation `json:"reservations"`
}
