package repository

import "errors"

var (
	// Активная заявка на (расписание, участник) уже существует.
	ErrDuplicate = errors.New("active reservation already exists")
	// Расписание нельзя удалить, пока на него есть заявки.
	ErrHasReservations = errors.New("schedule has reservations")
)
