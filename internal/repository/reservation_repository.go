package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/golf-club/internal/model"
)

// AdmitFunc решает, какую заявку вставить, по заблокированному расписанию
// и числу pending+confirmed заявок до вставки.
type AdmitFunc func(s *model.Schedule, active int64) (*model.Reservation, error)

// GuardFunc проверяет заявку и её расписание внутри транзакции.
type GuardFunc func(res *model.Reservation, s *model.Schedule) error

// SwapGuardFunc проверяет пару заявок перед обменом.
type SwapGuardFunc func(a, b *model.Reservation) error

// Released — результат отмены/мягкого удаления.
type Released struct {
	Reservation *model.Reservation
	Previous    model.ReservationStatus
	// Заявка из листа ожидания, переведённая в pending (может быть nil).
	Promoted *model.Reservation
}

type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Reservation, error)
	// Заявки расписания в порядке (priority, applied_at, id). Пустой statuses — все.
	ListBySchedule(ctx context.Context, scheduleID int64, statuses ...model.ReservationStatus) ([]model.Reservation, error)
	// Все заявки расписания с участниками, порядок как в ListBySchedule.
	ListWithMembers(ctx context.Context, scheduleID int64) ([]model.Reservation, error)
	// Заявки участника вместе с расписанием и полем, новые первыми.
	ListByMember(ctx context.Context, memberID int64) ([]model.Reservation, error)
	// WasConfirmed — была ли у участника подтверждённая заявка на расписание.
	WasConfirmed(ctx context.Context, scheduleID, memberID int64) (bool, error)

	// Admit атомарно проверяет дубликат, считает занятые места и вставляет заявку.
	Admit(ctx context.Context, scheduleID, memberID int64, decide AdmitFunc) (*model.Reservation, int64, error)
	// Release переводит заявку в cancelled/deleted и продвигает лист ожидания.
	Release(ctx context.Context, id int64, to model.ReservationStatus, guard GuardFunc) (*Released, error)
	// SetStatus безусловно перезаписывает статус, возвращает прежний.
	SetStatus(ctx context.Context, id int64, status model.ReservationStatus) (*model.Reservation, model.ReservationStatus, error)
	// HardDelete физически удаляет запись.
	HardDelete(ctx context.Context, id int64) (*model.Reservation, error)

	// ForAssignment — pending/confirmed плюс waitlist с уже назначенной командой.
	ForAssignment(ctx context.Context, scheduleID int64) ([]model.Reservation, error)
	// SaveAssignment записывает команду, ти-тайм и статус, стирая историю обмена.
	SaveAssignment(ctx context.Context, id int64, team int, teeTime string, status model.ReservationStatus) error
	// Swap меняет команды двух заявок в одной транзакции.
	Swap(ctx context.Context, aID, bID int64, guard SwapGuardFunc) (*model.Reservation, *model.Reservation, error)
	// RevertSwap восстанавливает команды обеих сторон обмена.
	RevertSwap(ctx context.Context, id int64, guard SwapGuardFunc) (*model.Reservation, *model.Reservation, error)
}

type GormReservationRepository struct {
	db *gorm.DB
}

func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

func (r *GormReservationRepository) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	var res model.Reservation
	if err := r.db.WithContext(ctx).First(&res, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func rankOrder(q *gorm.DB) *gorm.DB {
	return q.Order("priority ASC").Order("applied_at ASC").Order("id ASC")
}

func (r *GormReservationRepository) ListBySchedule(
	ctx context.Context,
	scheduleID int64,
	statuses ...model.ReservationStatus,
) ([]model.Reservation, error) {
	var out []model.Reservation
	q := r.db.WithContext(ctx).Where("schedule_id = ?", scheduleID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := rankOrder(q).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormReservationRepository) ListWithMembers(ctx context.Context, scheduleID int64) ([]model.Reservation, error) {
	var out []model.Reservation
	q := r.db.WithContext(ctx).Preload("Member").Where("schedule_id = ?", scheduleID)
	if err := rankOrder(q).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormReservationRepository) ListByMember(ctx context.Context, memberID int64) ([]model.Reservation, error) {
	var out []model.Reservation
	err := r.db.WithContext(ctx).
		Preload("Schedule.Venue").
		Where("member_id = ?", memberID).
		Order("applied_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormReservationRepository) WasConfirmed(ctx context.Context, scheduleID, memberID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("schedule_id = ? AND member_id = ? AND status = ?", scheduleID, memberID, model.ReservationStatusConfirmed).
		Count(&n).Error
	return n > 0, err
}

// lockSchedule берёт блокировку строки расписания на время транзакции.
// В sqlite FOR UPDATE не поддерживается и опускается диалектом, там
// запись сериализуется самим движком.
func lockSchedule(tx *gorm.DB, id int64) (*model.Schedule, error) {
	var s model.Schedule
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func countActive(tx *gorm.DB, scheduleID int64) (int64, error) {
	var n int64
	err := tx.Model(&model.Reservation{}).
		Where("schedule_id = ? AND status IN ?", scheduleID, model.ActiveReservationStatuses).
		Count(&n).Error
	return n, err
}

func translateDuplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (r *GormReservationRepository) Admit(
	ctx context.Context,
	scheduleID, memberID int64,
	decide AdmitFunc,
) (*model.Reservation, int64, error) {
	var (
		created *model.Reservation
		before  int64
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := lockSchedule(tx, scheduleID)
		if err != nil {
			return err
		}

		var dup int64
		if err := tx.Model(&model.Reservation{}).
			Where("schedule_id = ? AND member_id = ? AND status NOT IN ?", scheduleID, memberID, model.InactiveReservationStatuses).
			Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return ErrDuplicate
		}

		if before, err = countActive(tx, scheduleID); err != nil {
			return err
		}

		res, err := decide(s, before)
		if err != nil {
			return err
		}
		res.ScheduleID = scheduleID
		res.MemberID = memberID
		if err := tx.Create(res).Error; err != nil {
			return translateDuplicate(err)
		}
		created = res
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return created, before, nil
}

func (r *GormReservationRepository) Release(
	ctx context.Context,
	id int64,
	to model.ReservationStatus,
	guard GuardFunc,
) (*Released, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &Released{}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := lockSchedule(tx, current.ScheduleID)
		if err != nil {
			return err
		}

		// перечитываем под блокировкой
		var res model.Reservation
		if err := tx.First(&res, "id = ?", id).Error; err != nil {
			return err
		}
		if guard != nil {
			if err := guard(&res, s); err != nil {
				return err
			}
		}

		out.Previous = res.Status
		if err := tx.Model(&model.Reservation{}).
			Where("id = ?", id).
			Updates(map[string]any{"status": to, "assignment_waitlist": false}).Error; err != nil {
			return err
		}
		res.Status, res.AssignmentWaitlist = to, false
		out.Reservation = &res

		if !out.Previous.HoldsSeat() {
			return nil
		}
		out.Promoted, err = promoteNext(tx, s)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// promoteNext переводит самую раннюю заявку из листа ожидания в pending,
// если после освобождения есть место. Не более одной за вызов.
func promoteNext(tx *gorm.DB, s *model.Schedule) (*model.Reservation, error) {
	active, err := countActive(tx, s.ID)
	if err != nil {
		return nil, err
	}
	if active >= int64(s.Capacity(nil)) {
		return nil, nil
	}

	var next model.Reservation
	err = tx.Where("schedule_id = ? AND status = ?", s.ID, model.ReservationStatusWaitlist).
		Order("applied_at ASC").
		Order("id ASC").
		Take(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Model(&model.Reservation{}).
		Where("id = ?", next.ID).
		Updates(map[string]any{"status": model.ReservationStatusPending, "assignment_waitlist": false}).Error; err != nil {
		return nil, err
	}
	next.Status, next.AssignmentWaitlist = model.ReservationStatusPending, false
	return &next, nil
}

func (r *GormReservationRepository) SetStatus(
	ctx context.Context,
	id int64,
	status model.ReservationStatus,
) (*model.Reservation, model.ReservationStatus, error) {
	var (
		res  model.Reservation
		prev model.ReservationStatus
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&res, "id = ?", id).Error; err != nil {
			return err
		}
		prev = res.Status
		fields := map[string]any{"status": status, "assignment_waitlist": false}
		// ручной перевод в лист ожидания снимает с команды
		if status == model.ReservationStatusWaitlist {
			fields["team_number"] = nil
			fields["tee_time"] = nil
			res.TeamNumber, res.TeeTime = nil, nil
		}
		if err := tx.Model(&model.Reservation{}).
			Where("id = ?", id).
			Updates(fields).Error; err != nil {
			return translateDuplicate(err)
		}
		res.Status, res.AssignmentWaitlist = status, false
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return &res, prev, nil
}

func (r *GormReservationRepository) HardDelete(ctx context.Context, id int64) (*model.Reservation, error) {
	var res model.Reservation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&res, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Reservation{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *GormReservationRepository) ForAssignment(ctx context.Context, scheduleID int64) ([]model.Reservation, error) {
	var out []model.Reservation
	q := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Where(
			r.db.Where("status IN ?", model.ActiveReservationStatuses).
				Or("status = ? AND assignment_waitlist = ?", model.ReservationStatusWaitlist, true),
		)
	if err := rankOrder(q).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormReservationRepository) SaveAssignment(
	ctx context.Context,
	id int64,
	team int,
	teeTime string,
	status model.ReservationStatus,
) error {
	fields := map[string]any{
		"team_number":            nil,
		"tee_time":               nil,
		"status":                 status,
		"assignment_waitlist":    status == model.ReservationStatusWaitlist,
		"swap_partner_id":        nil,
		"swap_original_team":     nil,
		"swap_original_tee_time": nil,
	}
	// team 0 — без места в команде
	if team > 0 {
		fields["team_number"] = team
		fields["tee_time"] = teeTime
	}
	return r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func loadPair(tx *gorm.DB, aID, bID int64) (*model.Reservation, *model.Reservation, error) {
	var a, b model.Reservation
	if err := tx.First(&a, "id = ?", aID).Error; err != nil {
		return nil, nil, err
	}
	if err := tx.First(&b, "id = ?", bID).Error; err != nil {
		return nil, nil, err
	}
	return &a, &b, nil
}

func (r *GormReservationRepository) Swap(
	ctx context.Context,
	aID, bID int64,
	guard SwapGuardFunc,
) (*model.Reservation, *model.Reservation, error) {
	var a, b *model.Reservation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if a, b, err = loadPair(tx, aID, bID); err != nil {
			return err
		}
		if _, err := lockSchedule(tx, a.ScheduleID); err != nil {
			return err
		}
		if guard != nil {
			if err := guard(a, b); err != nil {
				return err
			}
		}

		aTeam, aTee := a.TeamNumber, a.TeeTime
		bTeam, bTee := b.TeamNumber, b.TeeTime

		a.SwapPartnerID, a.SwapOriginalTeam, a.SwapOriginalTeeTime = &b.ID, aTeam, aTee
		b.SwapPartnerID, b.SwapOriginalTeam, b.SwapOriginalTeeTime = &a.ID, bTeam, bTee
		a.TeamNumber, a.TeeTime = bTeam, bTee
		b.TeamNumber, b.TeeTime = aTeam, aTee

		if err := saveTeam(tx, a); err != nil {
			return err
		}
		return saveTeam(tx, b)
	})
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func (r *GormReservationRepository) RevertSwap(
	ctx context.Context,
	id int64,
	guard SwapGuardFunc,
) (*model.Reservation, *model.Reservation, error) {
	var res, partner model.Reservation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&res, "id = ?", id).Error; err != nil {
			return err
		}
		if _, err := lockSchedule(tx, res.ScheduleID); err != nil {
			return err
		}
		var partnerErr error
		if res.SwapPartnerID != nil {
			partnerErr = tx.First(&partner, "id = ?", *res.SwapPartnerID).Error
		}
		if guard != nil {
			if err := guard(&res, &partner); err != nil {
				return err
			}
		}
		if partnerErr != nil {
			return partnerErr
		}

		// сторона партнёра: своя история, если она указывает на эту заявку
		if partner.SwapPartnerID != nil && *partner.SwapPartnerID == res.ID && partner.SwapOriginalTeam != nil {
			partner.TeamNumber, partner.TeeTime = partner.SwapOriginalTeam, partner.SwapOriginalTeeTime
		} else {
			partner.TeamNumber, partner.TeeTime = res.TeamNumber, res.TeeTime
		}
		res.TeamNumber, res.TeeTime = res.SwapOriginalTeam, res.SwapOriginalTeeTime

		for _, x := range []*model.Reservation{&res, &partner} {
			x.SwapPartnerID, x.SwapOriginalTeam, x.SwapOriginalTeeTime = nil, nil, nil
			if err := saveTeam(tx, x); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &res, &partner, nil
}

func saveTeam(tx *gorm.DB, res *model.Reservation) error {
	return tx.Model(&model.Reservation{}).
		Where("id = ?", res.ID).
		Updates(map[string]any{
			"team_number":            res.TeamNumber,
			"tee_time":               res.TeeTime,
			"swap_partner_id":        res.SwapPartnerID,
			"swap_original_team":     res.SwapOriginalTeam,
			"swap_original_tee_time": res.SwapOriginalTeeTime,
		}).Error
}
