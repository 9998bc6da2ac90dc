// Package app собирает зависимости ядра: БД, кэш составов, каналы
// уведомлений и сервисы. Используется сервером и clubctl.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Leganyst/golf-club/internal/auth"
	"github.com/Leganyst/golf-club/internal/cache"
	"github.com/Leganyst/golf-club/internal/config"
	"github.com/Leganyst/golf-club/internal/db"
	"github.com/Leganyst/golf-club/internal/model"
	"github.com/Leganyst/golf-club/internal/notify"
	"github.com/Leganyst/golf-club/internal/repository"
	"github.com/Leganyst/golf-club/internal/reservation"
	"github.com/Leganyst/golf-club/internal/schedule"
)

type App struct {
	Cfg      config.App
	DB       *gorm.DB
	Log      *zap.Logger
	Location *time.Location

	Venues  *repository.GormVenueRepository
	Members *repository.GormMemberRepository

	Roster     *cache.Roster
	Inbox      *notify.InApp
	Dispatcher *notify.Dispatcher
	Manager    *reservation.Manager
	Schedules  *schedule.Service
	Tokens     *auth.Issuer

	closers []func() error
}

// New подключается к БД и брокерам и применяет миграции.
func New(ctx context.Context, cfg config.App, dbCfg *config.DBConfig, log *zap.Logger) (*App, error) {
	gdb, err := db.NewGormDB(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	a, err := Build(ctx, cfg, gdb, log)
	if err != nil {
		if sqlDB, e := gdb.DB(); e == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}
	return a, nil
}

// Build собирает сервисы поверх готового подключения.
func Build(ctx context.Context, cfg config.App, gdb *gorm.DB, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := model.AutoMigrate(gdb); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("club timezone: %w", err)
	}

	a := &App{Cfg: cfg, DB: gdb, Log: log, Location: loc}

	a.Venues = repository.NewGormVenueRepository(gdb)
	a.Members = repository.NewGormMemberRepository(gdb)
	schedules := repository.NewGormScheduleRepository(gdb)
	reservations := repository.NewGormReservationRepository(gdb)
	events := repository.NewGormEventRepository(gdb)

	kv, err := a.kvStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Roster = cache.NewRoster(kv, schedules, reservations, cfg.RosterTTL, log.Named("roster"))

	a.Inbox = notify.NewInApp(repository.NewGormNotificationRepository(gdb))
	senders, err := a.senders()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Dispatcher = notify.NewDispatcher(senders, a.Members, cfg.NotifyTimeout, log.Named("notify"))

	a.Manager = reservation.NewManager(reservation.Deps{
		Schedules:    schedules,
		Reservations: reservations,
		Members:      a.Members,
		Events:       events,
		Roster:       a.Roster,
		Notifier:     a.Dispatcher,
		Logger:       log.Named("reservation"),
	}, reservation.WithAlmostFullAudience(cfg.AlmostFullTarget))

	a.Schedules = schedule.NewService(a.Venues, schedules, events, a.Roster, a.Dispatcher, log.Named("schedule"))
	a.Tokens = auth.NewIssuer(cfg.JWTSecret, time.Duration(cfg.JWTExpireMin)*time.Minute)
	return a, nil
}

func (a *App) kvStore(ctx context.Context) (cache.KVStore, error) {
	if a.Cfg.RedisAddr == "" {
		a.Log.Info("roster cache in memory")
		return cache.NewMemoryKVStore(), nil
	}
	c, err := cache.NewRedisClient(ctx, a.Cfg.RedisAddr, a.Cfg.RedisPassword, a.Cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("redis %s: %w", a.Cfg.RedisAddr, err)
	}
	a.closers = append(a.closers, c.Close)
	a.Log.Info("roster cache in redis", zap.String("addr", a.Cfg.RedisAddr))
	return cache.NewRedisKVStore(c), nil
}

// senders — in-app всегда, брокеры при наличии адреса.
func (a *App) senders() (notify.Fanout, error) {
	out := notify.Fanout{a.Inbox}
	if a.Cfg.AMQPURL != "" {
		p, err := notify.NewAMQPPublisher(a.Cfg.AMQPURL, a.Cfg.AMQPExchange)
		if err != nil {
			return nil, fmt.Errorf("amqp: %w", err)
		}
		a.closers = append(a.closers, p.Close)
		out = append(out, p)
		a.Log.Info("amqp notifications enabled", zap.String("exchange", a.Cfg.AMQPExchange))
	}
	if a.Cfg.MQTTBroker != "" {
		p, client, err := notify.NewMQTTPublisher(a.Cfg.MQTTBroker, a.Cfg.MQTTClientID, a.Cfg.MQTTTopicRoot)
		if err != nil {
			return nil, fmt.Errorf("mqtt: %w", err)
		}
		a.closers = append(a.closers, func() error {
			client.Disconnect(250)
			return nil
		})
		out = append(out, p)
		a.Log.Info("mqtt notifications enabled", zap.String("broker", a.Cfg.MQTTBroker))
	}
	return out, nil
}

// Close дожидается фоновых уведомлений и закрывает соединения в обратном порядке.
func (a *App) Close() {
	a.Dispatcher.Wait()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Log.Warn("close", zap.Error(err))
		}
	}
	a.closers = nil
}
