package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskflow/internal/config"
	"taskflow/internal/repository"
	"taskflow/internal/server"
	"taskflow/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	auditSvc := service.NewAuditService(activityRepo)
	notificationSvc := service.NewNotificationService(notificationRepo)
	taskSvc := service.NewTaskService(db, userRepo, notificationSvc, auditSvc)
	recurringSvc := service.NewRecurringService(db, auditSvc)
	reminderSvc := service.NewReminderService(taskRepo, notificationSvc)

	scheduler := service.NewSchedulerService(time.Local)
	if _, err := scheduler.ScheduleInterval(cfg.RecurringInterval, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		generated := recurringSvc.Tick(jobCtx, time.Now())
		if generated > 0 {
			log.Printf("recurring tick: generated %d tasks", generated)
		}
	}); err != nil {
		log.Fatalf("schedule recurring tick: %v", err)
	}
	if _, err := scheduler.ScheduleDaily(cfg.ReminderTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		stats := reminderSvc.Tick(jobCtx, time.Now())
		log.Printf("reminder tick: %d reminders, %d overdue", stats.Reminders, stats.Overdue)
	}); err != nil {
		log.Fatalf("schedule reminder tick: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := server.New(taskSvc, recurringSvc, reminderSvc, notificationSvc, server.Options{
		JWTSecret:      []byte(cfg.JWTSecret),
		RequestsPerMin: cfg.RateLimitPerMin,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("taskflow listening on %s", cfg.HTTPAddr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
