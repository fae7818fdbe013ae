package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"

	"github.com/classattend/attendance-server/attendance"
	"github.com/classattend/attendance-server/internal/config"
	"github.com/classattend/attendance-server/notify"
	"github.com/classattend/attendance-server/qrtoken"
	"github.com/classattend/attendance-server/server"
	"github.com/classattend/attendance-server/sessions"
	"github.com/classattend/attendance-server/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment variables\n")
	}

	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	if c.GetJWTSecret() == "" {
		return errors.New("JWT_SECRET must be set")
	}

	db, err := storage.Open(c.GetDatabasePath())
	if err != nil {
		return fmt.Errorf("storage.Open: %w", err)
	}
	defer func() {
		if err := storage.Close(db); err != nil {
			log.Printf("Error closing database: %v\n", err)
		}
	}()

	codec, err := qrtoken.New(c.GetQRSecret(), qrtoken.WithMaxAge(c.GetQRTokenMaxAge()))
	if err != nil {
		return fmt.Errorf("qrtoken.New: %w", err)
	}

	scheduler := sessions.NewScheduler()
	defer scheduler.Stop()

	sessionRepo := storage.NewSessionRepo(db)
	attendanceRepo := storage.NewAttendanceRepo(db)
	userRepo := storage.NewUserRepo(db)

	sessionService, err := sessions.NewService(sessionRepo, codec, scheduler,
		sessions.WithDuration(c.GetSessionDuration()))
	if err != nil {
		return fmt.Errorf("sessions.NewService: %w", err)
	}

	hub := notify.NewHub()
	admission, err := attendance.NewService(attendance.Repos{
		Sessions:   sessionRepo,
		Attendance: attendanceRepo,
		Users:      userRepo,
	}, codec, hub, c.GetMaxDistanceMeters())
	if err != nil {
		return fmt.Errorf("attendance.NewService: %w", err)
	}

	srv := server.New(c, server.Deps{
		Sessions:   sessionService,
		Admission:  admission,
		Users:      userRepo,
		Attendance: attendanceRepo,
		Hub:        hub,
	})

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv.Handler()}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
