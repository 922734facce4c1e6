package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	api "github.com/mind-engage/mindengage-academy/internal/api/http"
	auth "github.com/mind-engage/mindengage-academy/internal/auth/middleware"
	"github.com/mind-engage/mindengage-academy/internal/certificate"
	"github.com/mind-engage/mindengage-academy/internal/config"
	"github.com/mind-engage/mindengage-academy/internal/coupon"
	"github.com/mind-engage/mindengage-academy/internal/course"
	"github.com/mind-engage/mindengage-academy/internal/db"
	"github.com/mind-engage/mindengage-academy/internal/dsa"
	"github.com/mind-engage/mindengage-academy/internal/enrollment"
	"github.com/mind-engage/mindengage-academy/internal/grading"
	"github.com/mind-engage/mindengage-academy/internal/quiz"
	"github.com/mind-engage/mindengage-academy/internal/rbac"
	syncx "github.com/mind-engage/mindengage-academy/internal/sync"
)

type services struct {
	db           *sql.DB
	auth         *auth.AuthService
	events       *syncx.EventRepo
	courses      *course.Service
	enrollments  *enrollment.Service
	quizzes      *quiz.Service
	certificates *certificate.Service
	coupons      *coupon.Service
	dsa          *dsa.Service
}

func newServices(cfg config.Config, dbh *sql.DB) services {
	events := syncx.NewEventRepo(dbh)
	courseStore := course.NewSQLStore(dbh)
	quizStore := quiz.NewSQLStore(dbh)
	enroll := enrollment.NewService(enrollment.NewSQLStore(dbh), courseStore, events)

	return services{
		db:           dbh,
		auth:         auth.NewAuthService(cfg.AuthSecret),
		events:       events,
		courses:      course.NewService(courseStore),
		enrollments:  enroll,
		quizzes:      quiz.NewService(quizStore, courseStore, enroll, grading.NewDefaultGrader(), events),
		certificates: certificate.NewService(certificate.NewSQLStore(dbh), courseStore, quizStore, enroll, events, cfg.CertRequiredLessonPct),
		coupons:      coupon.NewService(coupon.NewSQLStore(dbh), courseStore),
		dsa:          dsa.NewService(dsa.NewSQLStore(dbh), courseStore, enroll, events),
	}
}

func newRouter(cfg config.Config, s services) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Local login (enabled in offline mode by default; can be enabled online via env)
	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(s.auth, s.db))
	}
	if cfg.EnableGuestAuth {
		r.Post("/auth/guest", auth.GuestLoginHandler(s.auth, s.db))
	}

	// Public
	r.Get("/certificates/verify/{number}", api.VerifyCertificateHandler(s.certificates))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	// Protected API (JWT → caller in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(s.auth))
		if cfg.RoleFromDB {
			pr.Use(auth.AttachRoleFromDB(s.db, cfg.Mode == config.ModeOffline))
		}

		// Catalog
		pr.With(rbac.Require("course:view")).Get("/courses", api.ListCoursesHandler(s.courses))
		pr.With(rbac.Require("course:create")).Post("/courses", api.CreateCourseHandler(s.courses))
		pr.With(rbac.Require("course:view")).Get("/courses/{courseID}/lessons", api.ListLessonsHandler(s.courses))
		pr.With(rbac.Require("course:create")).Post("/courses/{courseID}/lessons", api.AddLessonHandler(s.courses))

		// Enrollment
		pr.With(rbac.Require("enrollment:create")).Post("/courses/{courseID}/enrollments", api.EnrollHandler(s.enrollments))
		pr.With(rbac.Require("lesson:complete")).Post("/lessons/{lessonID}/complete", api.CompleteLessonHandler(s.enrollments))

		// Quizzes
		pr.With(rbac.Require("quiz:create")).Post("/quizzes", api.CreateQuizHandler(s.quizzes))
		pr.With(rbac.Require("quiz:view")).Get("/quizzes/{quizID}", api.GetQuizHandler(s.quizzes))
		pr.With(rbac.Require("quiz:submit")).Post("/quizzes/{quizID}/submit", api.SubmitQuizHandler(s.quizzes))
		pr.With(rbac.Require("quiz:view")).Get("/quizzes/{quizID}/attempts", api.ListQuizAttemptsHandler(s.quizzes))

		// Certificates
		pr.With(rbac.Require("certificate:view")).
			Get("/courses/{courseID}/certificate/requirements", api.CertificateRequirementsHandler(s.certificates))
		pr.With(rbac.Require("certificate:issue")).
			Post("/courses/{courseID}/certificate", api.IssueCertificateHandler(s.certificates))
		pr.With(rbac.Require("certificate:revoke")).
			Post("/certificates/{certID}/revoke", api.RevokeCertificateHandler(s.certificates))

		// Coupons
		pr.With(rbac.Require("coupon:create")).Post("/coupons", api.CreateCouponHandler(s.coupons))
		pr.With(rbac.Require("coupon:validate")).Post("/coupons/validate", api.ValidateCouponHandler(s.coupons))

		// DSA sheets
		pr.With(rbac.Require("dsa:view")).Get("/dsa-progress", api.GetDsaProgressHandler(s.dsa))
		pr.With(rbac.Require("dsa:update")).Post("/dsa-progress", api.ToggleDsaProblemHandler(s.dsa))

		// Users
		pr.With(rbac.Require("users:bulk_upsert")).Post("/users/bulk", api.BulkUpsertUsersHandler(s.db))
		pr.With(rbac.Require("users:list")).Get("/users", api.ListUsersHandler(s.db))
		pr.With(rbac.Require("user:change_password")).Post("/users/change-password", api.ChangePasswordHandler(s.db))

		mountAdminRoutes(pr, s)
	})
	return r
}

// seedAdmin creates the configured admin account on first start.
func seedAdmin(ctx context.Context, dbh *sql.DB, cfg config.Config) error {
	if cfg.AdminUser == "" || cfg.AdminPassHash == "" {
		return nil
	}
	_, err := dbh.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, role, created_at) VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (username) DO NOTHING`,
		uuid.NewString(), cfg.AdminUser, cfg.AdminPassHash, rbac.RoleAdmin, time.Now().Unix())
	return err
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("env file: %v", err)
	}
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer dbh.Close()
	if err := seedAdmin(ctx, dbh, cfg); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(cfg, newServices(cfg, dbh)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
