package router

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	mem "pup-hangouts/internal/adapters/storage/memory"
	pg "pup-hangouts/internal/adapters/storage/postgres"
	"pup-hangouts/internal/domain/friendships"
	"pup-hangouts/internal/domain/hangouts"
	"pup-hangouts/internal/domain/notifications"
	"pup-hangouts/internal/domain/pups"
	"pup-hangouts/internal/domain/suggestions"
	"pup-hangouts/internal/domain/users"
	"pup-hangouts/internal/middleware"
	"pup-hangouts/internal/platform/logger"
	"pup-hangouts/internal/ports/auth"
	"pup-hangouts/internal/ports/notify"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "pup-hangouts/docs" // docs swagger generados
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: transporte de notificaciones. nil => todo queda "skipped".
	Sender         notify.Sender
	NotifyEnabled  bool
	NotifyThrottle time.Duration

	Log logger.Logger
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var (
		userRepo       users.Repository
		pupRepo        pups.Repository
		friendshipRepo friendships.Repository
		hangoutRepo    hangouts.Repository
		suggestionRepo suggestions.Repository
		approvalStore  suggestions.ApprovalStore
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff).
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		userRepo = pg.NewUsersRepo(db)
		pupRepo = pg.NewPupsRepo(db)
		friendshipRepo = pg.NewFriendshipsRepo(db)
		hangoutRepo = pg.NewHangoutsRepo(db)
		suggestionRepo = pg.NewSuggestionsRepo(db)
		approvalStore = pg.NewApprovalStore(db)
	} else {
		memSuggestions := mem.NewSuggestionRepository()
		memHangouts := mem.NewHangoutRepository()
		userRepo = mem.NewUserRepository()
		pupRepo = mem.NewPupRepository()
		friendshipRepo = mem.NewFriendshipRepository()
		hangoutRepo = memHangouts
		suggestionRepo = memSuggestions
		approvalStore = mem.NewApprovalStore(memSuggestions, memHangouts)
	}

	// Services por módulo.
	usersSvc := users.NewService(userRepo)
	pupsSvc := pups.NewService(pupRepo)
	friendshipsSvc := friendships.NewService(friendshipRepo, pupsSvc, usersSvc)
	hangoutsSvc := hangouts.NewService(hangoutRepo, pupsSvc, friendshipsSvc, usersSvc)
	suggestionsSvc := suggestions.NewService(suggestionRepo, approvalStore, pupsSvc, friendshipsSvc, usersSvc)

	dispatcher := notifications.NewDispatcher(usersSvc, opts.Sender, opts.Log, notifications.DispatcherOptions{
		Enabled:  opts.NotifyEnabled,
		Throttle: opts.NotifyThrottle,
	})

	// Rutas por módulo.
	users.RegisterRoutes(r, usersSvc)
	pups.RegisterRoutes(r, pupsSvc)
	friendships.RegisterRoutes(r, friendshipsSvc)
	hangouts.RegisterRoutes(r, hangoutsSvc, dispatcher)
	suggestions.RegisterRoutes(r, suggestionsSvc, dispatcher)

	return r
}
