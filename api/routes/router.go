package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gigboardhq/gigboard-backend/api/controllers"
	"github.com/gigboardhq/gigboard-backend/api/middleware"
	"github.com/gigboardhq/gigboard-backend/internal/applications"
	"github.com/gigboardhq/gigboard-backend/internal/auth"
	"github.com/gigboardhq/gigboard-backend/internal/gigs"
	"github.com/gigboardhq/gigboard-backend/internal/notifications"
	"github.com/gigboardhq/gigboard-backend/internal/profiles"
	"github.com/gigboardhq/gigboard-backend/internal/uploads"
	"github.com/gigboardhq/gigboard-backend/pkg/auth/session"
	"github.com/gigboardhq/gigboard-backend/pkg/config"
	"github.com/gigboardhq/gigboard-backend/pkg/logger"
	"github.com/gigboardhq/gigboard-backend/pkg/metrics"
)

// Dependencies bundles everything the router needs. Pingers may be nil when a
// dependency is not wired (readiness then skips it).
type Dependencies struct {
	Config         *config.Config
	Logger         *logger.Logger
	SessionChecker session.AccessSessionChecker
	HTTPMetrics    *metrics.HTTPMetrics
	Gatherer       prometheus.Gatherer

	DBPinger    controllers.Pinger
	RedisPinger controllers.Pinger
	GCSPinger   controllers.Pinger

	AuthService          auth.Service
	RegisterService      auth.RegisterService
	ProfilesService      profiles.Service
	GigsService          gigs.Service
	ApplicationsService  applications.Service
	NotificationsService notifications.Service
	UploadsService       uploads.Service
}

// NewRouter builds the chi handler with the full route table.
func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": deps.DBPinger,
			"redis":    deps.RedisPinger,
			"gcs":      deps.GCSPinger,
		}))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(deps.RegisterService, logg))
		r.Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))

		r.Route("/me", func(r chi.Router) {
			r.Get("/profile", controllers.ProfileGet(deps.ProfilesService, logg))
			r.Put("/profile", controllers.ProfileUpdate(deps.ProfilesService, logg))
			r.Get("/applications", controllers.MyApplications(deps.ApplicationsService, logg))
		})

		r.Route("/gigs", func(r chi.Router) {
			r.Get("/", controllers.GigList(deps.GigsService, logg))
			r.Get("/{gigId}", controllers.GigGet(deps.GigsService, logg))

			r.Post("/{gigId}/applications", controllers.ApplicationApply(deps.ApplicationsService, logg))
			r.Patch("/{gigId}/applications", controllers.ApplicationAction(deps.ApplicationsService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("admin", logg))
				r.Post("/", controllers.GigCreate(deps.GigsService, logg))
				r.Delete("/{gigId}", controllers.GigDelete(deps.GigsService, logg))
				r.Put("/{gigId}/applications/status", controllers.ApplicationSetStatus(deps.ApplicationsService, logg))
			})
		})

		r.With(middleware.RequireRole("admin", logg)).
			Get("/applications", controllers.ApplicationsByGig(deps.ApplicationsService, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.NotificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.NotificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.NotificationsService, logg))
		})

		r.Route("/uploads", func(r chi.Router) {
			r.Post("/presign", controllers.UploadPresign(deps.UploadsService, logg))
			r.Get("/presign-read", controllers.UploadPresignRead(deps.UploadsService, logg))
		})
	})

	return r
}
