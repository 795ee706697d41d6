package http

import (
	"net/http"
	"time"

	"medique-api/internal/delivery/http/handler"
	"medique-api/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	requestTimeout     time.Duration
	healthHandler      *handler.HealthHandler
	authHandler        *handler.AuthHandler
	profileHandler     *handler.ProfileHandler
	doctorHandler      *handler.DoctorHandler
	appointmentHandler *handler.AppointmentHandler
	paymentHandler     *handler.PaymentHandler
	dashboardHandler   *handler.DashboardHandler
	auditLogHandler    *handler.AuditLogHandler
	imageHandler       *handler.ImageHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
	loggingMiddleware  *middleware.LoggingMiddleware
	recoveryMiddleware *middleware.RecoveryMiddleware
}

type RouterDeps struct {
	RequestTimeout     time.Duration
	HealthHandler      *handler.HealthHandler
	AuthHandler        *handler.AuthHandler
	ProfileHandler     *handler.ProfileHandler
	DoctorHandler      *handler.DoctorHandler
	AppointmentHandler *handler.AppointmentHandler
	PaymentHandler     *handler.PaymentHandler
	DashboardHandler   *handler.DashboardHandler
	AuditLogHandler    *handler.AuditLogHandler
	ImageHandler       *handler.ImageHandler // nil when images live in Cloudinary
	AuthMiddleware     *middleware.AuthMiddleware
	CORSMiddleware     *middleware.CORSMiddleware
	LoggingMiddleware  *middleware.LoggingMiddleware
	RecoveryMiddleware *middleware.RecoveryMiddleware
}

func NewRouter(deps RouterDeps) *Router {
	return &Router{
		router:             mux.NewRouter(),
		requestTimeout:     deps.RequestTimeout,
		healthHandler:      deps.HealthHandler,
		authHandler:        deps.AuthHandler,
		profileHandler:     deps.ProfileHandler,
		doctorHandler:      deps.DoctorHandler,
		appointmentHandler: deps.AppointmentHandler,
		paymentHandler:     deps.PaymentHandler,
		dashboardHandler:   deps.DashboardHandler,
		auditLogHandler:    deps.AuditLogHandler,
		imageHandler:       deps.ImageHandler,
		authMiddleware:     deps.AuthMiddleware,
		corsMiddleware:     deps.CORSMiddleware,
		loggingMiddleware:  deps.LoggingMiddleware,
		recoveryMiddleware: deps.RecoveryMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// Outermost first: logging sees the status written by recovery
	r.router.Use(r.loggingMiddleware.Handle)
	r.router.Use(r.recoveryMiddleware.Handle)
	r.router.Use(r.corsMiddleware.Handle)
	r.router.Use(middleware.RequestTimeout(r.requestTimeout))

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthHandler.Health).Methods(http.MethodGet)

	if r.imageHandler != nil {
		api.HandleFunc("/images/{id}", r.imageHandler.GetImage).Methods(http.MethodGet)
	}

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected, user or admin)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.Handle("/me", middleware.RequireUser(http.HandlerFunc(r.authHandler.GetCurrentUser))).Methods(http.MethodGet)

	// Doctor directory (public)
	api.HandleFunc("/doctors", r.doctorHandler.ListDoctors).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)

	// User routes
	user := api.NewRoute().Subrouter()
	user.Use(r.authMiddleware.Authenticate)
	user.Use(middleware.RequireUser)

	user.HandleFunc("/users/profile", r.profileHandler.GetProfile).Methods(http.MethodGet)
	user.HandleFunc("/users/profile", r.profileHandler.UpdateProfile).Methods(http.MethodPut)

	user.HandleFunc("/appointments", r.appointmentHandler.BookAppointment).Methods(http.MethodPost)
	user.HandleFunc("/appointments", r.appointmentHandler.ListMyAppointments).Methods(http.MethodGet)
	user.HandleFunc("/appointments/cancel", r.appointmentHandler.CancelAppointment).Methods(http.MethodPost)

	user.HandleFunc("/payments/orders", r.paymentHandler.CreateOrder).Methods(http.MethodPost)
	user.HandleFunc("/payments/verify", r.paymentHandler.VerifyPayment).Methods(http.MethodPost)

	// Admin login (public)
	api.HandleFunc("/admin/login", r.authHandler.AdminLogin).Methods(http.MethodPost)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/doctors", r.doctorHandler.AddDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/doctors", r.doctorHandler.ListAllDoctors).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{id}/availability", r.doctorHandler.ChangeAvailability).Methods(http.MethodPatch)

	admin.HandleFunc("/appointments", r.appointmentHandler.ListAllAppointments).Methods(http.MethodGet)
	admin.HandleFunc("/appointments/cancel", r.appointmentHandler.CancelAppointment).Methods(http.MethodPost)

	admin.HandleFunc("/dashboard", r.dashboardHandler.GetDashboard).Methods(http.MethodGet)

	admin.HandleFunc("/audit-logs", r.auditLogHandler.ListAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	return r.router
}
