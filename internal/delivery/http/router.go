package http

import (
	"net/http"

	"clinic-front-desk/internal/delivery/http/handler"
	"clinic-front-desk/internal/delivery/http/middleware"
	"clinic-front-desk/pkg/metrics"
	"clinic-front-desk/pkg/response"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const (
	uuidPattern        = "[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}"
	idPath             = "/{id:" + uuidPattern + "}"
	appointmentStatus  = "/status/{status:booked|completed|canceled}"
	queueEntryStatuses = "/status/{status:waiting|with_doctor|with-doctor|completed|canceled}"
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	Doctor      *handler.DoctorHandler
	Patient     *handler.PatientHandler
	Appointment *handler.AppointmentHandler
	Queue       *handler.QueueHandler
	AuditLog    *handler.AuditLogHandler
	Dashboard   *handler.DashboardHandler
}

type Router struct {
	router         *mux.Router
	handlers       Handlers
	authMiddleware *middleware.AuthMiddleware
	corsMiddleware *middleware.CORSMiddleware
	authLimiter    *middleware.RateLimiter
	metrics        *metrics.Metrics
	log            *logrus.Logger
}

func NewRouter(
	handlers Handlers,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	authLimiter *middleware.RateLimiter,
	m *metrics.Metrics,
	log *logrus.Logger,
) *Router {
	return &Router{
		router:         mux.NewRouter(),
		handlers:       handlers,
		authMiddleware: authMiddleware,
		corsMiddleware: corsMiddleware,
		authLimiter:    authLimiter,
		metrics:        m,
		log:            log,
	}
}

func (r *Router) Setup() *mux.Router {
	h := r.handlers

	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.Logger(r.log))
	r.router.Use(middleware.Recovery(r.log))
	r.router.Use(r.corsMiddleware.Handle)
	if r.metrics != nil {
		r.router.Use(middleware.Metrics(r.metrics))
		r.router.Handle("/metrics", r.metrics.Handler()).Methods(http.MethodGet)
	}

	// Preflights must match a route, otherwise mux skips the middleware chain
	// and answers 404 without CORS headers
	r.router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		response.NotFound(w, "Route not found")
	})
	r.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	if r.authLimiter != nil {
		auth.Use(r.authLimiter.Limit)
	}
	auth.HandleFunc("/register", h.Auth.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", h.Auth.Login).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/me", h.Auth.GetCurrentUser).Methods(http.MethodGet)

	// Front desk routes (any signed-in user)
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)

	protected.HandleFunc("/doctors", h.Doctor.CreateDoctor).Methods(http.MethodPost)
	protected.HandleFunc("/doctors", h.Doctor.GetAllDoctors).Methods(http.MethodGet)
	protected.HandleFunc("/doctors"+idPath, h.Doctor.GetDoctor).Methods(http.MethodGet)
	protected.HandleFunc("/doctors"+idPath, h.Doctor.UpdateDoctor).Methods(http.MethodPut, http.MethodPatch)
	protected.HandleFunc("/doctors"+idPath, h.Doctor.DeleteDoctor).Methods(http.MethodDelete)

	protected.HandleFunc("/patients", h.Patient.CreatePatient).Methods(http.MethodPost)
	protected.HandleFunc("/patients", h.Patient.GetAllPatients).Methods(http.MethodGet)
	protected.HandleFunc("/patients"+idPath, h.Patient.GetPatient).Methods(http.MethodGet)
	protected.HandleFunc("/patients"+idPath, h.Patient.UpdatePatient).Methods(http.MethodPut, http.MethodPatch)
	protected.HandleFunc("/patients"+idPath, h.Patient.DeletePatient).Methods(http.MethodDelete)

	protected.HandleFunc("/appointments", h.Appointment.CreateAppointment).Methods(http.MethodPost)
	protected.HandleFunc("/appointments", h.Appointment.GetAllAppointments).Methods(http.MethodGet)
	protected.HandleFunc("/appointments"+idPath, h.Appointment.GetAppointment).Methods(http.MethodGet)
	protected.HandleFunc("/appointments"+idPath, h.Appointment.UpdateAppointment).Methods(http.MethodPut, http.MethodPatch)
	protected.HandleFunc("/appointments"+idPath+appointmentStatus, h.Appointment.SetStatus).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments"+idPath, h.Appointment.DeleteAppointment).Methods(http.MethodDelete)

	// /queue/today must be registered before /queue/{id}
	protected.HandleFunc("/queue/today", h.Queue.GetTodayQueue).Methods(http.MethodGet)
	protected.HandleFunc("/queue", h.Queue.CreateQueueEntry).Methods(http.MethodPost)
	protected.HandleFunc("/queue", h.Queue.GetAllQueueEntries).Methods(http.MethodGet)
	protected.HandleFunc("/queue"+idPath, h.Queue.GetQueueEntry).Methods(http.MethodGet)
	protected.HandleFunc("/queue"+idPath, h.Queue.UpdateQueueEntry).Methods(http.MethodPut, http.MethodPatch)
	protected.HandleFunc("/queue"+idPath+queueEntryStatuses, h.Queue.SetStatus).Methods(http.MethodPatch)
	protected.HandleFunc("/queue"+idPath, h.Queue.DeleteQueueEntry).Methods(http.MethodDelete)

	protected.HandleFunc("/dashboard/stats", h.Dashboard.GetStats).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	admin := api.NewRoute().Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/users", h.User.CreateUser).Methods(http.MethodPost)
	admin.HandleFunc("/users", h.User.GetAllUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users"+idPath, h.User.GetUser).Methods(http.MethodGet)
	admin.HandleFunc("/users"+idPath, h.User.UpdateUser).Methods(http.MethodPut, http.MethodPatch)
	admin.HandleFunc("/users"+idPath, h.User.DeleteUser).Methods(http.MethodDelete)

	admin.HandleFunc("/audit-logs", h.AuditLog.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id:[0-9]+}", h.AuditLog.GetAuditLog).Methods(http.MethodGet)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
