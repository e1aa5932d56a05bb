package routes

import (
	"net/http"

	"github.com/zatekoja/phr/backend/internal/api/handlers"
	"github.com/zatekoja/phr/backend/internal/api/middleware"
	"github.com/zatekoja/phr/backend/internal/infrastructure/observability"
)

// Handlers groups the HTTP handlers mounted by the router
type Handlers struct {
	Auth         *handlers.AuthHandler
	Profile      *handlers.ProfileHandler
	Doctor       *handlers.DoctorHandler
	Appointment  *handlers.AppointmentHandler
	Assessment   *handlers.AssessmentHandler
	Record       *handlers.RecordHandler
	Medicine     *handlers.MedicineHandler
	Care         *handlers.CareHandler
	Notification *handlers.NotificationHandler
	Support      *handlers.SupportHandler
	SSE          *handlers.SSEHandler
}

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	handlers Handlers

	authenticator   middleware.TokenAuthenticator
	hmisAPIKey      string
	cacheMiddleware *middleware.CacheMiddleware
	allowedOrigins  []string
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	h Handlers,
	authenticator middleware.TokenAuthenticator,
	hmisAPIKey string,
	cacheMiddleware *middleware.CacheMiddleware,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		handlers:        h,
		authenticator:   authenticator,
		hmisAPIKey:      hmisAPIKey,
		cacheMiddleware: cacheMiddleware,
		allowedOrigins:  allowedOrigins,
		metrics:         metrics,
	}
}

// private wraps a handler with bearer-token authentication
func (r *Router) private(h http.HandlerFunc) http.Handler {
	return middleware.RequireAuth(r.authenticator)(h)
}

// catalogue is an authenticated, response-cached route
func (r *Router) catalogue(h http.HandlerFunc) http.Handler {
	var handler http.Handler = h
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}
	return middleware.RequireAuth(r.authenticator)(handler)
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	h := r.handlers

	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Authentication
	r.mux.HandleFunc("POST /api/auth/request-otp", h.Auth.RequestOTP)
	r.mux.HandleFunc("POST /api/auth/verify-otp", h.Auth.VerifyOTP)
	r.mux.HandleFunc("POST /api/auth/login-email", h.Auth.LoginWithEmail)
	r.mux.HandleFunc("POST /api/auth/login-abha", h.Auth.LoginWithABHA)

	// Profile and hospitals
	r.mux.Handle("GET /api/profile", r.private(h.Profile.GetProfile))
	r.mux.Handle("PUT /api/profile", r.private(h.Profile.UpdateProfile))
	r.mux.Handle("GET /api/profile/qr-code", r.private(h.Profile.GetQRCode))
	r.mux.Handle("POST /api/profile/share", r.private(h.Profile.ShareProfile))
	r.mux.Handle("GET /api/hospitals", r.catalogue(h.Profile.ListHospitals))

	// Doctors and appointments
	r.mux.Handle("GET /api/doctors", r.private(h.Doctor.SearchDoctors))
	r.mux.Handle("GET /api/doctors/{id}/availability", r.private(h.Doctor.GetAvailability))
	r.mux.Handle("POST /api/appointments", r.private(h.Appointment.BookAppointment))
	r.mux.Handle("GET /api/appointments", r.private(h.Appointment.ListAppointments))

	// Symptom assessment
	r.mux.Handle("GET /api/symptoms", r.catalogue(h.Assessment.ListSymptoms))
	r.mux.Handle("POST /api/symptom-assessment", r.private(h.Assessment.CreateAssessment))
	r.mux.Handle("GET /api/symptom-assessment", r.private(h.Assessment.ListAssessments))
	r.mux.Handle("POST /api/symptom-assessment/audio", r.private(h.Assessment.CreateAudioAssessment))

	// Documents and summaries
	r.mux.Handle("POST /api/documents", r.private(h.Record.UploadDocument))
	r.mux.Handle("GET /api/documents", r.private(h.Record.ListDocuments))
	r.mux.Handle("GET /api/documents/{id}/download", r.private(h.Record.DownloadDocument))
	r.mux.Handle("POST /api/records/summarize", r.private(h.Record.SummarizeRecords))

	// Prescriptions and medicine tracking
	r.mux.Handle("POST /api/prescriptions", r.private(h.Medicine.UploadPrescription))
	r.mux.Handle("GET /api/prescriptions", r.private(h.Medicine.ListPrescriptions))
	r.mux.Handle("POST /api/medicine-tracker", r.private(h.Medicine.CreateTracker))
	r.mux.Handle("GET /api/medicine-tracker", r.private(h.Medicine.ListTrackers))

	// Labs, care packages and insights
	r.mux.Handle("GET /api/lab-tests", r.catalogue(h.Care.ListLabTests))
	r.mux.Handle("POST /api/lab-bookings", r.private(h.Care.BookLabTests))
	r.mux.Handle("GET /api/care-packages", r.catalogue(h.Care.ListCarePackages))
	r.mux.Handle("POST /api/care-packages/{id}/apply", r.private(h.Care.ApplyCarePackage))
	r.mux.Handle("GET /api/health-insights", r.private(h.Care.GetHealthInsights))

	// Ambulances and peer support
	r.mux.Handle("GET /api/ambulance-services", r.catalogue(h.Support.ListAmbulanceServices))
	r.mux.Handle("POST /api/ambulance-bookings", r.private(h.Support.BookAmbulance))
	r.mux.Handle("GET /api/chat/peer-support", r.private(h.Support.ListPeerMessages))
	r.mux.Handle("POST /api/chat/peer-support", r.private(h.Support.PostPeerMessage))

	// Notifications
	r.mux.Handle("GET /api/notifications", r.private(h.Notification.ListNotifications))
	r.mux.Handle("POST /api/notifications/{id}/read", r.private(h.Notification.MarkRead))
	if h.SSE != nil {
		r.mux.Handle("GET /api/notifications/stream", r.private(h.SSE.StreamNotifications))
	}

	// Hospital systems push documents with a shared API key
	r.mux.Handle("POST /api/hmis/documents",
		middleware.RequireAPIKey(r.hmisAPIKey)(http.HandlerFunc(h.Record.ReceiveHospitalDocument)))

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so preflights never reach auth
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
