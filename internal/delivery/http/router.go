package http

import (
	"net/http"

	"marketplace-booking/internal/delivery/http/handler"
	"marketplace-booking/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Router struct {
	router                   *mux.Router
	log                      *logrus.Logger
	healthHandler            *handler.HealthHandler
	availabilityHandler      *handler.AvailabilityHandler
	blockedSlotHandler       *handler.BlockedSlotHandler
	bookingHandler           *handler.BookingHandler
	contractorBookingHandler *handler.ContractorBookingHandler
	auditLogHandler          *handler.AuditLogHandler
	authMiddleware           *middleware.AuthMiddleware
	corsMiddleware           *middleware.CORSMiddleware
	rateLimiter              *middleware.RateLimiter
}

func NewRouter(
	log *logrus.Logger,
	healthHandler *handler.HealthHandler,
	availabilityHandler *handler.AvailabilityHandler,
	blockedSlotHandler *handler.BlockedSlotHandler,
	bookingHandler *handler.BookingHandler,
	contractorBookingHandler *handler.ContractorBookingHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	rateLimiter *middleware.RateLimiter,
) *Router {
	return &Router{
		router:                   mux.NewRouter(),
		log:                      log,
		healthHandler:            healthHandler,
		availabilityHandler:      availabilityHandler,
		blockedSlotHandler:       blockedSlotHandler,
		bookingHandler:           bookingHandler,
		contractorBookingHandler: contractorBookingHandler,
		auditLogHandler:          auditLogHandler,
		authMiddleware:           authMiddleware,
		corsMiddleware:           corsMiddleware,
		rateLimiter:              rateLimiter,
	}
}

// Setup registers every route. CORS wraps the whole router because mux only
// runs Use middleware on matched routes, and preflight requests match none.
func (r *Router) Setup() http.Handler {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.AccessLog(r.log))

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthHandler.Health).Methods(http.MethodGet)

	// Public routes
	public := api.PathPrefix("/services").Subrouter()
	if r.rateLimiter != nil {
		public.Use(r.rateLimiter.Limit)
	}
	public.HandleFunc("/{id:[0-9]+}/available-slots", r.availabilityHandler.GetAvailableSlots).Methods(http.MethodGet)

	// Client routes
	client := api.NewRoute().Subrouter()
	client.Use(r.authMiddleware.Authenticate)
	client.Use(middleware.RequireClient)
	client.HandleFunc("/services/{id:[0-9]+}/bookings", r.bookingHandler.CreateBooking).Methods(http.MethodPost)
	client.HandleFunc("/me/bookings", r.bookingHandler.GetMyBookings).Methods(http.MethodGet)
	client.HandleFunc("/me/bookings/{id:[0-9]+}", r.bookingHandler.GetMyBooking).Methods(http.MethodGet)
	client.HandleFunc("/me/bookings/{id:[0-9]+}/cancel", r.bookingHandler.CancelBooking).Methods(http.MethodPatch)

	// Contractor routes
	contractor := api.PathPrefix("/contractor").Subrouter()
	contractor.Use(r.authMiddleware.Authenticate)
	contractor.Use(middleware.RequireContractor)

	// Calendar
	contractor.HandleFunc("/calendar/availability", r.availabilityHandler.GetAvailability).Methods(http.MethodGet)
	contractor.HandleFunc("/calendar/availability", r.availabilityHandler.SetAvailability).Methods(http.MethodPut)
	contractor.HandleFunc("/calendar/blocked-slots", r.blockedSlotHandler.CreateBlockedSlot).Methods(http.MethodPost)
	contractor.HandleFunc("/calendar/blocked-slots", r.blockedSlotHandler.GetBlockedSlots).Methods(http.MethodGet)
	contractor.HandleFunc("/calendar/blocked-slots/{id:[0-9]+}", r.blockedSlotHandler.DeleteBlockedSlot).Methods(http.MethodDelete)

	// Bookings
	contractor.HandleFunc("/bookings", r.contractorBookingHandler.GetBookings).Methods(http.MethodGet)
	contractor.HandleFunc("/bookings/quick-create", r.contractorBookingHandler.QuickCreate).Methods(http.MethodPost)
	contractor.HandleFunc("/bookings/bulk-action", r.contractorBookingHandler.BulkAction).Methods(http.MethodPost)
	contractor.HandleFunc("/bookings/{id:[0-9]+}/reschedule", r.contractorBookingHandler.Reschedule).Methods(http.MethodPatch)
	contractor.HandleFunc("/bookings/{id:[0-9]+}/status", r.contractorBookingHandler.UpdateStatus).Methods(http.MethodPatch)
	contractor.HandleFunc("/bookings/{id:[0-9]+}/history", r.auditLogHandler.GetBookingHistory).Methods(http.MethodGet)

	return r.corsMiddleware.Handle(r.router)
}
