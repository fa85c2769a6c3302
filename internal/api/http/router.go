package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/civicbridge/complaint-service/internal/api/http/handlers"
	"github.com/civicbridge/complaint-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Complaints  *handlers.ComplaintsHandler
	Assignments *handlers.AssignmentsHandler
	Messages    *handlers.MessagesHandler
	Users       *handlers.UsersHandler
	Metrics     *observability.Metrics
	RateLimiter *IPRateLimiter
	// UploadPrefix and UploadDir expose stored complaint images. Both empty disables static serving.
	UploadPrefix string
	UploadDir    string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Root)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}
	if cfg.UploadPrefix != "" && cfg.UploadDir != "" {
		app.Static(cfg.UploadPrefix, cfg.UploadDir)
	}

	app.Post("/Complaint/:userId", cfg.Complaints.Submit)
	app.Get("/status/:id", cfg.Complaints.ListForUser)
	app.Get("/status", cfg.Complaints.ListAllUnsorted)
	app.Get("/allcomplaints", cfg.Complaints.ListAll)
	app.Get("/complaint/:complaintId", cfg.Complaints.Get)
	app.Put("/complaint/:complaintId", cfg.Complaints.SetStatus)
	app.Post("/complaint/:complaintId/escalate", cfg.Complaints.Escalate)
	app.Put("/complaint/:complaintId/update-escalation-status", cfg.Complaints.UpdateEscalationStatus)

	app.Post("/assignedComplaints", cfg.Assignments.Assign)
	app.Get("/assignedComplaints", cfg.Assignments.ListAll)
	app.Get("/allcomplaints/:agentId", cfg.Assignments.ListForAgent)

	app.Post("/messages", cfg.Messages.Post)
	app.Get("/messages/:complaintId", cfg.Messages.List)

	app.Post("/SignUp", throttled(cfg.RateLimiter, cfg.Users.SignUp)...)
	app.Post("/Login", throttled(cfg.RateLimiter, cfg.Users.Login)...)
	app.Post("/checkEmail", cfg.Users.CheckEmail)

	app.Get("/AgentUsers", cfg.Users.ListAgents)
	app.Get("/AgentUsers/:agentId", cfg.Users.GetAgent)
	app.Get("/OrdinaryUsers", cfg.Users.ListOrdinary)
	app.Put("/user/:_id", cfg.Users.UpdateProfile)
	app.Delete("/user/:_id", cfg.Users.DeleteUser)
	app.Delete("/OrdinaryUsers/:id", cfg.Users.DeleteUser)
	app.Delete("/agentUsers/:id", cfg.Users.DeleteAgent)
	app.Get("/users/district/:district", cfg.Users.ListByDistrict)
	app.Get("/districts", cfg.Users.Districts)
}

func throttled(limiter *IPRateLimiter, handler fiber.Handler) []fiber.Handler {
	if limiter == nil {
		return []fiber.Handler{handler}
	}
	return []fiber.Handler{limiter.Handle, handler}
}
