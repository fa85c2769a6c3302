package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/civicbridge/complaint-service/internal/api/dto"
	"github.com/civicbridge/complaint-service/internal/domain"
	"github.com/civicbridge/complaint-service/internal/service"
	apperrors "github.com/civicbridge/complaint-service/pkg/util/errorutil"
)

// AssignmentsHandler exposes agent assignment endpoints.
type AssignmentsHandler struct {
	service *service.AssignmentService
}

// NewAssignmentsHandler constructs handler.
func NewAssignmentsHandler(assignmentService *service.AssignmentService) *AssignmentsHandler {
	return &AssignmentsHandler{service: assignmentService}
}

// Assign POST /assignedComplaints.
func (h *AssignmentsHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	assignment, err := h.service.Assign(c.UserContext(), service.AssignInput{
		ComplaintID: req.ComplaintID,
		AgentID:     req.AgentID,
		AgentName:   req.AgentName,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.AssignedResponse{
		Message:           "Complaint assigned successfully",
		AssignedComplaint: assignmentResponse(assignment),
	})
}

// ListAll GET /assignedComplaints.
func (h *AssignmentsHandler) ListAll(c *fiber.Ctx) error {
	details, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.AssignmentDetailResponse, 0, len(details))
	for _, d := range details {
		item := dto.AssignmentDetailResponse{
			ID:          d.Assignment.ID,
			AgentID:     d.Assignment.AgentID,
			ComplaintID: d.Assignment.ComplaintID,
			Status:      d.Assignment.Status,
			AgentName:   d.Assignment.AgentName,
		}
		if d.Complaint != nil {
			mapped := complaintResponse(d.Complaint)
			item.ComplaintDetails = &mapped
		}
		items = append(items, item)
	}
	return c.JSON(items)
}

// ListForAgent GET /allcomplaints/:agentId.
func (h *AssignmentsHandler) ListForAgent(c *fiber.Ctx) error {
	details, err := h.service.ListForAgent(c.UserContext(), c.Params("agentId"))
	if err != nil {
		return err
	}
	items := make([]dto.AgentComplaintResponse, 0, len(details))
	for _, d := range details {
		items = append(items, agentComplaint(d))
	}
	return c.JSON(items)
}

func assignmentResponse(a *domain.AssignedComplaint) dto.AssignmentResponse {
	return dto.AssignmentResponse{
		ID:             a.ID,
		ComplaintID:    a.ComplaintID,
		AgentID:        a.AgentID,
		AgentName:      a.AgentName,
		Status:         a.Status,
		CompletionTime: a.CompletionTime,
		CreatedAt:      a.CreatedAt,
	}
}

func agentComplaint(d domain.AssignmentDetail) dto.AgentComplaintResponse {
	item := dto.AgentComplaintResponse{
		ID:             d.Assignment.ID,
		ComplaintID:    d.Assignment.ComplaintID,
		AgentID:        d.Assignment.AgentID,
		AgentName:      d.Assignment.AgentName,
		Status:         d.Assignment.Status,
		CreatedAt:      d.Assignment.CreatedAt,
		CompletionTime: d.CompletionTime,
		Images:         []string{},
	}
	if c := d.Complaint; c != nil {
		item.Name = c.Name
		item.Address = c.Address
		item.Pincode = c.Pincode
		item.Comment = c.Comment
		item.Department = c.Department
		item.District = c.District
		item.Taluk = c.Taluk
		item.WardNo = c.WardNo
		item.Escalated = c.Escalated
		if c.Images != nil {
			item.Images = c.Images
		}
	}
	return item
}
