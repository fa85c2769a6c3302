package handlers

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/civicbridge/complaint-service/internal/api/dto"
	"github.com/civicbridge/complaint-service/internal/domain"
	"github.com/civicbridge/complaint-service/internal/service"
	"github.com/civicbridge/complaint-service/internal/storage"
	apperrors "github.com/civicbridge/complaint-service/pkg/util/errorutil"
)

// ImagesField is the multipart field carrying complaint photos.
const ImagesField = "images"

// ComplaintsHandler manages complaint lifecycle endpoints.
type ComplaintsHandler struct {
	complaints *service.ComplaintService
	escalation *service.EscalationService
	blobs      *storage.BlobStore
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaints *service.ComplaintService, escalation *service.EscalationService, blobs *storage.BlobStore) *ComplaintsHandler {
	return &ComplaintsHandler{complaints: complaints, escalation: escalation, blobs: blobs}
}

// Submit POST /Complaint/:userId.
func (h *ComplaintsHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	files, err := uploadedFiles(c)
	if err != nil {
		return err
	}
	refs, err := h.blobs.SaveAll(ImagesField, files)
	if err != nil {
		return err
	}

	complaint, err := h.complaints.Submit(c.UserContext(), c.Params("userId"), service.ComplaintSubmitInput{
		Name:       req.Name,
		Address:    req.Address,
		Pincode:    req.Pincode,
		Taluk:      req.Taluk,
		WardNo:     req.WardNo,
		Department: req.Department,
		District:   req.District,
		Comment:    req.Comment,
		Images:     refs,
	})
	if err != nil {
		h.blobs.Remove(refs)
		return err
	}
	return c.Status(http.StatusCreated).JSON(complaintResponse(complaint))
}

// ListForUser GET /status/:id.
func (h *ComplaintsHandler) ListForUser(c *fiber.Ctx) error {
	complaints, err := h.complaints.ListForUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(complaintList(complaints))
}

// ListAllUnsorted GET /status.
func (h *ComplaintsHandler) ListAllUnsorted(c *fiber.Ctx) error {
	complaints, err := h.complaints.ListAllUnsorted(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(complaintList(complaints))
}

// ListAll GET /allcomplaints, escalated complaints first.
func (h *ComplaintsHandler) ListAll(c *fiber.Ctx) error {
	complaints, err := h.complaints.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(complaintList(complaints))
}

// Get GET /complaint/:complaintId.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	complaint, err := h.complaints.Get(c.UserContext(), c.Params("complaintId"))
	if err != nil {
		return err
	}
	return c.JSON(complaintResponse(complaint))
}

// SetStatus PUT /complaint/:complaintId.
func (h *ComplaintsHandler) SetStatus(c *fiber.Ctx) error {
	var req dto.SetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.complaints.SetStatus(c.UserContext(), c.Params("complaintId"), req.Status, req.UpdateTime)
	if err != nil {
		return err
	}

	resp := dto.StatusUpdatedResponse{Message: "Complaint status updated successfully"}
	if result.Complaint != nil {
		mapped := complaintResponse(result.Complaint)
		resp.Complaint = &mapped
	}
	return c.JSON(resp)
}

// Escalate POST /complaint/:complaintId/escalate.
func (h *ComplaintsHandler) Escalate(c *fiber.Ctx) error {
	var req dto.EscalateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	complaint, err := h.escalation.Escalate(c.UserContext(), c.Params("complaintId"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(dto.EscalatedResponse{
		Message:   "Complaint escalated successfully",
		Complaint: complaintResponse(complaint),
	})
}

// UpdateEscalationStatus PUT /complaint/:complaintId/update-escalation-status.
func (h *ComplaintsHandler) UpdateEscalationStatus(c *fiber.Ctx) error {
	eligibility, err := h.escalation.CheckEligibility(c.UserContext(), c.Params("complaintId"))
	if err != nil {
		return err
	}
	if !eligibility.Eligible {
		hours := eligibility.HoursRemaining
		return c.JSON(dto.EligibilityResponse{Message: "Escalation not yet available", HoursRemaining: &hours})
	}
	mapped := complaintResponse(eligibility.Complaint)
	return c.JSON(dto.EligibilityResponse{Message: "Escalation enabled", Complaint: &mapped})
}

// uploadedFiles returns the images parts of a multipart request; other
// content types carry no files.
func uploadedFiles(c *fiber.Ctx) ([]*multipart.FileHeader, error) {
	if !strings.HasPrefix(strings.ToLower(string(c.Request().Header.ContentType())), fiber.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperrors.NewValidationError("invalid multipart payload", nil)
	}
	return form.File[ImagesField], nil
}

func complaintResponse(c *domain.Complaint) dto.ComplaintResponse {
	images := c.Images
	if images == nil {
		images = []string{}
	}
	return dto.ComplaintResponse{
		ID:               c.ID,
		UserID:           c.UserID,
		Name:             c.Name,
		Address:          c.Address,
		Pincode:          c.Pincode,
		Taluk:            c.Taluk,
		WardNo:           c.WardNo,
		Department:       c.Department,
		District:         c.District,
		Comment:          c.Comment,
		Images:           images,
		Status:           c.Status,
		Assigned:         c.Assigned,
		AgentName:        c.AgentName,
		CanEscalate:      c.CanEscalate,
		Escalated:        c.Escalated,
		EscalationReason: c.EscalationReason,
		EscalationDate:   c.EscalationDate,
		CompletionTime:   c.CompletionTime,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func complaintList(complaints []domain.Complaint) []dto.ComplaintResponse {
	items := make([]dto.ComplaintResponse, 0, len(complaints))
	for i := range complaints {
		items = append(items, complaintResponse(&complaints[i]))
	}
	return items
}
