package handlers

import (
	"net/http"

	"kaavalcircle/internal/middleware"
	"kaavalcircle/internal/services"
	"kaavalcircle/internal/utils"
	"kaavalcircle/internal/validators"
	"kaavalcircle/pkg/logger"

	"github.com/gin-gonic/gin"
)

type ComplaintHandler struct {
	complaintService services.ComplaintService
	logger           *logger.Logger
}

func NewComplaintHandler(complaintService services.ComplaintService, logger *logger.Logger) *ComplaintHandler {
	return &ComplaintHandler{
		complaintService: complaintService,
		logger:           logger,
	}
}

// CreateComplaint files a complaint for the calling citizen. It accepts a
// JSON body with inline evidence, or multipart/form-data with evidence
// files under "evidence".
func (h *ComplaintHandler) CreateComplaint(c *gin.Context) {
	citizenID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var request validators.CreateComplaintRequest
	var files []*services.UploadedFile

	if isMultipart(c) {
		if !parseMultipart(c) {
			return
		}
		location, err := formLocation(c)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		request = validators.CreateComplaintRequest{
			Description: c.PostForm("description"),
			Category:    c.PostForm("category"),
			Location:    location,
			Evidence:    c.PostFormArray("evidence"),
		}

		opened, err := openFormFiles(c, "evidence")
		if err != nil {
			utils.BadRequestResponse(c, "Invalid evidence upload")
			return
		}
		defer opened.Close()
		files = opened.files
	} else if !bindJSON(c, &request) {
		return
	}

	result, err := h.complaintService.Create(c.Request.Context(), citizenID, &request, files)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.ReportResponse(c, http.StatusCreated, result.Complaint, result.PDF, result.Warning)
}

// GetComplaints lists every complaint for police and the caller's own
// complaints for citizens, newest first.
func (h *ComplaintHandler) GetComplaints(c *gin.Context) {
	viewer, ok := currentViewer(c)
	if !ok {
		return
	}

	complaints, err := h.complaintService.List(c.Request.Context(), viewer)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.ListResponse(c, complaints, len(complaints))
}

func (h *ComplaintHandler) GetComplaint(c *gin.Context) {
	viewer, ok := currentViewer(c)
	if !ok {
		return
	}

	complaint, err := h.complaintService.Get(c.Request.Context(), viewer, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "", complaint)
}

// GetComplaintReport renders the PDF report of an existing complaint again.
func (h *ComplaintHandler) GetComplaintReport(c *gin.Context) {
	viewer, ok := currentViewer(c)
	if !ok {
		return
	}

	result, err := h.complaintService.Report(c.Request.Context(), viewer, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.ReportResponse(c, http.StatusOK, result.Complaint, result.PDF, result.Warning)
}

// UpdateComplaintStatus is served on both PUT /:id and PATCH /:id/status.
func (h *ComplaintHandler) UpdateComplaintStatus(c *gin.Context) {
	officerID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var request validators.ComplaintStatusRequest
	if !bindJSON(c, &request) {
		return
	}

	complaint, err := h.complaintService.UpdateStatus(c.Request.Context(), officerID, c.Param("id"), &request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Complaint status updated", complaint)
}
