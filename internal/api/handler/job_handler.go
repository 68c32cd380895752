package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dailyskills/marketplace/internal/api/metrics"
	"github.com/dailyskills/marketplace/internal/core/domain"
	"github.com/dailyskills/marketplace/internal/core/ports"
)

// JobHandler handles HTTP requests for job postings.
type JobHandler struct {
	service ports.JobService
}

func NewJobHandler(service ports.JobService) *JobHandler {
	return &JobHandler{service: service}
}

// List handles GET /v1/jobs.
//
// @Summary      List jobs
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        status       query     string  false  "open, in-progress, completed or cancelled"
// @Param        employer_id  query     string  false  "Only jobs posted by this employer"
// @Param        limit        query     int     false  "Maximum number of jobs (default 50, max 100)"
// @Success      200          {object}  jobsResponse
// @Failure      400          {object}  errorResponse
// @Router       /v1/jobs [get]
func (h *JobHandler) List(c echo.Context) error {
	filter := ports.JobFilter{
		Status:     domain.JobStatus(c.QueryParam("status")),
		EmployerID: c.QueryParam("employer_id"),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a number")
		}
		filter.Limit = limit
	}

	jobs, err := h.service.ListJobs(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, jobsResponse{Jobs: jobs})
}

// Create handles POST /v1/jobs.
//
// @Summary      Post a job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createJobRequest  true  "Job details"
// @Success      201   {object}  domain.Job
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/jobs [post]
func (h *JobHandler) Create(c echo.Context) error {
	userID, role, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req createJobRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	job, err := h.service.CreateJob(c.Request().Context(), ports.CreateJobInput{
		EmployerID:  userID,
		Role:        role,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Skills:      req.Skills,
		Location:    req.Location,
		Budget: domain.Budget{
			MinRate:  req.Budget.MinRate,
			MaxRate:  req.Budget.MaxRate,
			IsHourly: req.Budget.IsHourly,
		},
		IsUrgent: req.IsUrgent,
	})
	if err != nil {
		return err
	}

	metrics.JobsCreatedTotal.WithLabelValues(job.Category).Inc()
	return c.JSON(http.StatusCreated, job)
}
