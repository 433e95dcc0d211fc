package schedule

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"webanalytics/dto"
	"webanalytics/middleware"
	"webanalytics/model"
	"webanalytics/services"
)

// Provider is what the handlers need from the schedule service.
type Provider interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	GetProject(ctx context.Context, projectID string) (*model.Project, error)
	History(ctx context.Context, projectID string, limit int) ([]model.ScheduleEvent, error)
	SetPhase(ctx context.Context, projectID string, phase model.Phase, status string, actor services.Actor) (*model.Schedule, error)
	SetDeadline(ctx context.Context, projectID string, deadline string, actor services.Actor) error
}

func ScheduleController(router *gin.Engine, provider Provider, accessSecret string) {
	routes := router.Group("/schedule", middleware.AccessTokenMiddleware(accessSecret))
	{
		routes.GET("/phases", func(c *gin.Context) {
			ListPhases(c)
		})
		routes.GET("/projects", func(c *gin.Context) {
			ListProjects(c, provider)
		})
		routes.GET("/projects/:projectId", func(c *gin.Context) {
			GetProject(c, provider)
		})
		routes.GET("/projects/:projectId/history", func(c *gin.Context) {
			GetHistory(c, provider)
		})

		admin := routes.Group("", middleware.AdminMiddleware())
		{
			admin.PUT("/projects/:projectId/phase", func(c *gin.Context) {
				UpdatePhase(c, provider)
			})
			admin.PUT("/projects/:projectId/deadline", func(c *gin.Context) {
				UpdateDeadline(c, provider)
			})
		}
	}
}

// ListPhases returns the pipeline in delivery order with each phase's derived
// progress and status vocabulary, for building phase and status pickers.
func ListPhases(c *gin.Context) {
	phases := make([]gin.H, 0, len(model.Phases))
	for _, p := range model.Phases {
		phases = append(phases, gin.H{
			"phase":    p,
			"progress": model.ProgressForPhase(p),
			"statuses": model.PhaseStatuses[p],
		})
	}
	c.JSON(http.StatusOK, gin.H{"phases": phases})
}

func ListProjects(c *gin.Context, provider Provider) {
	projects, err := provider.ListProjects(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	summaries := make([]dto.ProjectSummary, 0, len(projects))
	for _, p := range projects {
		summaries = append(summaries, dto.ProjectSummary{
			ProjectID:   p.ProjectID,
			Name:        p.Name,
			Client:      p.Client,
			Description: p.Description,
			Schedule:    p.Schedule,
		})
	}
	c.JSON(http.StatusOK, summaries)
}

func GetProject(c *gin.Context, provider Provider) {
	project, err := provider.GetProject(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func GetHistory(c *gin.Context, provider Provider) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	events, err := provider.History(c.Request.Context(), c.Param("projectId"), limit)
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": events})
}

func UpdatePhase(c *gin.Context, provider Provider) {
	var request dto.UpdatePhaseRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	schedule, err := provider.SetPhase(
		c.Request.Context(),
		c.Param("projectId"),
		model.Phase(request.Phase),
		request.Status,
		actorFromContext(c),
	)
	if err != nil {
		respondScheduleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Phase updated successfully",
		"schedule": schedule,
	})
}

func UpdateDeadline(c *gin.Context, provider Provider) {
	var request dto.UpdateDeadlineRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	err := provider.SetDeadline(c.Request.Context(), c.Param("projectId"), request.Deadline, actorFromContext(c))
	if err != nil {
		respondScheduleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deadline updated successfully"})
}

// actorFromContext rebuilds the acting operator from the verified token
// claims. The service re-checks the role, so a missing claim fails closed
// there as well.
func actorFromContext(c *gin.Context) services.Actor {
	actor := services.Actor{}
	if email, ok := c.Get("email"); ok {
		actor.Email, _ = email.(string)
	}
	if role, ok := c.Get("role"); ok {
		actor.Role, _ = role.(string)
	}
	return actor
}

func respondScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, services.ErrInvalidPhase), errors.Is(err, services.ErrInvalidDeadline):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
