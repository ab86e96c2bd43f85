package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/upskillai/roadmap-api/internal/core/domain"
	"github.com/upskillai/roadmap-api/internal/core/ports"
)

// RoadmapHandler handles generation streaming and the saved-roadmap CRUD.
type RoadmapHandler struct {
	generation ports.GenerationService
	roadmaps   ports.RoadmapService
	log        zerolog.Logger
}

func NewRoadmapHandler(generation ports.GenerationService, roadmaps ports.RoadmapService, log zerolog.Logger) *RoadmapHandler {
	return &RoadmapHandler{generation: generation, roadmaps: roadmaps, log: log}
}

type generateRequest struct {
	// Prompt is what the streaming client sends; UserGoal overrides it when
	// present (legacy clients).
	Prompt     string `json:"prompt" validate:"required"`
	SkillLevel string `json:"skill_level"`
	UserGoal   string `json:"user_goal"`
}

type saveRoadmapRequest struct {
	Title       string          `json:"title" validate:"required"`
	UserGoal    string          `json:"user_goal" validate:"required"`
	SkillLevel  string          `json:"skill_level" validate:"required"`
	RoadmapData json.RawMessage `json:"roadmap_data" validate:"required"`
}

type roadmapResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	UserGoal    string          `json:"user_goal"`
	SkillLevel  string          `json:"skill_level"`
	RoadmapData json.RawMessage `json:"roadmap_data"`
	CreatedAt   string          `json:"created_at"`
}

func toRoadmapResponse(r *domain.Roadmap) roadmapResponse {
	return roadmapResponse{
		ID:          r.ID,
		Title:       r.Title,
		UserGoal:    r.UserGoal,
		SkillLevel:  r.SkillLevel,
		RoadmapData: r.RoadmapData,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
}

// Generate handles POST /api/roadmap/generate. Eligibility failures are
// ordinary request failures; once the event stream opens the response is
// always a complete 200 stream, with provider failures expressed in-band
// as the fallback payload.
//
// @Summary      Generate a learning roadmap (chunked event stream)
// @Tags         roadmap
// @Accept       json
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        body  body      generateRequest  true  "Generation request"
// @Success      200   {string}  string  "lines of 0:<JSON string>"
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/roadmap/generate [post]
func (h *RoadmapHandler) Generate(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	account, err := h.generation.Authorize(c.Request().Context(), claims.UserID)
	if err != nil {
		return err
	}

	goal := req.UserGoal
	if goal == "" {
		goal = req.Prompt
	}
	skillLevel := req.SkillLevel
	if skillLevel == "" {
		skillLevel = "beginner"
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.WriteHeader(http.StatusOK)

	sw := newStreamWriter(c.Request().Context(), resp)
	input := ports.GenerateInput{UserGoal: goal, SkillLevel: skillLevel}
	if err := h.generation.Stream(c.Request().Context(), account, input, sw.Emit); err != nil {
		// The response is committed; all that is left is to note the abort.
		h.log.Debug().Err(err).Str("user_id", account.ID).Msg("stream aborted")
	}
	return nil
}

// Save handles POST /api/roadmap/save.
//
// @Summary      Save a generated roadmap
// @Tags         roadmap
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      saveRoadmapRequest  true  "Roadmap to save"
// @Success      200   {object}  roadmapResponse
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/roadmap/save [post]
func (h *RoadmapHandler) Save(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req saveRoadmapRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	roadmap, err := h.roadmaps.Save(c.Request().Context(), ports.SaveRoadmapInput{
		UserID:      claims.UserID,
		Title:       req.Title,
		UserGoal:    req.UserGoal,
		SkillLevel:  req.SkillLevel,
		RoadmapData: req.RoadmapData,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toRoadmapResponse(roadmap))
}

// List handles GET /api/roadmap/list.
//
// @Summary      List the caller's saved roadmaps
// @Tags         roadmap
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   roadmapResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/roadmap/list [get]
func (h *RoadmapHandler) List(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	roadmaps, err := h.roadmaps.ListByUser(c.Request().Context(), claims.UserID)
	if err != nil {
		return err
	}

	out := make([]roadmapResponse, 0, len(roadmaps))
	for _, r := range roadmaps {
		out = append(out, toRoadmapResponse(r))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /api/roadmap/:id.
//
// @Summary      Get one saved roadmap
// @Tags         roadmap
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Roadmap id"
// @Success      200  {object}  roadmapResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/roadmap/{id} [get]
func (h *RoadmapHandler) Get(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	roadmap, err := h.roadmaps.Get(c.Request().Context(), c.Param("id"), claims.UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toRoadmapResponse(roadmap))
}

// Delete handles DELETE /api/roadmap/:id.
//
// @Summary      Delete one saved roadmap
// @Tags         roadmap
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Roadmap id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/roadmap/{id} [delete]
func (h *RoadmapHandler) Delete(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	if err := h.roadmaps.Delete(c.Request().Context(), c.Param("id"), claims.UserID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Roadmap deleted successfully"})
}
