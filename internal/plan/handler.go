package plan

import (
	"errors"
	"net/http"
	"strconv"

	"gymdesk/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// List godoc
// @Summary      List plans
// @Description  Returns the plan catalog. Pass active=true to hide retired plans.
// @Tags         plans
// @Security     BearerAuth
// @Produce      json
// @Param        active  query     bool  false  "Only active plans"
// @Success      200     {array}   Plan
// @Failure      500     {object}  api.ErrorResponse
// @Router       /plans [get]
func (h *Handler) List(c *gin.Context) {
	onlyActive := c.Query("active") == "true"

	plans, err := h.repo.List(c.Request.Context(), onlyActive)
	if err != nil {
		api.Respond(c, api.Storage("list plans", err))
		return
	}

	c.JSON(http.StatusOK, plans)
}

// Create godoc
// @Summary      Create plan
// @Tags         plans
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      SavePlanRequest  true  "Plan"
// @Success      201      {object}  Plan
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /plans [post]
func (h *Handler) Create(c *gin.Context) {
	var req SavePlanRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p := req.ToPlan()
	if !p.ValidShares() {
		api.Respond(c, api.InvalidRequest("share percentages must be between 0 and 100"))
		return
	}

	created, err := h.repo.Create(c.Request.Context(), p)
	if err != nil {
		respondRepoError(c, "create plan", err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Update godoc
// @Summary      Update plan
// @Description  Updates a catalog entry. Payments already recorded keep their share amounts.
// @Tags         plans
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        planID   path      int              true  "Plan ID"
// @Param        request  body      SavePlanRequest  true  "Plan"
// @Success      200      {object}  Plan
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /plans/{planID} [put]
func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("planID"))
	if err != nil {
		api.Respond(c, api.InvalidRequest("invalid plan ID"))
		return
	}

	var req SavePlanRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p := req.ToPlan()
	if !p.ValidShares() {
		api.Respond(c, api.InvalidRequest("share percentages must be between 0 and 100"))
		return
	}

	updated, err := h.repo.Update(c.Request.Context(), id, p)
	if err != nil {
		respondRepoError(c, "update plan", err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func respondRepoError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		api.Respond(c, api.NotFound("plan not found"))
	case errors.Is(err, ErrDuplicateType):
		api.Respond(c, api.Conflict("plan type already exists", err))
	default:
		api.Respond(c, api.Storage(op, err))
	}
}
