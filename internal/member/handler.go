package member

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"gymdesk/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo Repository
	now  func() time.Time
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo, now: time.Now}
}

// List godoc
// @Summary      List members
// @Description  Search matches name or email (substring) or phone (exact).
// @Tags         members
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Search text"
// @Param        limit   query     int     false  "Page size"
// @Param        offset  query     int     false  "Offset"
// @Success      200     {array}   Member
// @Router       /members [get]
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	members, err := h.repo.List(c.Request.Context(), ListFilter{
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		api.Respond(c, api.Storage("list members", err))
		return
	}

	c.JSON(http.StatusOK, members)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	m, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		respondRepoError(c, "get member", err)
		return
	}

	c.JSON(http.StatusOK, m)
}

// Update godoc
// @Summary      Update member profile
// @Description  Plan, dates and counters are not editable here.
// @Tags         members
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int            true  "Member ID"
// @Param        request  body      ProfileUpdate  true  "Fields to change"
// @Success      200      {object}  Member
// @Failure      409      {object}  api.ErrorResponse
// @Router       /members/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req ProfileUpdate
	if !api.BindJSON(c, &req) {
		return
	}

	m, err := h.repo.UpdateProfile(c.Request.Context(), id, req)
	if err != nil {
		respondRepoError(c, "update member", err)
		return
	}

	c.JSON(http.StatusOK, m)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.repo.SoftDelete(c.Request.Context(), id, h.now()); err != nil {
		respondRepoError(c, "delete member", err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Member deleted"})
}

func (h *Handler) Restore(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.repo.Restore(c.Request.Context(), id); err != nil {
		respondRepoError(c, "restore member", err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Member restored"})
}

func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		api.Respond(c, api.InvalidRequest("invalid member ID"))
		return 0, false
	}
	return id, true
}

func respondRepoError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		api.Respond(c, api.NotFound("Member not found"))
	case errors.Is(err, ErrDuplicateIdentity):
		api.Respond(c, api.Conflict(ErrDuplicateIdentity.Error(), err))
	default:
		api.Respond(c, api.Storage(op, err))
	}
}
