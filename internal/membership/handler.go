package membership

import (
	"net/http"
	"strconv"
	"time"

	"gymdesk/internal/api"
	"gymdesk/internal/checkin"

	"github.com/gin-gonic/gin"
)

const statsDateLayout = "2006-01-02"

type Handler struct {
	svc *Service
	now func() time.Time
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

type KioskRequest struct {
	Identifier   string               `json:"identifier" binding:"required"`
	FacilityType checkin.FacilityType `json:"facility_type" binding:"required"`
}

// CheckIn godoc
// @Summary      Check a member in
// @Description  Evaluates access and records the visit. Denials come back with success=false.
// @Tags         checkins
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CheckInRequest  true  "Member and facility"
// @Success      200      {object}  CheckInResult
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /checkins [post]
func (h *Handler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if !api.BindJSON(c, &req) {
		return
	}

	res, err := h.svc.CheckIn(c.Request.Context(), req, h.now())
	if err != nil {
		api.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Kiosk godoc
// @Summary      Self-service check-in
// @Description  Looks the member up by id, email, passport, nationality id or phone.
// @Tags         kiosk
// @Accept       json
// @Produce      json
// @Param        request  body      KioskRequest  true  "Identifier and facility"
// @Success      200      {object}  CheckInResult
// @Failure      404      {object}  api.ErrorResponse
// @Failure      429      {object}  api.ErrorResponse
// @Router       /kiosk/validate [post]
func (h *Handler) Kiosk(c *gin.Context) {
	var req KioskRequest
	if !api.BindJSON(c, &req) {
		return
	}

	res, err := h.svc.CheckIn(c.Request.Context(), CheckInRequest{
		Identifier:   req.Identifier,
		FacilityType: req.FacilityType,
	}, h.now())
	if err != nil {
		api.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Access godoc
// @Summary      Preview access
// @Description  Evaluates a check-in without recording it.
// @Tags         members
// @Security     BearerAuth
// @Produce      json
// @Param        id        path   int     true  "Member ID"
// @Param        facility  query  string  true  "gym, crossfit or fitness_class"
// @Success      200       {object}  CheckInResult
// @Router       /members/{id}/access [get]
func (h *Handler) Access(c *gin.Context) {
	id, ok := memberID(c)
	if !ok {
		return
	}

	res, err := h.svc.Preview(c.Request.Context(), CheckInRequest{
		MemberID:     id,
		FacilityType: checkin.FacilityType(c.Query("facility")),
	}, h.now())
	if err != nil {
		api.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// SetPause godoc
// @Summary      Pause or unpause a membership
// @Tags         members
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int           true  "Member ID"
// @Param        request  body      PauseRequest  true  "Action"
// @Success      200      {object}  PauseResult
// @Failure      403      {object}  api.ErrorResponse
// @Router       /members/{id}/pause [post]
func (h *Handler) SetPause(c *gin.Context) {
	id, ok := memberID(c)
	if !ok {
		return
	}

	var req PauseRequest
	if !api.BindJSON(c, &req) {
		return
	}
	req.MemberID = id

	res, err := h.svc.SetPause(c.Request.Context(), req, h.now())
	if err != nil {
		api.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) PauseStatus(c *gin.Context) {
	id, ok := memberID(c)
	if !ok {
		return
	}

	res, err := h.svc.PauseStatus(c.Request.Context(), id)
	if err != nil {
		api.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) CheckIns(c *gin.Context) {
	id, ok := memberID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, err := h.svc.MemberCheckIns(c.Request.Context(), id, limit, offset)
	if err != nil {
		api.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) Payments(c *gin.Context) {
	id, ok := memberID(c)
	if !ok {
		return
	}

	list, err := h.svc.MemberPayments(c.Request.Context(), id)
	if err != nil {
		api.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreatePayment godoc
// @Summary      Record a payment
// @Description  Share amounts are computed from the plan and stored with the payment.
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreatePaymentRequest  true  "Payment"
// @Success      201      {object}  payment.Payment
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /payments [post]
func (h *Handler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p, err := h.svc.CreatePayment(c.Request.Context(), req, h.now())
	if err != nil {
		api.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Register godoc
// @Summary      Register a member
// @Tags         members
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterRequest  true  "Member"
// @Success      201      {object}  RegisterResult
// @Failure      409      {object}  api.ErrorResponse
// @Router       /members [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !api.BindJSON(c, &req) {
		return
	}

	res, err := h.svc.Register(c.Request.Context(), req, h.now())
	if err != nil {
		api.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) CheckInStats(c *gin.Context) {
	from, to, ok := h.statsRange(c)
	if !ok {
		return
	}

	counts, err := h.svc.CheckInStats(c.Request.Context(), from, to)
	if err != nil {
		api.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *Handler) RevenueStats(c *gin.Context) {
	from, to, ok := h.statsRange(c)
	if !ok {
		return
	}

	summary, err := h.svc.RevenueStats(c.Request.Context(), from, to)
	if err != nil {
		api.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// statsRange reads from/to as dates. to is inclusive; the default range is
// the last 30 days.
func (h *Handler) statsRange(c *gin.Context) (time.Time, time.Time, bool) {
	today := h.now().UTC().Truncate(24 * time.Hour)
	from, to := today.AddDate(0, 0, -29), today

	var err error
	if v := c.Query("from"); v != "" {
		if from, err = time.Parse(statsDateLayout, v); err != nil {
			api.Respond(c, api.InvalidRequest("from must be YYYY-MM-DD"))
			return time.Time{}, time.Time{}, false
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = time.Parse(statsDateLayout, v); err != nil {
			api.Respond(c, api.InvalidRequest("to must be YYYY-MM-DD"))
			return time.Time{}, time.Time{}, false
		}
	}
	if to.Before(from) {
		api.Respond(c, api.InvalidRequest("to must not be before from"))
		return time.Time{}, time.Time{}, false
	}
	return from, to.AddDate(0, 0, 1), true
}

func memberID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		api.Respond(c, api.InvalidRequest("invalid member ID"))
		return 0, false
	}
	return id, true
}
