package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/hr-portal/internal/application/workflow"
	"github.com/garyjia/hr-portal/internal/domain/entity"
	domainwf "github.com/garyjia/hr-portal/internal/domain/workflow"
)

// ListRequests handles GET /api/requests?status=&requester=
func (h *Handlers) ListRequests(c *gin.Context) {
	var (
		requests []*entity.WorkflowRequest
		err      error
	)
	if requester := c.Query("requester"); requester != "" {
		requests, err = h.deps.Queries.ByRequester(c.Request.Context(), requester, c.Query("status"))
	} else {
		requests, err = h.deps.Queries.ByStatus(c.Request.Context(), c.Query("status"))
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, requests)
}

// CreateRequest handles POST /api/requests
func (h *Handlers) CreateRequest(c *gin.Context) {
	userID, found := h.actingUser(c)
	if !found {
		return
	}

	var payload RequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.respondBindError(c, err)
		return
	}

	draft, err := payload.Draft(userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	req, err := h.deps.Engine.CreateRequest(c.Request.Context(), draft, payload.Submit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, req)
}

// requestView is a request with the actions its status accepts
type requestView struct {
	*entity.WorkflowRequest
	Actions []domainwf.Trigger `json:"actions"`
}

// GetRequest handles GET /api/requests/:id
func (h *Handlers) GetRequest(c *gin.Context) {
	req, err := h.deps.Queries.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, requestView{WorkflowRequest: req, Actions: workflow.AllowedActions(req)})
}

// UpdateRequest handles PUT /api/requests/:id
func (h *Handlers) UpdateRequest(c *gin.Context) {
	var payload RequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.respondBindError(c, err)
		return
	}

	// the engine keeps the stored requester
	draft, err := payload.Draft("")
	if err != nil {
		h.respondError(c, err)
		return
	}

	req, err := h.deps.Engine.UpdateDraft(c.Request.Context(), c.Param("id"), draft)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, req)
}

// SubmitRequest handles POST /api/requests/:id/submit
func (h *Handlers) SubmitRequest(c *gin.Context) {
	req, err := h.deps.Engine.SubmitRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, req)
}

// ApproveStep handles POST /api/requests/:id/steps/:stepId/approve
func (h *Handlers) ApproveStep(c *gin.Context) {
	h.decide(c, true)
}

// RejectStep handles POST /api/requests/:id/steps/:stepId/reject
func (h *Handlers) RejectStep(c *gin.Context) {
	h.decide(c, false)
}

func (h *Handlers) decide(c *gin.Context, approve bool) {
	actorID, found := h.actingUser(c)
	if !found {
		return
	}

	var payload DecisionPayload
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			h.respondBindError(c, err)
			return
		}
	}

	var (
		req *entity.WorkflowRequest
		err error
	)
	if approve {
		req, err = h.deps.Engine.ApproveStep(c.Request.Context(), c.Param("id"), c.Param("stepId"), actorID, payload.Comment)
	} else {
		req, err = h.deps.Engine.RejectStep(c.Request.Context(), c.Param("id"), c.Param("stepId"), actorID, payload.Comment)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, req)
}

// GetHistory handles GET /api/requests/:id/history
func (h *Handlers) GetHistory(c *gin.Context) {
	history, err := h.deps.Queries.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, history)
}

// ListApprovals handles GET /api/approvals for the acting approver
func (h *Handlers) ListApprovals(c *gin.Context) {
	userID, found := h.actingUser(c)
	if !found {
		return
	}

	pending, err := h.deps.Queries.PendingFor(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, pending)
}

// Dashboard handles GET /api/dashboard for the acting user
func (h *Handlers) Dashboard(c *gin.Context) {
	userID, found := h.actingUser(c)
	if !found {
		return
	}

	stats, err := h.deps.Queries.Stats(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, stats)
}
