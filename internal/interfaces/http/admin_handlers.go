package http

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/hr-portal/internal/domain/entity"
)

// ListTemplates handles GET /api/admin/templates?type=
func (h *Handlers) ListTemplates(c *gin.Context) {
	var (
		templates []*entity.WorkflowStepTemplate
		err       error
	)
	if typ := c.Query("type"); typ != "" {
		templates, err = h.deps.Templates.ListTemplates(c.Request.Context(), entity.RequestType(typ))
	} else {
		templates, err = h.deps.Templates.ListAll(c.Request.Context())
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, templates)
}

// CreateTemplate handles POST /api/admin/templates
func (h *Handlers) CreateTemplate(c *gin.Context) {
	var payload TemplatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.respondBindError(c, err)
		return
	}

	tpl, err := h.deps.Templates.Add(c.Request.Context(), payload.Template())
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, tpl)
}

// UpdateTemplate handles PUT /api/admin/templates/:id
func (h *Handlers) UpdateTemplate(c *gin.Context) {
	var payload TemplatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.respondBindError(c, err)
		return
	}

	tpl, err := h.deps.Templates.Update(c.Request.Context(), c.Param("id"), payload.Template())
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, tpl)
}

// DeleteTemplate handles DELETE /api/admin/templates/:id
func (h *Handlers) DeleteTemplate(c *gin.Context) {
	if err := h.deps.Templates.Remove(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListUsers handles GET /api/admin/users?role=
func (h *Handlers) ListUsers(c *gin.Context) {
	var (
		users []*entity.User
		err   error
	)
	if role := c.Query("role"); role != "" {
		users, err = h.deps.Users.ListByRole(c.Request.Context(), entity.Role(role))
	} else {
		users, err = h.deps.Users.List(c.Request.Context())
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, users)
}

// CreateUser handles POST /api/admin/users
func (h *Handlers) CreateUser(c *gin.Context) {
	var payload UserPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.respondBindError(c, err)
		return
	}

	user, err := h.deps.Users.Create(c.Request.Context(), payload.User())
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, user)
}

// UpdateUser handles PUT /api/admin/users/:id
func (h *Handlers) UpdateUser(c *gin.Context) {
	var payload UserPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.respondBindError(c, err)
		return
	}

	user, err := h.deps.Users.Update(c.Request.Context(), c.Param("id"), payload.User())
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/admin/users/:id
func (h *Handlers) DeleteUser(c *gin.Context) {
	if err := h.deps.Users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportRequests handles GET /api/admin/requests/export?status=
func (h *Handlers) ExportRequests(c *gin.Context) {
	// buffer so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := h.deps.Export.Export(c.Request.Context(), &buf, c.Query("status")); err != nil {
		h.respondError(c, err)
		return
	}

	filename := "requests-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, h.deps.Export.ContentType(), buf.Bytes())
}
