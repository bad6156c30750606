package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Senanu-web/bskal-enterprise/internal/domain/branches"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/http/v1/dto"
)

// BranchHandler provides store branch endpoints.
type BranchHandler struct {
	*BaseHandler
	branches *branches.Service
}

// NewBranchHandler creates a new branch handler.
func NewBranchHandler(base *BaseHandler, branchService *branches.Service) *BranchHandler {
	return &BranchHandler{BaseHandler: base, branches: branchService}
}

// List returns all branches.
// GET /api/branches
func (h *BranchHandler) List(c *gin.Context) {
	list, err := h.branches.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{Items: list, Count: len(list)})
}

// Get returns one branch.
// GET /api/branches/:id
func (h *BranchHandler) Get(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	b, err := h.branches.Get(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, b)
}

// Create adds a branch.
// POST /api/branches
func (h *BranchHandler) Create(c *gin.Context) {
	var b branches.Branch
	if !h.BindJSON(c, &b) {
		return
	}

	if err := h.branches.Create(c.Request.Context(), &b); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, b.ID)
}

// Update edits a branch.
// PUT /api/branches/:id
func (h *BranchHandler) Update(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var b branches.Branch
	if !h.BindJSON(c, &b) {
		return
	}
	b.ID = id

	if err := h.branches.Update(c.Request.Context(), &b); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, &b)
}
