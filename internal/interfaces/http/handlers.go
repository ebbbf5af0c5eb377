package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/caseflow/internal/application/service"
	"github.com/garyjia/caseflow/internal/domain/entity"
	"github.com/garyjia/caseflow/internal/domain/flow"
	"github.com/garyjia/caseflow/pkg/utils"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	flowService    service.FlowService
	itemService    service.ItemService
	eventService   service.EventService
	health         HealthFunc
	defaultTimeout int
	logger         Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	flowService service.FlowService,
	itemService service.ItemService,
	eventService service.EventService,
	health HealthFunc,
	defaultTimeoutSeconds int,
	logger Logger,
) *Handlers {
	return &Handlers{
		flowService:    flowService,
		itemService:    itemService,
		eventService:   eventService,
		health:         health,
		defaultTimeout: defaultTimeoutSeconds,
		logger:         logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string      `json:"status"`
	Timestamp  string      `json:"timestamp"`
	Components interface{} `json:"components,omitempty"`
}

// FlowToNextResponse is the three-way result of a bounded wait.
// At most one of the fields is non-zero.
type FlowToNextResponse struct {
	FlowToNext                []string `json:"flow_to_next"`
	FlowToEnd                 bool     `json:"flow_to_end"`
	FlowToNextTimeoutExceeded bool     `json:"flow_to_next_timeout_exceeded"`
}

// SnapshotResponse describes a single search over a case hierarchy
type SnapshotResponse struct {
	CaseID     string   `json:"case_id"`
	RootCaseID string   `json:"root_case_id"`
	Ancestors  []string `json:"ancestors"`
	Items      []string `json:"items"`
	RootEnded  bool     `json:"root_ended"`
}

// CompleteItemResponse carries the completed item and, when requested,
// the items that follow it
type CompleteItemResponse struct {
	Item       *entity.WorkItem    `json:"item"`
	FlowToNext *FlowToNextResponse `json:"flow_to_next,omitempty"`
}

// NextRequest represents query parameters of a next-step lookup
type NextRequest struct {
	Assignee string `form:"assignee"`
}

// EventsRequest represents query parameters of an event listing
type EventsRequest struct {
	Limit int `form:"limit"`
}

// CompleteRequest represents query parameters of an item completion
type CompleteRequest struct {
	FlowToNext     bool `form:"flowToNext"`
	IgnoreAssignee bool `form:"ignoreAssignee"`
}

// NewFlowToNextResponse maps an outcome to its response shape
func NewFlowToNextResponse(outcome flow.Outcome) *FlowToNextResponse {
	resp := &FlowToNextResponse{FlowToNext: []string{}}
	switch outcome.Kind() {
	case flow.OutcomeNextItems:
		resp.FlowToNext = outcome.Items()
	case flow.OutcomeEnded:
		resp.FlowToEnd = true
	default:
		resp.FlowToNextTimeoutExceeded = true
	}
	return resp
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	healthy, components := true, interface{}(nil)
	if h.health != nil {
		healthy, components = h.health(c.Request.Context())
	}

	response := HealthResponse{
		Status:     "healthy",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	}

	status := http.StatusOK
	if !healthy {
		response.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, Response{
		Success: healthy,
		Data:    response,
	})
}

// ResolveNext handles GET /api/cases/:id/next
func (h *Handlers) ResolveNext(c *gin.Context) {
	caseID := c.Param("id")
	assignee, ok := h.bindAssignee(c)
	if !ok {
		return
	}
	if err := utils.ValidateIdentifier("case id", caseID); err != nil {
		h.badRequest(c, err)
		return
	}

	timeout, err := utils.ParseSeconds(c.Query("timeout"), h.defaultTimeout)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	outcome, err := h.flowService.ResolveNext(c.Request.Context(), caseID, assignee, timeout)
	if err != nil {
		h.writeError(c, "Failed to resolve next items", err, "case_id", caseID)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    NewFlowToNextResponse(outcome),
	})
}

// Snapshot handles GET /api/cases/:id/snapshot
func (h *Handlers) Snapshot(c *gin.Context) {
	caseID := c.Param("id")
	assignee, ok := h.bindAssignee(c)
	if !ok {
		return
	}
	if err := utils.ValidateIdentifier("case id", caseID); err != nil {
		h.badRequest(c, err)
		return
	}

	snapshot, err := h.flowService.SearchOnce(c.Request.Context(), caseID, assignee)
	if err != nil {
		h.writeError(c, "Failed to search case hierarchy", err, "case_id", caseID)
		return
	}

	items := snapshot.Items
	if items == nil {
		items = []string{}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: SnapshotResponse{
			CaseID:     caseID,
			RootCaseID: snapshot.Root(),
			Ancestors:  snapshot.Ancestors,
			Items:      items,
			RootEnded:  snapshot.RootEnded,
		},
	})
}

// ListEvents handles GET /api/cases/:id/events
func (h *Handlers) ListEvents(c *gin.Context) {
	caseID := c.Param("id")
	if err := utils.ValidateIdentifier("case id", caseID); err != nil {
		h.badRequest(c, err)
		return
	}

	var req EventsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	events, err := h.eventService.List(c.Request.Context(), caseID, req.Limit)
	if err != nil {
		h.writeError(c, "Failed to list flow events", err, "case_id", caseID)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    events,
	})
}

// CompleteItem handles POST /api/items/:id/complete
func (h *Handlers) CompleteItem(c *gin.Context) {
	itemID := c.Param("id")
	if err := utils.ValidateIdentifier("item id", itemID); err != nil {
		h.badRequest(c, err)
		return
	}

	var req CompleteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	timeout, err := utils.ParseSeconds(c.Query("timeout"), h.defaultTimeout)
	if err != nil {
		h.badRequest(c, err)
		return
	}
	// reject a bad wait before the item is closed
	if req.FlowToNext {
		if err := h.flowService.CheckTimeout(timeout); err != nil {
			h.badRequest(c, err)
			return
		}
	}

	item, err := h.itemService.Complete(c.Request.Context(), itemID)
	if err != nil {
		h.writeError(c, "Failed to complete work item", err, "item_id", itemID)
		return
	}

	response := CompleteItemResponse{Item: item}
	if req.FlowToNext {
		outcome, err := h.flowService.ResolveAfterItem(c.Request.Context(), item, req.IgnoreAssignee, timeout)
		if err != nil {
			h.writeError(c, "Failed to resolve items after completion", err, "item_id", itemID)
			return
		}
		response.FlowToNext = NewFlowToNextResponse(outcome)
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

func (h *Handlers) bindAssignee(c *gin.Context) (flow.Assignee, bool) {
	var req NextRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, err)
		return flow.Assignee{}, false
	}
	if req.Assignee == "" {
		return flow.AnyAssignee(), true
	}
	if err := utils.ValidateIdentifier("assignee", req.Assignee); err != nil {
		h.badRequest(c, err)
		return flow.Assignee{}, false
	}
	return flow.AssignedTo(req.Assignee), true
}

func (h *Handlers) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   err.Error(),
	})
}

func (h *Handlers) writeError(c *gin.Context, msg string, err error, keysAndValues ...interface{}) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, flow.ErrInvalidTimeout):
		status = http.StatusBadRequest
	case errors.Is(err, flow.ErrCaseNotFound), errors.Is(err, flow.ErrItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, flow.ErrItemNotActive):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger.Error(msg, append(keysAndValues, "error", err)...)
		c.JSON(status, Response{
			Success: false,
			Error:   "internal server error",
		})
		return
	}

	c.JSON(status, Response{
		Success: false,
		Error:   err.Error(),
	})
}
