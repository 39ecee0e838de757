package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sedifex-backend-go/internal/middleware"
	"sedifex-backend-go/internal/tenancy"
)

// TenancyHandler exposes the callable tenancy operations over HTTP.
type TenancyHandler struct {
	service *tenancy.Service
	logger  *zap.Logger
}

// NewTenancyHandler creates a new TenancyHandler.
func NewTenancyHandler(service *tenancy.Service, logger *zap.Logger) *TenancyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TenancyHandler{service: service, logger: logger}
}

// InitializeStore handles POST /api/v1/store/initialize.
func (h *TenancyHandler) InitializeStore(c *gin.Context) {
	var req tenancy.InitializeStoreRequest
	if !h.decodePayload(c, &req) {
		return
	}
	result, err := h.service.InitializeStore(c.Request.Context(), req, callableContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ResolveStoreAccess handles POST /api/v1/store/access.
func (h *TenancyHandler) ResolveStoreAccess(c *gin.Context) {
	result, err := h.service.ResolveStoreAccess(c.Request.Context(), callableContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ManageStaffAccount handles POST /api/v1/staff.
func (h *TenancyHandler) ManageStaffAccount(c *gin.Context) {
	var req tenancy.ManageStaffAccountRequest
	if !h.decodePayload(c, &req) {
		return
	}
	result, err := h.service.ManageStaffAccount(c.Request.Context(), req, callableContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// decodePayload decodes an optional JSON body into req. An empty body is
// treated as an empty payload; malformed JSON is an invalid-argument error.
func (h *TenancyHandler) decodePayload(c *gin.Context, req any) bool {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.writeError(c, tenancy.NewError(tenancy.CodeInvalidArgument, "Unable to read request payload"))
		return false
	}
	if len(body) == 0 {
		return true
	}
	if err := json.Unmarshal(body, req); err != nil {
		h.writeError(c, tenancy.NewError(tenancy.CodeInvalidArgument, "Request payload must be valid JSON"))
		return false
	}
	return true
}

// writeError maps a callable error to its HTTP status; anything untyped is
// logged in full and surfaced as a generic internal error.
func (h *TenancyHandler) writeError(c *gin.Context, err error) {
	if callableErr, ok := tenancy.AsError(err); ok {
		c.JSON(callableErr.HTTPStatus(), ErrorResponse{
			Code:    string(callableErr.Code),
			Message: callableErr.Message,
			Details: callableErr.Details,
		})
		return
	}
	h.logger.Error("unhandled callable error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Code:    string(tenancy.CodeInternal),
		Message: "Something went wrong. Try again shortly.",
	})
}

// callableContext builds the caller envelope from the values the auth
// middleware stored in the Gin context. A request that bypassed the
// middleware yields an unauthenticated context.
func callableContext(c *gin.Context) tenancy.CallableContext {
	rawUID, ok := c.Get(middleware.ContextUserID)
	if !ok {
		return tenancy.CallableContext{}
	}
	uid, ok := rawUID.(string)
	if !ok || uid == "" {
		return tenancy.CallableContext{}
	}
	token := map[string]any{}
	if rawClaims, ok := c.Get(middleware.ContextUserClaims); ok {
		if claims, ok := rawClaims.(map[string]any); ok {
			token = claims
		}
	}
	return tenancy.CallableContext{Auth: &tenancy.AuthContext{UID: uid, Token: token}}
}
