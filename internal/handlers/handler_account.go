package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/ewallet_ledger/internal/core/ports/services"
	"github.com/SscSPs/ewallet_ledger/internal/dto"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to the caller's account.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{accountService: as}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	account := rg.Group("/account")
	{
		account.GET("", h.getAccount)
		account.GET("/identity-payload", h.getIdentityPayload)
	}
	rg.POST("/identity/scan", h.scanIdentity)
}

// getAccount godoc
// @Summary Get the caller's account
// @Tags accounts
// @Produce  json
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /account [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	account, err := h.accountService.GetAccountForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getIdentityPayload godoc
// @Summary Get the caller's identity payload
// @Description Returns the text a payer scans to send money to the caller
// @Tags accounts
// @Produce  json
// @Success 200 {object} dto.IdentityPayloadResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /account/identity-payload [get]
func (h *accountHandler) getIdentityPayload(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	payload, err := h.accountService.IdentityPayload(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to build identity payload")
		return
	}
	c.JSON(http.StatusOK, dto.IdentityPayloadResponse{Payload: payload})
}

// scanIdentity godoc
// @Summary Resolve a scanned identity payload
// @Description Shows who a scanned payload belongs to so the payer can confirm before transferring
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   scan body dto.ScanIdentityRequest true "Scanned payload"
// @Success 200 {object} dto.PublicUserResponse
// @Failure 400 {object} ErrorResponse "Malformed payload"
// @Failure 404 {object} ErrorResponse "No such user"
// @Security BearerAuth
// @Router /identity/scan [post]
func (h *accountHandler) scanIdentity(c *gin.Context) {
	var req dto.ScanIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.accountService.ScanIdentity(c.Request.Context(), req.Payload)
	if err != nil {
		respondError(c, err, "Failed to resolve identity")
		return
	}
	c.JSON(http.StatusOK, dto.ToPublicUserResponse(user))
}
