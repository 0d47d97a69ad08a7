package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ewallet_ledger/internal/core/ports/services"
	"github.com/SscSPs/ewallet_ledger/internal/dto"
	"github.com/SscSPs/ewallet_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// cardHandler handles HTTP requests related to cards.
type cardHandler struct {
	cardService portssvc.CardSvcFacade
}

func newCardHandler(cs portssvc.CardSvcFacade) *cardHandler {
	return &cardHandler{cardService: cs}
}

// registerCardRoutes registers routes related to cards.
func registerCardRoutes(rg *gin.RouterGroup, cardService portssvc.CardSvcFacade, limit gin.HandlerFunc) {
	h := newCardHandler(cardService)

	cards := rg.Group("/cards")
	{
		cards.GET("", h.listCards)
		cards.GET("/latest", h.getLatestCard)
		cards.POST("", h.createCard)
		cards.POST("/fund", limit, h.fundCard)
	}
}

// listCards godoc
// @Summary List the caller's cards
// @Tags cards
// @Produce  json
// @Success 200 {array} dto.CardResponse
// @Security BearerAuth
// @Router /cards [get]
func (h *cardHandler) listCards(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	cards, err := h.cardService.ListCards(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to list cards")
		return
	}
	c.JSON(http.StatusOK, dto.ToListCardResponse(cards))
}

// getLatestCard godoc
// @Summary Get the most recently issued card
// @Tags cards
// @Produce  json
// @Success 200 {object} dto.CardResponse
// @Failure 404 {object} ErrorResponse "No card issued"
// @Security BearerAuth
// @Router /cards/latest [get]
func (h *cardHandler) getLatestCard(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	card, err := h.cardService.GetLatestCard(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve card")
		return
	}
	c.JSON(http.StatusOK, dto.ToCardResponse(card, false))
}

// createCard godoc
// @Summary Issue a new card
// @Description Issues a card from the given issuer. One card per issuer per account; the CVV is only returned here.
// @Tags cards
// @Accept  json
// @Produce  json
// @Param   card body dto.CreateCardRequest true "Issuer and card type"
// @Success 201 {object} dto.CardResponse
// @Failure 400 {object} ErrorResponse "Unknown issuer"
// @Failure 409 {object} ErrorResponse "Card of that issuer already exists"
// @Security BearerAuth
// @Router /cards [post]
func (h *cardHandler) createCard(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	card, err := h.cardService.CreateCard(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Failed to create card")
		return
	}

	logger.Info("Card issued", slog.String("card_id", card.CardID), slog.String("issuer", string(card.Issuer)))
	c.JSON(http.StatusCreated, dto.ToCardResponse(card, true))
}

// fundCard godoc
// @Summary Move money from the account into a card
// @Tags cards
// @Accept  json
// @Produce  json
// @Param   fund body dto.FundCardRequest true "Card and amount"
// @Success 200 {object} dto.FundCardResponse
// @Failure 400 {object} ErrorResponse "Invalid amount"
// @Failure 403 {object} ErrorResponse "Card missing or on another account"
// @Failure 422 {object} ErrorResponse "Insufficient funds"
// @Security BearerAuth
// @Router /cards/fund [post]
func (h *cardHandler) fundCard(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.FundCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.cardService.FundCard(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Failed to fund card")
		return
	}

	logger.Info("Card funded", slog.String("card_id", req.CardID))
	c.JSON(http.StatusOK, dto.FundCardResponse{
		Message:        "Card funded successfully",
		CardBalance:    result.CardBalance,
		AccountBalance: result.AccountBalance,
	})
}
