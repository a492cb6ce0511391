package handlers

import (
	"errors"
	"net/http"

	"github.com/wonny/lsequity/internal/contracts"
	"github.com/wonny/lsequity/pkg/logger"
)

// SelectionHandler serves the latest long/short selection
type SelectionHandler struct {
	store           contracts.SelectionStore
	defaultStrategy string
	logger          *logger.Logger
}

// NewSelectionHandler creates a new selection handler
func NewSelectionHandler(store contracts.SelectionStore, defaultStrategy string, log *logger.Logger) *SelectionHandler {
	return &SelectionHandler{
		store:           store,
		defaultStrategy: defaultStrategy,
		logger:          log,
	}
}

// GetLatest returns the last saved selection of a strategy
// GET /api/selection/latest?strategy=long_short_value
func (h *SelectionHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	strategyID := r.URL.Query().Get("strategy")
	if strategyID == "" {
		strategyID = h.defaultStrategy
	}
	if strategyID == "" {
		respondError(w, http.StatusBadRequest, "strategy is required")
		return
	}

	sel, err := h.store.GetLatest(r.Context(), strategyID)
	if errors.Is(err, contracts.ErrNotFound) {
		respondError(w, http.StatusNotFound, "No selection for strategy "+strategyID)
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("strategy", strategyID).Error("Failed to get latest selection")
		respondError(w, http.StatusInternalServerError, "Failed to get latest selection")
		return
	}

	respondJSON(w, http.StatusOK, sel)
}
