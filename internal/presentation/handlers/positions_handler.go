package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/andrhp/lp-dashboard/internal/application/services"
	"github.com/andrhp/lp-dashboard/internal/domain/entities"
	"github.com/andrhp/lp-dashboard/internal/positions"
)

// PositionsHandler handles HTTP requests for wallet position endpoints
type PositionsHandler struct {
	service *services.PositionsService
	logger  *zap.Logger
}

// NewPositionsHandler creates a new positions handler
func NewPositionsHandler(service *services.PositionsService, logger *zap.Logger) *PositionsHandler {
	return &PositionsHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the position routes on a chi router
func (h *PositionsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/wallets", func(r chi.Router) {
		r.Get("/{address}/positions", h.GetPositions)
		r.Get("/{address}/stats", h.GetStats)
		r.Get("/{address}/snapshot", h.GetSnapshot)
	})
	r.Route("/positions", func(r chi.Router) {
		r.Post("/{id}/collect", h.CollectFees)
		r.Post("/{id}/close", h.ClosePosition)
	})
}

// GetPositions handles GET /api/v1/wallets/{address}/positions
//
// Query parameters: chain, status (comma separated), search, pools (comma
// separated), min_value, max_value, sort_by, sort_order. The filter is
// applied server-side to the canonical set; the canonical set itself is
// never reordered or reduced.
func (h *PositionsHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	if !h.isValidWallet(address) {
		h.respondError(w, http.StatusBadRequest, "Invalid wallet address format")
		return
	}

	chain, ok := entities.ParseChain(r.URL.Query().Get("chain"))
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Unsupported chain")
		return
	}

	spec, err := parseFilterSpec(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	response, err := h.service.GetPortfolio(ctx, address, chain)
	if err != nil {
		h.logger.Error("Failed to get positions",
			zap.Error(err),
			zap.String("address", address),
			zap.String("chain", string(chain)),
		)
		h.respondError(w, http.StatusBadGateway, "Failed to fetch positions")
		return
	}

	view := response.Data
	view.Positions = positions.Apply(response.Data.Positions, spec)
	view.Total = len(view.Positions)

	h.respondJSON(w, http.StatusOK, services.PortfolioResponse{Data: view})
}

// GetStats handles GET /api/v1/wallets/{address}/stats
func (h *PositionsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	if !h.isValidWallet(address) {
		h.respondError(w, http.StatusBadRequest, "Invalid wallet address format")
		return
	}

	chain, ok := entities.ParseChain(r.URL.Query().Get("chain"))
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Unsupported chain")
		return
	}

	response, err := h.service.GetPortfolio(ctx, address, chain)
	if err != nil {
		h.logger.Error("Failed to get stats",
			zap.Error(err),
			zap.String("address", address),
		)
		h.respondError(w, http.StatusBadGateway, "Failed to fetch positions")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]entities.PortfolioStats{"data": response.Data.Stats})
}

// GetSnapshot handles GET /api/v1/wallets/{address}/snapshot
//
// Serves the last persisted refresh result without contacting the backend.
// A wallet never refreshed (demo wallets included) has no snapshot.
func (h *PositionsHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	if !h.isValidWallet(address) {
		h.respondError(w, http.StatusBadRequest, "Invalid wallet address format")
		return
	}

	chain, ok := entities.ParseChain(r.URL.Query().Get("chain"))
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Unsupported chain")
		return
	}

	snap, err := h.service.GetLatestSnapshot(ctx, address, chain)
	if err != nil {
		h.logger.Error("Failed to load snapshot",
			zap.Error(err),
			zap.String("address", address),
		)
		h.respondError(w, http.StatusInternalServerError, "Failed to load snapshot")
		return
	}
	if snap == nil {
		h.respondError(w, http.StatusNotFound, "No snapshot recorded for wallet")
		return
	}

	h.respondJSON(w, http.StatusOK, services.SnapshotResponse{Data: *snap})
}

// CollectFees handles POST /api/v1/positions/{id}/collect
func (h *PositionsHandler) CollectFees(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, h.service.CollectFees, "collect fees")
}

// ClosePosition handles POST /api/v1/positions/{id}/close
func (h *PositionsHandler) ClosePosition(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, h.service.ClosePosition, "close position")
}

func (h *PositionsHandler) runAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, positionID string) (*services.ActionResponse, error),
	name string,
) {
	positionID := chi.URLParam(r, "id")
	if positionID == "" {
		h.respondError(w, http.StatusBadRequest, "Missing position id")
		return
	}

	response, err := action(r.Context(), positionID)
	if err != nil {
		h.logger.Error("Position action failed",
			zap.Error(err),
			zap.String("action", name),
			zap.String("position_id", positionID),
		)
		h.respondError(w, http.StatusBadGateway, "Failed to "+name)
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// isValidWallet accepts checksummed or lowercase hex addresses, plus demo
// wallets, which carry a non-hex marker prefix.
func (h *PositionsHandler) isValidWallet(address string) bool {
	return h.service.IsDemoWallet(address) || common.IsHexAddress(address)
}

// parseFilterSpec builds a FilterSpec from query parameters. Unknown status
// values and malformed numbers are rejected; unknown sort keys are passed
// through and leave the order unchanged downstream.
func parseFilterSpec(r *http.Request) (entities.FilterSpec, error) {
	q := r.URL.Query()
	spec := entities.FilterSpec{
		Search:    q.Get("search"),
		SortBy:    entities.SortKey(q.Get("sort_by")),
		SortOrder: entities.SortOrder(q.Get("sort_order")),
	}

	for _, s := range splitParam(q.Get("status")) {
		switch st := entities.PositionStatus(s); st {
		case entities.StatusActive, entities.StatusOutOfRange, entities.StatusClosed:
			spec.Status = append(spec.Status, st)
		default:
			return spec, errInvalidParam("status", s)
		}
	}

	for _, c := range splitParam(q.Get("chains")) {
		chain, ok := entities.ParseChain(c)
		if !ok {
			return spec, errInvalidParam("chains", c)
		}
		spec.Chains = append(spec.Chains, chain)
	}

	spec.Pools = splitParam(q.Get("pools"))

	if v := q.Get("min_value"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return spec, errInvalidParam("min_value", v)
		}
		spec.MinValue = &f
	}
	if v := q.Get("max_value"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return spec, errInvalidParam("max_value", v)
		}
		spec.MaxValue = &f
	}

	return spec, nil
}

func errInvalidParam(name, value string) error {
	return fmt.Errorf("invalid %s parameter: %q", name, value)
}

func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (h *PositionsHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *PositionsHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
