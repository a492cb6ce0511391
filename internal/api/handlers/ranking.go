package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/lsequity/internal/contracts"
	"github.com/wonny/lsequity/pkg/logger"
)

// maxRankBody bounds POST /api/rank payloads (8 MiB)
const maxRankBody = 8 << 20

// RankingHandler ranks an ad-hoc factor table with the loaded strategy
// ⭐ SSOT: 랭킹 API 핸들러는 이 구조체에서만
type RankingHandler struct {
	ranker   contracts.Ranker
	factors  []string
	validate *validator.Validate
	logger   *logger.Logger
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(ranker contracts.Ranker, factors []string, log *logger.Logger) *RankingHandler {
	return &RankingHandler{
		ranker:   ranker,
		factors:  factors,
		validate: validator.New(),
		logger:   log,
	}
}

// RankRequest is the body of POST /api/rank
// null 또는 누락된 팩터 값은 정의되지 않은 값
type RankRequest struct {
	Date     string       `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Universe []string     `json:"universe" validate:"omitempty,dive,required"`
	Records  []RankRecord `json:"records" validate:"required,min=1,dive"`
}

// RankRecord is one security row of the request
type RankRecord struct {
	Security string              `json:"security" validate:"required"`
	Values   map[string]*float64 `json:"values"`
}

// Rank ranks the posted factor table
// POST /api/rank
func (h *RankingHandler) Rank(w http.ResponseWriter, r *http.Request) {
	var req RankRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRankBody))
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":  "Validation failed",
				"fields": fieldErrors(verrs),
			})
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	universe, table := h.toContracts(&req)

	selection, err := h.ranker.Rank(r.Context(), universe, table)
	if err != nil {
		h.logger.WithError(err).Error("Failed to rank posted factor table")
		respondError(w, http.StatusInternalServerError, "Failed to rank")
		return
	}

	respondJSON(w, http.StatusOK, selection)
}

// toContracts builds the ranker inputs; without a universe every record is a member
func (h *RankingHandler) toContracts(req *RankRequest) (*contracts.Universe, *contracts.FactorTable) {
	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		// validator가 형식을 보장
		date, _ = time.Parse("2006-01-02", req.Date)
	}

	table := &contracts.FactorTable{
		Date:    date,
		Factors: h.factors,
		Records: make([]contracts.FactorRecord, 0, len(req.Records)),
	}
	for _, rec := range req.Records {
		table.Records = append(table.Records, contracts.FactorRecord{
			Security: rec.Security,
			Values:   rec.Values,
		})
	}

	securities := req.Universe
	if len(securities) == 0 {
		securities = make([]string, 0, len(req.Records))
		for _, rec := range req.Records {
			securities = append(securities, rec.Security)
		}
	}

	return &contracts.Universe{Date: date, Securities: securities}, table
}

func fieldErrors(verrs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Namespace()] = fe.Tag()
	}
	return fields
}
