package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/viralforge/mesh/services/data-ai/M59-schedule-context-service/internal/application"
	"github.com/viralforge/mesh/services/data-ai/M59-schedule-context-service/internal/ports"
)

type computeRequest struct {
	CreatorID  string `json:"creator_id"`
	WeekStart  string `json:"week_start"`
	JitterSeed *int64 `json:"jitter_seed,omitempty"`
}

func (h *Handler) computeContext(w http.ResponseWriter, r *http.Request) {
	var req computeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), requestIDFromContext(r.Context()))
		return
	}
	creatorContext, err := h.service.ComputeContext(r.Context(), application.ComputeInput{
		CreatorID:  strings.TrimSpace(req.CreatorID),
		WeekStart:  strings.TrimSpace(req.WeekStart),
		JitterSeed: req.JitterSeed,
	})
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "", creatorContext)
}

func (h *Handler) listAudits(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListAudits(r.Context(), strings.TrimSpace(r.URL.Query().Get("creator_id")))
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "", makeAuditResponse(records))
}

func makeAuditResponse(records []ports.AuditRecord) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		out = append(out, map[string]any{
			"audit_id":            rec.AuditID,
			"creator_id":          rec.CreatorID,
			"week_start":          rec.WeekStart,
			"tier":                rec.Tier,
			"compound_multiplier": rec.CompoundMultiplier,
			"health_adjustment":   rec.HealthAdjustment,
			"audit_hash":          rec.AuditHash,
			"created_at":          rec.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}
