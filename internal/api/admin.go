package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"saha-map/internal/logger"
)

// statsHandler：总计与热门地区；kind=province|district 可选
func (h *Handler) statsHandler(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		writeError(w, http.StatusServiceUnavailable, "stats disabled")
		return
	}
	ctx := r.Context()
	t, err := h.stats.GetTotals(ctx)
	if err != nil {
		logger.L().Error("stats_totals_fail", "err", err)
		writeError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}
	kind := r.URL.Query().Get("kind")
	if kind != "" && kind != "province" && kind != "district" {
		writeError(w, http.StatusBadRequest, "invalid kind")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	top, err := h.stats.TopRegions(ctx, kind, limit)
	if err != nil {
		logger.L().Error("stats_top_fail", "err", err)
		writeError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"totals": t, "top": top})
}

// reloadFeed：同步重新拉取会员数据；失败时索引已清空，返回 502
func (h *Handler) reloadFeed(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		writeError(w, http.StatusServiceUnavailable, "feed disabled")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	if err := h.feed.Refresh(ctx); err != nil {
		logger.L().Warn("admin_reload_feed_fail", "err", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": err.Error(), "status": h.feed.Status()})
		return
	}
	logger.L().Info("admin_reload_feed_ok")
	writeJSON(w, http.StatusOK, h.feed.Status())
}

func (h *Handler) feedStatus(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		writeError(w, http.StatusServiceUnavailable, "feed disabled")
		return
	}
	writeJSON(w, http.StatusOK, h.feed.Status())
}
