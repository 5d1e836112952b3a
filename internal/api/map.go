package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"saha-map/internal/interaction"
	"saha-map/internal/session"
)

// maxBatch：单次 POST 最多处理的事件数
const maxBatch = 64

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	writeJSON(w, http.StatusOK, s.Current())
}

func (h *Handler) panel(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	writeJSON(w, http.StatusOK, s.Panel())
}

// svg：当前挂载地图的完整 SVG，含本会话已有着色
func (h *Handler) svg(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	name, body := s.SVG()
	if body == nil {
		writeError(w, http.StatusServiceUnavailable, "map not mounted")
		return
	}
	w.Header().Set("content-type", "image/svg+xml; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.Header().Set("x-map-name", name)
	_, _ = w.Write(body)
}

// counts：81 省与伊斯坦布尔各区的会员数
func (h *Handler) counts(w http.ResponseWriter, r *http.Request) {
	idx := h.holder.Load()
	writeJSON(w, http.StatusOK, map[string]any{
		"province": idx.ProvinceCounts(),
		"district": idx.DistrictCounts(),
		"members":  idx.Cities().Total(),
	})
}

// events：请求体为单个事件或事件数组，响应与之对应
func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body")
		return
	}
	raw = bytes.TrimSpace(raw)
	s := h.session(w, r)
	if len(raw) > 0 && raw[0] == '[' {
		var evs []interaction.Event
		if err := json.Unmarshal(raw, &evs); err != nil {
			writeError(w, http.StatusBadRequest, "invalid events")
			return
		}
		if len(evs) > maxBatch {
			writeError(w, http.StatusRequestEntityTooLarge, "too many events")
			return
		}
		out := make([]session.Update, 0, len(evs))
		for _, ev := range evs {
			u, err := h.apply(s, ev)
			if err != nil {
				writeEventError(w, err)
				return
			}
			out = append(out, u)
		}
		writeJSON(w, http.StatusOK, out)
		return
	}
	var ev interaction.Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid event")
		return
	}
	u, err := h.apply(s, ev)
	if err != nil {
		writeEventError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) apply(s *session.Session, ev interaction.Event) (session.Update, error) {
	u, err := s.Handle(ev)
	if err != nil {
		return u, err
	}
	h.recordSelection(u)
	return u, nil
}

func writeEventError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interaction.ErrUnknownEvent):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusGone, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) back(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	writeJSON(w, http.StatusOK, s.Back())
}

// endSession：丢弃会话并清除 Cookie
func (h *Handler) endSession(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(session.CookieName); err == nil {
		h.sessions.Delete(c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	w.WriteHeader(http.StatusNoContent)
}
