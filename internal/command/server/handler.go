package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"sync"

	"github.com/lwmacct/251207-go-pkg-evaldict/pkg/evaldict"
)

// maxBodySize PUT 请求体上限。
const maxBodySize = 1 << 20

// handler 通过 HTTP 暴露一个 Dict。
//
// 求值会写入缓存，读写请求都在 mu 下执行。
type handler struct {
	mu   sync.Mutex
	dict *evaldict.Dict
}

// NewHandler 返回服务 d 的路由。
func NewHandler(d *evaldict.Dict) http.Handler {
	h := &handler{dict: d}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /v1/entries", h.list)
	mux.HandleFunc("GET /v1/entries/{key}", h.get)
	mux.HandleFunc("PUT /v1/entries/{key}", h.put)
	mux.HandleFunc("DELETE /v1/entries/{key}", h.remove)
	mux.HandleFunc("GET /v1/stats", h.stats)

	return mux
}

// locked 在 mu 下执行 fn；fn panic 时同样释放锁。
func (h *handler) locked(fn func(d *evaldict.Dict)) {
	h.mu.Lock()
	defer h.mu.Unlock()

	fn(h.dict)
}

// entryResponse 单个条目。
type entryResponse struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type statsResponse struct {
	Keys  int                 `json:"keys"`
	Cache evaldict.CacheStats `json:"cache"`
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) list(w http.ResponseWriter, _ *http.Request) {
	var keys []string
	h.locked(func(d *evaldict.Dict) { keys = slices.Collect(d.Keys()) })

	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"keys": keys})
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	raw := r.URL.Query().Get("raw")

	var (
		val any
		err error
	)
	h.locked(func(d *evaldict.Dict) {
		if raw == "1" || raw == "true" {
			val, err = d.GetRaw(key)
		} else {
			val, err = d.Get(key)
		}
	})

	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entryResponse{Key: key, Value: val})
}

// put 请求体即原始模板文本。
func (h *handler) put(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
		return
	}

	h.locked(func(d *evaldict.Dict) { d.Set(key, string(body)) })

	slog.Debug("Entry updated", "key", key, "size", len(body))
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) remove(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	var err error
	h.locked(func(d *evaldict.Dict) { err = d.Delete(key) })

	if err != nil {
		writeError(w, err)
		return
	}
	slog.Debug("Entry deleted", "key", key)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) stats(w http.ResponseWriter, _ *http.Request) {
	var resp statsResponse
	h.locked(func(d *evaldict.Dict) {
		resp = statsResponse{Keys: d.Len(), Cache: d.Stats()}
	})

	writeJSON(w, http.StatusOK, resp)
}

// statusOf 缺失 key 为 404，模板错误为 422。
func statusOf(err error) int {
	switch {
	case errors.Is(err, evaldict.ErrKeyNotFound):
		return http.StatusNotFound
	case errors.Is(err, evaldict.ErrCyclicDependency), errors.Is(err, evaldict.ErrMalformedTemplate):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusOf(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Write response failed", "error", err)
	}
}
