package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
)

// Response 统一的响应信封。业务层面的失败（校验不通过、约束冲突等）
// 也返回 200，由 success 字段区分；只有服务端自身的错误才使用 5xx
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
		http.Error(w, "服务器内部错误", http.StatusInternalServerError)
	}
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, success bool, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: success,
		Message: msg,
		Data:    data,
	})
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.respond(w, r, true, msg, data)
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, msg string) {
	h.respond(w, r, false, msg, nil)
}

// badRequest 校验错误翻译成中文后只返回第一条，其余错误原样透出
func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		h.errorResponse(w, r, err.Error())
		return
	}

	h.errorResponse(w, r, validationErrors[0].Translate(h.translator))
}

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("处理请求时发生内部错误", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.writeJSON(w, r, http.StatusInternalServerError, Response{
		Success: false,
		Message: "服务器内部错误",
		Data:    nil,
	})
}

// repositoryError 把数据库约束冲突映射成对用户友好的业务失败。
// violations 按约束名给出提示语，未列出的约束和其他错误一律按内部错误处理
func (h *Handler) repositoryError(w http.ResponseWriter, r *http.Request, err error, violations map[string]string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if msg, ok := violations[pgErr.ConstraintName]; ok {
			h.errorResponse(w, r, msg)
			return
		}
	}

	h.internalServerError(w, r, err)
}
