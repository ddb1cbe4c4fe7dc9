package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hugh/hoteldesk/internal/api/dto"
	"github.com/hugh/hoteldesk/internal/api/middleware"
	"github.com/hugh/hoteldesk/internal/api/validation"
	"github.com/hugh/hoteldesk/internal/auth"
)

const (
	msgInvalidBody     = "Dữ liệu không hợp lệ"
	msgMissingFields   = "Vui lòng nhập đầy đủ thông tin"
	msgUserExists      = "Email đã được sử dụng"
	msgRegistered      = "Đăng ký thành công, vui lòng chờ quản trị viên duyệt"
	msgRegisterFailed  = "Đăng ký thất bại"
	msgMissingToken    = "Thiếu token"
	msgPendingNotFound = "Yêu cầu không tồn tại hoặc đã được duyệt"
	msgApproved        = "Tài khoản đã được duyệt thành công"
	msgUserNotFound    = "Không tìm thấy người dùng"
	msgNotApproved     = "Tài khoản chưa được duyệt"
	msgWrongPassword   = "Sai mật khẩu"
	msgLoginFailed     = "Đăng nhập thất bại"
	msgTempPassSent    = "Mật khẩu tạm thời đã được gửi tới email của bạn"
	msgForgotFailed    = "Không thể đặt lại mật khẩu"
)

type AuthHandler struct {
	authService   auth.Authenticator
	publicBaseURL string
	logger        *slog.Logger
	development   bool
}

func NewAuthHandler(authService auth.Authenticator, publicBaseURL string, logger *slog.Logger, development bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
		development:   development,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if errs := validation.Struct(req); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: msgMissingFields, Details: errs})
		return
	}

	err := h.authService.Register(r.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		BaseURL:  h.baseURL(r),
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingFields):
			writeError(w, http.StatusBadRequest, msgMissingFields)
		case errors.Is(err, auth.ErrUserExists):
			writeError(w, http.StatusConflict, msgUserExists)
		default:
			writeInternal(w, r, h.logger, h.development, msgRegisterFailed, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: msgRegistered})
}

// Approve answers in plain text since it is opened from the admin's mail client.
func (h *AuthHandler) Approve(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	_, err := h.authService.Approve(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingToken):
			writeText(w, http.StatusBadRequest, msgMissingToken)
		case errors.Is(err, auth.ErrPendingNotFound):
			writeText(w, http.StatusNotFound, msgPendingNotFound)
		default:
			h.logger.ErrorContext(r.Context(), "approval failed", "error", err)
			writeText(w, http.StatusInternalServerError, "Lỗi máy chủ")
		}
		return
	}

	writeText(w, http.StatusOK, msgApproved)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	resp, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			writeError(w, http.StatusNotFound, msgUserNotFound)
		case errors.Is(err, auth.ErrNotApproved):
			writeError(w, http.StatusForbidden, msgNotApproved)
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, msgWrongPassword)
		default:
			writeInternal(w, r, h.logger, h.development, msgLoginFailed, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Token: resp.Token,
		User:  dto.NewUserDTO(resp.User),
	})
}

func (h *AuthHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	err := h.authService.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			writeError(w, http.StatusNotFound, msgUserNotFound)
		default:
			writeInternal(w, r, h.logger, h.development, msgForgotFailed, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: msgTempPassSent})
}

// Me returns the account behind the bearer token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserEmail(r.Context())

	user, err := h.authService.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, msgUserNotFound)
			return
		}
		writeInternal(w, r, h.logger, h.development, msgUserNotFound, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewUserDTO(user))
}

// baseURL is the scheme and host approval links point at.
func (h *AuthHandler) baseURL(r *http.Request) string {
	if h.publicBaseURL != "" {
		return h.publicBaseURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.SplitN(proto, ",", 2)[0])
	}
	return scheme + "://" + r.Host
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}
