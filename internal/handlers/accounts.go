package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/blogicum/internal/auth"
	"github.com/zfogg/blogicum/internal/logger"
	"github.com/zfogg/blogicum/internal/metrics"
	"github.com/zfogg/blogicum/internal/repository"
	"github.com/zfogg/blogicum/internal/telemetry"
	"github.com/zfogg/blogicum/internal/util"
	"go.uber.org/zap"
)

const (
	msgUsernameTaken = "A user with that username already exists."
	msgBadLogin      = "Please enter a correct username and password. Note that both fields may be case-sensitive."
	msgWrongPassword = "Your old password was entered incorrectly. Please enter it again."
)

// RegistrationPage renders the sign-up page
// GET /auth/registration/
func (h *Handlers) RegistrationPage(c *gin.Context) {
	h.render(c, http.StatusOK, "registration/registration_form.html", gin.H{
		"form":   RegistrationForm{},
		"errors": FormErrors{},
	})
}

// Register creates an account
// POST /auth/registration/
func (h *Handlers) Register(c *gin.Context) {
	var form RegistrationForm
	errs := bindForm(c, &form)
	form.Username = strings.TrimSpace(form.Username)
	if form.Password1 != "" && len(errs["password2"]) == 0 {
		for _, problem := range auth.ValidatePassword(form.Password1, form.Username, form.Email) {
			errs.Add("password2", problem)
		}
	}
	if !h.checkUsername(c, errs, form.Username, 0) {
		return
	}

	if !errs.Any() {
		_, err := h.accounts.Register(c.Request.Context(), auth.RegisterRequest{
			Username:  form.Username,
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Email:     form.Email,
			Password:  form.Password1,
		})
		switch {
		case errors.Is(err, repository.ErrUsernameTaken):
			errs.Add("username", msgUsernameTaken)
		case err != nil:
			util.RenderInternalError(c, err)
			return
		default:
			metrics.Get().UsersRegisteredTotal.Inc()
			c.Redirect(http.StatusFound, "/")
			return
		}
	}

	form.Password1, form.Password2 = "", ""
	h.render(c, http.StatusOK, "registration/registration_form.html", gin.H{
		"form":   form,
		"errors": errs,
	})
}

// checkUsername records a clash with another account's username next to the
// other field errors. The unique index still catches concurrent sign-ups.
// It returns false after rendering an error page.
func (h *Handlers) checkUsername(c *gin.Context, errs FormErrors, username string, exceptUserID uint) bool {
	if username == "" || len(errs["username"]) > 0 {
		return true
	}
	taken, err := h.users.UsernameTaken(c.Request.Context(), username, exceptUserID)
	if err != nil {
		util.RenderInternalError(c, err)
		return false
	}
	if taken {
		errs.Add("username", msgUsernameTaken)
	}
	return true
}

// LoginPage renders the login form
// GET /auth/login/
func (h *Handlers) LoginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "registration/login.html", gin.H{
		"form":   LoginForm{Next: c.Query("next")},
		"errors": FormErrors{},
	})
}

// Login starts a session and follows ?next= when it points inside the site
// POST /auth/login/
func (h *Handlers) Login(c *gin.Context) {
	var form LoginForm
	errs := bindForm(c, &form)
	if form.Next == "" {
		form.Next = c.Query("next")
	}

	if !errs.Any() {
		user, err := h.accounts.Authenticate(c.Request.Context(), form.Username, form.Password)
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			logger.Log.Info("Failed login attempt",
				zap.String("username", form.Username),
				logger.WithIP(c.ClientIP()),
			)
			errs.Add(nonFieldErrors, msgBadLogin)
		case err != nil:
			util.RenderInternalError(c, err)
			return
		default:
			if err := h.sessions.Login(c.Writer, user); err != nil {
				util.RenderInternalError(c, err)
				return
			}
			logger.Log.Info("User logged in", logger.WithUserID(user.ID))
			c.Redirect(http.StatusFound, util.SafeNextURL(form.Next, "/"))
			return
		}
	}

	form.Password = ""
	h.render(c, http.StatusOK, "registration/login.html", gin.H{
		"form":   form,
		"errors": errs,
	})
}

// Logout ends the session
// POST /auth/logout/
func (h *Handlers) Logout(c *gin.Context) {
	if userID := util.GetUserIDFromContext(c); userID != 0 {
		logger.Log.Info("User logged out", logger.WithUserID(userID))
	}
	h.sessions.Logout(c.Writer)
	c.Set(util.UserKey, nil)

	h.render(c, http.StatusOK, "registration/logged_out.html", gin.H{})
}

// EditProfilePage renders the current user's profile form
// GET /edit_profile/
func (h *Handlers) EditProfilePage(c *gin.Context) {
	user, _ := util.GetUserFromContext(c)
	h.render(c, http.StatusOK, "blog/user.html", gin.H{
		"form": ProfileForm{
			Username:  user.Username,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
		},
		"errors": FormErrors{},
	})
}

// EditProfile updates the current user's profile
// POST /edit_profile/
func (h *Handlers) EditProfile(c *gin.Context) {
	current, _ := util.GetUserFromContext(c)

	var form ProfileForm
	errs := bindForm(c, &form)
	form.Username = strings.TrimSpace(form.Username)
	if !h.checkUsername(c, errs, form.Username, current.ID) {
		return
	}

	if !errs.Any() {
		updated := *current
		updated.Username = form.Username
		updated.FirstName = strings.TrimSpace(form.FirstName)
		updated.LastName = strings.TrimSpace(form.LastName)
		updated.Email = strings.TrimSpace(form.Email)

		err := h.users.UpdateProfile(c.Request.Context(), &updated)
		switch {
		case errors.Is(err, repository.ErrUsernameTaken):
			errs.Add("username", msgUsernameTaken)
		case err != nil:
			util.HandleDBError(c, err, "user")
			return
		default:
			*current = updated
			c.Redirect(http.StatusFound, profileURL(updated.Username))
			return
		}
	}

	h.render(c, http.StatusOK, "blog/user.html", gin.H{
		"form":   form,
		"errors": errs,
	})
}

// PasswordChangePage renders the password change form
// GET /password/change/
func (h *Handlers) PasswordChangePage(c *gin.Context) {
	h.render(c, http.StatusOK, "registration/password_change_form.html", gin.H{"errors": FormErrors{}})
}

// PasswordChange sets a new password after checking the old one. Other
// sessions of the user stop working; this one is reissued.
// POST /password/change/
func (h *Handlers) PasswordChange(c *gin.Context) {
	user, _ := util.GetUserFromContext(c)

	var form PasswordChangeForm
	errs := bindForm(c, &form)
	if form.NewPassword1 != "" && len(errs["new_password2"]) == 0 {
		for _, problem := range auth.ValidatePassword(form.NewPassword1, user.Username, user.Email) {
			errs.Add("new_password2", problem)
		}
	}

	if !errs.Any() {
		err := h.accounts.ChangePassword(c.Request.Context(), user, form.OldPassword, form.NewPassword1)
		switch {
		case errors.Is(err, auth.ErrWrongPassword):
			errs.Add("old_password", msgWrongPassword)
		case err != nil:
			util.RenderInternalError(c, err)
			return
		default:
			if err := h.sessions.Login(c.Writer, user); err != nil {
				util.RenderInternalError(c, err)
				return
			}
			logger.Log.Info("Password changed", logger.WithUserID(user.ID))
			c.Redirect(http.StatusFound, "/password/change/done/")
			return
		}
	}

	h.render(c, http.StatusOK, "registration/password_change_form.html", gin.H{"errors": errs})
}

// PasswordChangeDone confirms a password change
// GET /password/change/done/
func (h *Handlers) PasswordChangeDone(c *gin.Context) {
	h.render(c, http.StatusOK, "registration/password_change_done.html", gin.H{})
}

// PasswordResetPage renders the reset request form
// GET /password/reset/
func (h *Handlers) PasswordResetPage(c *gin.Context) {
	h.render(c, http.StatusOK, "registration/password_reset_form.html", gin.H{
		"form":   PasswordResetForm{},
		"errors": FormErrors{},
	})
}

// PasswordReset mails a reset link to the account with the given email.
// The response is the same whether or not an account matched.
// POST /password/reset/
func (h *Handlers) PasswordReset(c *gin.Context) {
	var form PasswordResetForm
	errs := bindForm(c, &form)
	if errs.Any() {
		h.render(c, http.StatusOK, "registration/password_reset_form.html", gin.H{
			"form":   form,
			"errors": errs,
		})
		return
	}

	ctx := c.Request.Context()
	reset, err := h.accounts.RequestPasswordReset(ctx, form.Email)
	if err != nil {
		util.RenderInternalError(c, err)
		return
	}

	if reset != nil {
		metrics.Get().PasswordResetsTotal.WithLabelValues("requested").Inc()

		mailCtx, span := h.events.TraceExternalCall(ctx, "email", "send_password_reset")
		link := strings.TrimRight(h.baseURL, "/") + "/password/reset/confirm/" + reset.Token + "/"
		if err := h.mailer.SendPasswordReset(mailCtx, reset.User.Email, reset.User.Username, link); err != nil {
			telemetry.RecordError(span, err)
			logger.Log.Error("Failed to send password reset email",
				logger.WithUserID(reset.UserID),
				zap.Error(err),
			)
		}
		span.End()
	}

	c.Redirect(http.StatusFound, "/password/reset/done/")
}

// PasswordResetDone tells the visitor to check their mail
// GET /password/reset/done/
func (h *Handlers) PasswordResetDone(c *gin.Context) {
	h.render(c, http.StatusOK, "registration/password_reset_done.html", gin.H{})
}

// PasswordResetConfirmPage renders the new password form for a reset link
// GET /password/reset/confirm/:token/
func (h *Handlers) PasswordResetConfirmPage(c *gin.Context) {
	_, err := h.accounts.CheckResetToken(c.Request.Context(), c.Param("token"))
	if err != nil && !errors.Is(err, auth.ErrInvalidResetToken) {
		util.RenderInternalError(c, err)
		return
	}

	h.render(c, http.StatusOK, "registration/password_reset_confirm.html", gin.H{
		"validlink": err == nil,
		"errors":    FormErrors{},
	})
}

// PasswordResetConfirm redeems a reset link
// POST /password/reset/confirm/:token/
func (h *Handlers) PasswordResetConfirm(c *gin.Context) {
	ctx := c.Request.Context()
	token := c.Param("token")

	reset, err := h.accounts.CheckResetToken(ctx, token)
	if errors.Is(err, auth.ErrInvalidResetToken) {
		h.render(c, http.StatusOK, "registration/password_reset_confirm.html", gin.H{
			"validlink": false,
			"errors":    FormErrors{},
		})
		return
	}
	if err != nil {
		util.RenderInternalError(c, err)
		return
	}

	var form SetPasswordForm
	errs := bindForm(c, &form)
	if form.NewPassword1 != "" && len(errs["new_password2"]) == 0 {
		for _, problem := range auth.ValidatePassword(form.NewPassword1, reset.User.Username, reset.User.Email) {
			errs.Add("new_password2", problem)
		}
	}
	if errs.Any() {
		h.render(c, http.StatusOK, "registration/password_reset_confirm.html", gin.H{
			"validlink": true,
			"errors":    errs,
		})
		return
	}

	user, err := h.accounts.ResetPassword(ctx, token, form.NewPassword1)
	if err != nil {
		util.RenderError(c, err)
		return
	}

	metrics.Get().PasswordResetsTotal.WithLabelValues("completed").Inc()
	logger.Log.Info("Password reset completed", logger.WithUserID(user.ID))
	c.Redirect(http.StatusFound, "/password/reset/complete/")
}

// PasswordResetComplete confirms a reset
// GET /password/reset/complete/
func (h *Handlers) PasswordResetComplete(c *gin.Context) {
	h.render(c, http.StatusOK, "registration/password_reset_complete.html", gin.H{})
}
