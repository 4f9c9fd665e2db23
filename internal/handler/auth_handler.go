/*
Package handler provides the HTTP handlers and routing setup for the Chess
Arena server.

This file contains the authentication handlers: account creation and login.
*/
package handler

import (
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"chessarena/internal/app/db"
	"chessarena/internal/pkg/auth/jwt"
	"chessarena/internal/pkg/errs"
	"chessarena/internal/pkg/logx"
	"chessarena/internal/pkg/req"
	"chessarena/internal/pkg/resp"
)

var (
	gamingNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	emailRegex      = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

type SignupInput struct {
	GamingName string `json:"gamingName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

// HandleSignup processes the request to create a new player account.
func HandleSignup(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if payload := jwt.GetPayloadFromContext(r); payload != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyLoggedIn))
			return
		}

		var input SignupInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !gamingNameRegex.MatchString(input.GamingName) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidGamingName))
			return
		}

		input.Email = strings.ToLower(strings.TrimSpace(input.Email))
		if !emailRegex.MatchString(input.Email) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		passwordLen := utf8.RuneCountInString(input.Password)
		if passwordLen < 6 || passwordLen > 50 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		user, err := deps.DB.CreateUser(r.Context(), input.GamingName, input.Email, string(hashedPassword))
		if err != nil {
			if db.IsUniqueViolation(err) {
				logx.Warn("signup conflict: gaming name or email already exists", "gaming_name", input.GamingName)
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
				return
			}

			logx.Error(err, "failed to create user in database")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if err := deps.DB.UpdateLastLogin(r.Context(), user.ID); err != nil {
			logx.Error(err, "signup: failed to update last_login_at", "user_id", user.ID)
		}

		tokenString, err := jwt.GenerateToken(&jwt.Payload{
			ID:         user.ID,
			GamingName: user.GamingName,
		}, deps.Config.JWTSecret, jwt.UserIdentityExpiration)
		if err != nil {
			logx.Error(err, "failed to generate token after signup")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token": tokenString,
			"user":  profileResponse(user),
		})
	}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies player credentials and issues a JWT token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if identity := jwt.GetPayloadFromContext(r); identity != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyLoggedIn))
			return
		}

		var input LoginInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		input.Email = strings.ToLower(strings.TrimSpace(input.Email))

		dbUser, err := deps.DB.GetUserByEmail(r.Context(), input.Email)
		if err != nil {
			logx.Warn("login: user fetch failed", "email", input.Email, "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(dbUser.PasswordHash), []byte(input.Password)); err != nil {
			logx.Warn("login: password mismatch", "email", input.Email)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := deps.DB.UpdateLastLogin(r.Context(), dbUser.ID); err != nil {
			logx.Error(err, "login: failed to update last_login_at", "user_id", dbUser.ID)
		}

		token, err := jwt.GenerateToken(&jwt.Payload{
			ID:         dbUser.ID,
			GamingName: dbUser.GamingName,
		}, deps.Config.JWTSecret, jwt.UserIdentityExpiration)
		if err != nil {
			logx.Error(err, "login: jwt generation failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token": token,
			"user":  profileResponse(dbUser),
		})
	}
}

// profileResponse is the wire shape of a full player profile, shared by auth
// and profile endpoints. The "_id" key matches what the game clients expect.
func profileResponse(u db.UserRow) map[string]any {
	var lastLogin any
	if u.LastLoginAt != nil {
		lastLogin = u.LastLoginAt.Format(time.RFC3339)
	}

	return map[string]any{
		"_id":             u.ID,
		"gamingName":      u.GamingName,
		"email":           u.Email,
		"avatarId":        u.AvatarID,
		"unlockedAvatars": u.UnlockedAvatars,
		"coins":           u.Coins,
		"wins":            u.Wins,
		"losses":          u.Losses,
		"draws":           u.Draws,
		"totalGames":      u.TotalGames,
		"level":           u.Level,
		"xp":              u.XP,
		"createdAt":       u.CreatedAt.Format(time.RFC3339),
		"lastLoginAt":     lastLogin,
	}
}
