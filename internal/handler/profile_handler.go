/*
This file contains the player profile handlers: profile retrieval, avatar
equip and purchase, match history, and presigned URLs for custom avatar
uploads.
*/
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"chessarena/internal/app/db"
	"chessarena/internal/pkg/auth/jwt"
	"chessarena/internal/pkg/errs"
	"chessarena/internal/pkg/logx"
	"chessarena/internal/pkg/randx"
	"chessarena/internal/pkg/req"
	"chessarena/internal/pkg/resp"
)

const (
	// presignedUploadTTL bounds how long an issued avatar upload URL stays valid.
	presignedUploadTTL = 10 * time.Minute

	// maxAvatarBytes bounds the size of a custom avatar upload.
	maxAvatarBytes = 2 << 20
)

// avatarCatalog maps purchasable avatar ids to their coin price. The three
// starter avatars are granted at signup and never appear here.
var avatarCatalog = map[string]int64{
	"avatar_04": 200,
	"avatar_05": 200,
	"avatar_06": 500,
	"avatar_07": 500,
	"avatar_08": 1000,
	"avatar_09": 1000,
	"avatar_10": 2500,
}

// allowedAvatarMimeTypes are the upload content types accepted for custom avatars.
var allowedAvatarMimeTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// requireIdentity resolves the authenticated player or writes an unauthorized
// response and returns nil.
func requireIdentity(w http.ResponseWriter, r *http.Request) *jwt.Payload {
	identity := jwt.GetPayloadFromContext(r)
	if identity == nil {
		resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
		return nil
	}
	return identity
}

// HandleGetProfile returns the authenticated player's full profile.
func HandleGetProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r)
		if identity == nil {
			return
		}

		dbUser, err := deps.DB.GetUserByID(r.Context(), identity.ID)
		if err != nil {
			logx.Warn("get_profile: user not found", "id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": profileResponse(dbUser),
		})
	}
}

type EquipAvatarInput struct {
	AvatarID string `json:"avatarId"`
}

// HandleEquipAvatar sets the player's current avatar from their unlocked set.
func HandleEquipAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r)
		if identity == nil {
			return
		}

		var input EquipAvatarInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.AvatarID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		dbUser, err := deps.DB.EquipAvatar(r.Context(), identity.ID, input.AvatarID)
		if err != nil {
			if db.IsNotFound(err) {
				// Either the user vanished or the avatar is not unlocked.
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}

			logx.Error(err, "equip_avatar: update failed", "user_id", identity.ID, "avatar_id", input.AvatarID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": profileResponse(dbUser),
		})
	}
}

type BuyAvatarInput struct {
	AvatarID string `json:"avatarId"`
}

// HandleBuyAvatar purchases an avatar from the catalog, deducting its price
// and unlocking it in one transaction.
func HandleBuyAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r)
		if identity == nil {
			return
		}

		var input BuyAvatarInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		cost, ok := avatarCatalog[input.AvatarID]
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		dbUser, err := deps.DB.BuyAvatar(r.Context(), identity.ID, input.AvatarID, cost)
		if err != nil {
			switch {
			case errors.Is(err, db.ErrAvatarAlreadyOwned):
				resp.RespondError(w, r, errs.NewError(errs.ErrAvatarAlreadyOwned))
			case errors.Is(err, db.ErrInsufficientCoins):
				resp.RespondError(w, r, errs.NewError(errs.ErrInsufficientCoins))
			case db.IsNotFound(err):
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			default:
				logx.Error(err, "buy_avatar: purchase failed", "user_id", identity.ID, "avatar_id", input.AvatarID)
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			}
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": profileResponse(dbUser),
		})
	}
}

// HandleGetHistory returns the player's recent match history, newest first.
func HandleGetHistory(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r)
		if identity == nil {
			return
		}

		history, err := deps.DB.RecentHistory(r.Context(), identity.ID)
		if err != nil {
			logx.Error(err, "get_history: query failed", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if history == nil {
			history = []db.HistoryRow{}
		}

		resp.RespondSuccess(w, r, map[string]any{
			"matchHistory": history,
		})
	}
}

type PresignAvatarInput struct {
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// HandlePresignAvatarUpload issues a presigned PUT URL for a custom avatar
// image. The object key is server-generated under the player's own prefix.
func HandlePresignAvatarUpload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r)
		if identity == nil {
			return
		}

		var input PresignAvatarInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		ext, ok := allowedAvatarMimeTypes[input.MimeType]
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if input.FileSize <= 0 || input.FileSize > maxAvatarBytes {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		key := fmt.Sprintf("avatars/%s/%s.%s", identity.ID, randx.ObjectKeySuffix(), ext)

		uploadURL, err := deps.StorageService.PresignUpload(r.Context(), key, input.MimeType, input.FileSize, presignedUploadTTL)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"uploadUrl": uploadURL,
			"key":       key,
		})
	}
}

// HandlePresignAvatarDownload issues a presigned GET URL for a stored avatar.
func HandlePresignAvatarDownload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r)
		if identity == nil {
			return
		}

		key := r.URL.Query().Get("key")
		if key == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		downloadURL, err := deps.StorageService.PresignDownload(r.Context(), key, presignedUploadTTL)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"downloadUrl": downloadURL,
		})
	}
}
