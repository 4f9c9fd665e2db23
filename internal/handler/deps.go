package handler

import (
	"chessarena/internal/app/db"
	"chessarena/internal/app/game"
	"chessarena/internal/app/storage"
	"chessarena/internal/configs"
)

type AppDeps struct {
	Hub            *game.Hub
	Config         *configs.AppConfig
	StorageService storage.Service
	DB             *db.Store
}
