package main

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/papaattanasi-debug/papaattanasi/api"
	"github.com/papaattanasi-debug/papaattanasi/internal/infrastructure/llm"
	"github.com/papaattanasi-debug/papaattanasi/internal/infrastructure/persistence"
	"github.com/papaattanasi-debug/papaattanasi/internal/registry"
	"github.com/papaattanasi-debug/papaattanasi/internal/service/chat"
	"github.com/papaattanasi-debug/papaattanasi/internal/service/debate"
	"github.com/papaattanasi-debug/papaattanasi/internal/service/history"
	"github.com/papaattanasi-debug/papaattanasi/internal/util"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file, relying on process environment")
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	jwtSecret := util.GetEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	reg, err := registry.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load model registry")
	}
	log.WithField("models", len(reg.List())).Info("model registry loaded")

	dbPath := util.GetEnv("DATABASE_PATH", "./data/conversations.db")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		log.WithError(err).Fatal("failed to create database directory")
	}
	repo, err := persistence.NewSQLiteConversationRepository(dbPath)
	if err != nil {
		log.WithError(err).Fatal("failed to open conversation store")
	}
	defer repo.Close()
	log.WithField("path", dbPath).Info("conversation store ready")

	chatSvc := chat.NewService(reg, repo, llm.Dispatch, log)
	manager := debate.NewManager(chatSvc.DebateTurn, log)
	historySvc := history.NewService(repo)

	router := api.NewRouter(chatSvc, manager, historySvc, []byte(jwtSecret))

	addr := "0.0.0.0:" + util.GetEnv("PORT", "9090")
	log.WithField("addr", addr).Info("listening")
	if err := router.Run(addr); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
