package main

import (
	"flag"
	"os"
	"strings"
	"syscall"

	"github.com/aquaponto/aquaponto/internal/app"
	"github.com/aquaponto/aquaponto/internal/config"
	"github.com/aquaponto/aquaponto/internal/logger"
	"github.com/aquaponto/aquaponto/internal/models"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if cfg.Server.Mode == "release" {
		if isWeakSecret(cfg.JWT.SecretKey) {
			stdLog.Fatalf("JWT secret fraco ou padrão; configure uma chave aleatória forte em produção")
		}
	} else if isWeakSecret(cfg.JWT.SecretKey) {
		stdLog.Printf("aviso: JWT secret fraco ou padrão; troque antes de ir para produção")
	}

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("falha ao inicializar o banco de dados: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("falha na migração do banco de dados: %v", err)
	}

	defaultAdminEmail := os.Getenv("AQUAPONTO_DEFAULT_ADMIN_EMAIL")
	defaultAdminPass := os.Getenv("AQUAPONTO_DEFAULT_ADMIN_PASSWORD")
	if cfg.Server.Mode == "release" && defaultAdminPass == "" {
		stdLog.Printf("aviso: AQUAPONTO_DEFAULT_ADMIN_PASSWORD não definido; administrador padrão não criado")
	} else if err := models.InitDefaultAdmin(defaultAdminEmail, defaultAdminPass); err != nil {
		stdLog.Printf("aviso: falha ao criar o administrador padrão: %v", err)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "modo de execução: all (padrão), api, worker")
	flag.Parse()

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("falha ao executar o serviço: %v", err)
	}
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	if strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key") {
		return true
	}
	return false
}
