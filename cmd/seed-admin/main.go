// Command seed-admin creates the initial administrator account.
package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"github.com/crockshine/backend-erp/internal/auth"
	"github.com/crockshine/backend-erp/internal/model"
	"github.com/crockshine/backend-erp/internal/store"
	"github.com/crockshine/backend-erp/pkg/config"
	"github.com/crockshine/backend-erp/pkg/database"
	"github.com/crockshine/backend-erp/pkg/jwtutil"
	"github.com/crockshine/backend-erp/pkg/logger"
)

func main() {
	appConfig, err := config.Load("seed-admin")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	email := flag.String("email", appConfig.Admin.Email, "administrator email")
	password := flag.String("password", appConfig.Admin.Password, "administrator password")
	flag.Parse()

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       appConfig.Log.Level,
		Environment: appConfig.Server.Env,
		ServiceName: appConfig.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	db, err := database.InitDB(&appConfig.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.MigrateModels(model.All()...); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc := auth.NewService(store.New(db), jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      appConfig.JWT.SigningKey,
		ExpirationHours: appConfig.JWT.ExpirationHours,
	}))
	created, err := svc.EnsureAdmin(ctx, *email, *password)
	if err != nil {
		log.Fatal("Failed to seed administrator", zap.String("email", *email), zap.Error(err))
	}
	if created {
		log.Info("Administrator created", zap.String("email", *email))
	} else {
		log.Info("Administrator already exists", zap.String("email", *email))
	}
}
