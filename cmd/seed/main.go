package main

import (
	"context"
	"flag"
	"os"
	"time"

	"tour-service/internal/config"
	"tour-service/internal/db"
	"tour-service/internal/infrastructure/db/mongodb"
	"tour-service/internal/observability"
	"tour-service/internal/seed"
)

// Usage: seed --import [--dir dev-data] | seed --delete
func main() {
	importData := flag.Bool("import", false, "import users, tours and reviews from --dir")
	deleteData := flag.Bool("delete", false, "delete every user, tour and review")
	dir := flag.String("dir", "dev-data", "directory holding users.json, tours.json and reviews.json")
	flag.Parse()

	observability.InitLogger("tour-seed", config.EnvDevelopment)
	logger := *observability.GetLogger()

	if *importData == *deleteData {
		logger.Error().Msg("pass exactly one of --import or --delete")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, err := db.Connect(ctx, cfg.Mongo, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect MongoDB")
		}
	}()

	database := client.Database(cfg.Mongo.Database)
	seeder := seed.NewSeeder(
		database,
		mongodb.NewUserRepository(database),
		mongodb.NewTourRepository(database),
		mongodb.NewReviewRepository(database),
		mongodb.NewRatingLedger(database, logger),
		logger,
	)

	if *deleteData {
		err = seeder.Delete(ctx)
	} else {
		if err = db.EnsureIndexes(ctx, database); err == nil {
			err = seeder.Import(ctx, *dir)
		}
	}
	if err != nil {
		logger.Error().Err(err).Msg("seed failed")
		cancel()
		os.Exit(1)
	}
	logger.Info().Msg("seed finished")
}
