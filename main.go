package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"recipebook/cmd/config"
	migration "recipebook/cmd/database/migrate"
	"recipebook/cmd/database/seed"
	"recipebook/internal/utils"
	"recipebook/internal/utils/mailing"
	"recipebook/internal/utils/storage"

	"github.com/gofiber/fiber/v2/log"
)

func main() {
	migrate := flag.Bool("migrate", false, "run database migrations and exit")
	seedIngredients := flag.String("seed-ingredients", "", "CSV file to replace the ingredient dataset with")
	seedTags := flag.String("seed-tags", "", "CSV file to replace the tag dataset with")
	flag.Parse()

	utils.LoadConfig()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("error connecting to database: %v", err)
	}

	if *migrate {
		if err := migration.Migrate(db); err != nil {
			log.Fatalf("error migrating database: %v", err)
		}
		return
	}

	if *seedIngredients != "" || *seedTags != "" {
		utils.InitValidator()
		if *seedIngredients != "" {
			if err := seed.SeedIngredients(db, *seedIngredients); err != nil {
				log.Fatalf("error seeding ingredients: %v", err)
			}
		}
		if *seedTags != "" {
			if err := seed.SeedTags(db, *seedTags); err != nil {
				log.Fatalf("error seeding tags: %v", err)
			}
		}
		return
	}

	app, err := config.NewApp(db, storage.NewAwsS3(), mailing.NewMailer())
	if err != nil {
		log.Fatalf("error creating app: %v", err)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Errorf("error shutting down: %v", err)
		}
	}()

	if err := app.Listen(":" + utils.GetConfig("APP_PORT")); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
