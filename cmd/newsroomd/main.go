package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-newsroom"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func main() {
	cfg, err := newsroom.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	repo := newsroom.NewRepositoryManager(db)
	repo.MustValidate()

	hasher := newsroom.NewPasswordHasher()

	tokens := newsroom.NewTokenManager(cfg, nil)

	accounts := newsroom.NewAccounts(repo, hasher).
		WithPhoneRegion(cfg.DefaultPhoneRegion)

	mailer := newsroom.NewMailer(nil, cfg)

	if err := newsroom.SeedAdmin(ctx, repo, hasher, cfg, nil); err != nil {
		log.Fatal(err)
	}

	controller := newsroom.NewAPIController(repo, tokens, accounts, mailer,
		newsroom.WithControllerDebug(cfg.Debug),
		newsroom.WithVerifyRedirect(cfg.BaseURL+"/"),
	)

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			AppName:           cfg.ProjectName,
			EnablePrintRoutes: cfg.Debug,
			StrictRouting:     false,
		}))
	})

	newsroom.RegisterAPIRoutes(srv.Router().Group("/"), controller)

	srv.Serve(cfg.ServerAddr)

	WaitExitSignal()

	if err := srv.Shutdown(ctx); err != nil {
		log.Println(err)
	}
}

func openDatabase(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	models := []any{
		(*newsroom.User)(nil),
		(*newsroom.Category)(nil),
		(*newsroom.News)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			WithForeignKeys().
			Exec(ctx); err != nil {
			return nil, err
		}
	}

	return db, nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
