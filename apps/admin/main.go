package main

import (
	"log"
	"os"

	"github.com/gradespeed/gradespeed/core"
	"github.com/gradespeed/gradespeed/core/auth"
	"github.com/gradespeed/gradespeed/core/grading"
	googlesvc "github.com/gradespeed/gradespeed/services/google"
	logsvc "github.com/gradespeed/gradespeed/services/logger"
	"github.com/gradespeed/gradespeed/storage/database"
	sqlxrepos "github.com/gradespeed/gradespeed/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(err)
	}
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()

	// set up services
	authSvc := auth.NewService(sqlxrepos.NewTokenRepository(db), conf)
	gradingSvc := grading.NewService(
		sqlxrepos.NewGradingRepository(db),
		googlesvc.NewClassroomService(authSvc),
		googlesvc.NewDriveService(authSvc),
		logsvc.NewConsoleLogger(logger),
	)

	// start CLI
	cli := commandLine{
		db:         db,
		usrRepo:    sqlxrepos.NewUserRepository(db),
		authSvc:    authSvc,
		gradingSvc: gradingSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
