package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/gradespeed/gradespeed/core/auth"
	"github.com/gradespeed/gradespeed/core/grading"
	"github.com/gradespeed/gradespeed/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sql.DB
	usrRepo    user.Repository
	authSvc    *auth.Service
	gradingSvc *grading.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a database migration command (up, down, status, ...)")
	fmt.Println("  adduser -email EMAIL -name NAME - update or create a user; the password will be prompted")
	fmt.Println("  settoken -email EMAIL -expires-in HOURS - store a Google OAuth token; the token will be prompted")
	fmt.Println("  importsession -email EMAIL -course COURSE_ID -assignment ASSIGNMENT_ID [-full] - import a grading session")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserName := addUserCmd.String("name", "", "The user's full name.")

	setTokenCmd := flag.NewFlagSet("settoken", flag.ExitOnError)
	setTokenEmail := setTokenCmd.String("email", "", "The user's email. The access token will be prompted next.")
	setTokenExpiry := setTokenCmd.Int("expires-in", 1, "Token lifetime in hours.")

	importCmd := flag.NewFlagSet("importsession", flag.ExitOnError)
	importEmail := importCmd.String("email", "", "The owning user's email.")
	importCourse := importCmd.String("course", "", "The remote course id.")
	importAssignment := importCmd.String("assignment", "", "The remote assignment id.")
	importFull := importCmd.Bool("full", false, "Refresh existing submissions from the remote records.")

	switch args[1] {
	case "migrate":
		return cli.migrate(args[2:])
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" || *addUserName == "" {
			addUserCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserEmail, *addUserName, string(pwd))
	case "settoken":
		if err := setTokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setTokenEmail == "" {
			setTokenCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter access token:")
		token, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(token) == 0 {
			setTokenCmd.Usage()
			return errHelp
		}
		return cli.setToken(*setTokenEmail, string(token), *setTokenExpiry)
	case "importsession":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importEmail == "" || *importCourse == "" || *importAssignment == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importSession(*importEmail, *importCourse, *importAssignment, *importFull)
	default:
		cli.printUsage()
		return errHelp
	}
}
