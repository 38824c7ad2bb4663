package main

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gradespeed/gradespeed/core"
	"github.com/gradespeed/gradespeed/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(email, name, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	name = core.CleanString(name)

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		active := true
		usr = user.User{
			ID:        uuid.New().String(),
			Email:     email,
			IsActive:  &active,
			CreatedAt: time.Now().UTC(),
		}
		usr.Name = name
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		usr.UpdatedAt = usr.CreatedAt
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	usr.Name = name
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}
