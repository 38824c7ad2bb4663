package main

import (
	"context"
	"time"
)

func (cli *commandLine) setToken(email, accessToken string, expiresInHours int) error {
	ctx := context.Background()
	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(time.Duration(expiresInHours) * time.Hour)
	_, err = cli.authSvc.SaveToken(ctx, usr.ID, accessToken, "", expiresAt)
	return err
}
