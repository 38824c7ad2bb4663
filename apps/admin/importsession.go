package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) importSession(email, apiCourseID, apiAssignmentID string, fullUpdate bool) error {
	ctx := context.Background()
	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	course, err := cli.gradingSvc.EnsureCourse(ctx, usr.ID, apiCourseID)
	if err != nil {
		return err
	}
	session, created, err := cli.gradingSvc.ImportSession(ctx, usr.ID, course, apiAssignmentID, fullUpdate)
	if err != nil {
		return err
	}

	if created {
		fmt.Printf("created session %s (%s)\n", session.ID, session.AssignmentName)
	} else {
		fmt.Printf("resumed session %s (%s)\n", session.ID, session.AssignmentName)
	}
	return nil
}
