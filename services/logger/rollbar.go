package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	rollbarerrs "github.com/rollbar/rollbar-go/errors"

	"github.com/gradespeed/gradespeed/core"
	"github.com/gradespeed/gradespeed/core/user"
)

// RollbarLogger reports to rollbar and mirrors every entry to the
// standard logger so records also land in the process output.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.Rollbar.Token)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(rollbarerrs.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// payload builds the rollbar argument list from msg and args. A user.User
// among the args is pulled out and reported as the rollbar person instead
// of being logged; at most one is honored.
func (l RollbarLogger) payload(msg string, args []interface{}) []interface{} {
	out := make([]interface{}, 0, len(args)+1)
	out = append(out, msg)
	var person *user.User
	for _, arg := range args {
		if usr, ok := arg.(user.User); ok {
			if person == nil {
				person = &usr
			}
			continue
		}
		out = append(out, arg)
	}
	if person == nil {
		rollbar.ClearPerson()
	} else {
		rollbar.SetPerson(person.ID, person.Name, person.Email)
	}
	return out
}

func (l RollbarLogger) emit(send func(...interface{}), msg string, args []interface{}) {
	send(l.payload(msg, args)...)
	l.std.Println(msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	l.emit(rollbar.Debug, msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.emit(rollbar.Info, msg, args)
}

func (l RollbarLogger) Warning(msg string, args ...interface{}) {
	l.emit(rollbar.Warning, msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	l.emit(rollbar.Error, msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.emit(rollbar.Critical, msg, args)
	l.std.Fatal(msg)
}
