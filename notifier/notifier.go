// Package notifier reports release outcomes to Slack or mail.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"strings"

	"github.com/gorilla/schema"
)

var decoder = schema.NewDecoder()

// Sender interface for basic message sending.
type Sender interface {
	Send(ctx context.Context, message string)
}

// New returns a Sender for a notify URL such as
// slack://channel?title=App or smtp://host:587/to@example.com.
// An empty URL yields the Null sender. Notification setup failures degrade
// to Null with a log entry, never a fatal error.
func New(ctx context.Context, url string, logger *slog.Logger) Sender {
	if url == "" {
		return &Null{}
	}

	scheme, rest, _ := strings.Cut(url, "://")

	switch scheme {
	case "slack":
		sl, err := NewSlack(rest, logger)
		if err != nil {
			logger.Error("Slack notifier setup failure", slog.String("error", err.Error()))
			return &Null{}
		}
		return sl
	case "mail", "smtp":
		ml, err := NewMail(rest, logger)
		if err != nil {
			logger.Error("Mail notifier setup failure", slog.String("error", err.Error()))
			return &Null{}
		}
		return ml
	}

	logger.Error("Unsupported notify URL", slog.String("url", url))
	return &Null{}
}

// Null discards all messages.
type Null struct {
}

func (n *Null) Send(ctx context.Context, message string) {
}

func hostname() string {
	n, err := os.Hostname()
	if err != nil {
		return fmt.Sprintf("%#v", err)
	}
	return n
}

func cwd() string {
	c, err := os.Getwd()
	if err != nil {
		return fmt.Sprintf("%#v", err)
	}
	return c
}

func username() string {
	u, err := user.Current()
	if err != nil {
		return fmt.Sprintf("%#v", err)
	}
	return u.Name
}
