// The worker consumes subscriber.added events and mails the page owner.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tazhibayda/linkbio/internal/config"
	"github.com/tazhibayda/linkbio/internal/log"
	"github.com/tazhibayda/linkbio/internal/mail"
	"github.com/tazhibayda/linkbio/internal/queue"
)

func main() {
	cfg := config.Load()

	logger, err := log.Init(os.Getenv("APP_ENV") == "prod")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cons, err := queue.NewConsumer(cfg.RabbitURL, cfg.EventExchange,
		"linkbio.notify", queue.KeySubscriberAdded)
	if err != nil {
		logger.Fatal("rabbit consumer init", zap.Error(err))
	}
	defer cons.Close()

	sender := mail.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("worker up",
		zap.String("exchange", cfg.EventExchange),
		zap.String("key", queue.KeySubscriberAdded))

	if err := cons.Consume(ctx, 4, func(b []byte) error {
		var ev queue.SubscriberAdded
		if err := json.Unmarshal(b, &ev); err != nil {
			// malformed payload: drop, requeueing will never help
			logger.Error("bad event payload", zap.Error(err))
			return nil
		}
		subject := "New subscriber on your page"
		body := fmt.Sprintf("%s subscribed on linkb.io/%s", ev.Email, ev.Username)
		return sender.Send(ev.OwnerEmail, subject, body)
	}); err != nil {
		logger.Fatal("consumer stopped", zap.Error(err))
	}
}
