package boot

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/Vittorix99/mcp-website-sub001/src/config"
	"github.com/Vittorix99/mcp-website-sub001/src/db"
	"github.com/Vittorix99/mcp-website-sub001/src/lib"
	awslib "github.com/Vittorix99/mcp-website-sub001/src/lib/aws"
	"github.com/Vittorix99/mcp-website-sub001/src/lib/mailer"
	"github.com/Vittorix99/mcp-website-sub001/src/models"
	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.Event{},
		&models.Member{},
		&models.Order{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

type OrderExpirer interface {
	ExpireStaleOrders(ctx context.Context) (int, error)
}

type Sweeper interface {
	Sweep() int
}

type VisitorCleaner interface {
	Cleanup() int
}

func expireOrders(orders OrderExpirer) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	n, err := orders.ExpireStaleOrders(ctx)
	if err != nil {
		log.Printf("[scheduler] order expiry failed: %s\n", err.Error())
		return
	}
	if n > 0 {
		log.Printf("[scheduler] expired %d stale orders\n", n)
	}
}

func sweepSessions(sessions Sweeper, visitors VisitorCleaner) {
	if n := sessions.Sweep(); n > 0 {
		log.Printf("[scheduler] removed %d idle checkout sessions\n", n)
	}
	visitors.Cleanup()
}

// InitScheduler registers the background sweeps and starts the scheduler.
func InitScheduler(orders OrderExpirer, sessions Sweeper, visitors VisitorCleaner) {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	if _, err := lib.CreateCronJob("expire-orders", func() { expireOrders(orders) }, config.GetOrderSweepInterval()); err != nil {
		return
	}
	if _, err := lib.CreateCronJob("sweep-checkouts", func() { sweepSessions(sessions, visitors) }, time.Minute); err != nil {
		return
	}
	log.Println("Jobs in queue:", len(sched.Jobs()))
	sched.Start()
}

func StopScheduler() {
	lib.StopScheduler()
}

// mailTransport picks SES when MAIL_TRANSPORT=ses, SMTP otherwise.
func mailTransport(ctx context.Context) func(*lib.SendMailInput) error {
	if os.Getenv("MAIL_TRANSPORT") != "ses" {
		return lib.SendMail
	}
	cfg, err := awslib.LoadConfig(ctx)
	if err != nil {
		log.Printf("[mailer] SES unavailable, falling back to SMTP: %s\n", err.Error())
		return lib.SendMail
	}
	return awslib.NewSESSender(cfg).Send
}

// InitBroker starts the email consumer on SQS when AWS_SNS_TOPIC_PREFIX is set,
// on Kafka when KAFKA_BROKER is set, and does nothing otherwise.
func InitBroker(ctx context.Context) {
	switch {
	case awslib.Enabled():
		cfg, err := awslib.LoadConfig(ctx)
		if err != nil {
			log.Printf("[sqs] email consumer not started: %s\n", err.Error())
			return
		}
		consumer := awslib.NewSQSConsumer(cfg, config.GetMailQueue(), mailer.Deliver(mailTransport(ctx)))
		if err := consumer.Listen(ctx); err != nil {
			log.Printf("[sqs] email consumer not started: %s\n", err.Error())
		}
	case os.Getenv("KAFKA_BROKER") != "":
		if _, err := lib.KafkaCreateTopics(lib.TOPIC_ORDERS_CAPTURED, lib.TOPIC_ORDERS_FAILED, lib.TOPIC_EMAILS_TO_SEND); err != nil {
			log.Printf("[kafka] could not create topics: %s\n", err.Error())
		}
		if err := lib.KafkaConsume(ctx, "mailer", []string{lib.TOPIC_EMAILS_TO_SEND}, mailer.Deliver(mailTransport(ctx))); err != nil {
			log.Printf("[kafka] email consumer not started: %s\n", err.Error())
		}
	default:
		log.Println("[broker] no broker configured, order events and emails are disabled")
	}
}
