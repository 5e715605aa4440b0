package boot

import (
	"context"
	"log"
	"log/slog"
	"time"

	"lodging/src/common"
	"lodging/src/config"
	"lodging/src/db"
	"lodging/src/lib"
	"lodging/src/models"
	"lodging/src/services"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(models.All()...)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	log.Println("Jobs in queue:", len(sched.Jobs()))
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Println("An error has occurred while shutting stopping Scheduler. Check logs for info")
	}
}

// InitLocker picks the Redis booking lock when REDIS_HOST is set and the
// in-process lock otherwise.
func InitLocker(cfg config.Config) services.BookingLocker {
	if cfg.RedisHost != "" {
		if rdb := lib.GetRedisClient(); rdb != nil {
			log.Println("Booking lock: redis")
			return lib.NewRedisLocker(rdb, cfg.BookingLockTTL)
		}
	}
	log.Println("Booking lock: local")
	return lib.NewLocalLocker()
}

// InitNotifier fans events out to every configured sink. The log sink is
// always present.
func InitNotifier(ctx context.Context, cfg config.Config, logger *slog.Logger) services.Notifier {
	sinks := common.Fanout{common.NewLogNotifier(logger)}

	if cfg.KafkaBroker != "" {
		producer, err := lib.NewKafkaProducer("lodging-api")
		if err != nil {
			log.Printf("[Kafka] error: %s\n", err.Error())
		} else {
			go func() {
				tctx, cancel := context.WithTimeout(ctx, 30*time.Second)
				defer cancel()
				if _, err := lib.KafkaCreateTopics(tctx, cfg.KafkaTopic); err != nil {
					log.Printf("[Kafka] error creating topic %s: %s\n", cfg.KafkaTopic, err.Error())
				}
			}()
			sinks = append(sinks, common.NewKafkaNotifier(producer, cfg.KafkaTopic))
		}
	}

	if cfg.SNSTopicARN != "" {
		client, err := lib.AWSGetSNSClient(ctx)
		if err != nil {
			log.Printf("[SNS] error: %s\n", err.Error())
		} else {
			sinks = append(sinks, common.NewSNSNotifier(client, cfg.SNSTopicARN))
		}
	}
	return sinks
}

func InitReminders(cfg config.Config, notifier services.Notifier) services.ReminderScheduler {
	sched, err := lib.GetScheduler()
	if err != nil {
		return nil
	}
	return common.NewCheckinReminders(sched, notifier, cfg.CheckinWindow)
}
