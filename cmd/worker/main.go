package main

import (
	"encoding/json"
	"os"

	"github.com/robfig/cron/v3"
	logrus "github.com/sirupsen/logrus"

	"vestingcontrol/pkg/config"
	"vestingcontrol/schedule"
)

func main() {
	// Initialize logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	config.InitDB()

	// Ledger reconciliation on a fixed schedule
	c := cron.New()
	_, err := c.AddFunc("*/10 * * * *", func() {
		if _, err := schedule.ReconcileClaimRecords(config.DB); err != nil {
			logrus.Errorf("Claim record reconciliation failed: %v", err)
		}
	})
	if err != nil {
		logrus.Fatal("Failed to register reconciliation job: ", err)
	}
	c.Start()
	defer c.Stop()

	if os.Getenv("RABBITMQ_HOST") == "" {
		logrus.Info("RabbitMQ not configured, worker runs reconciliation only")
		select {}
	}

	// Initialize RabbitMQ
	config.InitRabbitMQ()
	defer config.RabbitMQ.Close()

	// Drain the settlement alert queue so failures reach operators even when
	// nobody is watching the logs
	msgConsumer, err := config.NewConsumer(config.QueueSettlementAlerts)
	if err != nil {
		logrus.Fatal("Failed to create consumer: ", err)
	}
	defer msgConsumer.Close()

	logrus.Info("Settlement alert worker started, waiting for messages...")

	err = msgConsumer.Consume(func(msg []byte) error {
		var alert struct {
			Message string                 `json:"message"`
			Meta    map[string]interface{} `json:"meta"`
		}
		if err := json.Unmarshal(msg, &alert); err != nil {
			logrus.Errorf("Failed to unmarshal alert: %v", err)
			return err
		}

		logrus.WithFields(logrus.Fields{
			"meta": alert.Meta,
		}).Warnf("Settlement alert: %s", alert.Message)
		return nil
	})
	if err != nil {
		logrus.Fatal("Failed to start consumer: ", err)
	}
}
