package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/Reshigan/SalesSync-sub016/config"
	"github.com/Reshigan/SalesSync-sub016/module/core"
	"github.com/Reshigan/SalesSync-sub016/module/core/domain"
)

func main() {
	cfg := config.Load()

	db, err := config.NewPostgres(cfg)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer func() { _ = db.Close() }()

	amqpConn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer func() { _ = amqpConn.Close() }()

	mqttClient, err := config.NewMQTT(cfg)
	if err != nil {
		log.Fatalf("mqtt: %v", err)
	}
	defer mqttClient.Disconnect(250)

	// Tenant-wide mandatory activities applied to every visit unless
	// the caller supplies its own templates.
	templates := []domain.ActivityTemplate{
		{
			Type:             domain.ActivityCustomerRegistration,
			Title:            "Customer Check-in",
			Description:      "Confirm customer identity and record visit context",
			EstimatedMinutes: 5,
			Commission:       domain.CommissionRule{Kind: domain.CommissionFixed, Amount: 1.00},
			Requirements:     []domain.Requirement{domain.ReqLocationValidated},
		},
	}

	coreModule, err := core.Build(db, amqpConn, mqttClient, cfg.GeofenceRadius, templates)
	if err != nil {
		log.Fatalf("core module: %v", err)
	}

	if err := coreModule.StartSubscribers(); err != nil {
		log.Fatalf("start subscribers: %v", err)
	}

	r := gin.Default()

	health := config.NewHealthChecker(db, amqpConn, mqttClient)
	health.Register(r)

	coreModule.RegisterRoutes(&r.RouterGroup)

	log.Printf("listening on :%s", cfg.HTTPPort)
	if err := r.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("server: %v", err)
	}
}
