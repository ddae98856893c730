package core

import (
	"database/sql"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Reshigan/SalesSync-sub016/module/core/domain"
	handler "github.com/Reshigan/SalesSync-sub016/module/core/internal/handler/http"
	"github.com/Reshigan/SalesSync-sub016/module/core/internal/handler/subscriber"
	"github.com/Reshigan/SalesSync-sub016/module/core/internal/repository/cache/memory"
	"github.com/Reshigan/SalesSync-sub016/module/core/internal/repository/database/postgres"
	"github.com/Reshigan/SalesSync-sub016/module/core/internal/repository/publisher/rabbitmq"
	"github.com/Reshigan/SalesSync-sub016/module/core/service"
)

type Module struct {
	GeofenceSvc *service.GeofenceService
	WorkflowSvc *service.WorkflowService
	VisitSvc    *service.VisitService
	handler     *handler.VisitHandler
	subscriber  *subscriber.LocationSubscriber
}

// Build wires the visit engine: in-memory location cache, geofence and
// workflow services, postgres audit repos, rabbitmq event publishing,
// the MQTT location ingest and the HTTP handler. Mandatory activity
// templates and the geofence radius are host-supplied inputs.
func Build(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, allowedRadiusMeters float64, templates []domain.ActivityTemplate) (*Module, error) {
	locations := memory.NewLocationCache()
	gpsLogRepo := postgres.NewGPSLogRepo(db)
	visitRepo := postgres.NewVisitRepo(db)

	eventPub, err := rabbitmq.NewVisitEventPublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("visit event publisher: %w", err)
	}

	geofenceSvc := service.NewGeofenceService(locations)
	workflowSvc := service.NewWorkflowService(geofenceSvc)
	visitSvc := service.NewVisitService(workflowSvc, geofenceSvc, visitRepo, eventPub, allowedRadiusMeters, templates)

	h := handler.NewVisitHandler(visitSvc)
	sub := subscriber.NewLocationSubscriber(mqttClient, geofenceSvc, gpsLogRepo)

	return &Module{
		GeofenceSvc: geofenceSvc,
		WorkflowSvc: workflowSvc,
		VisitSvc:    visitSvc,
		handler:     h,
		subscriber:  sub,
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.handler.Register(r)
}

func (m *Module) StartSubscribers() error {
	return m.subscriber.Start()
}
