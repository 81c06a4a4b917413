package main

import (
	"github.com/gin-gonic/gin"
	"go.etcd.io/bbolt"

	"lotusCalc/contracts"
)

type ServiceContainer struct {
	Config            Config
	Database          *bbolt.DB
	FunctionRegistry  *FunctionRegistry
	SheetRepository   contracts.SheetRepository
	WebhookDispatcher *WebhookDispatcher
	ApiController     *ApiController
	Router            *gin.Engine
}

func BuildServiceContainer(config Config) (container ServiceContainer, err error) {
	container.Config = config

	container.Database, err = bbolt.Open(config.DatabasePath, 0600, nil)
	if err != nil {
		return
	}

	serializer := NewCellBinarySerializer()
	container.FunctionRegistry = NewFunctionRegistry()
	container.WebhookDispatcher = NewWebhookDispatcher()
	container.SheetRepository = NewSheetRepository(
		container.Database, serializer, container.FunctionRegistry,
		NewClock(), NewRandomGenerator(), container.WebhookDispatcher,
	)
	container.ApiController = NewApiController(container.SheetRepository, container.WebhookDispatcher)
	container.Router = SetupRouter(container.ApiController)
	return
}
