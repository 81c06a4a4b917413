package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lotusCalc/contracts"
)

const ApiVersion = "v1"

func SetupRouter(controller contracts.ApiController) *gin.Engine {
	router := gin.New()

	apiRouterGroup := router.Group("/api/" + ApiVersion)

	apiRouterGroup.GET("/:sheet_id", controller.GetSheetAction)

	apiRouterGroup.POST("/:sheet_id/cell/:cell_id", controller.SetCellAction)
	apiRouterGroup.GET("/:sheet_id/cell/:cell_id", controller.GetCellAction)
	apiRouterGroup.POST("/:sheet_id/cell/:cell_id/subscribe", controller.SubscribeAction)
	apiRouterGroup.GET("/:sheet_id/cell/:cell_id/dependents", controller.GetDependentsAction)

	apiRouterGroup.POST("/:sheet_id/recalculate", controller.RecalculateAction)
	apiRouterGroup.POST("/:sheet_id/structure", controller.StructuralEditAction)
	apiRouterGroup.POST("/:sheet_id/mode", controller.SetModeAction)
	apiRouterGroup.POST("/:sheet_id/order", controller.SetOrderAction)
	apiRouterGroup.POST("/:sheet_id/name", controller.SetNameAction)
	apiRouterGroup.GET("/:sheet_id/name/:name", controller.GetNameAction)
	apiRouterGroup.GET("/:sheet_id/circular", controller.GetCircularAction)

	router.GET("/healthcheck", func(c *gin.Context) {
		c.String(http.StatusOK, "health")
	})

	return router
}
