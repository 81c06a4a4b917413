package contracts

import "github.com/gin-gonic/gin"

type ApiController interface {
	SetCellAction(c *gin.Context)
	GetCellAction(c *gin.Context)
	GetSheetAction(c *gin.Context)
	RecalculateAction(c *gin.Context)
	StructuralEditAction(c *gin.Context)
	SetModeAction(c *gin.Context)
	SetOrderAction(c *gin.Context)
	SetNameAction(c *gin.Context)
	GetNameAction(c *gin.Context)
	GetDependentsAction(c *gin.Context)
	GetCircularAction(c *gin.Context)
	SubscribeAction(c *gin.Context)
}
