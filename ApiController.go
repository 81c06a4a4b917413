package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lotusCalc/contracts"
)

type ApiController struct {
	SheetRepository   contracts.SheetRepository
	WebhookDispatcher contracts.WebhookDispatcher
}

type CellEndpointParams struct {
	SheetId string `uri:"sheet_id" binding:"required"`
	CellId  string `uri:"cell_id" binding:"required"`
}

type SheetEndpointParams struct {
	SheetId string `uri:"sheet_id" binding:"required"`
}

type NameEndpointParams struct {
	SheetId string `uri:"sheet_id" binding:"required"`
	Name    string `uri:"name" binding:"required"`
}

type SetCellRequest struct {
	Value string `json:"value" binding:"required"`
}

type SetNameRequest struct {
	Name   string `json:"name" binding:"required"`
	Target string `json:"target"`
}

type StructuralEditRequest struct {
	Operation string `json:"operation" binding:"required"`
	Index     int    `json:"index"`
}

type SetModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

type SetOrderRequest struct {
	Order string `json:"order" binding:"required"`
}

type SubscribeRequest struct {
	WebhookUrl string `json:"webhook_url" binding:"required"`
}

var structuralEditKinds = map[string]contracts.StructuralEditKind{
	"insert_row":    contracts.InsertRow,
	"delete_row":    contracts.DeleteRow,
	"insert_column": contracts.InsertColumn,
	"delete_column": contracts.DeleteColumn,
}

var recalcModes = map[string]contracts.RecalcMode{
	"automatic": contracts.RecalcAutomatic,
	"manual":    contracts.RecalcManual,
}

var recalcOrders = map[string]contracts.RecalcOrder{
	"natural":     contracts.OrderNatural,
	"column-wise": contracts.OrderColumnWise,
	"row-wise":    contracts.OrderRowWise,
}

func NewApiController(sheetRepository contracts.SheetRepository, webhookDispatcher contracts.WebhookDispatcher) *ApiController {
	return &ApiController{SheetRepository: sheetRepository, WebhookDispatcher: webhookDispatcher}
}

// respondError maps domain errors onto HTTP statuses: unknown sheets
// and cells are 404, malformed input is 422.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, contracts.SheetNotFoundError),
		errors.Is(err, contracts.CellNotFoundError),
		errors.Is(err, contracts.NameNotFoundError):
		status = http.StatusNotFound
	case errors.Is(err, contracts.InvalidReferenceError),
		errors.Is(err, InvalidNameError),
		errors.Is(err, InvalidEditIndexError):
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (api *ApiController) SetCellAction(c *gin.Context) {
	params := CellEndpointParams{}
	request := SetCellRequest{}
	var response *contracts.Cell

	err := c.ShouldBindUri(&params)
	if err == nil {
		err = c.ShouldBindJSON(&request)
	}
	if err == nil {
		response, err = api.SheetRepository.SetCell(params.SheetId, params.CellId, request.Value)
	}

	if err != nil {
		if response == nil {
			response = &contracts.Cell{}
		}
		response.Value = request.Value
		response.Result = err.Error()
		c.JSON(http.StatusUnprocessableEntity, response)
		return
	}
	c.JSON(http.StatusCreated, response)
}

func (api *ApiController) GetCellAction(c *gin.Context) {
	params := CellEndpointParams{}
	var response *contracts.Cell

	err := c.ShouldBindUri(&params)
	if err == nil {
		response, err = api.SheetRepository.GetCell(params.SheetId, params.CellId)
	}

	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (api *ApiController) GetSheetAction(c *gin.Context) {
	params := SheetEndpointParams{}
	var response contracts.CellList

	err := c.ShouldBindUri(&params)
	if err == nil {
		response, err = api.SheetRepository.GetCellList(params.SheetId)
	}

	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (api *ApiController) RecalculateAction(c *gin.Context) {
	params := SheetEndpointParams{}
	var stats contracts.RecalcStats

	err := c.ShouldBindUri(&params)
	if err == nil {
		stats, err = api.SheetRepository.Recalculate(params.SheetId)
	}

	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (api *ApiController) StructuralEditAction(c *gin.Context) {
	params := SheetEndpointParams{}
	request := StructuralEditRequest{}
	var stats contracts.RecalcStats

	err := c.ShouldBindUri(&params)
	if err == nil {
		err = c.ShouldBindJSON(&request)
	}
	if err == nil {
		kind, known := structuralEditKinds[request.Operation]
		if !known {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unknown operation: " + request.Operation})
			return
		}
		stats, err = api.SheetRepository.StructuralEdit(params.SheetId, kind, request.Index)
	}

	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (api *ApiController) SetModeAction(c *gin.Context) {
	params := SheetEndpointParams{}
	request := SetModeRequest{}

	err := c.ShouldBindUri(&params)
	if err == nil {
		err = c.ShouldBindJSON(&request)
	}
	if err == nil {
		mode, known := recalcModes[request.Mode]
		if !known {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unknown mode: " + request.Mode})
			return
		}
		err = api.SheetRepository.SetMode(params.SheetId, mode)
	}

	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mode": request.Mode})
}

func (api *ApiController) SetOrderAction(c *gin.Context) {
	params := SheetEndpointParams{}
	request := SetOrderRequest{}

	err := c.ShouldBindUri(&params)
	if err == nil {
		err = c.ShouldBindJSON(&request)
	}
	if err == nil {
		order, known := recalcOrders[request.Order]
		if !known {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unknown order: " + request.Order})
			return
		}
		err = api.SheetRepository.SetOrder(params.SheetId, order)
	}

	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": request.Order})
}

func (api *ApiController) SetNameAction(c *gin.Context) {
	params := SheetEndpointParams{}
	request := SetNameRequest{}

	err := c.ShouldBindUri(&params)
	if err == nil {
		err = c.ShouldBindJSON(&request)
	}
	if err == nil {
		err = api.SheetRepository.SetName(params.SheetId, request.Name, request.Target)
	}

	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"name": request.Name, "target": request.Target})
}

func (api *ApiController) GetNameAction(c *gin.Context) {
	params := NameEndpointParams{}
	var target string

	err := c.ShouldBindUri(&params)
	if err == nil {
		target, err = api.SheetRepository.GetName(params.SheetId, params.Name)
	}

	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": params.Name, "target": target})
}

func (api *ApiController) GetDependentsAction(c *gin.Context) {
	params := CellEndpointParams{}
	var dependents []string

	err := c.ShouldBindUri(&params)
	if err == nil {
		dependents, err = api.SheetRepository.GetDependents(params.SheetId, params.CellId)
	}

	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dependents": dependents})
}

func (api *ApiController) GetCircularAction(c *gin.Context) {
	params := SheetEndpointParams{}
	var circular []string

	err := c.ShouldBindUri(&params)
	if err == nil {
		circular, err = api.SheetRepository.GetCircularReferences(params.SheetId)
	}

	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"circular": circular})
}

func (api *ApiController) SubscribeAction(c *gin.Context) {
	params := CellEndpointParams{}
	request := SubscribeRequest{}

	err := c.ShouldBindUri(&params)
	if err == nil {
		err = c.ShouldBindJSON(&request)
	}
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	api.WebhookDispatcher.SetWebhookUrl(normalizeSheetId(params.SheetId), normalizeRef(params.CellId), request.WebhookUrl)
	c.JSON(http.StatusCreated, gin.H{"webhook_url": request.WebhookUrl})
}

func normalizeSheetId(sheetId string) string {
	return strings.ToLower(sheetId)
}

// normalizeRef reduces "$a$1" spellings to the canonical "A1" used as
// the change-notification key.
func normalizeRef(ref string) string {
	parsed, err := contracts.ParseReference(ref)
	if err != nil {
		return strings.ToUpper(ref)
	}
	return refText(parsed.Coordinate)
}
