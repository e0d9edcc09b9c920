package main

import (
	"log"
	"net/http"

	"github.com/Vittorix99/mcp-website-sub001/src/common"
	"github.com/Vittorix99/mcp-website-sub001/src/types"
	"github.com/gin-gonic/gin"
)

func orderHandlers(g *gin.RouterGroup, orders *common.OrderService) *gin.RouterGroup {
	g.
		POST("/orders", func(ctx *gin.Context) {
			var body types.CreateOrderRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			key := ctx.GetHeader("Idempotency-Key")
			created, err := orders.CreateOrder(ctx.Request.Context(), body, key)
			if err != nil {
				log.Printf("[orders] create failed for event %s: %s\n", body.EventID, err.Error())
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, created)
		}).
		POST("/orders/:id/capture", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			res, err := orders.CaptureOrder(ctx.Request.Context(), params.ID)
			if err != nil {
				log.Printf("[orders] capture failed for %s: %s\n", params.ID, err.Error())
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, res)
		}).
		POST("/participants/check", func(ctx *gin.Context) {
			var body types.CheckParticipantsRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": err.Error()})
				return
			}
			res, err := orders.CheckParticipants(ctx.Request.Context(), body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, res)
		})
	return g
}
