package main

import (
	"net/http"

	"github.com/Vittorix99/mcp-website-sub001/src/common"
	"github.com/Vittorix99/mcp-website-sub001/src/types"
	"github.com/gin-gonic/gin"
)

func eventHandlers(g *gin.RouterGroup, events *common.EventService) *gin.RouterGroup {
	g.
		GET("/events", func(ctx *gin.Context) {
			var query struct {
				All bool `form:"all"`
			}
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			list, err := events.List(ctx.Request.Context(), !query.All)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"events": list})
		}).
		GET("/events/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ev, err := events.Get(ctx.Request.Context(), params.ID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, ev)
		})
	return g
}
