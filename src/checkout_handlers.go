package main

import (
	"errors"
	"net/http"

	"github.com/Vittorix99/mcp-website-sub001/src/common"
	"github.com/Vittorix99/mcp-website-sub001/src/purchase"
	"github.com/Vittorix99/mcp-website-sub001/src/types"
	"github.com/gin-gonic/gin"
)

type sessionHandler func(ctx *gin.Context, sess *purchase.Session)

func withSession(checkout *common.CheckoutService, fn sessionHandler) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var params types.SimpleRequestParams
		if err := ctx.ShouldBindUri(&params); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		sess, err := checkout.Session(params.ID)
		if err != nil {
			respondError(ctx, err)
			return
		}
		fn(ctx, sess)
	}
}

// respondWithView reports err together with the current checkout view.
func respondWithView(ctx *gin.Context, err error, sess *purchase.Session) {
	status, body := errorResponse(err)
	body["checkout"] = sess.Snapshot()
	ctx.AbortWithStatusJSON(status, body)
}

func checkoutHandlers(g *gin.RouterGroup, checkout *common.CheckoutService) *gin.RouterGroup {
	c := g.Group("/checkout")
	c.
		POST("", func(ctx *gin.Context) {
			var body types.StartCheckoutRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			sess, err := checkout.Start(ctx.Request.Context(), body.EventID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, sess.Snapshot())
		}).
		GET("/:id", withSession(checkout, func(ctx *gin.Context, sess *purchase.Session) {
			ctx.JSON(http.StatusOK, sess.Snapshot())
		})).
		PUT("/:id/quantity", withSession(checkout, func(ctx *gin.Context, sess *purchase.Session) {
			var body types.QuantityRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "checkout": sess.Snapshot()})
				return
			}
			changed := sess.SetQuantity(body.Quantity)
			ctx.JSON(http.StatusOK, gin.H{"changed": changed, "checkout": sess.Snapshot()})
		})).
		PUT("/:id/participants", withSession(checkout, func(ctx *gin.Context, sess *purchase.Session) {
			var body types.ParticipantsRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := sess.SetParticipants(body.Participants); err != nil {
				respondWithView(ctx, err, sess)
				return
			}
			ctx.JSON(http.StatusOK, sess.Snapshot())
		})).
		POST("/:id/verify", withSession(checkout, func(ctx *gin.Context, sess *purchase.Session) {
			res := sess.Verify(ctx.Request.Context())
			ctx.JSON(http.StatusOK, gin.H{"eligibility": res, "checkout": sess.Snapshot()})
		})).
		POST("/:id/order", withSession(checkout, func(ctx *gin.Context, sess *purchase.Session) {
			created, err := sess.PlaceOrder(ctx.Request.Context())
			if err != nil {
				respondWithView(ctx, err, sess)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"order": created, "checkout": sess.Snapshot()})
		})).
		POST("/:id/approve", withSession(checkout, func(ctx *gin.Context, sess *purchase.Session) {
			var body types.ApproveOrderRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			res, err := sess.Approve(ctx.Request.Context(), body.OrderID)
			if err != nil {
				respondWithView(ctx, err, sess)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"capture": res, "checkout": sess.Snapshot()})
		})).
		POST("/:id/cancel", withSession(checkout, func(ctx *gin.Context, sess *purchase.Session) {
			if err := sess.Cancel(); err != nil {
				respondWithView(ctx, err, sess)
				return
			}
			ctx.JSON(http.StatusOK, sess.Snapshot())
		})).
		POST("/:id/error", withSession(checkout, func(ctx *gin.Context, sess *purchase.Session) {
			var body struct {
				Message string `json:"message" binding:"required"`
			}
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := sess.ProviderError(errors.New(body.Message)); err != nil {
				respondWithView(ctx, err, sess)
				return
			}
			ctx.JSON(http.StatusOK, sess.Snapshot())
		}))
	return c
}
