package main

import (
	"net/http"

	"lodging/src/services"
	"lodging/src/types"

	"github.com/gin-gonic/gin"
)

func paymentHandlers(g *gin.RouterGroup, app *App) *gin.RouterGroup {
	g.
		POST("/reservations/:id/payment", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, "Payment", err)
				return
			}
			var body types.ProcessPaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				badRequest(ctx, "Payment", err)
				return
			}
			payment, err := app.Engine.Settlement.CapturePayment(ctx, ctx.GetUint("id"), params.ID, services.CardDetails{
				Number:         body.CardNumber,
				CVV:            body.CVV,
				ExpMonth:       body.ExpMonth,
				ExpYear:        body.ExpYear,
				CardholderName: body.CardholderName,
			})
			if err != nil {
				abortWithError(ctx, "Payment", err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": payment})
		}).
		GET("/reservations/:id/payment", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, "GetPayment", err)
				return
			}
			payment, err := app.Engine.Settlement.GetPayment(ctx, ctx.GetUint("id"), params.ID)
			if err != nil {
				abortWithError(ctx, "GetPayment", err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": payment})
		})
	return g
}
