package main

import (
	"net/http"

	"lodging/src/types"
	"lodging/src/utils"

	"github.com/gin-gonic/gin"
)

func propertyHandlers(g *gin.RouterGroup, app *App) *gin.RouterGroup {
	g.
		GET("/properties/:id/availability", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, "Availability", err)
				return
			}
			var query types.DateRangeQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				badRequest(ctx, "Availability", err)
				return
			}
			checkIn, _ := utils.ParseDate(query.CheckIn)
			checkOut, _ := utils.ParseDate(query.CheckOut)
			available, err := app.Engine.Availability.IsAvailable(ctx, params.ID, checkIn, checkOut)
			if err != nil {
				abortWithError(ctx, "Availability", err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
				"property_id": params.ID,
				"check_in":    query.CheckIn,
				"check_out":   query.CheckOut,
				"available":   available,
			}})
		}).
		GET("/properties/:id/quote", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, "Quote", err)
				return
			}
			var query types.DateRangeQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				badRequest(ctx, "Quote", err)
				return
			}
			checkIn, _ := utils.ParseDate(query.CheckIn)
			checkOut, _ := utils.ParseDate(query.CheckOut)
			quote, err := app.Engine.Settlement.QuoteProperty(ctx, params.ID, checkIn, checkOut)
			if err != nil {
				abortWithError(ctx, "Quote", err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": quote})
		}).
		GET("/properties/:id/reservations", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, "PropertyReservations", err)
				return
			}
			data, err := app.Engine.Reservations.ListForProperty(ctx, ctx.GetUint("id"), params.ID)
			if err != nil {
				abortWithError(ctx, "PropertyReservations", err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
		})
	return g
}
