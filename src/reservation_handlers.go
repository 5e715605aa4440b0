package main

import (
	"fmt"
	"net/http"

	"lodging/src/lib"
	"lodging/src/models"
	"lodging/src/services"
	"lodging/src/types"
	"lodging/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func reservationHandlers(g *gin.RouterGroup, app *App) *gin.RouterGroup {
	g.
		POST("/reservations", func(ctx *gin.Context) {
			var body types.CreateReservationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				badRequest(ctx, "CreateReservation", err)
				return
			}
			checkIn, _ := utils.ParseDate(body.CheckIn)
			checkOut, _ := utils.ParseDate(body.CheckOut)
			userId := ctx.GetUint("id")
			reservation, err := app.Engine.Reservations.Create(ctx, userId, body.PropertyID, checkIn, checkOut)
			if err != nil {
				abortWithError(ctx, "CreateReservation", err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": reservation})
		}).
		GET("/reservations", func(ctx *gin.Context) {
			var query types.ListReservationsQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				badRequest(ctx, "ListReservations", err)
				return
			}
			userId := ctx.GetUint("id")
			var data []models.Reservation
			var err error
			if query.As == "owner" {
				data, err = app.Engine.Reservations.ListForOwner(ctx, userId)
			} else {
				data, err = app.Engine.Reservations.ListForGuest(ctx, userId)
			}
			if err != nil {
				abortWithError(ctx, "ListReservations", err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
		}).
		GET("/reservations/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, "GetReservation", err)
				return
			}
			reservation, err := app.Engine.Reservations.Get(ctx, ctx.GetUint("id"), params.ID)
			if err != nil {
				abortWithError(ctx, "GetReservation", err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reservation})
		}).
		PUT("/reservations/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, "CancelReservation", err)
				return
			}
			var body types.CancelReservationRequestBody
			if ctx.Request.ContentLength != 0 {
				if err := ctx.ShouldBindJSON(&body); err != nil {
					badRequest(ctx, "CancelReservation", err)
					return
				}
			}
			result, err := app.Engine.Reservations.Cancel(ctx, ctx.GetUint("id"), params.ID, body.Reason)
			if err != nil {
				abortWithError(ctx, "CancelReservation", err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": result.Reservation, "penalty": result.Penalty})
		}).
		POST("/reservations/:id/checkin", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, "CheckIn", err)
				return
			}
			var body types.CheckinRequestBody
			if ctx.Request.ContentLength != 0 {
				if err := ctx.ShouldBindJSON(&body); err != nil {
					badRequest(ctx, "CheckIn", err)
					return
				}
			}
			reservation, err := app.Engine.Reservations.CheckIn(ctx, ctx.GetUint("id"), params.ID, services.CheckinInput{
				Code:   body.Code,
				Photos: body.Photos,
			})
			if err != nil {
				abortWithError(ctx, "CheckIn", err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reservation})
		}).
		POST("/reservations/:id/checkout", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, "CheckOut", err)
				return
			}
			var body types.CheckoutRequestBody
			if ctx.Request.ContentLength != 0 {
				if err := ctx.ShouldBindJSON(&body); err != nil {
					badRequest(ctx, "CheckOut", err)
					return
				}
			}
			reservation, err := app.Engine.Reservations.CheckOut(ctx, ctx.GetUint("id"), params.ID, services.CheckoutInput{
				Photos: body.Photos,
			})
			if err != nil {
				abortWithError(ctx, "CheckOut", err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reservation})
		}).
		POST("/reservations/:id/complete", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, "Complete", err)
				return
			}
			reservation, err := app.Engine.Reservations.Complete(ctx, ctx.GetUint("id"), params.ID)
			if err != nil {
				abortWithError(ctx, "Complete", err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reservation})
		}).
		POST("/reservations/:id/photos", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, "AddPhoto", err)
				return
			}
			var body types.AddPhotoRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				badRequest(ctx, "AddPhoto", err)
				return
			}
			photo, err := app.Engine.Checkpoints.AddPhoto(ctx, ctx.GetUint("id"), params.ID, body.URL, types.PhotoKind(body.Kind))
			if err != nil {
				abortWithError(ctx, "AddPhoto", err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": photo})
		}).
		GET("/reservations/:id/photos", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, "ListPhotos", err)
				return
			}
			var query types.ListPhotosQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				badRequest(ctx, "ListPhotos", err)
				return
			}
			photos, err := app.Engine.Checkpoints.ListPhotos(ctx, ctx.GetUint("id"), params.ID, types.PhotoKind(query.Kind))
			if err != nil {
				abortWithError(ctx, "ListPhotos", err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": photos, "count": len(photos)})
		})

	if app.Engine.Reservations.CheckinCodesEnabled() {
		g.GET("/reservations/:id/qrcode", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, "CheckinCode", err)
				return
			}
			code, err := app.Engine.Reservations.CheckinCode(ctx, ctx.GetUint("id"), params.ID)
			if err != nil {
				abortWithError(ctx, "CheckinCode", err)
				return
			}
			if ctx.Query("format") == "json" {
				ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"code": code}})
				return
			}
			filename := fmt.Sprintf("checkin_%d_%s", params.ID, uuid.NewString())
			filepath, err := lib.WriteQRCode(app.Config.TempDir, filename, code)
			if err != nil {
				abortWithError(ctx, "CheckinCode", err)
				return
			}
			ctx.FileAttachment(filepath, "checkin.jpeg")
		})
	}
	return g
}
