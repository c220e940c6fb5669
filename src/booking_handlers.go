package main

import (
	"errors"
	"net/http"
	"timetokens/src/db"
	"timetokens/src/middlewares"
	"timetokens/src/models"
	"timetokens/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func bookingsRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	group := apiv1.Group("/bookings")
	group.Use(middlewares.AuthMiddleware)

	group.
		GET("", func(ctx *gin.Context) {
			var filters types.BookingsQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			gdb := db.GetDb()
			cond := models.Booking{UserID: userId}
			if filters.Status != "" {
				cond.Status = types.BookingStatus(filters.Status)
			}
			var bookings []models.Booking
			if err := gdb.
				Where(&cond).
				Preload("EventType").
				Preload("Attendees").
				Order("start_time desc").
				Limit(20).
				Find(&bookings).
				Error; err != nil {
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"bookings": bookings})
		}).
		GET("/:uid", func(ctx *gin.Context) {
			var params types.BookingURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			gdb := db.GetDb()
			var booking models.Booking
			err := gdb.
				Where(&models.Booking{UID: params.UID}).
				Preload("EventType").
				Preload("Attendees").
				Preload("References").
				First(&booking).
				Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.Status(http.StatusNotFound)
				return
			}
			if err != nil {
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"booking": booking})
		})
	return apiv1
}
