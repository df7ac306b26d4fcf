package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Every failure leaves the API as {"message": ...} plus the mapped status
// code. Validation failures additionally carry a details object with the
// per-field breakdown from the binder.

func RespondError(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{
		"message": message,
	})
}

func RespondValidation(ctx *gin.Context, message string, details interface{}) {
	if details == nil {
		RespondError(ctx, http.StatusUnprocessableEntity, message)
		return
	}

	ctx.JSON(http.StatusUnprocessableEntity, gin.H{
		"message": message,
		"details": details,
	})
}

func RespondUnAuthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, message)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, message)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message)
}

func RespondConflict(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnprocessableEntity, message)
}

func RespondBadGateway(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusBadGateway, message)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, message)
}
