package users

import (
	"net/http"

	"codeberg.org/biolink/client/internal/auth"
	"codeberg.org/biolink/client/internal/errors"
	"codeberg.org/biolink/client/internal/logger"
	"codeberg.org/biolink/client/internal/users"
	"github.com/gin-gonic/gin"
)

// UpdatePlan godoc
// @Summary Change the user's plan
// @Description Simulates a settled payment by switching the plan tier. Clients see the change after a forced refresh
// @Tags users
// @Accept json
// @Produce json
// @Param request body UpdatePlanRequest true "Plan"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me/plan [put]
// @Security BearerAuth
func UpdatePlan(userRepo *users.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		var req UpdatePlanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		user, err := userRepo.UpdatePlan(c.Request.Context(), userID, req.Plan)
		if err != nil {
			errors.NotFound(c, "user")
			return
		}

		logger.Info("plan changed", "user_id", userID, "plan", req.Plan)
		c.JSON(http.StatusOK, UserResponse{User: user.Public()})
	}
}

// Verify godoc
// @Summary Mark the user's email as verified
// @Tags users
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me/verify [post]
// @Security BearerAuth
func Verify(userRepo *users.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		if err := userRepo.MarkVerified(c.Request.Context(), userID); err != nil {
			errors.NotFound(c, "user")
			return
		}

		user, err := userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			errors.NotFound(c, "user")
			return
		}

		c.JSON(http.StatusOK, UserResponse{User: user.Public()})
	}
}
