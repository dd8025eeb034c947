package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tvbridge/models"
	"tvbridge/service"
)

const defaultHistoryLimit = 50

// GetStatus returns the bridge description and a live emulator check.
// Always 200; reachability is carried in emulator_status.
func GetStatus(c *gin.Context, s *Services) {
	// Detached so a client hanging up does not abort the adb call
	ctx := context.WithoutCancel(c.Request.Context())
	reachable := s.DeviceManager.Reachable(ctx)

	c.JSON(http.StatusOK, models.NewStatusResponse(s.Config.Profile, s.LocalIP(), s.Config.Port, reachable))
}

// GetInfo returns static metadata about the bridged TV
func GetInfo(c *gin.Context, s *Services) {
	c.JSON(http.StatusOK, models.NewInfoResponse(s.Config.Profile, s.LocalIP(), s.Config.Port))
}

// ExecuteCommand runs a remote command.
// Invalid JSON is a 400 with an empty body; otherwise 200 or 500 echoing the request.
func ExecuteCommand(c *gin.Context, ad *service.ActionDispatcher) {
	body, err := c.GetRawData()
	if err != nil || !json.Valid(body) {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	log.Printf("Received command: %s", body)

	var result models.Result
	if cmd, err := models.ParseCommand(body); err != nil {
		log.Printf("✗ Malformed command: %v", err)
		result = models.Failed("", err.Error())
	} else {
		result = ad.Dispatch(context.WithoutCancel(c.Request.Context()), "http", cmd)
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusInternalServerError
	}
	c.JSON(status, models.CommandResponse{
		Success: result.Success,
		Command: json.RawMessage(body),
	})
}

// GetKeys lists the supported key names and their keycodes
func GetKeys(c *gin.Context) {
	c.JSON(http.StatusOK, models.SuccessResponse(service.KnownKeys()))
}

// GetHistory returns the most recent commands, newest first
func GetHistory(c *gin.Context, j *service.Journal) {
	if j == nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	limit := defaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	entries, err := j.Recent(limit)
	if err != nil {
		log.Printf("Failed to read history: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse("history unavailable"))
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(entries))
}
