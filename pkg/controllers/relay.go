package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/models"
	"github.com/sirupsen/logrus"
)

type RelayController struct {
	relayModel *models.RelayModel
	logger     *logrus.Entry
}

func NewRelayController(rm *models.RelayModel, logger *logrus.Logger) *RelayController {
	return &RelayController{
		relayModel: rm,
		logger:     logger.WithField("controller", "relay"),
	}
}

// HandleStats returns the bus and session counters.
func (rc *RelayController) HandleStats(c *fiber.Ctx) error {
	return c.JSON(rc.relayModel.Stats())
}

// HandleTranslationUsage returns today's translated characters for a user key.
func (rc *RelayController) HandleTranslationUsage(c *fiber.Ctx) error {
	userKey := c.Params("userid")
	if !strings.HasPrefix(userKey, config.UserKeyPrefix) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": false,
			"msg":    config.InvalidUserId,
		})
	}

	used, err := rc.relayModel.TranslationUsage(c.UserContext(), userKey)
	if err != nil {
		if errors.Is(err, models.ErrUsageDisabled) {
			return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
				"status": false,
				"msg":    err.Error(),
			})
		}
		rc.logger.WithError(err).Errorln("failed to read translation usage")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": false,
			"msg":    "failed to read translation usage",
		})
	}

	return c.JSON(fiber.Map{
		"status":     true,
		"user_key":   userKey,
		"characters": used,
	})
}

// HandleDayTranslationUsage returns today's translated characters of every user
// key together with the day total.
func (rc *RelayController) HandleDayTranslationUsage(c *fiber.Ctx) error {
	usage, err := rc.relayModel.DayTranslationUsage(c.UserContext())
	if err != nil {
		if errors.Is(err, models.ErrUsageDisabled) {
			return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
				"status": false,
				"msg":    err.Error(),
			})
		}
		rc.logger.WithError(err).Errorln("failed to read day translation usage")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": false,
			"msg":    "failed to read translation usage",
		})
	}

	return c.JSON(fiber.Map{
		"status": true,
		"day":    usage.Day,
		"total":  usage.Total,
		"users":  usage.Users,
	})
}
