package services

import (
	"github.com/vytor/swipequiz/internal/config"
	"github.com/vytor/swipequiz/internal/logger"
	"github.com/vytor/swipequiz/internal/swipe"
)

// EngineConfig builds swipe engine settings from the service configuration.
func EngineConfig(cfg config.Config, log *logger.Logger) swipe.Config {
	ec := swipe.DefaultConfig()
	ec.Thresholds = swipe.Thresholds{Distance: cfg.SwipeDistance, Velocity: cfg.SwipeVelocity}
	ec.Animator.ViewportWidth = cfg.ViewportWidth
	ec.Animator.ExitDuration = cfg.ExitDuration
	ec.Animator.FrameRate = cfg.FrameRate
	ec.Log = log
	return ec
}
