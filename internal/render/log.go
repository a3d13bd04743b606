package render

import (
	"log/slog"

	"letna/metaverse/internal/player"
	"letna/metaverse/internal/world"
)

// Log renders peers as structured log lines.
type Log struct {
	logger *slog.Logger
}

// NewLog returns a renderer writing to logger, or to the default logger if
// logger is nil.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger.With("component", "render")}
}

func (l *Log) CreatePeerVisual(p player.Player) world.Handle {
	l.logger.Info("peer appeared",
		"player.id", p.ID, "player.name", p.Name, "player.color", p.Color,
		"pose.x", p.X, "pose.z", p.Z, "pose.thetaY", p.ThetaY)
	return HandleFor(p.ID)
}

func (l *Log) UpdatePeerVisual(h world.Handle, pose player.Pose) {
	l.logger.Debug("peer moved", "player.id", PeerID(h), "pose.x", pose.X, "pose.z", pose.Z, "pose.thetaY", pose.ThetaY)
}

func (l *Log) DestroyPeerVisual(h world.Handle) {
	l.logger.Info("peer disappeared", "player.id", PeerID(h))
}

func (l *Log) ShowPeerChat(h world.Handle, message string) {
	l.logger.Info("peer says", "player.id", PeerID(h), "chat.message", message)
}

var (
	_ world.Renderer     = (*Log)(nil)
	_ world.ChatRenderer = (*Log)(nil)
)
