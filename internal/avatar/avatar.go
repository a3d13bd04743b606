// Package avatar integrates keyboard-style input into the local player's pose.
package avatar

import (
	"math"
	"time"

	"letna/metaverse/internal/player"
)

const (
	DefaultMaxSpeed        = 10.0
	DefaultMaxAngularSpeed = 1.0
)

// Keys is the set of movement controls currently held.
type Keys struct {
	Forward bool `json:"forward"`
	Back    bool `json:"back"`
	Left    bool `json:"left"`
	Right   bool `json:"right"`
}

// Controller moves the local avatar. Controls are disabled while the chat
// input is open.
type Controller struct {
	MaxSpeed        float64
	MaxAngularSpeed float64

	keys     Keys
	pose     player.Pose
	chatting bool
	bubble   string
}

// New returns a controller at the origin. Non-positive speeds fall back to
// the defaults.
func New(maxSpeed, maxAngularSpeed float64) *Controller {
	if maxSpeed <= 0 {
		maxSpeed = DefaultMaxSpeed
	}
	if maxAngularSpeed <= 0 {
		maxAngularSpeed = DefaultMaxAngularSpeed
	}
	return &Controller{MaxSpeed: maxSpeed, MaxAngularSpeed: maxAngularSpeed}
}

func (c *Controller) SetKeys(k Keys) { c.keys = k }
func (c *Controller) Keys() Keys     { return c.keys }

func (c *Controller) Pose() player.Pose { return c.pose }

// Reset places the avatar at pose, drops all held keys, clears the chat
// bubble and closes the chat input.
func (c *Controller) Reset(pose player.Pose) {
	c.pose = pose
	c.keys = Keys{}
	c.chatting = false
	c.bubble = ""
}

// OpenChat opens the chat input. Held keys are released.
func (c *Controller) OpenChat() {
	c.chatting = true
	c.keys = Keys{}
}

func (c *Controller) CloseChat() { c.chatting = false }

func (c *Controller) Chatting() bool { return c.chatting }

// Say shows text in the local chat bubble and closes the chat input.
func (c *Controller) Say(text string) {
	c.bubble = text
	c.CloseChat()
}

// Bubble returns the text of the local chat bubble.
func (c *Controller) Bubble() string { return c.bubble }

// Step advances the avatar by dt: yaw first, then translation along the new
// heading. It reports whether the pose changed.
func (c *Controller) Step(dt time.Duration) (player.Pose, bool) {
	if c.chatting || dt <= 0 {
		return c.pose, false
	}
	secs := dt.Seconds()

	var angular float64
	if c.keys.Left {
		angular += c.MaxAngularSpeed
	}
	if c.keys.Right {
		angular -= c.MaxAngularSpeed
	}
	var speed float64
	if c.keys.Forward {
		speed += c.MaxSpeed
	}
	if c.keys.Back {
		speed -= c.MaxSpeed
	}
	if angular == 0 && speed == 0 {
		return c.pose, false
	}

	c.pose.ThetaY += angular * secs
	c.pose.X += speed * math.Sin(c.pose.ThetaY) * secs
	c.pose.Z += speed * math.Cos(c.pose.ThetaY) * secs
	return c.pose, true
}
