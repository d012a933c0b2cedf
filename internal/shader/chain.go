package shader

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/framepipe/effect"
)

// Chain is the linked pipeline of stages built from an ordered effect
// list. It presents the same per-frame surface as a single stage: frames
// queued at the head emerge, transformed, at the terminal listener.
type Chain struct {
	stages []Stage
	cfg    Config

	// terminal receives the chain's output. For an empty effect list
	// frames are delivered to it directly.
	terminal OutputListener

	inputWidth   int
	inputHeight  int
	outputWidth  int
	outputHeight int
}

// NewChain compiles an effect list into a stage chain. The list is
// planned first: adjacent compatible effects merge into single stages.
// An invalid descriptor fails the build.
func NewChain(effects []effect.Effect, cfg Config) (*Chain, error) {
	if err := effect.Validate(effects); err != nil {
		return nil, err
	}
	planned := effects
	if !cfg.NoMerge {
		planned = effect.Plan(effects)
	}

	c := &Chain{cfg: cfg}
	for i := 0; i < len(planned); {
		// A run of color effects compiles into one stage. With NoMerge
		// each color effect stays in a stage of its own.
		if isColorKind(planned[i].Kind()) {
			j := i + 1
			for !cfg.NoMerge && j < len(planned) && isColorKind(planned[j].Kind()) {
				j++
			}
			c.stages = append(c.stages, newColorStage(cfg, planned[i:j]))
			i = j
			continue
		}

		stage, err := newStage(cfg, planned[i])
		if err != nil {
			return nil, err
		}
		c.stages = append(c.stages, stage)
		i++
	}

	// Link each stage's output to the next stage's input.
	for i := 0; i+1 < len(c.stages); i++ {
		c.stages[i].SetOutputListener(stageInput{c.stages[i+1]})
	}

	cfg.logger().Debug("shader: chain built",
		slog.Int("effects", len(effects)),
		slog.Int("stages", len(c.stages)))
	return c, nil
}

// newStage maps one planned descriptor to its stage. The descriptor set
// is closed, so an unknown kind is a programming error.
func newStage(cfg Config, e effect.Effect) (Stage, error) {
	switch e := e.(type) {
	case effect.MatrixTransform:
		return newTransformStage(cfg, e), nil
	case effect.Crop:
		return newCropStage(cfg, e), nil
	case effect.OverlayEffect:
		return newOverlayStage(cfg, e), nil
	case effect.ThumbnailStrip:
		return newThumbnailStage(cfg, e), nil
	case effect.FrameCache:
		return newCacheStage(cfg, e), nil
	case effect.FrameDrop:
		return newDropStage(cfg, e), nil
	case effect.SpeedChange:
		return newSpeedStage(cfg, e), nil
	case effect.TimestampMap:
		return newTimestampMapStage(cfg, e), nil
	case effect.Blur:
		return newBlurStage(cfg, e), nil
	default:
		return nil, fmt.Errorf("shader: unsupported effect kind %s", e.Kind())
	}
}

func isColorKind(k effect.Kind) bool {
	return k&0xF0 == 0x20
}

// stageInput adapts a stage's input side to the upstream stage's output
// listener.
type stageInput struct {
	next Stage
}

func (l stageInput) OnOutputFrameAvailable(f Frame) error {
	return l.next.QueueInputFrame(f)
}

func (l stageInput) OnCurrentOutputStreamEnded() error {
	return l.next.SignalEndOfCurrentInputStream()
}

// SetOutputListener wires the terminal consumer of the chain.
func (c *Chain) SetOutputListener(l OutputListener) {
	c.terminal = l
	if len(c.stages) > 0 {
		c.stages[len(c.stages)-1].SetOutputListener(l)
	}
}

// Configure negotiates geometry through the whole chain and returns the
// final output size.
func (c *Chain) Configure(inputWidth, inputHeight int) (int, int, error) {
	w, h := inputWidth, inputHeight
	for _, s := range c.stages {
		var err error
		w, h, err = s.Configure(w, h)
		if err != nil {
			return 0, 0, err
		}
	}
	c.inputWidth, c.inputHeight = inputWidth, inputHeight
	c.outputWidth, c.outputHeight = w, h
	return w, h, nil
}

// OutputSize returns the negotiated output dimensions.
func (c *Chain) OutputSize() (int, int) { return c.outputWidth, c.outputHeight }

// QueueInputFrame feeds one frame into the head of the chain.
func (c *Chain) QueueInputFrame(f Frame) error {
	if len(c.stages) == 0 {
		if c.terminal == nil {
			return c.cfg.Pool.Release(f.Texture)
		}
		return c.terminal.OnOutputFrameAvailable(f)
	}
	return c.stages[0].QueueInputFrame(f)
}

// SignalEndOfCurrentInputStream propagates end-of-stream through every
// stage in order.
func (c *Chain) SignalEndOfCurrentInputStream() error {
	if len(c.stages) == 0 {
		if c.terminal == nil {
			return nil
		}
		return c.terminal.OnCurrentOutputStreamEnded()
	}
	return c.stages[0].SignalEndOfCurrentInputStream()
}

// Flush discards buffered frames in every stage.
func (c *Chain) Flush() {
	for _, s := range c.stages {
		s.Flush()
	}
}

// Release frees all stages. The first error is returned; later stages
// are still released.
func (c *Chain) Release() error {
	var first error
	for _, s := range c.stages {
		if err := s.Release(); err != nil && first == nil {
			first = err
		}
	}
	c.stages = nil
	return first
}
