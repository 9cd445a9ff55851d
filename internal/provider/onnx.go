package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/parsaforughi/pixxel-uv-effect/internal/frame"
	"github.com/parsaforughi/pixxel-uv-effect/internal/landmark"
	ort "github.com/yalue/onnxruntime_go"
)

// meshInputSize is the square input resolution of the face mesh model.
const meshInputSize = 192

// ONNX runs a face mesh model through ONNX Runtime. The model takes a
// normalized RGB crop and emits one (x, y, z) triple per mesh landmark
// plus a face presence score.
type ONNX struct {
	cfg        Config
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputNames []string
	mu         sync.Mutex
}

// NewONNX creates the ONNX-backed provider. The runtime environment is
// initialized once per process.
func NewONNX(cfg Config) (*ONNX, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("provider: model path is empty")
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("provider: model not found: %s", cfg.ModelPath)
	}

	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("provider: initialize onnxruntime: %w", err)
		}
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("provider: session options: %w", err)
	}
	defer func() {
		if err := opts.Destroy(); err != nil {
			slog.Warn("failed to destroy session options", "error", err)
		}
	}()
	if cfg.NumThreads > 0 {
		if err := opts.SetIntraOpNumThreads(cfg.NumThreads); err != nil {
			return nil, fmt.Errorf("provider: set thread count: %w", err)
		}
	}

	inputName := "input"
	outputNames := []string{"landmarks", "score"}
	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{inputName}, outputNames, opts)
	if err != nil {
		return nil, fmt.Errorf("provider: create session: %w", err)
	}

	slog.Debug("face mesh provider initialized",
		"model_path", cfg.ModelPath,
		"refine_landmarks", cfg.RefineLandmarks,
		"min_detection_confidence", cfg.MinDetectionConfidence)

	return &ONNX{
		cfg:         cfg,
		session:     session,
		inputName:   inputName,
		outputNames: outputNames,
	}, nil
}

// Detect runs the mesh model over the full frame. Scores below the
// detection confidence threshold report "no face". The session is
// serialized: the pipeline never issues overlapping detections, but the
// guard keeps the provider safe under direct use.
func (o *ONNX) Detect(ctx context.Context, buf *frame.Buffer) (landmark.Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if buf == nil || buf.Width == 0 || buf.Height == 0 {
		return nil, errors.New("provider: empty frame")
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil, errors.New("provider: session closed")
	}

	input, err := ort.NewTensor(ort.NewShape(1, 3, meshInputSize, meshInputSize), preprocess(buf))
	if err != nil {
		return nil, fmt.Errorf("provider: input tensor: %w", err)
	}
	defer func() {
		if err := input.Destroy(); err != nil {
			slog.Warn("failed to destroy input tensor", "error", err)
		}
	}()

	outputs := []ort.Value{nil, nil}
	if err := o.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("provider: inference: %w", err)
	}
	defer func() {
		for _, out := range outputs {
			if out == nil {
				continue
			}
			if err := out.Destroy(); err != nil {
				slog.Warn("failed to destroy output tensor", "error", err)
			}
		}
	}()

	coords, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("provider: expected float32 landmark tensor, got %T", outputs[0])
	}
	score, ok := outputs[1].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("provider: expected float32 score tensor, got %T", outputs[1])
	}

	scores := score.GetData()
	if len(scores) == 0 || float64(scores[0]) < o.cfg.MinDetectionConfidence {
		return nil, nil // no face: a normal empty result
	}
	return postprocess(coords.GetData()), nil
}

// Close destroys the session. Subsequent Detect calls fail.
func (o *ONNX) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil
	}
	err := o.session.Destroy()
	o.session = nil
	if err != nil {
		return fmt.Errorf("provider: destroy session: %w", err)
	}
	return nil
}

// preprocess scales the frame to the model input square and converts it
// to planar CHW float32 in [0,1].
func preprocess(buf *frame.Buffer) []float32 {
	const n = meshInputSize
	data := make([]float32, 3*n*n)
	xRatio := float64(buf.Width) / n
	yRatio := float64(buf.Height) / n
	plane := n * n
	for y := 0; y < n; y++ {
		srcY := int(float64(y) * yRatio)
		for x := 0; x < n; x++ {
			srcX := int(float64(x) * xRatio)
			r, g, b, _ := buf.RGBA(srcX, srcY)
			i := y*n + x
			data[i] = float32(r) / 255
			data[plane+i] = float32(g) / 255
			data[2*plane+i] = float32(b) / 255
		}
	}
	return data
}

// postprocess converts the flat (x, y, z) output, expressed in model
// input pixels, into normalized landmark coordinates.
func postprocess(raw []float32) landmark.Set {
	count := len(raw) / 3
	if count == 0 {
		return nil
	}
	set := make(landmark.Set, count)
	for i := 0; i < count; i++ {
		set[i] = landmark.Point{
			X: float64(raw[i*3]) / meshInputSize,
			Y: float64(raw[i*3+1]) / meshInputSize,
			Z: float64(raw[i*3+2]) / meshInputSize,
		}
	}
	return set
}
