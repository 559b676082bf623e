package analysis

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/oxygene76/vecmath/pkg/vecmath"
)

// Summary holds the distribution of one error measure over all samples.
type Summary struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	Max    float64 `json:"max" yaml:"max"`
}

// FrameReport describes how far sampled frames are from orthonormal.
type FrameReport struct {
	Samples        int           `json:"samples" yaml:"samples"`
	Seed           int64         `json:"seed" yaml:"seed"`
	Tolerance      float64       `json:"tolerance" yaml:"tolerance"`
	NaNFrames      int           `json:"nan_frames" yaml:"nan_frames"`
	OutOfTolerance int           `json:"out_of_tolerance" yaml:"out_of_tolerance"`
	Orthogonality  Summary       `json:"orthogonality" yaml:"orthogonality"`
	TangentLength  Summary       `json:"tangent_length" yaml:"tangent_length"`
	BinormalLength Summary       `json:"binormal_length" yaml:"binormal_length"`
	RotationAngle  Summary       `json:"rotation_angle" yaml:"rotation_angle"`
	Duration       time.Duration `json:"duration" yaml:"duration"`
}

// SampleFrames builds frames around n random unit normals and measures their
// numerical error. A frame whose orthogonality or length error exceeds
// tolerance is counted in OutOfTolerance. The same seed always gives the same
// report, apart from Duration.
func SampleFrames(n int, seed int64, tolerance float64) (*FrameReport, error) {
	if n <= 0 {
		return nil, fmt.Errorf("sample count must be positive, got %d", n)
	}
	if !(tolerance > 0) {
		return nil, fmt.Errorf("tolerance must be positive, got %g", tolerance)
	}
	start := time.Now()
	rng := rand.New(rand.NewSource(seed))

	report := &FrameReport{Samples: n, Seed: seed, Tolerance: tolerance}
	ortho := make([]float64, 0, n)
	tLen := make([]float64, 0, n)
	bLen := make([]float64, 0, n)
	angle := make([]float64, 0, n)

	for i := 0; i < n; i++ {
		normal := randomUnit(rng)
		tangent, binormal := vecmath.MakeBiNormalTangent(normal)
		if tangent.IsNaN() || binormal.IsNaN() {
			report.NaNFrames++
			continue
		}

		o := math.Max(
			math.Abs(float64(vecmath.Dot(normal, tangent))),
			math.Max(
				math.Abs(float64(vecmath.Dot(normal, binormal))),
				math.Abs(float64(vecmath.Dot(tangent, binormal))),
			),
		)
		tl := math.Abs(float64(vecmath.Length(tangent)) - 1)
		bl := math.Abs(float64(vecmath.Length(binormal)) - 1)
		if o > tolerance || tl > tolerance || bl > tolerance {
			report.OutOfTolerance++
		}
		ortho = append(ortho, o)
		tLen = append(tLen, tl)
		bLen = append(bLen, bl)

		theta := rng.Float32() * math.Pi
		rotated := vecmath.Rotate(normal, theta, rng.Float32()*2*math.Pi)
		cos := math.Max(-1, math.Min(1, float64(vecmath.Dot(normal, vecmath.Normalize(rotated)))))
		angle = append(angle, math.Abs(math.Acos(cos)-float64(theta)))
	}

	report.Orthogonality = summarize(ortho)
	report.TangentLength = summarize(tLen)
	report.BinormalLength = summarize(bLen)
	report.RotationAngle = summarize(angle)
	report.Duration = time.Since(start)
	return report, nil
}

// randomUnit draws a direction uniformly distributed on the unit sphere.
func randomUnit(rng *rand.Rand) vecmath.Vector3 {
	theta := float32(math.Acos(1 - 2*rng.Float64()))
	phi := rng.Float32() * 2 * math.Pi
	return vecmath.FromSpherical(1, theta, phi)
}

func summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) == 1 {
		std = 0
	}
	return Summary{Mean: mean, StdDev: std, Max: floats.Max(xs)}
}
