package projection

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"semshapes/internal/domain"
)

const (
	exaggeration     = 12.0
	exaggerationIter = 250
	momentumSwitch   = 250
	minGain          = 0.01
	minProbability   = 1e-12
	perplexityTol    = 1e-5
	perplexitySteps  = 50
)

// TSNEConfig controls the t-SNE optimisation.
type TSNEConfig struct {
	Perplexity   float64
	Iterations   int
	LearningRate float64
	Seed         int64
}

// DefaultTSNEConfig mirrors the usual t-SNE defaults with a fixed seed.
func DefaultTSNEConfig() TSNEConfig {
	return TSNEConfig{Perplexity: 30, Iterations: 1000, LearningRate: 200, Seed: 42}
}

// TSNE is an exact t-distributed stochastic neighbour embedding.
// The only randomness is the initial layout drawn from Config.Seed, so equal
// inputs always produce equal outputs.
type TSNE struct {
	Config TSNEConfig
}

func (t *TSNE) Reduce(data *mat.Dense, dims int) (*mat.Dense, error) {
	n, _ := data.Dims()
	if n < 2 {
		return nil, domain.InvalidArgument("t-SNE needs at least 2 words")
	}
	if dims < 1 {
		return nil, domain.InvalidArgument("t-SNE needs at least 1 output dimension")
	}
	cfg := t.config()
	perplexity := math.Min(cfg.Perplexity, float64(n-1)/3)
	if perplexity < 1 {
		perplexity = 1
	}
	p := jointProbabilities(squaredDistances(data), perplexity)

	rng := rand.New(rand.NewSource(cfg.Seed))
	y := make([][]float64, n)
	update := make([][]float64, n)
	gains := make([][]float64, n)
	for i := range y {
		y[i] = make([]float64, dims)
		update[i] = make([]float64, dims)
		gains[i] = make([]float64, dims)
		for d := range y[i] {
			y[i][d] = rng.NormFloat64() * 1e-4
			gains[i][d] = 1
		}
	}

	num := make([][]float64, n)
	for i := range num {
		num[i] = make([]float64, n)
	}
	grad := make([]float64, dims)
	for iter := 0; iter < cfg.Iterations; iter++ {
		exag := 1.0
		if iter < exaggerationIter {
			exag = exaggeration
		}
		momentum := 0.8
		if iter < momentumSwitch {
			momentum = 0.5
		}
		sum := 0.0
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				v := 1 / (1 + sqDist(y[i], y[j]))
				num[i][j], num[j][i] = v, v
				sum += 2 * v
			}
		}
		for i := 0; i < n; i++ {
			for d := range grad {
				grad[d] = 0
			}
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				q := math.Max(num[i][j]/sum, minProbability)
				mult := 4 * (exag*p[i][j] - q) * num[i][j]
				for d := range grad {
					grad[d] += mult * (y[i][d] - y[j][d])
				}
			}
			for d := range grad {
				if (grad[d] > 0) != (update[i][d] > 0) {
					gains[i][d] += 0.2
				} else {
					gains[i][d] *= 0.8
				}
				gains[i][d] = math.Max(gains[i][d], minGain)
				update[i][d] = momentum*update[i][d] - cfg.LearningRate*gains[i][d]*grad[d]
			}
		}
		for i := range y {
			for d := range y[i] {
				y[i][d] += update[i][d]
			}
		}
		recenter(y)
	}

	out := mat.NewDense(n, dims, nil)
	for i := range y {
		out.SetRow(i, y[i])
	}
	return out, nil
}

func (t *TSNE) config() TSNEConfig {
	cfg := t.Config
	def := DefaultTSNEConfig()
	if cfg.Perplexity <= 0 {
		cfg.Perplexity = def.Perplexity
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = def.Iterations
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = def.LearningRate
	}
	return cfg
}

func squaredDistances(data *mat.Dense) [][]float64 {
	n, _ := data.Dims()
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := sqDist(data.RawRowView(i), data.RawRowView(j))
			out[i][j], out[j][i] = d, d
		}
	}
	return out
}

// jointProbabilities calibrates a Gaussian per row to the target perplexity and symmetrises the result.
func jointProbabilities(dist [][]float64, perplexity float64) [][]float64 {
	n := len(dist)
	target := math.Log(perplexity)
	cond := make([][]float64, n)
	for i := 0; i < n; i++ {
		cond[i] = make([]float64, n)
		nearest := math.Inf(1)
		for j := 0; j < n; j++ {
			if j != i && dist[i][j] < nearest {
				nearest = dist[i][j]
			}
		}
		beta, lo, hi := 1.0, math.Inf(-1), math.Inf(1)
		for step := 0; step < perplexitySteps; step++ {
			sum, weighted := 0.0, 0.0
			for j := 0; j < n; j++ {
				if j == i {
					cond[i][j] = 0
					continue
				}
				shifted := dist[i][j] - nearest
				v := math.Exp(-shifted * beta)
				cond[i][j] = v
				sum += v
				weighted += shifted * v
			}
			entropy := math.Log(sum) + beta*weighted/sum
			for j := range cond[i] {
				cond[i][j] /= sum
			}
			diff := entropy - target
			if math.Abs(diff) < perplexityTol {
				break
			}
			if diff > 0 {
				lo = beta
				if math.IsInf(hi, 1) {
					beta *= 2
				} else {
					beta = (beta + hi) / 2
				}
			} else {
				hi = beta
				if math.IsInf(lo, -1) {
					beta /= 2
				} else {
					beta = (beta + lo) / 2
				}
			}
		}
	}
	p := make([][]float64, n)
	for i := range p {
		p[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			p[i][j] = math.Max((cond[i][j]+cond[j][i])/(2*float64(n)), minProbability)
		}
	}
	return p
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

func recenter(y [][]float64) {
	if len(y) == 0 {
		return
	}
	for d := range y[0] {
		mean := 0.0
		for i := range y {
			mean += y[i][d]
		}
		mean /= float64(len(y))
		for i := range y {
			y[i][d] -= mean
		}
	}
}
