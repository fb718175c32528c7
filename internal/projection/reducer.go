// Package projection reduces word vectors to 2 or 3 coordinates for plotting.
package projection

import (
	"strings"

	"gonum.org/v1/gonum/mat"

	"semshapes/internal/domain"
)

// Method selects a dimensionality reduction strategy.
type Method int

const (
	MethodPCA Method = iota + 1
	MethodTSNE
)

func (m Method) String() string {
	switch m {
	case MethodPCA:
		return "pca"
	case MethodTSNE:
		return "tsne"
	default:
		return "unknown"
	}
}

// ParseMethod resolves a method name case-insensitively.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(name) {
	case "pca":
		return MethodPCA, nil
	case "tsne":
		return MethodTSNE, nil
	default:
		return 0, domain.InvalidArgument("Method must be 'pca' or 'tsne'")
	}
}

// Reducer maps every row of data to a row of dims coordinates, keeping row order.
type Reducer interface {
	Reduce(data *mat.Dense, dims int) (*mat.Dense, error)
}

// New returns the reducer for m. TSNE uses cfg; PCA ignores it.
func New(m Method, cfg TSNEConfig) Reducer {
	if m == MethodTSNE {
		return &TSNE{Config: cfg}
	}
	return PCA{}
}
