package projection

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"semshapes/internal/domain"
)

// PCA projects rows onto the leading principal components of the centered data.
type PCA struct{}

func (PCA) Reduce(data *mat.Dense, dims int) (*mat.Dense, error) {
	rows, cols := data.Dims()
	if limit := min(rows, cols); dims < 1 || dims > limit {
		return nil, domain.InvalidArgument(fmt.Sprintf("n_components=%d must be between 1 and min(n_samples, n_features)=%d", dims, limit))
	}
	centered := center(data)
	var pc stat.PC
	if ok := pc.PrincipalComponents(centered, nil); !ok {
		return nil, errors.New("projection: pca decomposition failed")
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	basis := mat.DenseCopyOf(vecs.Slice(0, cols, 0, dims))
	flipSigns(basis)

	var out mat.Dense
	out.Mul(centered, basis)
	return &out, nil
}

func center(data *mat.Dense) *mat.Dense {
	rows, cols := data.Dims()
	out := mat.DenseCopyOf(data)
	for j := 0; j < cols; j++ {
		mean := stat.Mean(mat.Col(nil, j, data), nil)
		for i := 0; i < rows; i++ {
			out.Set(i, j, out.At(i, j)-mean)
		}
	}
	return out
}

// flipSigns makes the largest absolute loading of each component positive,
// which fixes the otherwise arbitrary sign of singular vectors.
func flipSigns(basis *mat.Dense) {
	rows, cols := basis.Dims()
	for j := 0; j < cols; j++ {
		best := 0.0
		for i := 0; i < rows; i++ {
			if v := basis.At(i, j); math.Abs(v) > math.Abs(best) {
				best = v
			}
		}
		if best >= 0 {
			continue
		}
		for i := 0; i < rows; i++ {
			basis.Set(i, j, -basis.At(i, j))
		}
	}
}
