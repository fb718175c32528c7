package embedding

import (
	"hash/fnv"
	"math/rand"
)

// Fallback feature axes.
const (
	axisRoyal = iota
	axisGender
	axisYouth
	axisPerson
	axisFamily
	axisAnimal
	axisCity
	axisCountry
	axisRegion
	axisTech
	fallbackDimensions
)

const fallbackNoise = 0.05

var fallbackFeatures = []struct {
	word     string
	features map[int]float32
}{
	{"king", map[int]float32{axisRoyal: 1, axisGender: -1, axisPerson: 1}},
	{"queen", map[int]float32{axisRoyal: 1, axisGender: 1, axisPerson: 1}},
	{"man", map[int]float32{axisGender: -1, axisPerson: 1}},
	{"woman", map[int]float32{axisGender: 1, axisPerson: 1}},
	{"prince", map[int]float32{axisRoyal: 1, axisGender: -1, axisYouth: 1, axisPerson: 1}},
	{"princess", map[int]float32{axisRoyal: 1, axisGender: 1, axisYouth: 1, axisPerson: 1}},
	{"boy", map[int]float32{axisGender: -1, axisYouth: 1, axisPerson: 1}},
	{"girl", map[int]float32{axisGender: 1, axisYouth: 1, axisPerson: 1}},
	{"father", map[int]float32{axisGender: -1, axisPerson: 1, axisFamily: 1}},
	{"mother", map[int]float32{axisGender: 1, axisPerson: 1, axisFamily: 1}},
	{"son", map[int]float32{axisGender: -1, axisYouth: 1, axisPerson: 1, axisFamily: 1}},
	{"daughter", map[int]float32{axisGender: 1, axisYouth: 1, axisPerson: 1, axisFamily: 1}},
	{"dog", map[int]float32{axisAnimal: 1}},
	{"cat", map[int]float32{axisAnimal: 1}},
	{"paris", map[int]float32{axisCity: 1, axisRegion: 1}},
	{"france", map[int]float32{axisCountry: 1, axisRegion: 1}},
	{"berlin", map[int]float32{axisCity: 1, axisRegion: -1}},
	{"germany", map[int]float32{axisCountry: 1, axisRegion: -1}},
	{"tokyo", map[int]float32{axisCity: 1}},
	{"japan", map[int]float32{axisCountry: 1}},
	{"computer", map[int]float32{axisTech: 1}},
	{"keyboard", map[int]float32{axisTech: 1}},
	{"mouse", map[int]float32{axisTech: 1, axisAnimal: 0.4}},
}

// Fallback returns a small synthetic table used when no model file can be loaded.
// Vectors combine fixed feature weights with a perturbation seeded by the word's FNV hash,
// so every call returns identical values.
func Fallback() *Table {
	words := make([]string, len(fallbackFeatures))
	vectors := make([][]float32, len(fallbackFeatures))
	for i, f := range fallbackFeatures {
		h := fnv.New64a()
		_, _ = h.Write([]byte(f.word))
		rng := rand.New(rand.NewSource(int64(h.Sum64())))
		vec := make([]float32, fallbackDimensions)
		for j := range vec {
			vec[j] = f.features[j] + float32(rng.NormFloat64()*fallbackNoise)
		}
		words[i] = f.word
		vectors[i] = vec
	}
	t, err := NewTable(ModelFallback, words, vectors)
	if err != nil {
		panic(err)
	}
	return t
}
