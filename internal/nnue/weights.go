package nnue

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// LoadWeights reads a contiguous little-endian binary blob matching the
// Network layout: feature_weights[2*6*64] (int16 x HiddenSize each), then
// feature_bias, then output_weights[2], then output_bias (i16). Total
// size is fixed for a given HiddenSize (197 378 bytes at HiddenSize=128).
func (n *Network) LoadWeights(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open nnue weights: %w", err)
	}
	defer f.Close()

	return n.LoadWeightsFromReader(f)
}

// LoadWeightsFromReader loads a network from an already-open reader, used
// by callers embedding the weight blob (e.g. go:embed) rather than
// reading it from a standalone file.
func (n *Network) LoadWeightsFromReader(r io.Reader) error {
	for i := 0; i < numFeatures; i++ {
		if err := binary.Read(r, binary.LittleEndian, &n.FeatureWeights[i]); err != nil {
			return fmt.Errorf("read feature weights at %d: %w", i, err)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &n.FeatureBias); err != nil {
		return fmt.Errorf("read feature bias: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n.OutputWeights); err != nil {
		return fmt.Errorf("read output weights: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n.OutputBias); err != nil {
		return fmt.Errorf("read output bias: %w", err)
	}
	return nil
}

// SaveWeights writes the network in the format LoadWeights expects.
func (n *Network) SaveWeights(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create nnue weights: %w", err)
	}
	defer f.Close()

	for i := 0; i < numFeatures; i++ {
		if err := binary.Write(f, binary.LittleEndian, &n.FeatureWeights[i]); err != nil {
			return fmt.Errorf("write feature weights at %d: %w", i, err)
		}
	}
	if err := binary.Write(f, binary.LittleEndian, &n.FeatureBias); err != nil {
		return fmt.Errorf("write feature bias: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, &n.OutputWeights); err != nil {
		return fmt.Errorf("write output weights: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, &n.OutputBias); err != nil {
		return fmt.Errorf("write output bias: %w", err)
	}
	return nil
}

// WeightsFileSize returns the exact byte size LoadWeights expects for the
// compiled-in HiddenSize, used by callers validating a blob before load.
func WeightsFileSize() int64 {
	const int16Size = 2
	featureBytes := int64(numFeatures) * HiddenSize * int16Size
	biasBytes := int64(HiddenSize) * int16Size
	outputWeightBytes := int64(2) * HiddenSize * int16Size
	outputBiasBytes := int64(int16Size)
	return featureBytes + biasBytes + outputWeightBytes + outputBiasBytes
}
