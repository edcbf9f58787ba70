package ports

// Dataset is a loaded tabular dataset: ordered column names plus row-major
// numeric values. Loading and type coercion live behind DatasetReaderPort;
// the engine only ever sees this struct.
type Dataset struct {
	FeatureNames []string
	Rows         [][]float64
}

// DatasetReaderPort loads a tabular dataset from a file path.
type DatasetReaderPort interface {
	ReadDataset(path string) (*Dataset, error)
}
